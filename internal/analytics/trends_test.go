package analytics

import (
	"math"
	"testing"

	"github.com/cradlehq/backend/internal/models"
)

func sleepDay(date string, sessions int, minutes float64) models.DailyAnalytics {
	return models.DailyAnalytics{
		Date:  date,
		Sleep: models.SleepTotals{Count: sessions, DurationMinutes: minutes},
	}
}

func mustMetric(t *testing.T, name string) Metric {
	t.Helper()
	m, ok := MetricByName(name)
	if !ok {
		t.Fatalf("MetricByName(%q) not found", name)
	}
	return m
}

func TestDetectTrend(t *testing.T) {
	tests := []struct {
		name      string
		metric    string
		series    []float64
		want      models.TrendDirection
		wantDelta float64
	}{
		{"too short", MetricSleepDuration, []float64{100, 200}, models.TrendStable, 0},
		{"empty", MetricSleepDuration, nil, models.TrendStable, 0},
		{"zero first half", MetricSleepDuration, []float64{0, 0, 50, 60}, models.TrendStable, 0},
		{"rising sleep", MetricSleepDuration, []float64{100, 100, 130, 130}, models.TrendImproving, 30},
		{"falling sleep", MetricSleepDuration, []float64{130, 130, 100, 100}, models.TrendConcerning, -23.076923},
		{"within noise", MetricSleepDuration, []float64{100, 100, 104, 104}, models.TrendStable, 4},
		{"more sessions is worse", MetricSleepSessions, []float64{4, 4, 6, 6}, models.TrendConcerning, 50},
		{"fewer sessions is better", MetricSleepSessions, []float64{6, 6, 4, 4}, models.TrendImproving, -33.333333},
		{"odd length puts middle day second", MetricFeedingCount, []float64{10, 20, 20}, models.TrendImproving, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectTrend(mustMetric(t, tt.metric), tt.series)
			if got.Direction != tt.want {
				t.Errorf("Direction = %v, want %v", got.Direction, tt.want)
			}
			if math.Abs(got.ChangePercent-tt.wantDelta) > 1e-4 {
				t.Errorf("ChangePercent = %v, want %v", got.ChangePercent, tt.wantDelta)
			}
			if math.IsNaN(got.ChangePercent) {
				t.Errorf("ChangePercent is NaN")
			}
			if got.SampleDays != len(tt.series) {
				t.Errorf("SampleDays = %d, want %d", got.SampleDays, len(tt.series))
			}
		})
	}
}

func TestDetectTrend_ReversedSeriesFlipsSign(t *testing.T) {
	m := mustMetric(t, MetricSleepTotal)
	series := []float64{300, 320, 310, 400, 420, 410}
	reversed := make([]float64, len(series))
	for i, v := range series {
		reversed[len(series)-1-i] = v
	}

	forward := DetectTrend(m, series)
	backward := DetectTrend(m, reversed)
	if forward.ChangePercent <= 0 || backward.ChangePercent >= 0 {
		t.Errorf("ChangePercent forward/backward = %v/%v, want opposite signs", forward.ChangePercent, backward.ChangePercent)
	}
	if forward.Direction != models.TrendImproving || backward.Direction != models.TrendConcerning {
		t.Errorf("Direction forward/backward = %v/%v, want improving/concerning", forward.Direction, backward.Direction)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		polarity Polarity
		change   float64
		want     models.TrendDirection
	}{
		{HigherIsBetter, 5, models.TrendImproving},
		{HigherIsBetter, 4.99, models.TrendStable},
		{HigherIsBetter, -5, models.TrendConcerning},
		{LowerIsBetter, 12, models.TrendConcerning},
		{LowerIsBetter, -12, models.TrendImproving},
		{LowerIsBetter, 0, models.TrendStable},
	}
	for _, tt := range tests {
		if got := Classify(tt.polarity, tt.change); got != tt.want {
			t.Errorf("Classify(%v, %v) = %v, want %v", tt.polarity, tt.change, got, tt.want)
		}
	}
}

func TestSeries_SkipsDaysWithoutCategory(t *testing.T) {
	days := []models.DailyAnalytics{
		sleepDay("2024-03-01", 2, 200),
		{Date: "2024-03-02", Feeding: models.FeedingTotals{Count: 8}},
		sleepDay("2024-03-03", 4, 200),
	}

	got := Series(mustMetric(t, MetricSleepDuration), days)
	if len(got) != 2 || got[0] != 100 || got[1] != 50 {
		t.Errorf("Series = %v, want [100 50]", got)
	}

	feeds := Series(mustMetric(t, MetricFeedingCount), days)
	if len(feeds) != 1 || feeds[0] != 8 {
		t.Errorf("Series(feeding_count) = %v, want [8]", feeds)
	}
}

func TestMetricByName_Unknown(t *testing.T) {
	if _, ok := MetricByName("bath_count"); ok {
		t.Error("MetricByName(bath_count) found, want not found")
	}
}

func TestDetectTrends_CoversEveryMetric(t *testing.T) {
	results := DetectTrends(nil)
	if len(results) != len(Metrics()) {
		t.Fatalf("len(DetectTrends) = %d, want %d", len(results), len(Metrics()))
	}
	for _, r := range results {
		if r.Direction != models.TrendStable {
			t.Errorf("%s Direction = %v, want stable with no data", r.Metric, r.Direction)
		}
	}
}
