package analytics

import (
	"math"

	"github.com/cradlehq/backend/internal/models"
)

// NoiseThresholdPercent is the smallest change that is not reported as stable
const NoiseThresholdPercent = 5.0

// MinTrendDays is the shortest series that can be split into two halves
const MinTrendDays = 3

// Polarity says which direction of change is good news for a metric
type Polarity int

const (
	HigherIsBetter Polarity = iota
	LowerIsBetter
)

// Metric is a daily series the trend detector knows how to read and judge
type Metric struct {
	Name     string
	Category models.Category
	Polarity Polarity
	value    func(models.DailyAnalytics) float64
}

// Value extracts the metric from one day
func (m Metric) Value(day models.DailyAnalytics) float64 {
	return m.value(day)
}

// Metric names
const (
	MetricSleepDuration = "sleep_duration"
	MetricSleepTotal    = "sleep_total"
	MetricSleepSessions = "sleep_sessions"
	MetricFeedingCount  = "feeding_count"
	MetricFeedingAmount = "feeding_amount"
	MetricNappyCount    = "nappy_count"
	MetricTummyTime     = "tummy_time"
)

var metrics = []Metric{
	{
		Name:     MetricSleepDuration,
		Category: models.CategorySleep,
		Polarity: HigherIsBetter,
		value: func(d models.DailyAnalytics) float64 {
			if d.Sleep.Count == 0 {
				return 0
			}
			return d.Sleep.DurationMinutes / float64(d.Sleep.Count)
		},
	},
	{
		Name:     MetricSleepTotal,
		Category: models.CategorySleep,
		Polarity: HigherIsBetter,
		value:    func(d models.DailyAnalytics) float64 { return d.Sleep.DurationMinutes },
	},
	{
		// More, shorter sessions means more broken sleep
		Name:     MetricSleepSessions,
		Category: models.CategorySleep,
		Polarity: LowerIsBetter,
		value:    func(d models.DailyAnalytics) float64 { return float64(d.Sleep.Count) },
	},
	{
		Name:     MetricFeedingCount,
		Category: models.CategoryFeeding,
		Polarity: HigherIsBetter,
		value:    func(d models.DailyAnalytics) float64 { return float64(d.Feeding.Count) },
	},
	{
		Name:     MetricFeedingAmount,
		Category: models.CategoryFeeding,
		Polarity: HigherIsBetter,
		value:    func(d models.DailyAnalytics) float64 { return d.Feeding.AmountML },
	},
	{
		Name:     MetricNappyCount,
		Category: models.CategoryNappy,
		Polarity: HigherIsBetter,
		value:    func(d models.DailyAnalytics) float64 { return float64(d.Nappy.Count) },
	},
	{
		Name:     MetricTummyTime,
		Category: models.CategoryTummyTime,
		Polarity: HigherIsBetter,
		value:    func(d models.DailyAnalytics) float64 { return d.TummyTimeMinutes },
	},
}

// Metrics returns the registered daily metrics in display order
func Metrics() []Metric {
	out := make([]Metric, len(metrics))
	copy(out, metrics)
	return out
}

// MetricByName looks up a registered metric
func MetricByName(name string) (Metric, bool) {
	for _, m := range metrics {
		if m.Name == name {
			return m, true
		}
	}
	return Metric{}, false
}

// Series reads a metric from the days on which its category was logged.
// Days without any activity of that category are left out rather than
// counted as zero.
func Series(m Metric, days []models.DailyAnalytics) []float64 {
	out := make([]float64, 0, len(days))
	for _, d := range days {
		if !hasCategory(d, m.Category) {
			continue
		}
		out = append(out, m.Value(d))
	}
	return out
}

func hasCategory(d models.DailyAnalytics, c models.Category) bool {
	switch c {
	case models.CategoryFeeding:
		return d.Feeding.Count > 0
	case models.CategorySleep:
		return d.Sleep.Count > 0
	case models.CategoryNappy:
		return d.Nappy.Count > 0
	case models.CategoryTummyTime:
		return d.TummyTimeMinutes > 0
	}
	return false
}

// DetectTrend compares the mean of the second half of series with the first.
// The split is at len/2, so an odd middle day falls into the second half.
// Fewer than MinTrendDays values, or a zero first-half mean, yield stable/0.
func DetectTrend(m Metric, series []float64) models.TrendResult {
	result := models.TrendResult{
		Metric:     m.Name,
		Direction:  models.TrendStable,
		SampleDays: len(series),
	}
	if len(series) < MinTrendDays {
		return result
	}

	mid := len(series) / 2
	result.FirstHalfMean = mean(series[:mid])
	result.SecondHalfMean = mean(series[mid:])

	if result.FirstHalfMean == 0 {
		return result
	}

	change := (result.SecondHalfMean - result.FirstHalfMean) / result.FirstHalfMean * 100
	if math.IsNaN(change) || math.IsInf(change, 0) {
		return result
	}
	result.ChangePercent = change
	result.Direction = Classify(m.Polarity, change)
	return result
}

// Classify maps a signed percent change to a direction under a polarity
func Classify(p Polarity, changePercent float64) models.TrendDirection {
	if math.Abs(changePercent) < NoiseThresholdPercent {
		return models.TrendStable
	}
	up := changePercent > 0
	if p == LowerIsBetter {
		up = !up
	}
	if up {
		return models.TrendImproving
	}
	return models.TrendConcerning
}

// DetectTrends runs every registered metric over the same daily rollups
func DetectTrends(days []models.DailyAnalytics) []models.TrendResult {
	results := make([]models.TrendResult, 0, len(metrics))
	for _, m := range metrics {
		results = append(results, DetectTrend(m, Series(m, days)))
	}
	return results
}
