package models

import "time"

// FeedingTotals holds the feeding counters of one day
type FeedingTotals struct {
	Count           int     `json:"count"`
	DurationMinutes float64 `json:"duration_minutes"`
	AmountML        float64 `json:"amount_ml"`
}

// SleepTotals holds the sleep counters of one day
type SleepTotals struct {
	Count           int     `json:"count"`
	DurationMinutes float64 `json:"duration_minutes"`
}

// NappyTotals holds the nappy counters of one day. Count includes subtypes
// that have no dedicated counter.
type NappyTotals struct {
	Count int `json:"count"`
	Wet   int `json:"wet"`
	Dirty int `json:"dirty"`
	Mixed int `json:"mixed"`
}

// DailyAnalytics is the per-child, per-calendar-day rollup of activities.
// It is derived data and can always be rebuilt from the activity log.
type DailyAnalytics struct {
	ChildID          string        `json:"child_id"`
	Date             string        `json:"date"` // YYYY-MM-DD in the analytics timezone
	Feeding          FeedingTotals `json:"feeding"`
	Sleep            SleepTotals   `json:"sleep"`
	Nappy            NappyTotals   `json:"nappy"`
	TummyTimeMinutes float64       `json:"tummy_time_minutes"`
}

// SleepPattern summarises sleep sessions over a window
type SleepPattern struct {
	SampleSize             int     `json:"sample_size"`
	Sufficient             bool    `json:"sufficient"`
	DaysObserved           int     `json:"days_observed"`
	TotalMinutes           float64 `json:"total_minutes"`
	AverageDurationMinutes float64 `json:"average_duration_minutes"`
	NapsPerDay             float64 `json:"naps_per_day"`
	LongestStretchMinutes  float64 `json:"longest_stretch_minutes"`
	Bedtime                string  `json:"bedtime,omitempty"`   // HH:MM
	WakeTime               string  `json:"wake_time,omitempty"` // HH:MM
	NightSessions          int     `json:"night_sessions"`
	BedtimeVariance        float64 `json:"bedtime_variance"` // hours squared
	SleepEfficiency        float64 `json:"sleep_efficiency"` // percent of the day asleep
}

// FeedingPattern summarises feeds over a window
type FeedingPattern struct {
	SampleSize             int       `json:"sample_size"`
	Sufficient             bool      `json:"sufficient"`
	DaysObserved           int       `json:"days_observed"`
	AverageIntervalMinutes float64   `json:"average_interval_minutes"`
	AverageDurationMinutes float64   `json:"average_duration_minutes"`
	AverageBottleML        float64   `json:"average_bottle_ml"`
	FeedsPerDay            float64   `json:"feeds_per_day"`
	PreferredHours         []int     `json:"preferred_hours"`
	BreastCount            int       `json:"breast_count"`
	BottleCount            int       `json:"bottle_count"`
	BreastBottleRatio      float64   `json:"breast_bottle_ratio"`
	HourHistogram          [24]int   `json:"hour_histogram"`
	IntervalsMinutes       []float64 `json:"-"`
}

// NappyPattern summarises nappy changes over a window
type NappyPattern struct {
	SampleSize             int     `json:"sample_size"`
	Sufficient             bool    `json:"sufficient"`
	DaysObserved           int     `json:"days_observed"`
	ChangesPerDay          float64 `json:"changes_per_day"`
	WetCount               int     `json:"wet_count"`
	DirtyCount             int     `json:"dirty_count"`
	WetDirtyRatio          float64 `json:"wet_dirty_ratio"`
	LongestDryStretchHours float64 `json:"longest_dry_stretch_hours"`
	TypicalHours           []int   `json:"typical_hours"`
}

// PatternsResponse bundles the three category patterns for one window
type PatternsResponse struct {
	ChildID    string         `json:"child_id"`
	WindowDays int            `json:"window_days"`
	Sleep      SleepPattern   `json:"sleep"`
	Feeding    FeedingPattern `json:"feeding"`
	Nappy      NappyPattern   `json:"nappy"`
	ComputedAt time.Time      `json:"computed_at"`
}

// TrendDirection classifies a metric's trajectory
type TrendDirection string

const (
	TrendImproving  TrendDirection = "improving"
	TrendConcerning TrendDirection = "concerning"
	TrendStable     TrendDirection = "stable"
)

// TrendResult compares the two chronological halves of a daily series
type TrendResult struct {
	Metric         string         `json:"metric"`
	Direction      TrendDirection `json:"direction"`
	ChangePercent  float64        `json:"change_percent"`
	FirstHalfMean  float64        `json:"first_half_mean"`
	SecondHalfMean float64        `json:"second_half_mean"`
	SampleDays     int            `json:"sample_days"`
}

// WeeklySummary compares this week's activity count to last week's
type WeeklySummary struct {
	Category      Category `json:"category"`
	ThisWeekCount int      `json:"this_week_count"`
	LastWeekCount int      `json:"last_week_count"`
	ChangePercent float64  `json:"change_percent"`
	Direction     string   `json:"direction"` // "up", "down", "same"
}
