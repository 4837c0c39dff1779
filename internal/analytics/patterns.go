package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/cradlehq/backend/internal/dates"
	"github.com/cradlehq/backend/internal/models"
)

const (
	// MinEventsForPattern is the fewest events of a category worth describing.
	// Below it the analyzers return a zero-valued pattern with only SampleSize set.
	MinEventsForPattern = 5

	// Night band for bedtime estimation: sessions starting 18:00-05:59
	nightStartHour = 18
	nightEndHour   = 6

	minutesPerDay = 24 * 60
)

// AnalyzeSleep describes the sleep sessions among events
func AnalyzeSleep(events []models.Activity, loc *time.Location) models.SleepPattern {
	sessions := filterSorted(events, models.CategorySleep)
	if len(sessions) < MinEventsForPattern {
		return models.SleepPattern{SampleSize: len(sessions)}
	}
	loc = orUTC(loc)

	var total, longest float64
	var bedtimes, wakes []float64
	for _, s := range sessions {
		if d, ok := s.Duration(); ok {
			total += d
			longest = math.Max(longest, d)
		}

		start := s.StartedAt.In(loc)
		if !isNightHour(start.Hour()) {
			continue
		}
		bedtimes = append(bedtimes, foldHour(dates.FractionalHour(start)))
		if end, ok := s.EndTime(); ok {
			wakes = append(wakes, foldHour(dates.FractionalHour(end.In(loc))))
		}
	}

	days := distinctDays(sessions, loc)
	p := models.SleepPattern{
		SampleSize:             len(sessions),
		Sufficient:             true,
		DaysObserved:           days,
		TotalMinutes:           total,
		AverageDurationMinutes: total / float64(len(sessions)),
		NapsPerDay:             float64(len(sessions)) / float64(days),
		LongestStretchMinutes:  longest,
		NightSessions:          len(bedtimes),
		SleepEfficiency:        total / float64(days) / minutesPerDay * 100,
	}
	if len(bedtimes) > 0 {
		p.Bedtime = dates.FormatClock(math.Mod(mean(bedtimes), 24))
		p.BedtimeVariance = variance(bedtimes)
	}
	if len(wakes) > 0 {
		p.WakeTime = dates.FormatClock(math.Mod(mean(wakes), 24))
	}
	return p
}

// AnalyzeFeeding describes the feeds among events
func AnalyzeFeeding(events []models.Activity, loc *time.Location) models.FeedingPattern {
	feeds := filterSorted(events, models.CategoryFeeding)
	if len(feeds) < MinEventsForPattern {
		return models.FeedingPattern{SampleSize: len(feeds), PreferredHours: []int{}}
	}
	loc = orUTC(loc)

	var durations, amounts []float64
	var hist [24]int
	var breast, bottle int
	for _, f := range feeds {
		if d, ok := f.Duration(); ok {
			durations = append(durations, d)
		}
		if f.AmountML != nil {
			amounts = append(amounts, *f.AmountML)
		}
		hist[f.StartedAt.In(loc).Hour()]++

		switch {
		case f.IsBreastFeed():
			breast++
		case f.IsBottleFeed():
			bottle++
		}
	}

	intervals := make([]float64, 0, len(feeds)-1)
	for i := 1; i < len(feeds); i++ {
		intervals = append(intervals, feeds[i].StartedAt.Sub(feeds[i-1].StartedAt).Minutes())
	}

	days := distinctDays(feeds, loc)
	return models.FeedingPattern{
		SampleSize:             len(feeds),
		Sufficient:             true,
		DaysObserved:           days,
		AverageIntervalMinutes: mean(intervals),
		AverageDurationMinutes: mean(durations),
		AverageBottleML:        mean(amounts),
		FeedsPerDay:            float64(len(feeds)) / float64(days),
		PreferredHours:         topHours(hist, 3),
		BreastCount:            breast,
		BottleCount:            bottle,
		BreastBottleRatio:      ratio(breast, bottle),
		HourHistogram:          hist,
		IntervalsMinutes:       intervals,
	}
}

// AnalyzeNappy describes the nappy changes among events
func AnalyzeNappy(events []models.Activity, loc *time.Location) models.NappyPattern {
	changes := filterSorted(events, models.CategoryNappy)
	if len(changes) < MinEventsForPattern {
		return models.NappyPattern{SampleSize: len(changes), TypicalHours: []int{}}
	}
	loc = orUTC(loc)

	var hist [24]int
	var wet, dirty int
	var longestGap time.Duration
	for i, c := range changes {
		hist[c.StartedAt.In(loc).Hour()]++
		if c.IsWet() {
			wet++
		}
		if c.IsDirty() {
			dirty++
		}
		if i > 0 {
			if gap := c.StartedAt.Sub(changes[i-1].StartedAt); gap > longestGap {
				longestGap = gap
			}
		}
	}

	typical := topHours(hist, 4)
	sort.Ints(typical)

	days := distinctDays(changes, loc)
	return models.NappyPattern{
		SampleSize:             len(changes),
		Sufficient:             true,
		DaysObserved:           days,
		ChangesPerDay:          float64(len(changes)) / float64(days),
		WetCount:               wet,
		DirtyCount:             dirty,
		WetDirtyRatio:          ratio(wet, dirty),
		LongestDryStretchHours: longestGap.Hours(),
		TypicalHours:           typical,
	}
}

// filterSorted returns the events of one category ordered by start time
func filterSorted(events []models.Activity, category models.Category) []models.Activity {
	out := make([]models.Activity, 0, len(events))
	for _, e := range events {
		if e.Category == category {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartedAt.Before(out[j].StartedAt)
	})
	return out
}

func distinctDays(events []models.Activity, loc *time.Location) int {
	seen := make(map[string]struct{}, len(events))
	for _, e := range events {
		seen[dates.DayKey(e.StartedAt.In(loc))] = struct{}{}
	}
	return len(seen)
}

func isNightHour(hour int) bool {
	return hour >= nightStartHour || hour < nightEndHour
}

// foldHour moves early-morning hours past midnight (+24) so that 23:00 and
// 01:00 average to 00:00 instead of 12:00.
func foldHour(h float64) float64 {
	if h < 12 {
		return h + 24
	}
	return h
}

// topHours returns up to k hours with at least one event, most frequent
// first; ties go to the earlier hour.
func topHours(hist [24]int, k int) []int {
	hours := make([]int, 0, 24)
	for h, n := range hist {
		if n > 0 {
			hours = append(hours, h)
		}
	}
	sort.SliceStable(hours, func(i, j int) bool {
		return hist[hours[i]] > hist[hours[j]]
	})
	if len(hours) > k {
		hours = hours[:k]
	}
	return hours
}

// ratio is a/b, or a itself when there is nothing to divide by
func ratio(a, b int) float64 {
	if b == 0 {
		return float64(a)
	}
	return float64(a) / float64(b)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// variance is the population variance
func variance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	var sum float64
	for _, v := range values {
		sum += (v - m) * (v - m)
	}
	return sum / float64(len(values))
}

func orUTC(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
