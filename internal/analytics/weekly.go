package analytics

import (
	"sort"
	"time"

	"github.com/cradlehq/backend/internal/dates"
	"github.com/cradlehq/backend/internal/models"
)

// WeekStarts returns the start of the current week (Sunday, local midnight)
// and of the week before it.
func WeekStarts(now time.Time, loc *time.Location) (thisWeek, lastWeek time.Time) {
	local := now.In(orUTC(loc))
	thisWeek = dates.AddDays(dates.StartOfDay(local), -int(local.Weekday()))
	return thisWeek, dates.AddDays(thisWeek, -7)
}

// WeeklySummary compares per-category activity counts of this week with
// last week. Categories with no activity in either week are left out.
func WeeklySummary(events []models.Activity, now time.Time, loc *time.Location) []models.WeeklySummary {
	thisWeekStart, lastWeekStart := WeekStarts(now, loc)

	thisWeek := make(map[models.Category]int)
	lastWeek := make(map[models.Category]int)
	for _, e := range events {
		switch {
		case !e.StartedAt.Before(thisWeekStart) && !e.StartedAt.After(now):
			thisWeek[e.Category]++
		case !e.StartedAt.Before(lastWeekStart) && e.StartedAt.Before(thisWeekStart):
			lastWeek[e.Category]++
		}
	}

	summaries := make([]models.WeeklySummary, 0, len(models.Categories))
	for _, c := range models.Categories {
		this, last := thisWeek[c], lastWeek[c]
		if this == 0 && last == 0 {
			continue
		}

		s := models.WeeklySummary{
			Category:      c,
			ThisWeekCount: this,
			LastWeekCount: last,
			Direction:     "same",
		}
		if last == 0 {
			s.ChangePercent = 100
			s.Direction = "up"
		} else {
			s.ChangePercent = float64(this-last) / float64(last) * 100
			if s.ChangePercent > NoiseThresholdPercent {
				s.Direction = "up"
			} else if s.ChangePercent < -NoiseThresholdPercent {
				s.Direction = "down"
			}
		}
		summaries = append(summaries, s)
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].ThisWeekCount > summaries[j].ThisWeekCount
	})
	return summaries
}
