// Package analytics turns a child's activity log into daily rollups,
// multi-day patterns, trend classifications, insights and alerts.
//
// Everything here is a pure function of its arguments: callers fetch the
// activities and pass in the clock and timezone explicitly.
package analytics

import (
	"sort"
	"time"

	"github.com/cradlehq/backend/internal/dates"
	"github.com/cradlehq/backend/internal/models"
)

// AggregateDaily folds activities into one record per calendar date (in loc)
// that has at least one activity inside [start, end]. Dates without activity
// get no record. Records are returned oldest first.
func AggregateDaily(childID string, events []models.Activity, start, end time.Time, loc *time.Location) []models.DailyAnalytics {
	if loc == nil {
		loc = time.UTC
	}

	byDate := make(map[string]*models.DailyAnalytics)
	for _, e := range events {
		if e.StartedAt.Before(start) || e.StartedAt.After(end) {
			continue
		}

		key := dates.DayKey(e.StartedAt.In(loc))
		day, ok := byDate[key]
		if !ok {
			day = &models.DailyAnalytics{ChildID: childID, Date: key}
			byDate[key] = day
		}
		addToDay(day, e)
	}

	result := make([]models.DailyAnalytics, 0, len(byDate))
	for _, day := range byDate {
		result = append(result, *day)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Date < result[j].Date
	})
	return result
}

func addToDay(day *models.DailyAnalytics, e models.Activity) {
	duration, _ := e.Duration()

	switch e.Category {
	case models.CategoryFeeding:
		day.Feeding.Count++
		day.Feeding.DurationMinutes += duration
		if e.AmountML != nil {
			day.Feeding.AmountML += *e.AmountML
		}
	case models.CategorySleep:
		day.Sleep.Count++
		day.Sleep.DurationMinutes += duration
	case models.CategoryNappy:
		day.Nappy.Count++
		switch e.Subtype {
		case models.SubtypeWet:
			day.Nappy.Wet++
		case models.SubtypeDirty:
			day.Nappy.Dirty++
		case models.SubtypeMixed, models.SubtypeBoth:
			day.Nappy.Mixed++
		}
	case models.CategoryTummyTime:
		day.TummyTimeMinutes += duration
	}
}
