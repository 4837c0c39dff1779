package analytics

import (
	"time"

	"github.com/cradlehq/backend/internal/models"
)

var testDay = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

// at returns testDay + day days at hh:mm UTC
func at(day, hh, mm int) time.Time {
	return testDay.AddDate(0, 0, day).Add(time.Duration(hh)*time.Hour + time.Duration(mm)*time.Minute)
}

func ptr(v float64) *float64 { return &v }

func feed(start time.Time, subtype string) models.Activity {
	return models.Activity{Category: models.CategoryFeeding, Subtype: subtype, StartedAt: start}
}

func sleepFor(start time.Time, minutes float64) models.Activity {
	return models.Activity{Category: models.CategorySleep, StartedAt: start, DurationMinutes: ptr(minutes)}
}

func nappy(start time.Time, subtype string) models.Activity {
	return models.Activity{Category: models.CategoryNappy, Subtype: subtype, StartedAt: start}
}

func tummy(start time.Time, minutes float64) models.Activity {
	return models.Activity{Category: models.CategoryTummyTime, StartedAt: start, DurationMinutes: ptr(minutes)}
}
