package models

import (
	"strings"
	"time"
)

// Category is the kind of care activity that was logged
type Category string

const (
	CategoryFeeding   Category = "feeding"
	CategorySleep     Category = "sleep"
	CategoryNappy     Category = "nappy"
	CategoryTummyTime Category = "tummy_time"
)

// Categories lists every category the analytics pipeline understands
var Categories = []Category{CategoryFeeding, CategorySleep, CategoryNappy, CategoryTummyTime}

// Valid reports whether c is a known category
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Subtypes recognised by the aggregator and pattern analyzer. Anything else
// is stored as-is and only counts toward category totals.
const (
	SubtypeBreast = "breast"
	SubtypeBottle = "bottle"
	SubtypeSolids = "solids"

	SubtypeWet   = "wet"
	SubtypeDirty = "dirty"
	SubtypeMixed = "mixed"
	SubtypeBoth  = "both" // legacy alias of mixed
)

// Activity is one logged care event. Activities are immutable once written.
type Activity struct {
	ID              string     `json:"id"`
	ChildID         string     `json:"child_id"`
	Category        Category   `json:"category"`
	Subtype         string     `json:"subtype,omitempty"`
	StartedAt       time.Time  `json:"started_at"`
	EndedAt         *time.Time `json:"ended_at,omitempty"`
	DurationMinutes *float64   `json:"duration_minutes,omitempty"`
	AmountML        *float64   `json:"amount_ml,omitempty"`
	Notes           *string    `json:"notes,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// Duration returns the effective duration in minutes: the explicit
// duration when recorded, otherwise ended_at - started_at.
func (a Activity) Duration() (float64, bool) {
	if a.DurationMinutes != nil {
		return *a.DurationMinutes, true
	}
	if a.EndedAt != nil && !a.EndedAt.Before(a.StartedAt) {
		return a.EndedAt.Sub(a.StartedAt).Minutes(), true
	}
	return 0, false
}

// EndTime returns when the activity finished, if it can be known
func (a Activity) EndTime() (time.Time, bool) {
	if a.EndedAt != nil && !a.EndedAt.Before(a.StartedAt) {
		return *a.EndedAt, true
	}
	if a.DurationMinutes != nil {
		return a.StartedAt.Add(time.Duration(*a.DurationMinutes * float64(time.Minute))), true
	}
	return time.Time{}, false
}

// IsBreastFeed matches "breast" as well as side-specific subtypes such as "breast_left"
func (a Activity) IsBreastFeed() bool {
	return a.Subtype == SubtypeBreast || strings.HasPrefix(a.Subtype, SubtypeBreast+"_")
}

// IsBottleFeed reports whether the feed was a bottle feed
func (a Activity) IsBottleFeed() bool {
	return a.Subtype == SubtypeBottle || strings.HasPrefix(a.Subtype, SubtypeBottle+"_")
}

// IsWet reports whether a nappy change counts as wet (mixed counts as both)
func (a Activity) IsWet() bool {
	return a.Subtype == SubtypeWet || a.Subtype == SubtypeMixed || a.Subtype == SubtypeBoth
}

// IsDirty reports whether a nappy change counts as dirty (mixed counts as both)
func (a Activity) IsDirty() bool {
	return a.Subtype == SubtypeDirty || a.Subtype == SubtypeMixed || a.Subtype == SubtypeBoth
}

// CreateActivityRequest is the body of POST /children/:child_id/activities.
// Field rules are enforced by gin's validator; cross-field rules live in the handler.
type CreateActivityRequest struct {
	ID              *string    `json:"id" binding:"omitempty,uuid"`
	Category        Category   `json:"category" binding:"required,oneof=feeding sleep nappy tummy_time"`
	Subtype         string     `json:"subtype" binding:"max=32"`
	StartedAt       time.Time  `json:"started_at" binding:"required"`
	EndedAt         *time.Time `json:"ended_at"`
	DurationMinutes *float64   `json:"duration_minutes" binding:"omitempty,gte=0,lte=1440"`
	AmountML        *float64   `json:"amount_ml" binding:"omitempty,gte=0,lte=1000"`
	Notes           *string    `json:"notes" binding:"omitempty,max=2000"`
}
