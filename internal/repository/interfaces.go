package repository

import (
	"context"
	"errors"
	"time"

	"github.com/cradlehq/backend/internal/models"
)

var (
	// ErrNotFound is returned when a row does not exist
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when an insert collides with an existing id
	ErrDuplicate = errors.New("duplicate")
)

// ActivityRepository defines the interface for activity log access
type ActivityRepository interface {
	Create(ctx context.Context, activity *models.Activity) (*models.Activity, error)
	GetByID(ctx context.Context, id string) (*models.Activity, error)
	// ListByChildAndRange returns activities with start <= started_at <= end,
	// ordered by started_at ascending. An empty category means every category.
	ListByChildAndRange(ctx context.Context, childID string, category models.Category, start, end time.Time) ([]models.Activity, error)
	Delete(ctx context.Context, id string) error
}

// ChildRepository defines the interface for child profile access
type ChildRepository interface {
	GetByID(ctx context.Context, id string) (*models.Child, error)
}

// ChecklistRepository defines the interface for checklist item access
type ChecklistRepository interface {
	ListIDs(ctx context.Context, childID string) (map[string]struct{}, error)
	// InsertMany inserts all items or none. An id collision yields ErrDuplicate.
	InsertMany(ctx context.Context, items []models.ChecklistItem) error
	ListByChild(ctx context.Context, childID string) ([]models.ChecklistItem, error)
	GetByID(ctx context.Context, id string) (*models.ChecklistItem, error)
	SetCompletion(ctx context.Context, id string, update models.ChecklistCompletion) (*models.ChecklistItem, error)
}

// DailyAnalyticsRepository caches daily rollups
type DailyAnalyticsRepository interface {
	BulkUpsert(ctx context.Context, days []models.DailyAnalytics) error
}

// InsightRepository caches generated insights per child and window
type InsightRepository interface {
	// GetValid returns the newest snapshot still valid at now, or nil
	GetValid(ctx context.Context, childID string, windowDays int, now time.Time) (*models.InsightSnapshot, error)
	Save(ctx context.Context, snapshot *models.InsightSnapshot) error
	InvalidateByChild(ctx context.Context, childID string) error
}

// IdempotencyRepository defines the interface for idempotency key operations
type IdempotencyRepository interface {
	// Get retrieves an existing idempotency record if it exists
	Get(ctx context.Context, key, route, userID string) (*models.IdempotencyKey, error)

	// Store saves a new idempotency record
	Store(ctx context.Context, key, route, userID string, responseBody []byte, statusCode int) error
}
