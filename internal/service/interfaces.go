package service

import (
	"context"
	"time"

	"github.com/cradlehq/backend/internal/models"
)

// ActivityService defines the interface for activity log business logic
type ActivityService interface {
	CreateActivity(ctx context.Context, userID, childID string, req *models.CreateActivityRequest) (*models.Activity, error)
	ListActivities(ctx context.Context, userID, childID string, category models.Category, start, end time.Time) ([]models.Activity, error)
	DeleteActivity(ctx context.Context, userID, childID, activityID string) error
}

// AnalyticsService defines the interface for analytics and insight business logic.
// days is clamped to [MinWindowDays, MaxWindowDays]; zero means the configured default.
type AnalyticsService interface {
	GetDailyAnalytics(ctx context.Context, userID, childID string, days int) ([]models.DailyAnalytics, error)
	GetPatterns(ctx context.Context, userID, childID string, days int) (*models.PatternsResponse, error)
	GetTrends(ctx context.Context, userID, childID string, days int) ([]models.TrendResult, error)
	GetWeeklySummary(ctx context.Context, userID, childID string) ([]models.WeeklySummary, error)
	GetInsights(ctx context.Context, userID, childID string, days int) (*models.InsightsResponse, error)
}

// ChecklistService defines the interface for the personalised checklist
type ChecklistService interface {
	Generate(ctx context.Context, userID, childID string) (*models.GenerateChecklistResult, error)
	GetChecklist(ctx context.Context, userID, childID string, view models.ChecklistView, days int) (*models.ChecklistResponse, error)
	SetCompleted(ctx context.Context, userID, childID, itemID string, req *models.UpdateChecklistItemRequest) (*models.ChecklistItem, error)
}

// ReminderSink receives newly created checklist items. Schedule must be
// safe to call again for the same item.
type ReminderSink interface {
	Name() string
	Schedule(ctx context.Context, reminder models.Reminder) error
}
