package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cradlehq/backend/internal/models"
	"github.com/cradlehq/backend/pkg/supabase"
)

type activityRepository struct {
	client *supabase.Client
}

// NewActivityRepository creates a new activity repository
func NewActivityRepository(client *supabase.Client) ActivityRepository {
	return &activityRepository{client: client}
}

func (r *activityRepository) Create(ctx context.Context, activity *models.Activity) (*models.Activity, error) {
	data := map[string]interface{}{
		"child_id":   activity.ChildID,
		"category":   activity.Category,
		"subtype":    activity.Subtype,
		"started_at": activity.StartedAt,
	}

	// Use client-provided ID if present (for offline-first/UUIDv7 support)
	if activity.ID != "" {
		data["id"] = activity.ID
	}

	if activity.EndedAt != nil {
		data["ended_at"] = *activity.EndedAt
	}
	if activity.DurationMinutes != nil {
		data["duration_minutes"] = *activity.DurationMinutes
	}
	if activity.AmountML != nil {
		data["amount_ml"] = *activity.AmountML
	}
	if activity.Notes != nil {
		data["notes"] = *activity.Notes
	}

	body, err := r.client.Insert(ctx, "activities", data)
	if err != nil {
		if isDuplicate(err) {
			return nil, fmt.Errorf("failed to create activity: %w", ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to create activity: %w", err)
	}

	var activities []models.Activity
	if err := json.Unmarshal(body, &activities); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(activities) == 0 {
		return nil, fmt.Errorf("no activity returned")
	}

	return &activities[0], nil
}

func (r *activityRepository) GetByID(ctx context.Context, id string) (*models.Activity, error) {
	query := map[string]interface{}{
		"id":     fmt.Sprintf("eq.%s", id),
		"select": "*",
	}

	body, err := r.client.Query(ctx, "activities", query)
	if err != nil {
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}

	var activities []models.Activity
	if err := json.Unmarshal(body, &activities); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(activities) == 0 {
		return nil, ErrNotFound
	}

	return &activities[0], nil
}

func (r *activityRepository) ListByChildAndRange(ctx context.Context, childID string, category models.Category, start, end time.Time) ([]models.Activity, error) {
	query := map[string]interface{}{
		"child_id": fmt.Sprintf("eq.%s", childID),
		"select":   "*",
		"and":      fmt.Sprintf("(started_at.gte.%s,started_at.lte.%s)", start.UTC().Format(time.RFC3339), end.UTC().Format(time.RFC3339)),
		"order":    "started_at.asc",
	}
	if category != "" {
		query["category"] = fmt.Sprintf("eq.%s", category)
	}

	body, err := r.client.Query(ctx, "activities", query)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}

	var activities []models.Activity
	if err := json.Unmarshal(body, &activities); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return activities, nil
}

func (r *activityRepository) Delete(ctx context.Context, id string) error {
	if err := r.client.Delete(ctx, "activities", id); err != nil {
		return fmt.Errorf("failed to delete activity: %w", err)
	}
	return nil
}

// isDuplicate reports a PostgREST unique violation
func isDuplicate(err error) bool {
	var apiErr *supabase.APIError
	return errors.As(err, &apiErr) && apiErr.IsDuplicate()
}
