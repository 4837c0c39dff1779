package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cradlehq/backend/internal/models"
	"github.com/cradlehq/backend/pkg/supabase"
)

type insightRepository struct {
	client *supabase.Client
}

// NewInsightRepository creates a new insight snapshot repository
func NewInsightRepository(client *supabase.Client) InsightRepository {
	return &insightRepository{client: client}
}

func (r *insightRepository) GetValid(ctx context.Context, childID string, windowDays int, now time.Time) (*models.InsightSnapshot, error) {
	query := map[string]interface{}{
		"child_id":    fmt.Sprintf("eq.%s", childID),
		"window_days": fmt.Sprintf("eq.%d", windowDays),
		"valid_until": fmt.Sprintf("gt.%s", now.UTC().Format(time.RFC3339)),
		"select":      "*",
		"order":       "computed_at.desc",
		"limit":       1,
	}

	body, err := r.client.Query(ctx, "insight_snapshots", query)
	if err != nil {
		return nil, fmt.Errorf("failed to get insight snapshot: %w", err)
	}

	var snapshots []models.InsightSnapshot
	if err := json.Unmarshal(body, &snapshots); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(snapshots) == 0 {
		return nil, nil // No valid cache - this is not an error
	}

	return &snapshots[0], nil
}

func (r *insightRepository) Save(ctx context.Context, snapshot *models.InsightSnapshot) error {
	data := map[string]interface{}{
		"id":              snapshot.ID,
		"child_id":        snapshot.ChildID,
		"window_days":     snapshot.WindowDays,
		"insights":        snapshot.Insights,
		"alerts":          snapshot.Alerts,
		"data_sufficient": snapshot.DataSufficient,
		"computed_at":     snapshot.ComputedAt,
		"valid_until":     snapshot.ValidUntil,
	}

	if _, err := r.client.Insert(ctx, "insight_snapshots", data); err != nil {
		return fmt.Errorf("failed to save insight snapshot: %w", err)
	}
	return nil
}

func (r *insightRepository) InvalidateByChild(ctx context.Context, childID string) error {
	query := map[string]interface{}{
		"child_id": fmt.Sprintf("eq.%s", childID),
	}

	if err := r.client.DeleteWhere(ctx, "insight_snapshots", query); err != nil {
		return fmt.Errorf("failed to invalidate insight snapshots: %w", err)
	}
	return nil
}
