package repository

import (
	"context"
	"fmt"

	"github.com/cradlehq/backend/internal/models"
	"github.com/cradlehq/backend/pkg/supabase"
)

type dailyAnalyticsRepository struct {
	client *supabase.Client
}

// NewDailyAnalyticsRepository creates a new daily analytics cache repository
func NewDailyAnalyticsRepository(client *supabase.Client) DailyAnalyticsRepository {
	return &dailyAnalyticsRepository{client: client}
}

func (r *dailyAnalyticsRepository) BulkUpsert(ctx context.Context, days []models.DailyAnalytics) error {
	if len(days) == 0 {
		return nil
	}

	data := make([]map[string]interface{}, len(days))
	for i, day := range days {
		data[i] = dailyAnalyticsColumns(day)
	}

	if _, err := r.client.Upsert(ctx, "daily_analytics", data, "child_id,date"); err != nil {
		return fmt.Errorf("failed to bulk upsert daily analytics: %w", err)
	}
	return nil
}

// dailyAnalyticsColumns flattens a rollup into daily_analytics columns
func dailyAnalyticsColumns(day models.DailyAnalytics) map[string]interface{} {
	return map[string]interface{}{
		"child_id":                 day.ChildID,
		"date":                     day.Date,
		"feeding_count":            day.Feeding.Count,
		"feeding_duration_minutes": day.Feeding.DurationMinutes,
		"feeding_amount_ml":        day.Feeding.AmountML,
		"sleep_count":              day.Sleep.Count,
		"sleep_duration_minutes":   day.Sleep.DurationMinutes,
		"nappy_count":              day.Nappy.Count,
		"nappy_wet":                day.Nappy.Wet,
		"nappy_dirty":              day.Nappy.Dirty,
		"nappy_mixed":              day.Nappy.Mixed,
		"tummy_time_minutes":       day.TummyTimeMinutes,
	}
}
