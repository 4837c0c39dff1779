package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cradlehq/backend/internal/database"
	"github.com/cradlehq/backend/internal/models"
)

type sqlDailyAnalyticsRepository struct {
	db *database.DB
}

// NewSQLDailyAnalyticsRepository creates a daily analytics cache on a SQL store
func NewSQLDailyAnalyticsRepository(db *database.DB) DailyAnalyticsRepository {
	return &sqlDailyAnalyticsRepository{db: db}
}

func (r *sqlDailyAnalyticsRepository) BulkUpsert(ctx context.Context, days []models.DailyAnalytics) error {
	if len(days) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := database.Timestamp(time.Now())
	for _, day := range days {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO daily_analytics (
				child_id, date,
				feeding_count, feeding_duration_minutes, feeding_amount_ml,
				sleep_count, sleep_duration_minutes,
				nappy_count, nappy_wet, nappy_dirty, nappy_mixed,
				tummy_time_minutes, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (child_id, date) DO UPDATE SET
				feeding_count = excluded.feeding_count,
				feeding_duration_minutes = excluded.feeding_duration_minutes,
				feeding_amount_ml = excluded.feeding_amount_ml,
				sleep_count = excluded.sleep_count,
				sleep_duration_minutes = excluded.sleep_duration_minutes,
				nappy_count = excluded.nappy_count,
				nappy_wet = excluded.nappy_wet,
				nappy_dirty = excluded.nappy_dirty,
				nappy_mixed = excluded.nappy_mixed,
				tummy_time_minutes = excluded.tummy_time_minutes,
				updated_at = excluded.updated_at`,
			day.ChildID, day.Date,
			day.Feeding.Count, day.Feeding.DurationMinutes, day.Feeding.AmountML,
			day.Sleep.Count, day.Sleep.DurationMinutes,
			day.Nappy.Count, day.Nappy.Wet, day.Nappy.Dirty, day.Nappy.Mixed,
			day.TummyTimeMinutes, now,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert daily analytics %s: %w", day.Date, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit daily analytics: %w", err)
	}
	return nil
}

type sqlInsightRepository struct {
	db *database.DB
}

// NewSQLInsightRepository creates an insight snapshot cache on a SQL store
func NewSQLInsightRepository(db *database.DB) InsightRepository {
	return &sqlInsightRepository{db: db}
}

func (r *sqlInsightRepository) GetValid(ctx context.Context, childID string, windowDays int, now time.Time) (*models.InsightSnapshot, error) {
	var (
		snapshot   models.InsightSnapshot
		insights   []byte
		alerts     []byte
		computedAt time.Time
		validUntil time.Time
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, child_id, window_days, insights, alerts, data_sufficient, computed_at, valid_until
		FROM insight_snapshots
		WHERE child_id = ? AND window_days = ? AND valid_until > ?
		ORDER BY computed_at DESC
		LIMIT 1`,
		childID, windowDays, database.Timestamp(now),
	).Scan(&snapshot.ID, &snapshot.ChildID, &snapshot.WindowDays, &insights, &alerts,
		&snapshot.DataSufficient, &computedAt, &validUntil)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // No valid cache - this is not an error
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get insight snapshot: %w", err)
	}

	if err := json.Unmarshal(insights, &snapshot.Insights); err != nil {
		return nil, fmt.Errorf("failed to unmarshal insights: %w", err)
	}
	if err := json.Unmarshal(alerts, &snapshot.Alerts); err != nil {
		return nil, fmt.Errorf("failed to unmarshal alerts: %w", err)
	}
	snapshot.ComputedAt = computedAt.UTC()
	snapshot.ValidUntil = validUntil.UTC()
	return &snapshot, nil
}

func (r *sqlInsightRepository) Save(ctx context.Context, snapshot *models.InsightSnapshot) error {
	insights, err := json.Marshal(snapshot.Insights)
	if err != nil {
		return fmt.Errorf("failed to marshal insights: %w", err)
	}
	alerts, err := json.Marshal(snapshot.Alerts)
	if err != nil {
		return fmt.Errorf("failed to marshal alerts: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO insight_snapshots (id, child_id, window_days, insights, alerts, data_sufficient, computed_at, valid_until)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		snapshot.ID, snapshot.ChildID, snapshot.WindowDays, string(insights), string(alerts),
		snapshot.DataSufficient, database.Timestamp(snapshot.ComputedAt), database.Timestamp(snapshot.ValidUntil),
	)
	if err != nil {
		return fmt.Errorf("failed to save insight snapshot: %w", err)
	}
	return nil
}

func (r *sqlInsightRepository) InvalidateByChild(ctx context.Context, childID string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM insight_snapshots WHERE child_id = ?", childID); err != nil {
		return fmt.Errorf("failed to invalidate insight snapshots: %w", err)
	}
	return nil
}

type sqlIdempotencyRepository struct {
	db *database.DB
}

// NewSQLIdempotencyRepository creates an idempotency key store on a SQL store
func NewSQLIdempotencyRepository(db *database.DB) IdempotencyRepository {
	return &sqlIdempotencyRepository{db: db}
}

func (r *sqlIdempotencyRepository) Get(ctx context.Context, key, route, userID string) (*models.IdempotencyKey, error) {
	var (
		record    models.IdempotencyKey
		id        int64
		body      []byte
		createdAt time.Time
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, key, route, user_id, response_body, status_code, created_at
		FROM idempotency_keys
		WHERE key = ? AND route = ? AND user_id = ?`,
		key, route, userID,
	).Scan(&id, &record.Key, &record.Route, &record.UserID, &body, &record.StatusCode, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Not found - this is not an error
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query idempotency key: %w", err)
	}

	record.ID = fmt.Sprintf("%d", id)
	record.ResponseBody = json.RawMessage(body)
	record.CreatedAt = createdAt.UTC()
	return &record, nil
}

func (r *sqlIdempotencyRepository) Store(ctx context.Context, key, route, userID string, responseBody []byte, statusCode int) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO idempotency_keys (key, route, user_id, response_body, status_code, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		key, route, userID, string(responseBody), statusCode, database.Timestamp(time.Now()),
	)
	if err != nil {
		// A concurrent request with the same key already stored its response
		if r.db.IsUniqueViolation(err) {
			return nil
		}
		return fmt.Errorf("failed to store idempotency key: %w", err)
	}
	return nil
}
