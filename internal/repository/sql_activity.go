package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cradlehq/backend/internal/database"
	"github.com/cradlehq/backend/internal/models"
)

const activityColumns = "id, child_id, category, subtype, started_at, ended_at, duration_minutes, amount_ml, notes, created_at"

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

type sqlActivityRepository struct {
	db *database.DB
}

// NewSQLActivityRepository creates an activity repository on a SQL store
func NewSQLActivityRepository(db *database.DB) ActivityRepository {
	return &sqlActivityRepository{db: db}
}

func (r *sqlActivityRepository) Create(ctx context.Context, activity *models.Activity) (*models.Activity, error) {
	if activity.ID == "" {
		return nil, fmt.Errorf("failed to create activity: id is required")
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO activities ("+activityColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		activity.ID,
		activity.ChildID,
		string(activity.Category),
		activity.Subtype,
		database.Timestamp(activity.StartedAt),
		database.NullTimestamp(activity.EndedAt),
		nullFloat(activity.DurationMinutes),
		nullFloat(activity.AmountML),
		nullString(activity.Notes),
		database.Timestamp(time.Now()),
	)
	if err != nil {
		if r.db.IsUniqueViolation(err) {
			return nil, fmt.Errorf("failed to create activity: %w", ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to create activity: %w", err)
	}

	return r.GetByID(ctx, activity.ID)
}

func (r *sqlActivityRepository) GetByID(ctx context.Context, id string) (*models.Activity, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+activityColumns+" FROM activities WHERE id = ?", id)
	activity, err := scanActivity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}
	return activity, nil
}

func (r *sqlActivityRepository) ListByChildAndRange(ctx context.Context, childID string, category models.Category, start, end time.Time) ([]models.Activity, error) {
	query := "SELECT " + activityColumns + " FROM activities WHERE child_id = ? AND started_at >= ? AND started_at <= ?"
	args := []interface{}{childID, database.Timestamp(start), database.Timestamp(end)}
	if category != "" {
		query += " AND category = ?"
		args = append(args, string(category))
	}
	query += " ORDER BY started_at ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	defer rows.Close()

	activities := make([]models.Activity, 0)
	for rows.Next() {
		activity, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		activities = append(activities, *activity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	return activities, nil
}

func (r *sqlActivityRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM activities WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete activity: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanActivity(row rowScanner) (*models.Activity, error) {
	var (
		a         models.Activity
		category  string
		endedAt   sql.NullTime
		duration  sql.NullFloat64
		amount    sql.NullFloat64
		notes     sql.NullString
		startedAt time.Time
		createdAt time.Time
	)
	if err := row.Scan(&a.ID, &a.ChildID, &category, &a.Subtype, &startedAt, &endedAt, &duration, &amount, &notes, &createdAt); err != nil {
		return nil, err
	}

	a.Category = models.Category(category)
	a.StartedAt = startedAt.UTC()
	a.CreatedAt = createdAt.UTC()
	if endedAt.Valid {
		t := endedAt.Time.UTC()
		a.EndedAt = &t
	}
	if duration.Valid {
		a.DurationMinutes = &duration.Float64
	}
	if amount.Valid {
		a.AmountML = &amount.Float64
	}
	if notes.Valid {
		a.Notes = &notes.String
	}
	return &a, nil
}

func nullFloat(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullString(v *string) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
