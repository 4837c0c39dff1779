package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cradlehq/backend/internal/database"
	"github.com/cradlehq/backend/internal/dates"
	"github.com/cradlehq/backend/internal/models"
)

type sqlChildRepository struct {
	db *database.DB
}

// NewSQLChildRepository creates a child repository on a SQL store
func NewSQLChildRepository(db *database.DB) ChildRepository {
	return &sqlChildRepository{db: db}
}

func (r *sqlChildRepository) GetByID(ctx context.Context, id string) (*models.Child, error) {
	var (
		child        models.Child
		dob          string
		jurisdiction sql.NullString
		createdAt    time.Time
	)
	err := r.db.QueryRowContext(ctx,
		"SELECT id, user_id, name, date_of_birth, jurisdiction, created_at FROM children WHERE id = ?", id,
	).Scan(&child.ID, &child.UserID, &child.Name, &dob, &jurisdiction, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get child: %w", err)
	}

	birth, err := dates.ParseDay(dob, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("failed to parse date_of_birth: %w", err)
	}
	child.DateOfBirth = models.Date{Time: birth}
	child.CreatedAt = createdAt.UTC()
	if jurisdiction.Valid {
		child.Jurisdiction = &jurisdiction.String
	}
	return &child, nil
}
