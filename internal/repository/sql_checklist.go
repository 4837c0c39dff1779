package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cradlehq/backend/internal/database"
	"github.com/cradlehq/backend/internal/dates"
	"github.com/cradlehq/backend/internal/models"
)

const checklistColumns = "id, child_id, reference_id, title, description, due_date, category, priority, completed, completed_at, notes, metadata, created_at"

type sqlChecklistRepository struct {
	db *database.DB
}

// NewSQLChecklistRepository creates a checklist repository on a SQL store
func NewSQLChecklistRepository(db *database.DB) ChecklistRepository {
	return &sqlChecklistRepository{db: db}
}

func (r *sqlChecklistRepository) ListIDs(ctx context.Context, childID string) (map[string]struct{}, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id FROM checklist_items WHERE child_id = ?", childID)
	if err != nil {
		return nil, fmt.Errorf("failed to list checklist ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan checklist id: %w", err)
		}
		ids[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list checklist ids: %w", err)
	}
	return ids, nil
}

func (r *sqlChecklistRepository) InsertMany(ctx context.Context, items []models.ChecklistItem) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := database.Timestamp(time.Now())
	for _, item := range items {
		metadata := item.Metadata
		if metadata == nil {
			metadata = map[string]interface{}{}
		}
		meta, err := json.Marshal(metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			"INSERT INTO checklist_items ("+checklistColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
			item.ID,
			item.ChildID,
			item.ReferenceID,
			item.Title,
			item.Description,
			dates.DayKey(item.DueDate),
			string(item.Category),
			string(item.Priority),
			item.Completed,
			database.NullTimestamp(item.CompletedAt),
			nullString(item.Notes),
			string(meta),
			now,
		)
		if err != nil {
			if r.db.IsUniqueViolation(err) {
				return fmt.Errorf("failed to insert checklist item %s: %w", item.ID, ErrDuplicate)
			}
			return fmt.Errorf("failed to insert checklist item %s: %w", item.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit checklist items: %w", err)
	}
	return nil
}

func (r *sqlChecklistRepository) ListByChild(ctx context.Context, childID string) ([]models.ChecklistItem, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+checklistColumns+" FROM checklist_items WHERE child_id = ? ORDER BY due_date ASC, id ASC", childID)
	if err != nil {
		return nil, fmt.Errorf("failed to list checklist items: %w", err)
	}
	defer rows.Close()

	items := make([]models.ChecklistItem, 0)
	for rows.Next() {
		item, err := scanChecklistItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan checklist item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list checklist items: %w", err)
	}
	return items, nil
}

func (r *sqlChecklistRepository) GetByID(ctx context.Context, id string) (*models.ChecklistItem, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+checklistColumns+" FROM checklist_items WHERE id = ?", id)
	item, err := scanChecklistItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get checklist item: %w", err)
	}
	return item, nil
}

func (r *sqlChecklistRepository) SetCompletion(ctx context.Context, id string, update models.ChecklistCompletion) (*models.ChecklistItem, error) {
	query := "UPDATE checklist_items SET completed = ?, completed_at = ?"
	args := []interface{}{update.Completed, database.NullTimestamp(update.CompletedAt)}
	if update.SetNotes {
		query += ", notes = ?"
		args = append(args, nullString(update.Notes))
	}
	query += " WHERE id = ?"
	args = append(args, id)

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update checklist item: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrNotFound
	}

	return r.GetByID(ctx, id)
}

func scanChecklistItem(row rowScanner) (*models.ChecklistItem, error) {
	var (
		item        models.ChecklistItem
		dueDate     string
		category    string
		priority    string
		completedAt sql.NullTime
		notes       sql.NullString
		metadata    []byte
		createdAt   time.Time
	)
	err := row.Scan(&item.ID, &item.ChildID, &item.ReferenceID, &item.Title, &item.Description,
		&dueDate, &category, &priority, &item.Completed, &completedAt, &notes, &metadata, &createdAt)
	if err != nil {
		return nil, err
	}

	due, err := dates.ParseDay(dueDate, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("failed to parse due_date: %w", err)
	}
	item.DueDate = due
	item.Category = models.ChecklistCategory(category)
	item.Priority = models.Priority(priority)
	item.CreatedAt = createdAt.UTC()
	if completedAt.Valid {
		t := completedAt.Time.UTC()
		item.CompletedAt = &t
	}
	if notes.Valid {
		item.Notes = &notes.String
	}

	item.Metadata = map[string]interface{}{}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &item.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}
	return &item, nil
}
