package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cradlehq/backend/internal/dates"
	"github.com/cradlehq/backend/internal/models"
	"github.com/cradlehq/backend/pkg/supabase"
)

// checklistRow is a checklist_items row. due_date is a date column.
type checklistRow struct {
	ID          string                   `json:"id"`
	ChildID     string                   `json:"child_id"`
	ReferenceID string                   `json:"reference_id"`
	Title       string                   `json:"title"`
	Description string                   `json:"description"`
	DueDate     models.Date              `json:"due_date"`
	Category    models.ChecklistCategory `json:"category"`
	Priority    models.Priority          `json:"priority"`
	Completed   bool                     `json:"completed"`
	CompletedAt *time.Time               `json:"completed_at"`
	Notes       *string                  `json:"notes"`
	Metadata    map[string]interface{}   `json:"metadata"`
	CreatedAt   time.Time                `json:"created_at"`
}

func (row checklistRow) toModel() models.ChecklistItem {
	metadata := row.Metadata
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	return models.ChecklistItem{
		ID:          row.ID,
		ChildID:     row.ChildID,
		ReferenceID: row.ReferenceID,
		Title:       row.Title,
		Description: row.Description,
		DueDate:     row.DueDate.Time,
		Category:    row.Category,
		Priority:    row.Priority,
		Completed:   row.Completed,
		CompletedAt: row.CompletedAt,
		Notes:       row.Notes,
		Metadata:    metadata,
		CreatedAt:   row.CreatedAt,
	}
}

type checklistRepository struct {
	client *supabase.Client
}

// NewChecklistRepository creates a new checklist repository
func NewChecklistRepository(client *supabase.Client) ChecklistRepository {
	return &checklistRepository{client: client}
}

func (r *checklistRepository) ListIDs(ctx context.Context, childID string) (map[string]struct{}, error) {
	query := map[string]interface{}{
		"child_id": fmt.Sprintf("eq.%s", childID),
		"select":   "id",
	}

	body, err := r.client.Query(ctx, "checklist_items", query)
	if err != nil {
		return nil, fmt.Errorf("failed to list checklist ids: %w", err)
	}

	var rows []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	ids := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		ids[row.ID] = struct{}{}
	}
	return ids, nil
}

func (r *checklistRepository) InsertMany(ctx context.Context, items []models.ChecklistItem) error {
	if len(items) == 0 {
		return nil
	}

	// PostgREST requires all objects to have the same keys for bulk insert
	data := make([]map[string]interface{}, len(items))
	for i, item := range items {
		metadata := item.Metadata
		if metadata == nil {
			metadata = map[string]interface{}{}
		}
		data[i] = map[string]interface{}{
			"id":           item.ID,
			"child_id":     item.ChildID,
			"reference_id": item.ReferenceID,
			"title":        item.Title,
			"description":  item.Description,
			"due_date":     dates.DayKey(item.DueDate),
			"category":     item.Category,
			"priority":     item.Priority,
			"completed":    item.Completed,
			"completed_at": item.CompletedAt,
			"notes":        item.Notes,
			"metadata":     metadata,
		}
	}

	if _, err := r.client.Insert(ctx, "checklist_items", data); err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("failed to insert checklist items: %w", ErrDuplicate)
		}
		return fmt.Errorf("failed to insert checklist items: %w", err)
	}
	return nil
}

func (r *checklistRepository) ListByChild(ctx context.Context, childID string) ([]models.ChecklistItem, error) {
	query := map[string]interface{}{
		"child_id": fmt.Sprintf("eq.%s", childID),
		"select":   "*",
		"order":    "due_date.asc,id.asc",
	}

	body, err := r.client.Query(ctx, "checklist_items", query)
	if err != nil {
		return nil, fmt.Errorf("failed to list checklist items: %w", err)
	}

	return decodeChecklistRows(body)
}

func (r *checklistRepository) GetByID(ctx context.Context, id string) (*models.ChecklistItem, error) {
	query := map[string]interface{}{
		"id":     fmt.Sprintf("eq.%s", id),
		"select": "*",
	}

	body, err := r.client.Query(ctx, "checklist_items", query)
	if err != nil {
		return nil, fmt.Errorf("failed to get checklist item: %w", err)
	}

	items, err := decodeChecklistRows(body)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNotFound
	}
	return &items[0], nil
}

func (r *checklistRepository) SetCompletion(ctx context.Context, id string, update models.ChecklistCompletion) (*models.ChecklistItem, error) {
	data := map[string]interface{}{
		"completed":    update.Completed,
		"completed_at": update.CompletedAt,
	}
	if update.SetNotes {
		data["notes"] = update.Notes
	}

	body, err := r.client.Update(ctx, "checklist_items", id, data)
	if err != nil {
		return nil, fmt.Errorf("failed to update checklist item: %w", err)
	}

	items, err := decodeChecklistRows(body)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNotFound
	}
	return &items[0], nil
}

func decodeChecklistRows(body []byte) ([]models.ChecklistItem, error) {
	var rows []checklistRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	items := make([]models.ChecklistItem, len(rows))
	for i, row := range rows {
		items[i] = row.toModel()
	}
	return items, nil
}
