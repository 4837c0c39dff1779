package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cradlehq/backend/internal/models"
	"github.com/cradlehq/backend/pkg/supabase"
)

type childRepository struct {
	client *supabase.Client
}

// NewChildRepository creates a new child repository
func NewChildRepository(client *supabase.Client) ChildRepository {
	return &childRepository{client: client}
}

func (r *childRepository) GetByID(ctx context.Context, id string) (*models.Child, error) {
	query := map[string]interface{}{
		"id":     fmt.Sprintf("eq.%s", id),
		"select": "id,user_id,name,date_of_birth,jurisdiction,created_at",
	}

	body, err := r.client.Query(ctx, "children", query)
	if err != nil {
		return nil, fmt.Errorf("failed to get child: %w", err)
	}

	var children []models.Child
	if err := json.Unmarshal(body, &children); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(children) == 0 {
		return nil, ErrNotFound
	}

	return &children[0], nil
}
