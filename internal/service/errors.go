package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/cradlehq/backend/internal/models"
	"github.com/cradlehq/backend/internal/repository"
)

var (
	// ErrChildNotFound covers both a missing child and one owned by someone else
	ErrChildNotFound = errors.New("child not found")
	// ErrActivityNotFound is returned when the activity does not exist for the child
	ErrActivityNotFound = errors.New("activity not found")
	// ErrChecklistItemNotFound is returned when the item does not exist for the child
	ErrChecklistItemNotFound = errors.New("checklist item not found")
	// ErrInvalidActivity is returned for cross-field problems the binding tags cannot express
	ErrInvalidActivity = errors.New("invalid activity")
	// ErrInvalidView is returned for an unknown checklist view
	ErrInvalidView = errors.New("invalid checklist view")
)

// ownedChild loads a child and checks it belongs to userID
func ownedChild(ctx context.Context, children repository.ChildRepository, userID, childID string) (*models.Child, error) {
	child, err := children.GetByID(ctx, childID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrChildNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get child: %w", err)
	}

	// Same answer as a missing child so ids of other families stay hidden
	if child.UserID != userID {
		return nil, ErrChildNotFound
	}
	return child, nil
}
