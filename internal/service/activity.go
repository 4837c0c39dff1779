package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cradlehq/backend/internal/logger"
	"github.com/cradlehq/backend/internal/models"
	"github.com/cradlehq/backend/internal/repository"
)

// maxClockSkew is how far in the future a started_at may be
const maxClockSkew = 5 * time.Minute

type activityService struct {
	activityRepo repository.ActivityRepository
	childRepo    repository.ChildRepository
	insightRepo  repository.InsightRepository
	now          func() time.Time
}

// NewActivityService creates a new activity service. insightRepo may be nil
// when the insight cache is not used.
func NewActivityService(activityRepo repository.ActivityRepository, childRepo repository.ChildRepository, insightRepo repository.InsightRepository) ActivityService {
	return &activityService{
		activityRepo: activityRepo,
		childRepo:    childRepo,
		insightRepo:  insightRepo,
		now:          time.Now,
	}
}

func (s *activityService) CreateActivity(ctx context.Context, userID, childID string, req *models.CreateActivityRequest) (*models.Activity, error) {
	if _, err := ownedChild(ctx, s.childRepo, userID, childID); err != nil {
		return nil, err
	}

	if req.EndedAt != nil && req.EndedAt.Before(req.StartedAt) {
		return nil, fmt.Errorf("%w: ended_at is before started_at", ErrInvalidActivity)
	}
	if req.StartedAt.After(s.now().Add(maxClockSkew)) {
		return nil, fmt.Errorf("%w: started_at is in the future", ErrInvalidActivity)
	}

	id, err := resolveActivityID(req.ID, s.now())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidActivity, err)
	}

	activity := &models.Activity{
		ID:              id,
		ChildID:         childID,
		Category:        req.Category,
		Subtype:         req.Subtype,
		StartedAt:       req.StartedAt.UTC(),
		DurationMinutes: req.DurationMinutes,
		AmountML:        req.AmountML,
		Notes:           req.Notes,
	}
	if req.EndedAt != nil {
		ended := req.EndedAt.UTC()
		activity.EndedAt = &ended
	}

	created, err := s.activityRepo.Create(ctx, activity)
	if err != nil {
		return nil, err
	}

	s.invalidateInsights(ctx, childID)
	return created, nil
}

func (s *activityService) ListActivities(ctx context.Context, userID, childID string, category models.Category, start, end time.Time) ([]models.Activity, error) {
	if _, err := ownedChild(ctx, s.childRepo, userID, childID); err != nil {
		return nil, err
	}
	if category != "" && !category.Valid() {
		return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidActivity, category)
	}

	activities, err := s.activityRepo.ListByChildAndRange(ctx, childID, category, start, end)
	if err != nil {
		return nil, err
	}
	if activities == nil {
		activities = []models.Activity{}
	}
	return activities, nil
}

func (s *activityService) DeleteActivity(ctx context.Context, userID, childID, activityID string) error {
	if _, err := ownedChild(ctx, s.childRepo, userID, childID); err != nil {
		return err
	}

	activity, err := s.activityRepo.GetByID(ctx, activityID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrActivityNotFound
	}
	if err != nil {
		return err
	}
	if activity.ChildID != childID {
		return ErrActivityNotFound
	}

	if err := s.activityRepo.Delete(ctx, activityID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrActivityNotFound
		}
		return err
	}

	s.invalidateInsights(ctx, childID)
	return nil
}

// invalidateInsights drops cached insights after the log changed.
// A failure only delays freshness until the snapshot expires.
func (s *activityService) invalidateInsights(ctx context.Context, childID string) {
	if s.insightRepo == nil {
		return
	}
	if err := s.insightRepo.InvalidateByChild(ctx, childID); err != nil {
		logger.Ctx(ctx).Warn("failed to invalidate insight cache",
			logger.String("child_id", childID),
			logger.Err(err),
		)
	}
}
