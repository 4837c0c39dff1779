package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cradlehq/backend/internal/logger"
	"github.com/cradlehq/backend/internal/models"
	"github.com/cradlehq/backend/internal/repository"
	"github.com/cradlehq/backend/internal/schedule"
	"github.com/sourcegraph/conc/pool"
)

// Checklist view defaults
const (
	DefaultUpcomingDays = 30
	MaxUpcomingDays     = 365

	reminderConcurrency = 8
)

// ChecklistConfig carries the knobs of the checklist service
type ChecklistConfig struct {
	Location            *time.Location
	DefaultJurisdiction string
	Tables              *schedule.Tables // nil means schedule.DefaultTables()
}

type checklistService struct {
	checklistRepo repository.ChecklistRepository
	childRepo     repository.ChildRepository
	sinks         []ReminderSink

	tables              schedule.Tables
	loc                 *time.Location
	defaultJurisdiction string
	now                 func() time.Time
}

// NewChecklistService creates a new checklist service. Newly materialised
// items are offered to every sink; sink failures never fail generation.
func NewChecklistService(checklistRepo repository.ChecklistRepository, childRepo repository.ChildRepository, sinks []ReminderSink, cfg ChecklistConfig) ChecklistService {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	tables := schedule.DefaultTables()
	if cfg.Tables != nil {
		tables = *cfg.Tables
	}

	return &checklistService{
		checklistRepo:       checklistRepo,
		childRepo:           childRepo,
		sinks:               sinks,
		tables:              tables,
		loc:                 loc,
		defaultJurisdiction: cfg.DefaultJurisdiction,
		now:                 time.Now,
	}
}

func (s *checklistService) Generate(ctx context.Context, userID, childID string) (*models.GenerateChecklistResult, error) {
	child, err := ownedChild(ctx, s.childRepo, userID, childID)
	if err != nil {
		return nil, err
	}
	return s.generate(ctx, userID, child)
}

func (s *checklistService) generate(ctx context.Context, userID string, child *models.Child) (*models.GenerateChecklistResult, error) {
	jurisdiction := s.defaultJurisdiction
	if child.Jurisdiction != nil && *child.Jurisdiction != "" {
		jurisdiction = *child.Jurisdiction
	}

	candidates := schedule.Generate(child.ID, child.DateOfBirth.In(s.loc), jurisdiction, s.tables)

	existing, err := s.checklistRepo.ListIDs(ctx, child.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list checklist ids: %w", err)
	}

	// Only the complement is written. Existing rows keep their due dates
	// even when the reference tables moved.
	fresh := make([]models.ChecklistItem, 0, len(candidates))
	for _, item := range candidates {
		if _, ok := existing[item.ID]; !ok {
			fresh = append(fresh, item)
		}
	}

	inserted, err := s.insert(ctx, fresh)
	if err != nil {
		return nil, err
	}

	result := &models.GenerateChecklistResult{
		ChildID:       child.ID,
		TableVersion:  s.tables.Version,
		Candidates:    len(candidates),
		Inserted:      len(inserted),
		AlreadyExists: len(candidates) - len(inserted),
	}
	result.RemindersSent, result.RemindersLost = s.scheduleReminders(ctx, userID, inserted)

	logger.Ctx(ctx).Info("checklist generated",
		logger.String("child_id", child.ID),
		logger.String("table_version", s.tables.Version),
		logger.Int("candidates", result.Candidates),
		logger.Int("inserted", result.Inserted),
	)
	return result, nil
}

// insert writes items in one batch. A concurrent generation may have
// inserted some of them first; then each item is retried alone and the
// ones already present are skipped.
func (s *checklistService) insert(ctx context.Context, items []models.ChecklistItem) ([]models.ChecklistItem, error) {
	if len(items) == 0 {
		return items, nil
	}

	err := s.checklistRepo.InsertMany(ctx, items)
	if err == nil {
		return items, nil
	}
	if !errors.Is(err, repository.ErrDuplicate) {
		return nil, fmt.Errorf("failed to insert checklist items: %w", err)
	}

	inserted := make([]models.ChecklistItem, 0, len(items))
	for _, item := range items {
		err := s.checklistRepo.InsertMany(ctx, []models.ChecklistItem{item})
		switch {
		case err == nil:
			inserted = append(inserted, item)
		case errors.Is(err, repository.ErrDuplicate):
			continue
		default:
			return nil, fmt.Errorf("failed to insert checklist item %s: %w", item.ID, err)
		}
	}
	return inserted, nil
}

// scheduleReminders offers every item to every sink and waits for all of
// them. Failures are logged and counted, never returned.
func (s *checklistService) scheduleReminders(ctx context.Context, userID string, items []models.ChecklistItem) (sent, failed int) {
	if len(s.sinks) == 0 || len(items) == 0 {
		return 0, 0
	}

	var ok, lost atomic.Int64
	p := pool.New().WithMaxGoroutines(reminderConcurrency).WithErrors()

	for _, item := range items {
		reminder := models.Reminder{
			ItemID:      item.ID,
			ChildID:     item.ChildID,
			UserID:      userID,
			Title:       item.Title,
			Description: item.Description,
			DueDate:     item.DueDate,
		}
		for _, sink := range s.sinks {
			p.Go(func() error {
				if err := sink.Schedule(ctx, reminder); err != nil {
					lost.Add(1)
					logger.Ctx(ctx).Warn("failed to schedule reminder",
						logger.String("sink", sink.Name()),
						logger.String("item_id", reminder.ItemID),
						logger.Err(err),
					)
					return fmt.Errorf("%s %s: %w", sink.Name(), reminder.ItemID, err)
				}
				ok.Add(1)
				return nil
			})
		}
	}

	if err := p.Wait(); err != nil {
		logger.Ctx(ctx).Warn("some reminders were not scheduled",
			logger.Int64("failed", lost.Load()),
			logger.Int64("scheduled", ok.Load()),
		)
	}
	return int(ok.Load()), int(lost.Load())
}

func (s *checklistService) GetChecklist(ctx context.Context, userID, childID string, view models.ChecklistView, days int) (*models.ChecklistResponse, error) {
	if view == "" {
		view = models.ChecklistViewAll
	}
	switch view {
	case models.ChecklistViewAll, models.ChecklistViewUpcoming, models.ChecklistViewOverdue:
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidView, view)
	}

	child, err := ownedChild(ctx, s.childRepo, userID, childID)
	if err != nil {
		return nil, err
	}

	items, err := s.checklistRepo.ListByChild(ctx, childID)
	if err != nil {
		return nil, fmt.Errorf("failed to list checklist: %w", err)
	}

	generated := false
	if len(items) == 0 {
		if _, err := s.generate(ctx, userID, child); err != nil {
			return nil, err
		}
		generated = true

		items, err = s.checklistRepo.ListByChild(ctx, childID)
		if err != nil {
			return nil, fmt.Errorf("failed to list checklist: %w", err)
		}
	}

	for i := range items {
		items[i].DueDate = s.anchor(items[i].DueDate)
	}
	schedule.SortByDueDate(items)

	now := s.now()
	selected := items
	switch view {
	case models.ChecklistViewUpcoming:
		if days <= 0 {
			days = DefaultUpcomingDays
		}
		if days > MaxUpcomingDays {
			days = MaxUpcomingDays
		}
		selected = schedule.Upcoming(items, now, days)
	case models.ChecklistViewOverdue:
		selected = schedule.Overdue(items, now)
	}
	if selected == nil {
		selected = []models.ChecklistItem{}
	}

	return &models.ChecklistResponse{
		ChildID:              childID,
		View:                 view,
		Items:                selected,
		Total:                len(items),
		CompletedCount:       schedule.CompletedCount(items),
		CompletionPercentage: schedule.CompletionPercentage(items),
		Generated:            generated,
	}, nil
}

func (s *checklistService) SetCompleted(ctx context.Context, userID, childID, itemID string, req *models.UpdateChecklistItemRequest) (*models.ChecklistItem, error) {
	if _, err := ownedChild(ctx, s.childRepo, userID, childID); err != nil {
		return nil, err
	}

	item, err := s.checklistRepo.GetByID(ctx, itemID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrChecklistItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get checklist item: %w", err)
	}
	if item.ChildID != childID {
		return nil, ErrChecklistItemNotFound
	}

	update := models.ChecklistCompletion{
		Completed: req.Completed != nil && *req.Completed,
		Notes:     req.Notes.ToPtr(),
		SetNotes:  req.Notes.Set,
	}
	if update.Completed {
		completedAt := s.now().UTC()
		if req.CompletedAt.Valid {
			completedAt = req.CompletedAt.Value.UTC()
		}
		update.CompletedAt = &completedAt
	}

	updated, err := s.checklistRepo.SetCompletion(ctx, itemID, update)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrChecklistItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update checklist item: %w", err)
	}

	updated.DueDate = s.anchor(updated.DueDate)
	return updated, nil
}

// anchor moves a stored calendar date to midnight in the service timezone
func (s *checklistService) anchor(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, s.loc)
}
