package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cradlehq/backend/internal/models"
	"github.com/cradlehq/backend/internal/repository"
)

var errStore = errors.New("store unavailable")

// mockChildRepository is a mock implementation of ChildRepository for testing
type mockChildRepository struct {
	children map[string]*models.Child
}

func newMockChildRepository(children ...models.Child) *mockChildRepository {
	m := &mockChildRepository{children: make(map[string]*models.Child)}
	for i := range children {
		m.children[children[i].ID] = &children[i]
	}
	return m
}

func (m *mockChildRepository) GetByID(ctx context.Context, id string) (*models.Child, error) {
	if child, ok := m.children[id]; ok {
		return child, nil
	}
	return nil, repository.ErrNotFound
}

// mockActivityRepository is a mock implementation of ActivityRepository for testing
type mockActivityRepository struct {
	mu         sync.Mutex
	activities map[string]models.Activity
	listCalls  map[models.Category]int
	listErr    map[models.Category]error
}

func newMockActivityRepository(activities ...models.Activity) *mockActivityRepository {
	m := &mockActivityRepository{
		activities: make(map[string]models.Activity),
		listCalls:  make(map[models.Category]int),
		listErr:    make(map[models.Category]error),
	}
	for _, a := range activities {
		m.activities[a.ID] = a
	}
	return m
}

func (m *mockActivityRepository) Create(ctx context.Context, activity *models.Activity) (*models.Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.activities[activity.ID]; ok {
		return nil, repository.ErrDuplicate
	}
	activity.CreatedAt = time.Now()
	m.activities[activity.ID] = *activity
	return activity, nil
}

func (m *mockActivityRepository) GetByID(ctx context.Context, id string) (*models.Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.activities[id]; ok {
		return &a, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockActivityRepository) ListByChildAndRange(ctx context.Context, childID string, category models.Category, start, end time.Time) ([]models.Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls[category]++
	if err := m.listErr[category]; err != nil {
		return nil, err
	}

	var result []models.Activity
	for _, a := range m.activities {
		if a.ChildID != childID {
			continue
		}
		if category != "" && a.Category != category {
			continue
		}
		if a.StartedAt.Before(start) || a.StartedAt.After(end) {
			continue
		}
		result = append(result, a)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].StartedAt.Before(result[j].StartedAt)
	})
	return result, nil
}

func (m *mockActivityRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.activities[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.activities, id)
	return nil
}

// mockInsightRepository is a mock implementation of InsightRepository for testing
type mockInsightRepository struct {
	snapshots       []models.InsightSnapshot
	saveCalls       int
	invalidateCalls int
	getErr          error
}

func (m *mockInsightRepository) GetValid(ctx context.Context, childID string, windowDays int, now time.Time) (*models.InsightSnapshot, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for i := len(m.snapshots) - 1; i >= 0; i-- {
		s := m.snapshots[i]
		if s.ChildID == childID && s.WindowDays == windowDays && s.ValidUntil.After(now) {
			return &s, nil
		}
	}
	return nil, nil
}

func (m *mockInsightRepository) Save(ctx context.Context, snapshot *models.InsightSnapshot) error {
	m.saveCalls++
	// id is the table's primary key
	if snapshot.ID == "" {
		return errors.New("insight snapshot id is empty")
	}
	for _, s := range m.snapshots {
		if s.ID == snapshot.ID {
			return fmt.Errorf("duplicate insight snapshot id %q", snapshot.ID)
		}
	}
	m.snapshots = append(m.snapshots, *snapshot)
	return nil
}

func (m *mockInsightRepository) InvalidateByChild(ctx context.Context, childID string) error {
	m.invalidateCalls++
	kept := m.snapshots[:0]
	for _, s := range m.snapshots {
		if s.ChildID != childID {
			kept = append(kept, s)
		}
	}
	m.snapshots = kept
	return nil
}

// mockDailyAnalyticsRepository records upserted rollups
type mockDailyAnalyticsRepository struct {
	upserted []models.DailyAnalytics
	err      error
}

func (m *mockDailyAnalyticsRepository) BulkUpsert(ctx context.Context, days []models.DailyAnalytics) error {
	if m.err != nil {
		return m.err
	}
	m.upserted = append(m.upserted, days...)
	return nil
}

// mockChecklistRepository is a mock implementation of ChecklistRepository for testing
type mockChecklistRepository struct {
	items map[string]models.ChecklistItem
	// hidden ids exist in the store but are missed by ListIDs, as when a
	// concurrent generation inserts between the read and the write
	hidden      map[string]bool
	insertCalls int
	insertErr   error
}

func newMockChecklistRepository() *mockChecklistRepository {
	return &mockChecklistRepository{
		items:  make(map[string]models.ChecklistItem),
		hidden: make(map[string]bool),
	}
}

func (m *mockChecklistRepository) ListIDs(ctx context.Context, childID string) (map[string]struct{}, error) {
	ids := make(map[string]struct{})
	for id, item := range m.items {
		if item.ChildID == childID && !m.hidden[id] {
			ids[id] = struct{}{}
		}
	}
	return ids, nil
}

func (m *mockChecklistRepository) InsertMany(ctx context.Context, items []models.ChecklistItem) error {
	m.insertCalls++
	if m.insertErr != nil {
		return m.insertErr
	}
	for _, item := range items {
		if _, ok := m.items[item.ID]; ok {
			return repository.ErrDuplicate
		}
	}
	for _, item := range items {
		// Stored dates come back as UTC calendar dates
		y, mo, d := item.DueDate.Date()
		item.DueDate = time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
		m.items[item.ID] = item
	}
	return nil
}

func (m *mockChecklistRepository) ListByChild(ctx context.Context, childID string) ([]models.ChecklistItem, error) {
	var result []models.ChecklistItem
	for _, item := range m.items {
		if item.ChildID == childID {
			result = append(result, item)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].DueDate.Equal(result[j].DueDate) {
			return result[i].DueDate.Before(result[j].DueDate)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (m *mockChecklistRepository) GetByID(ctx context.Context, id string) (*models.ChecklistItem, error) {
	if item, ok := m.items[id]; ok {
		return &item, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockChecklistRepository) SetCompletion(ctx context.Context, id string, update models.ChecklistCompletion) (*models.ChecklistItem, error) {
	item, ok := m.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	item.Completed = update.Completed
	item.CompletedAt = update.CompletedAt
	if update.SetNotes {
		item.Notes = update.Notes
	}
	m.items[id] = item
	return &item, nil
}

// mockReminderSink records reminders and can fail every call
type mockReminderSink struct {
	name string
	fail bool

	mu        sync.Mutex
	reminders []models.Reminder
}

func (m *mockReminderSink) Name() string { return m.name }

func (m *mockReminderSink) Schedule(ctx context.Context, reminder models.Reminder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("sink rejected reminder")
	}
	m.reminders = append(m.reminders, reminder)
	return nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func boolPtr(b bool) *bool { return &b }
