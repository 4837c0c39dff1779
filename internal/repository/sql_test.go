package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/cradlehq/backend/internal/database"
	"github.com/cradlehq/backend/internal/models"
)

const (
	testChildID = "child-1"
	testUserID  = "user-1"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open(context.Background(), "sqlite", filepath.Join(t.TempDir(), "cradle.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	_, err = db.ExecContext(context.Background(),
		"INSERT INTO children (id, user_id, name, date_of_birth, jurisdiction, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		testChildID, testUserID, "Ada", "2024-01-31", "NSW", database.Timestamp(time.Now()))
	if err != nil {
		t.Fatalf("seed child: %v", err)
	}
	return db
}

func fptr(v float64) *float64 { return &v }

func TestSQLChildRepository_GetByID(t *testing.T) {
	repo := NewSQLChildRepository(newTestDB(t))

	child, err := repo.GetByID(context.Background(), testChildID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if child.UserID != testUserID || child.DateOfBirth.String() != "2024-01-31" {
		t.Errorf("child = %+v", child)
	}
	if child.Jurisdiction == nil || *child.Jurisdiction != "NSW" {
		t.Errorf("Jurisdiction = %v, want NSW", child.Jurisdiction)
	}

	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID(missing) error = %v, want ErrNotFound", err)
	}
}

func TestSQLActivityRepository_CreateListDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLActivityRepository(newTestDB(t))
	base := time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC)

	inputs := []models.Activity{
		{ID: "a3", ChildID: testChildID, Category: models.CategoryFeeding, Subtype: "bottle", StartedAt: base.Add(6 * time.Hour), AmountML: fptr(120)},
		{ID: "a1", ChildID: testChildID, Category: models.CategoryFeeding, Subtype: "breast", StartedAt: base, DurationMinutes: fptr(15)},
		{ID: "a2", ChildID: testChildID, Category: models.CategorySleep, StartedAt: base.Add(2 * time.Hour), DurationMinutes: fptr(90)},
		{ID: "a4", ChildID: testChildID, Category: models.CategoryFeeding, StartedAt: base.Add(48 * time.Hour)},
	}
	for i := range inputs {
		if _, err := repo.Create(ctx, &inputs[i]); err != nil {
			t.Fatalf("Create(%s) error = %v", inputs[i].ID, err)
		}
	}

	if _, err := repo.Create(ctx, &inputs[0]); !errors.Is(err, ErrDuplicate) {
		t.Errorf("Create(duplicate) error = %v, want ErrDuplicate", err)
	}

	feeds, err := repo.ListByChildAndRange(ctx, testChildID, models.CategoryFeeding, base, base.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("ListByChildAndRange() error = %v", err)
	}
	if len(feeds) != 2 || feeds[0].ID != "a1" || feeds[1].ID != "a3" {
		t.Fatalf("feeds = %v, want [a1 a3] in start order", ids(feeds))
	}
	if feeds[0].DurationMinutes == nil || *feeds[0].DurationMinutes != 15 {
		t.Errorf("DurationMinutes = %v, want 15", feeds[0].DurationMinutes)
	}
	if feeds[1].AmountML == nil || *feeds[1].AmountML != 120 || feeds[1].DurationMinutes != nil {
		t.Errorf("a3 = %+v", feeds[1])
	}
	if !feeds[0].StartedAt.Equal(base) {
		t.Errorf("StartedAt = %v, want %v", feeds[0].StartedAt, base)
	}

	all, err := repo.ListByChildAndRange(ctx, testChildID, "", base, base.Add(72*time.Hour))
	if err != nil {
		t.Fatalf("ListByChildAndRange(all) error = %v", err)
	}
	if len(all) != 4 {
		t.Errorf("len(all) = %d, want 4", len(all))
	}

	if err := repo.Delete(ctx, "a2"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.GetByID(ctx, "a2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID(deleted) error = %v, want ErrNotFound", err)
	}
	if err := repo.Delete(ctx, "a2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete(deleted) error = %v, want ErrNotFound", err)
	}
}

func checklistItems(ids ...string) []models.ChecklistItem {
	items := make([]models.ChecklistItem, len(ids))
	for i, id := range ids {
		items[i] = models.ChecklistItem{
			ID:          id,
			ChildID:     testChildID,
			ReferenceID: "ref-" + id,
			Title:       "Item " + id,
			DueDate:     time.Date(2024, 3, 1+i, 0, 0, 0, 0, time.UTC),
			Category:    models.ChecklistImmunisation,
			Priority:    models.PriorityHigh,
			Metadata:    map[string]interface{}{"vaccines": []string{"MMR"}},
		}
	}
	return items
}

func TestSQLChecklistRepository_InsertManyIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLChecklistRepository(newTestDB(t))

	if err := repo.InsertMany(ctx, checklistItems("c1", "c2")); err != nil {
		t.Fatalf("InsertMany() error = %v", err)
	}

	err := repo.InsertMany(ctx, checklistItems("c3", "c1"))
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("InsertMany(collision) error = %v, want ErrDuplicate", err)
	}

	existing, err := repo.ListIDs(ctx, testChildID)
	if err != nil {
		t.Fatalf("ListIDs() error = %v", err)
	}
	if len(existing) != 2 {
		t.Errorf("ListIDs = %v, want only c1 and c2 (batch rolled back)", existing)
	}
	if _, ok := existing["c3"]; ok {
		t.Error("c3 persisted from a failed batch")
	}
}

func TestSQLChecklistRepository_ListAndComplete(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLChecklistRepository(newTestDB(t))

	items := checklistItems("c1", "c2", "c3")
	// Insert out of due order
	if err := repo.InsertMany(ctx, []models.ChecklistItem{items[2], items[0], items[1]}); err != nil {
		t.Fatalf("InsertMany() error = %v", err)
	}

	listed, err := repo.ListByChild(ctx, testChildID)
	if err != nil {
		t.Fatalf("ListByChild() error = %v", err)
	}
	if len(listed) != 3 || listed[0].ID != "c1" || listed[2].ID != "c3" {
		t.Fatalf("ListByChild order = %v", checklistIDs(listed))
	}
	if listed[0].DueDate.Format("2006-01-02") != "2024-03-01" {
		t.Errorf("DueDate = %v", listed[0].DueDate)
	}
	if _, ok := listed[0].Metadata["vaccines"]; !ok {
		t.Errorf("Metadata = %v, want vaccines", listed[0].Metadata)
	}

	doneAt := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)
	note := "given at GP"
	updated, err := repo.SetCompletion(ctx, "c2", models.ChecklistCompletion{Completed: true, CompletedAt: &doneAt, Notes: &note, SetNotes: true})
	if err != nil {
		t.Fatalf("SetCompletion() error = %v", err)
	}
	if !updated.Completed || updated.CompletedAt == nil || !updated.CompletedAt.Equal(doneAt) {
		t.Errorf("updated = %+v", updated)
	}
	if updated.Notes == nil || *updated.Notes != note {
		t.Errorf("Notes = %v, want %q", updated.Notes, note)
	}

	// Notes survive when not being set
	updated, err = repo.SetCompletion(ctx, "c2", models.ChecklistCompletion{Completed: false})
	if err != nil {
		t.Fatalf("SetCompletion(undo) error = %v", err)
	}
	if updated.Completed || updated.CompletedAt != nil {
		t.Errorf("undo = %+v, want incomplete without completed_at", updated)
	}
	if updated.Notes == nil || *updated.Notes != note {
		t.Errorf("Notes = %v, want kept", updated.Notes)
	}

	if _, err := repo.SetCompletion(ctx, "missing", models.ChecklistCompletion{Completed: true}); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetCompletion(missing) error = %v, want ErrNotFound", err)
	}
}

func TestSQLDailyAnalyticsRepository_BulkUpsert(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewSQLDailyAnalyticsRepository(db)

	day := models.DailyAnalytics{ChildID: testChildID, Date: "2024-03-01", Feeding: models.FeedingTotals{Count: 3}}
	if err := repo.BulkUpsert(ctx, []models.DailyAnalytics{day}); err != nil {
		t.Fatalf("BulkUpsert() error = %v", err)
	}
	day.Feeding.Count = 5
	if err := repo.BulkUpsert(ctx, []models.DailyAnalytics{day}); err != nil {
		t.Fatalf("BulkUpsert(second) error = %v", err)
	}

	var rows, count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*), MAX(feeding_count) FROM daily_analytics WHERE child_id = ?", testChildID).Scan(&rows, &count); err != nil {
		t.Fatalf("query: %v", err)
	}
	if rows != 1 || count != 5 {
		t.Errorf("rows/feeding_count = %d/%d, want 1/5", rows, count)
	}
}

func TestSQLInsightRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLInsightRepository(newTestDB(t))
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	snapshot := &models.InsightSnapshot{
		ID:             "snap-1",
		ChildID:        testChildID,
		WindowDays:     7,
		Insights:       []models.Insight{{Type: models.InsightClusterFeeding, Title: "Cluster feeding", Confidence: 85}},
		Alerts:         []models.SmartAlert{},
		DataSufficient: true,
		ComputedAt:     now,
		ValidUntil:     now.Add(time.Hour),
	}
	if err := repo.Save(ctx, snapshot); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := repo.GetValid(ctx, testChildID, 7, now.Add(30*time.Minute))
	if err != nil || got == nil {
		t.Fatalf("GetValid() = %v, %v", got, err)
	}
	if len(got.Insights) != 1 || got.Insights[0].Confidence != 85 {
		t.Errorf("Insights = %+v", got.Insights)
	}

	if got, _ := repo.GetValid(ctx, testChildID, 7, now.Add(2*time.Hour)); got != nil {
		t.Error("GetValid returned an expired snapshot")
	}
	if got, _ := repo.GetValid(ctx, testChildID, 14, now); got != nil {
		t.Error("GetValid returned a snapshot for another window")
	}

	if err := repo.InvalidateByChild(ctx, testChildID); err != nil {
		t.Fatalf("InvalidateByChild() error = %v", err)
	}
	if got, _ := repo.GetValid(ctx, testChildID, 7, now); got != nil {
		t.Error("GetValid returned an invalidated snapshot")
	}
}

func TestSQLIdempotencyRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLIdempotencyRepository(newTestDB(t))

	if got, err := repo.Get(ctx, "k1", "POST /x", testUserID); err != nil || got != nil {
		t.Fatalf("Get(missing) = %v, %v, want nil, nil", got, err)
	}

	if err := repo.Store(ctx, "k1", "POST /x", testUserID, []byte(`{"ok":true}`), 201); err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	if err := repo.Store(ctx, "k1", "POST /x", testUserID, []byte(`{"ok":false}`), 500); err != nil {
		t.Fatalf("Store(duplicate) error = %v, want nil", err)
	}

	got, err := repo.Get(ctx, "k1", "POST /x", testUserID)
	if err != nil || got == nil {
		t.Fatalf("Get() = %v, %v", got, err)
	}
	if got.StatusCode != 201 || string(got.ResponseBody) != `{"ok":true}` {
		t.Errorf("record = %+v, want the first stored response", got)
	}
}

func TestSQLReminderSinks_IgnoreRepeats(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	reminder := models.Reminder{
		ItemID:  "c1",
		ChildID: testChildID,
		UserID:  testUserID,
		Title:   "6 week immunisations",
		DueDate: time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC),
	}

	sinks := []interface {
		Schedule(context.Context, models.Reminder) error
	}{NewSQLNotificationSink(db), NewSQLCalendarSink(db)}
	for _, sink := range sinks {
		for i := 0; i < 2; i++ {
			if err := sink.Schedule(ctx, reminder); err != nil {
				t.Fatalf("Schedule() error = %v", err)
			}
		}
	}

	var notifications, events int
	db.QueryRowContext(ctx, "SELECT COUNT(*) FROM scheduled_notifications").Scan(&notifications)
	db.QueryRowContext(ctx, "SELECT COUNT(*) FROM calendar_events").Scan(&events)
	if notifications != 1 || events != 1 {
		t.Errorf("notifications/events = %d/%d, want 1/1", notifications, events)
	}
}

func TestNotificationTime(t *testing.T) {
	due := time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC)
	want := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	if got := NotificationTime(due); !got.Equal(want) {
		t.Errorf("NotificationTime = %v, want %v", got, want)
	}
}

func ids(activities []models.Activity) []string {
	out := make([]string, len(activities))
	for i, a := range activities {
		out[i] = a.ID
	}
	return out
}

func checklistIDs(items []models.ChecklistItem) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}
