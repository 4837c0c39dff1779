package repository

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cradlehq/backend/internal/models"
	"github.com/cradlehq/backend/pkg/supabase"
)

func TestChecklistRepository_InsertManyMapsConflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"code":"23505","message":"duplicate key value violates unique constraint \"checklist_items_pkey\""}`))
	}))
	defer srv.Close()

	repo := NewChecklistRepository(supabase.NewClient(srv.URL, "k"))
	err := repo.InsertMany(context.Background(), checklistItems("c1"))
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("InsertMany() error = %v, want ErrDuplicate", err)
	}
}

func TestChecklistRepository_DecodesDateColumn(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("order"); got != "due_date.asc,id.asc" {
			t.Errorf("order = %q", got)
		}
		w.Write([]byte(`[{"id":"c1","child_id":"child-1","reference_id":"imm-6w","title":"6 week immunisations",
			"description":"","due_date":"2024-03-13","category":"immunisation","priority":"high",
			"completed":false,"completed_at":null,"notes":null,"metadata":null,"created_at":"2024-01-31T10:00:00+00:00"}]`))
	}))
	defer srv.Close()

	repo := NewChecklistRepository(supabase.NewClient(srv.URL, "k"))
	items, err := repo.ListByChild(context.Background(), "child-1")
	if err != nil {
		t.Fatalf("ListByChild() error = %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("len(items) = %d, want 1", len(items))
	}
	if want := time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC); !items[0].DueDate.Equal(want) {
		t.Errorf("DueDate = %v, want %v", items[0].DueDate, want)
	}
	if items[0].Metadata == nil {
		t.Error("Metadata = nil, want empty map")
	}
	if items[0].Category != models.ChecklistImmunisation {
		t.Errorf("Category = %v", items[0].Category)
	}
}

func TestActivityRepository_ListQuery(t *testing.T) {
	var query map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = map[string]string{
			"child_id": r.URL.Query().Get("child_id"),
			"category": r.URL.Query().Get("category"),
			"and":      r.URL.Query().Get("and"),
			"order":    r.URL.Query().Get("order"),
		}
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	repo := NewActivityRepository(supabase.NewClient(srv.URL, "k"))
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	got, err := repo.ListByChildAndRange(context.Background(), "child-1", models.CategorySleep, start, start.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("ListByChildAndRange() error = %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("activities = %v, want empty", got)
	}

	want := map[string]string{
		"child_id": "eq.child-1",
		"category": "eq.sleep",
		"and":      "(started_at.gte.2024-03-01T00:00:00Z,started_at.lte.2024-03-02T00:00:00Z)",
		"order":    "started_at.asc",
	}
	for k, v := range want {
		if query[k] != v {
			t.Errorf("%s = %q, want %q", k, query[k], v)
		}
	}
}

func TestActivityRepository_GetByIDNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	repo := NewActivityRepository(supabase.NewClient(srv.URL, "k"))
	if _, err := repo.GetByID(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}
