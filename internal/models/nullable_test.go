package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestNullableString_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantSet   bool
		wantValid bool
		wantValue string
	}{
		{"absent", `{}`, false, false, ""},
		{"explicit null", `{"notes": null}`, true, false, ""},
		{"empty string", `{"notes": ""}`, true, true, ""},
		{"value", `{"notes": "booked for Tuesday"}`, true, true, "booked for Tuesday"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req UpdateChecklistItemRequest
			if err := json.Unmarshal([]byte(tt.body), &req); err != nil {
				t.Fatalf("Unmarshal error: %v", err)
			}
			if req.Notes.Set != tt.wantSet {
				t.Errorf("Set = %v, want %v", req.Notes.Set, tt.wantSet)
			}
			if req.Notes.Valid != tt.wantValid {
				t.Errorf("Valid = %v, want %v", req.Notes.Valid, tt.wantValid)
			}
			if req.Notes.Value != tt.wantValue {
				t.Errorf("Value = %q, want %q", req.Notes.Value, tt.wantValue)
			}
		})
	}
}

func TestNullableString_ToPtr(t *testing.T) {
	if p := (NullableString{Set: true}).ToPtr(); p != nil {
		t.Errorf("ToPtr() of null = %v, want nil", *p)
	}
	p := (NullableString{Value: "x", Valid: true, Set: true}).ToPtr()
	if p == nil || *p != "x" {
		t.Errorf("ToPtr() = %v, want pointer to \"x\"", p)
	}
}

func TestNullableTime_UnmarshalJSON(t *testing.T) {
	want := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name      string
		body      string
		wantSet   bool
		wantValid bool
		wantTime  time.Time
		wantErr   bool
	}{
		{"absent", `{"completed": true}`, false, false, time.Time{}, false},
		{"null clears", `{"completed": false, "completed_at": null}`, true, false, time.Time{}, false},
		{"timestamp", `{"completed": true, "completed_at": "2024-03-01T09:30:00Z"}`, true, true, want, false},
		{"bad timestamp", `{"completed": true, "completed_at": "yesterday"}`, false, false, time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req UpdateChecklistItemRequest
			err := json.Unmarshal([]byte(tt.body), &req)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Unmarshal error = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unmarshal error: %v", err)
			}
			if req.CompletedAt.Set != tt.wantSet {
				t.Errorf("Set = %v, want %v", req.CompletedAt.Set, tt.wantSet)
			}
			if req.CompletedAt.Valid != tt.wantValid {
				t.Errorf("Valid = %v, want %v", req.CompletedAt.Valid, tt.wantValid)
			}
			if !req.CompletedAt.Value.Equal(tt.wantTime) {
				t.Errorf("Value = %v, want %v", req.CompletedAt.Value, tt.wantTime)
			}
		})
	}
}

func TestDate_JSON(t *testing.T) {
	var child Child
	if err := json.Unmarshal([]byte(`{"id":"c1","date_of_birth":"2024-01-31"}`), &child); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if got := child.DateOfBirth.String(); got != "2024-01-31" {
		t.Errorf("DateOfBirth = %q, want 2024-01-31", got)
	}

	if err := json.Unmarshal([]byte(`{"date_of_birth":"2024-01-31T00:00:00+00:00"}`), &child); err != nil {
		t.Fatalf("Unmarshal timestamp error: %v", err)
	}
	if got := child.DateOfBirth.String(); got != "2024-01-31" {
		t.Errorf("DateOfBirth from timestamp = %q, want 2024-01-31", got)
	}

	out, err := json.Marshal(NewDate(2024, time.February, 29))
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	if string(out) != `"2024-02-29"` {
		t.Errorf("Marshal = %s, want \"2024-02-29\"", out)
	}

	loc := time.FixedZone("AEST", 10*60*60)
	if got := NewDate(2024, time.March, 5).In(loc); got.Hour() != 0 || got.Day() != 5 || got.Location() != loc {
		t.Errorf("In(AEST) = %v, want local midnight on the 5th", got)
	}
}

func TestActivity_Duration(t *testing.T) {
	start := time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC)
	end := start.Add(90 * time.Minute)
	explicit := 45.0
	before := start.Add(-time.Minute)

	tests := []struct {
		name   string
		a      Activity
		want   float64
		wantOK bool
	}{
		{"explicit duration wins", Activity{StartedAt: start, EndedAt: &end, DurationMinutes: &explicit}, 45, true},
		{"derived from end", Activity{StartedAt: start, EndedAt: &end}, 90, true},
		{"end before start ignored", Activity{StartedAt: start, EndedAt: &before}, 0, false},
		{"unknown", Activity{StartedAt: start}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.a.Duration()
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Duration() = (%v, %v), want (%v, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
