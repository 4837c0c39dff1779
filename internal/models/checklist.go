package models

import "time"

// ChecklistCategory groups checklist items by the reference table they came from
type ChecklistCategory string

const (
	ChecklistImmunisation ChecklistCategory = "immunisation"
	ChecklistRegistration ChecklistCategory = "registration"
	ChecklistMilestone    ChecklistCategory = "milestone"
	ChecklistCheckup      ChecklistCategory = "checkup"
)

// ChecklistItem is one dated task materialised from a reference table.
// The ID is derived from child, category and reference id, so regenerating
// a checklist never creates a second copy of an item.
type ChecklistItem struct {
	ID          string                 `json:"id"`
	ChildID     string                 `json:"child_id"`
	ReferenceID string                 `json:"reference_id"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	DueDate     time.Time              `json:"due_date"`
	Category    ChecklistCategory      `json:"category"`
	Priority    Priority               `json:"priority"`
	Completed   bool                   `json:"completed"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
	Notes       *string                `json:"notes,omitempty"`
	Metadata    map[string]interface{} `json:"metadata"`
	CreatedAt   time.Time              `json:"created_at"`
}

// ChecklistView selects which items GET /checklist returns
type ChecklistView string

const (
	ChecklistViewAll      ChecklistView = "all"
	ChecklistViewUpcoming ChecklistView = "upcoming"
	ChecklistViewOverdue  ChecklistView = "overdue"
)

// ChecklistResponse is the API response of GET /children/:child_id/checklist
type ChecklistResponse struct {
	ChildID              string          `json:"child_id"`
	View                 ChecklistView   `json:"view"`
	Items                []ChecklistItem `json:"items"`
	Total                int             `json:"total"`
	CompletedCount       int             `json:"completed_count"`
	CompletionPercentage int             `json:"completion_percentage"`
	Generated            bool            `json:"generated"` // true when this request materialised the checklist
}

// UpdateChecklistItemRequest is the body of PATCH /checklist/:item_id.
// completed_at and notes distinguish "absent" from "null".
type UpdateChecklistItemRequest struct {
	Completed   *bool          `json:"completed" binding:"required"`
	CompletedAt NullableTime   `json:"completed_at"`
	Notes       NullableString `json:"notes"`
}

// GenerateChecklistResult reports what a generation pass did
type GenerateChecklistResult struct {
	ChildID       string `json:"child_id"`
	TableVersion  string `json:"table_version"`
	Candidates    int    `json:"candidates"`
	Inserted      int    `json:"inserted"`
	AlreadyExists int    `json:"already_exists"`
	RemindersSent int    `json:"reminders_scheduled"`
	RemindersLost int    `json:"reminders_failed"`
}

// Reminder is what the checklist offers to notification and calendar integrations
type Reminder struct {
	ItemID      string    `json:"item_id"`
	ChildID     string    `json:"child_id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"due_date"`
}

// ChecklistCompletion is the only mutation a checklist item accepts.
// Notes is written only when SetNotes is true, so a PATCH without notes
// leaves them alone while an explicit null clears them.
type ChecklistCompletion struct {
	Completed   bool
	CompletedAt *time.Time
	Notes       *string
	SetNotes    bool
}
