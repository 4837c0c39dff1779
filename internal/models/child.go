package models

import "time"

// Child is the profile the activity log and checklist hang off.
// Profiles are managed elsewhere; this service only reads them.
type Child struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Name         string    `json:"name"`
	DateOfBirth  Date      `json:"date_of_birth"`
	Jurisdiction *string   `json:"jurisdiction,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
