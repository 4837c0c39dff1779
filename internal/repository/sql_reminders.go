package repository

import (
	"context"
	"fmt"

	"github.com/cradlehq/backend/internal/database"
	"github.com/cradlehq/backend/internal/dates"
	"github.com/cradlehq/backend/internal/models"
)

// SQLNotificationSink queues push reminders in a SQL store
type SQLNotificationSink struct {
	db *database.DB
}

// NewSQLNotificationSink creates a reminder sink backed by scheduled_notifications
func NewSQLNotificationSink(db *database.DB) *SQLNotificationSink {
	return &SQLNotificationSink{db: db}
}

func (s *SQLNotificationSink) Name() string { return "push" }

func (s *SQLNotificationSink) Schedule(ctx context.Context, reminder models.Reminder) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO scheduled_notifications (item_id, child_id, user_id, title, body, send_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		reminder.ItemID, reminder.ChildID, reminder.UserID, reminder.Title, reminder.Description,
		database.Timestamp(NotificationTime(reminder.DueDate)),
	)
	if err != nil && !s.db.IsUniqueViolation(err) {
		return fmt.Errorf("failed to schedule notification: %w", err)
	}
	return nil
}

// SQLCalendarSink writes all-day calendar events to a SQL store
type SQLCalendarSink struct {
	db *database.DB
}

// NewSQLCalendarSink creates a reminder sink backed by calendar_events
func NewSQLCalendarSink(db *database.DB) *SQLCalendarSink {
	return &SQLCalendarSink{db: db}
}

func (s *SQLCalendarSink) Name() string { return "calendar" }

func (s *SQLCalendarSink) Schedule(ctx context.Context, reminder models.Reminder) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO calendar_events (item_id, child_id, user_id, title, description, event_date)
		VALUES (?, ?, ?, ?, ?, ?)`,
		reminder.ItemID, reminder.ChildID, reminder.UserID, reminder.Title, reminder.Description,
		dates.DayKey(reminder.DueDate),
	)
	if err != nil && !s.db.IsUniqueViolation(err) {
		return fmt.Errorf("failed to create calendar event: %w", err)
	}
	return nil
}
