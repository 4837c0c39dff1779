package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/cradlehq/backend/internal/dates"
	"github.com/cradlehq/backend/internal/models"
	"github.com/cradlehq/backend/pkg/supabase"
)

// ReminderLeadDays is how long before the due date a push reminder goes out
const ReminderLeadDays = 3

// reminderHour is the local hour reminders are sent at
const reminderHour = 9

// NotificationTime is when the push reminder for a due date fires
func NotificationTime(due time.Time) time.Time {
	day := dates.AddDays(dates.StartOfDay(due), -ReminderLeadDays)
	return day.Add(reminderHour * time.Hour)
}

// NotificationSink queues push reminders in scheduled_notifications for the
// notification worker to deliver.
type NotificationSink struct {
	client *supabase.Client
}

// NewNotificationSink creates a reminder sink backed by scheduled_notifications
func NewNotificationSink(client *supabase.Client) *NotificationSink {
	return &NotificationSink{client: client}
}

func (s *NotificationSink) Name() string { return "push" }

func (s *NotificationSink) Schedule(ctx context.Context, reminder models.Reminder) error {
	data := map[string]interface{}{
		"item_id":  reminder.ItemID,
		"child_id": reminder.ChildID,
		"user_id":  reminder.UserID,
		"title":    reminder.Title,
		"body":     reminder.Description,
		"send_at":  NotificationTime(reminder.DueDate),
	}

	if _, err := s.client.Insert(ctx, "scheduled_notifications", data); err != nil {
		if isDuplicate(err) {
			return nil
		}
		return fmt.Errorf("failed to schedule notification: %w", err)
	}
	return nil
}

// CalendarSink writes all-day events to calendar_events, which the calendar
// sync picks up for users who connected a calendar.
type CalendarSink struct {
	client *supabase.Client
}

// NewCalendarSink creates a reminder sink backed by calendar_events
func NewCalendarSink(client *supabase.Client) *CalendarSink {
	return &CalendarSink{client: client}
}

func (s *CalendarSink) Name() string { return "calendar" }

func (s *CalendarSink) Schedule(ctx context.Context, reminder models.Reminder) error {
	data := map[string]interface{}{
		"item_id":     reminder.ItemID,
		"child_id":    reminder.ChildID,
		"user_id":     reminder.UserID,
		"title":       reminder.Title,
		"description": reminder.Description,
		"event_date":  dates.DayKey(reminder.DueDate),
	}

	if _, err := s.client.Insert(ctx, "calendar_events", data); err != nil {
		if isDuplicate(err) {
			return nil
		}
		return fmt.Errorf("failed to create calendar event: %w", err)
	}
	return nil
}
