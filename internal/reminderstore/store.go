package reminderstore

import (
	"context"
	"errors"
	"time"

	"pawpal/internal/reminder"
)

// ErrReminderNotFound is returned when a reminder lookup fails because the
// requested ID does not exist in the store.
var ErrReminderNotFound = errors.New("reminder not found")

// Store is the persistence port for reminder records. Create is called once
// per logical reminder; a broadcast issues one Create per pet and never
// rolls back siblings.
type Store interface {
	// Create persists the reminder and returns its record ID.
	Create(ctx context.Context, r reminder.Reminder) (string, error)
	// ListDue returns pending reminders due at or before the given instant.
	// The delivery scheduler consumes this read path.
	ListDue(ctx context.Context, before time.Time) ([]reminder.Reminder, error)
	// UpdateStatus transitions a reminder's status. Returns a non-nil error
	// wrapping ErrReminderNotFound if no record exists.
	UpdateStatus(ctx context.Context, id string, status reminder.Status) error
}
