// Package calendar abstracts the external calendar used for follow-up
// reminders. Credential lifecycle is out of scope; the HTTP client takes
// an opaque bearer token.
package calendar

import (
	"context"
	"time"
)

// Event is an existing calendar commitment, as needed for conflict checks.
type Event struct {
	Summary string
	Start   time.Time
	End     time.Time
	AllDay  bool
}

// Insert describes a follow-up event to create.
type Insert struct {
	Summary       string
	Description   string
	Start         time.Time
	End           time.Time
	PopupReminder bool
}

// Client is the calendar collaborator consumed by the slot allocator and
// the follow-up scheduler.
type Client interface {
	ListEvents(ctx context.Context, calendarID string, min, max time.Time) ([]Event, error)
	InsertEvent(ctx context.Context, calendarID string, ins Insert) (string, error)
}
