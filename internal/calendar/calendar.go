// Package calendar wraps the calendar service. The orchestrator talks to the
// Provider interface; the Google implementation lives in google.go.
package calendar

import (
	"context"

	"github.com/tutorsync/backend/internal/models"
)

// Event is a calendar event as the service stores it. Times are the service's
// RFC3339 strings; the service remains the source of truth for timezone
// interpretation.
type Event struct {
	ID          string
	Summary     string
	Description string
	StartTime   string
	EndTime     string
	Timezone    string
	Attendees   []string
	EventType   string
	// MeetLink is the service's own conferencing link (hangout link or the
	// first conference entry point), present on events created outside this
	// system.
	MeetLink string
}

// Provider is the narrow calendar-service surface the orchestrator needs.
// List results are single-instance expanded, bounded to the configured window
// and ordered by start time ascending.
type Provider interface {
	Organizer(ctx context.Context) (*models.Organizer, error)
	ListEvents(ctx context.Context) ([]Event, error)
	GetEvent(ctx context.Context, id string) (*Event, error)
	InsertEvent(ctx context.Context, ev Event) (*Event, error)
	UpdateEvent(ctx context.Context, id string, ev Event) (*Event, error)
	DeleteEvent(ctx context.Context, id string) error
}
