package models

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tutorsync/backend/pkg/apperr"
)

// RecordingStatus says whether a recording is known and fetchable for a session.
type RecordingStatus string

const (
	RecordingNotAvailable RecordingStatus = "not_available"
	RecordingAvailable    RecordingStatus = "available"
)

// Event is the user-facing session: a calendar event paired with an externally
// hosted meeting. It has no storage of its own; every read materializes it
// from the calendar service.
type Event struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	StartTime       string          `json:"startTime"`
	EndTime         string          `json:"endTime"`
	Timezone        string          `json:"timezone"`
	Participants    []string        `json:"participants"`
	Description     *string         `json:"description"`
	MeetLink        *string         `json:"meetLink"`
	RecordingStatus RecordingStatus `json:"recordingStatus"`
	RecordingURL    *string         `json:"recordingUrl,omitempty"`
}

// Organizer is a read-only projection of the authenticated calendar identity.
type Organizer struct {
	Email string  `json:"email"`
	Name  *string `json:"name,omitempty"`
}

// InsertEvent is the create/update payload.
type InsertEvent struct {
	Title        string   `json:"title"`
	StartTime    string   `json:"startTime"`
	EndTime      string   `json:"endTime"`
	Timezone     string   `json:"timezone"`
	Participants []string `json:"participants"`
	Description  *string  `json:"description"`
}

const (
	maxTitleLength   = 100
	maxParticipants  = 6
	layoutNoSeconds  = "2006-01-02T15:04"
	layoutNoTimezone = "2006-01-02T15:04:05"
	layoutDateOnly   = "2006-01-02"
)

// ParseEventTime accepts RFC3339, RFC3339 without offset, the minute-precision
// form datetime-local inputs produce, and the date-only form the calendar
// service uses for all-day events.
func ParseEventTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, layoutNoTimezone, layoutNoSeconds, layoutDateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}

// Validate checks the payload against the data model and returns a
// ValidationError aggregating every failing field. No external calls are made
// before validation passes.
func (in InsertEvent) Validate() error {
	var problems []string

	if strings.TrimSpace(in.Title) == "" {
		problems = append(problems, "title: session title is required")
	} else if utf8.RuneCountInString(in.Title) > maxTitleLength {
		problems = append(problems, "title: must be 100 characters or less")
	}

	var start, end time.Time
	var startErr, endErr error
	if in.StartTime == "" {
		problems = append(problems, "startTime: start time is required")
	} else if start, startErr = ParseEventTime(in.StartTime); startErr != nil {
		problems = append(problems, "startTime: invalid timestamp")
	}
	if in.EndTime == "" {
		problems = append(problems, "endTime: end time is required")
	} else if end, endErr = ParseEventTime(in.EndTime); endErr != nil {
		problems = append(problems, "endTime: invalid timestamp")
	}
	if in.StartTime != "" && in.EndTime != "" && startErr == nil && endErr == nil && !end.After(start) {
		problems = append(problems, "endTime: end time must be after start time")
	}

	if strings.TrimSpace(in.Timezone) == "" {
		problems = append(problems, "timezone: timezone is required")
	}

	if len(in.Participants) > maxParticipants {
		problems = append(problems, "participants: maximum 6 participants allowed")
	}
	for _, p := range in.Participants {
		if !validEmail(p) {
			problems = append(problems, fmt.Sprintf("participants: invalid email address %q", p))
		}
	}

	if len(problems) > 0 {
		return apperr.Validation(strings.Join(problems, "; "))
	}
	return nil
}

// DurationMinutes is the meeting length, rounded to whole minutes. Only valid
// after Validate.
func (in InsertEvent) DurationMinutes() int {
	start, err1 := ParseEventTime(in.StartTime)
	end, err2 := ParseEventTime(in.EndTime)
	if err1 != nil || err2 != nil {
		return 0
	}
	return int(end.Sub(start).Round(time.Minute) / time.Minute)
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}
