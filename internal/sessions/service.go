// Package sessions is the event lifecycle orchestrator: it presents a
// calendar event and its backing meeting as one session, keeps both halves
// consistent under create/update/delete, and tolerates failure of the
// non-essential half.
package sessions

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tutorsync/backend/internal/calendar"
	"github.com/tutorsync/backend/internal/meetings"
	"github.com/tutorsync/backend/internal/models"
	"github.com/tutorsync/backend/internal/recordings"
)

// recordingLookupConcurrency bounds parallel per-event recording lookups.
const recordingLookupConcurrency = 4

// MeetingProvider is the meeting-service surface the orchestrator needs.
type MeetingProvider interface {
	CreateMeeting(ctx context.Context, topic string, start time.Time, durationMinutes int, timezone string) (*meetings.Meeting, error)
	DeleteMeeting(ctx context.Context, id int64) error
	RecordingStatus(ctx context.Context, id int64) (*meetings.RecordingResult, error)
}

// Service composes the calendar and meeting providers. The two services share
// no transaction: create/update/delete are not atomic across them, and
// callers must expect the documented partial-failure behavior.
type Service struct {
	calendar calendar.Provider
	meetings MeetingProvider
	store    recordings.Store // nil = per-event provider lookups
	logger   *zap.Logger
}

// NewService creates the orchestrator. store may be nil; recording discovery
// then queries the meeting provider per event instead of one batched store
// fetch.
func NewService(cal calendar.Provider, mp MeetingProvider, store recordings.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{calendar: cal, meetings: mp, store: store, logger: logger}
}

// Create validates the input, provisions the backing meeting, then creates
// the calendar event with the pairing marker embedded. If the calendar half
// fails the fresh meeting is deleted best-effort so it is not orphaned.
func (s *Service) Create(ctx context.Context, in models.InsertEvent) (*models.Event, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	start, err := models.ParseEventTime(in.StartTime)
	if err != nil {
		return nil, err
	}

	meeting, err := s.meetings.CreateMeeting(ctx, in.Title, start, in.DurationMinutes(), in.Timezone)
	if err != nil {
		return nil, err
	}
	marker := Marker{MeetingID: meeting.ID, JoinURL: meeting.JoinURL}

	created, err := s.calendar.InsertEvent(ctx, calendar.Event{
		Summary:     in.Title,
		Description: marker.Embed(derefString(in.Description)),
		StartTime:   formatDateTime(in.StartTime),
		EndTime:     formatDateTime(in.EndTime),
		Timezone:    in.Timezone,
		Attendees:   in.Participants,
	})
	if err != nil {
		if derr := s.meetings.DeleteMeeting(ctx, meeting.ID); derr != nil {
			s.logger.Warn("orphaned meeting cleanup failed",
				zap.Int64("meeting_id", meeting.ID), zap.Error(derr))
		} else {
			s.logger.Info("deleted meeting after calendar create failure",
				zap.Int64("meeting_id", meeting.ID))
		}
		return nil, err
	}

	out := toSession(*created, marker)
	return &out, nil
}

// Update rewrites the calendar event's fields while carrying the existing
// pairing marker forward unchanged. The backing meeting is never recreated or
// resized; the session's meet link comes from the preserved marker.
func (s *Service) Update(ctx context.Context, id string, in models.InsertEvent) (*models.Event, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	existing, err := s.calendar.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}

	marker := ParseMarker(existing.Description)
	description := derefString(in.Description)
	if marker.Valid() {
		description = marker.Embed(description)
	}

	updated, err := s.calendar.UpdateEvent(ctx, id, calendar.Event{
		Summary:     in.Title,
		Description: description,
		StartTime:   formatDateTime(in.StartTime),
		EndTime:     formatDateTime(in.EndTime),
		Timezone:    in.Timezone,
		Attendees:   in.Participants,
	})
	if err != nil {
		return nil, err
	}

	out := toSession(*updated, marker)
	return &out, nil
}

// Delete removes the backing meeting best-effort, then the calendar event. A
// meeting-side failure never blocks the calendar deletion. Deleting an
// unknown id surfaces NotFound.
func (s *Service) Delete(ctx context.Context, id string) error {
	existing, err := s.calendar.GetEvent(ctx, id)
	if err != nil {
		return err
	}
	if marker := ParseMarker(existing.Description); marker.MeetingID != 0 {
		if err := s.meetings.DeleteMeeting(ctx, marker.MeetingID); err != nil {
			s.logger.Warn("could not delete backing meeting",
				zap.Int64("meeting_id", marker.MeetingID), zap.Error(err))
		}
	}
	return s.calendar.DeleteEvent(ctx, id)
}

// List materializes all sessions in the calendar window, start-time
// ascending, with recording status attached. Recording failures degrade the
// affected session to not_available; they never fail the listing.
func (s *Service) List(ctx context.Context) ([]models.Event, error) {
	events, err := s.calendar.ListEvents(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]models.Event, 0, len(events))
	markers := make([]Marker, 0, len(events))
	for _, ev := range events {
		marker := ParseMarker(ev.Description)
		out = append(out, toSession(ev, marker))
		markers = append(markers, marker)
	}

	if s.store != nil {
		s.attachFromStore(ctx, out)
	} else {
		s.attachFromProvider(ctx, out, markers)
	}
	return out, nil
}

// OrganizerInfo resolves the calendar identity all sessions are created
// under.
func (s *Service) OrganizerInfo(ctx context.Context) (*models.Organizer, error) {
	return s.calendar.Organizer(ctx)
}

// attachFromProvider queries the meeting provider per event. Lookups run in
// parallel; each goroutine writes only its own index, so calendar order is
// preserved regardless of completion order.
func (s *Service) attachFromProvider(ctx context.Context, sessions []models.Event, markers []Marker) {
	var g errgroup.Group
	g.SetLimit(recordingLookupConcurrency)
	for i := range sessions {
		if markers[i].MeetingID == 0 {
			continue
		}
		i := i
		g.Go(func() error {
			res, err := s.meetings.RecordingStatus(ctx, markers[i].MeetingID)
			if err != nil {
				s.logger.Debug("recording lookup failed",
					zap.Int64("meeting_id", markers[i].MeetingID), zap.Error(err))
				return nil
			}
			if res.ShareURL != "" {
				url := res.ShareURL
				sessions[i].RecordingStatus = models.RecordingAvailable
				sessions[i].RecordingURL = &url
			}
			return nil
		})
	}
	_ = g.Wait()
}

// attachFromStore fetches one bounded batch of recent recordings and runs the
// matcher against each session. One external call regardless of event count.
func (s *Service) attachFromStore(ctx context.Context, sessions []models.Event) {
	candidates, err := s.store.ListRecent(ctx)
	if err != nil {
		s.logger.Warn("recording store unavailable", zap.Error(err))
		return
	}
	for i := range sessions {
		start, err := models.ParseEventTime(sessions[i].StartTime)
		if err != nil {
			continue
		}
		meetLink := derefString(sessions[i].MeetLink)
		if c := recordings.Match(sessions[i].Title, start, meetLink, candidates); c != nil {
			url := c.URL
			sessions[i].RecordingStatus = models.RecordingAvailable
			sessions[i].RecordingURL = &url
		}
	}
}

func toSession(ev calendar.Event, marker Marker) models.Event {
	title := ev.Summary
	if title == "" {
		title = "Untitled Session"
	}
	out := models.Event{
		ID:              ev.ID,
		Title:           title,
		StartTime:       ev.StartTime,
		EndTime:         ev.EndTime,
		Timezone:        ev.Timezone,
		Participants:    ev.Attendees,
		RecordingStatus: models.RecordingNotAvailable,
	}
	if out.Participants == nil {
		out.Participants = []string{}
	}
	// Sessions created here carry the marker; events created directly in the
	// calendar may still have the service's own conferencing link.
	if marker.JoinURL != "" {
		link := marker.JoinURL
		out.MeetLink = &link
	} else if ev.MeetLink != "" {
		link := ev.MeetLink
		out.MeetLink = &link
	}
	if clean := StripMarker(ev.Description); clean != "" {
		out.Description = &clean
	}
	return out
}

// formatDateTime pads minute-precision timestamps from datetime-local inputs
// to the seconds precision the calendar service expects.
func formatDateTime(s string) string {
	if len(s) == 16 {
		return s + ":00"
	}
	return s
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
