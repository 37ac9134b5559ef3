package calendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/tutorsync/backend/config"
	"github.com/tutorsync/backend/internal/metrics"
	"github.com/tutorsync/backend/internal/models"
	"github.com/tutorsync/backend/pkg/apperr"
)

// List window: sessions up to 30 days back and a year ahead.
const (
	listWindowPast   = 30 * 24 * time.Hour
	listWindowFuture = 365 * 24 * time.Hour
	listMaxResults   = 2500

	defaultTimeout = 15 * time.Second
)

// GoogleProvider implements Provider against the Google Calendar v3 API.
type GoogleProvider struct {
	svc        *gcal.Service
	calendarID string
	logger     *zap.Logger
}

// TokenSource builds an oauth2 token source from the configured credentials.
// A static access token wins; otherwise the refresh-token flow is used.
func TokenSource(ctx context.Context, cfg config.GoogleConfig, scopes ...string) (oauth2.TokenSource, error) {
	if cfg.AccessToken != "" {
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.AccessToken}), nil
	}
	if cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.RefreshToken == "" {
		return nil, apperr.Auth("calendar service credentials not configured", nil)
	}
	conf := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       scopes,
	}
	return conf.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken}), nil
}

// HTTPClient returns an authenticated client whose requests are bounded by
// timeout, so a hung upstream call cannot block a handler indefinitely.
func HTTPClient(ctx context.Context, ts oauth2.TokenSource, timeout time.Duration) *http.Client {
	client := oauth2.NewClient(ctx, ts)
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client.Timeout = timeout
	return client
}

// NewGoogleProvider creates a calendar client for the configured calendar.
// Every call it issues is bounded by timeout.
func NewGoogleProvider(ctx context.Context, cfg config.GoogleConfig, timeout time.Duration, logger *zap.Logger) (*GoogleProvider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	ts, err := TokenSource(ctx, cfg, gcal.CalendarScope)
	if err != nil {
		return nil, err
	}
	svc, err := gcal.NewService(ctx, option.WithHTTPClient(HTTPClient(ctx, ts, timeout)))
	if err != nil {
		return nil, fmt.Errorf("calendar service: %w", err)
	}
	calendarID := cfg.CalendarID
	if calendarID == "" {
		calendarID = "primary"
	}
	return &GoogleProvider{svc: svc, calendarID: calendarID, logger: logger}, nil
}

// Organizer resolves the authenticated identity from the primary calendar.
func (p *GoogleProvider) Organizer(ctx context.Context) (*models.Organizer, error) {
	list, err := p.svc.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return nil, p.wrapErr("resolve organizer", err)
	}
	metrics.RecordUpstream("calendar", true)
	for _, item := range list.Items {
		if item.Primary {
			org := &models.Organizer{Email: item.Id}
			if item.Summary != "" {
				summary := item.Summary
				org.Name = &summary
			}
			return org, nil
		}
	}
	return &models.Organizer{Email: p.calendarID}, nil
}

// ListEvents returns default-type events in the bounded window, expanded and
// ordered by start time.
func (p *GoogleProvider) ListEvents(ctx context.Context) ([]Event, error) {
	now := time.Now()
	resp, err := p.svc.Events.List(p.calendarID).
		TimeMin(now.Add(-listWindowPast).Format(time.RFC3339)).
		TimeMax(now.Add(listWindowFuture).Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(listMaxResults).
		Context(ctx).Do()
	if err != nil {
		return nil, p.wrapErr("list events", err)
	}
	metrics.RecordUpstream("calendar", true)

	events := make([]Event, 0, len(resp.Items))
	for _, item := range resp.Items {
		// Out-of-office, focus-time and the like are not sessions.
		if item.EventType != "" && item.EventType != "default" {
			continue
		}
		events = append(events, fromGoogle(item))
	}
	return events, nil
}

// GetEvent fetches one event by id.
func (p *GoogleProvider) GetEvent(ctx context.Context, id string) (*Event, error) {
	item, err := p.svc.Events.Get(p.calendarID, id).Context(ctx).Do()
	if err != nil {
		return nil, p.wrapErr("get event", err)
	}
	metrics.RecordUpstream("calendar", true)
	ev := fromGoogle(item)
	return &ev, nil
}

// InsertEvent creates an event and notifies attendees.
func (p *GoogleProvider) InsertEvent(ctx context.Context, ev Event) (*Event, error) {
	item, err := p.svc.Events.Insert(p.calendarID, toGoogle(ev)).
		SendUpdates("all").
		Context(ctx).Do()
	if err != nil {
		return nil, p.wrapErr("insert event", err)
	}
	metrics.RecordUpstream("calendar", true)
	created := fromGoogle(item)
	return &created, nil
}

// UpdateEvent overwrites an event's fields and notifies attendees.
func (p *GoogleProvider) UpdateEvent(ctx context.Context, id string, ev Event) (*Event, error) {
	item, err := p.svc.Events.Update(p.calendarID, id, toGoogle(ev)).
		SendUpdates("all").
		Context(ctx).Do()
	if err != nil {
		return nil, p.wrapErr("update event", err)
	}
	metrics.RecordUpstream("calendar", true)
	updated := fromGoogle(item)
	return &updated, nil
}

// DeleteEvent removes an event and notifies attendees.
func (p *GoogleProvider) DeleteEvent(ctx context.Context, id string) error {
	err := p.svc.Events.Delete(p.calendarID, id).
		SendUpdates("all").
		Context(ctx).Do()
	if err != nil {
		return p.wrapErr("delete event", err)
	}
	metrics.RecordUpstream("calendar", true)
	return nil
}

func (p *GoogleProvider) wrapErr(op string, err error) error {
	metrics.RecordUpstream("calendar", false)
	if errors.Is(err, context.DeadlineExceeded) {
		p.logger.Error("calendar call timed out", zap.String("op", op))
		return apperr.Upstream("calendar service timed out", err)
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusNotFound, http.StatusGone:
			return apperr.NotFound("event not found")
		case http.StatusUnauthorized:
			return apperr.Auth("calendar service rejected credentials", err)
		default:
			p.logger.Error("calendar call failed",
				zap.String("op", op), zap.Int("status", gerr.Code), zap.String("detail", gerr.Message))
			return apperr.Upstreamf("calendar service error (%d): %s", gerr.Code, gerr.Message)
		}
	}
	p.logger.Error("calendar call failed", zap.String("op", op), zap.Error(err))
	return apperr.Upstream("calendar service unreachable", err)
}

func fromGoogle(item *gcal.Event) Event {
	ev := Event{
		ID:          item.Id,
		Summary:     item.Summary,
		Description: item.Description,
		EventType:   item.EventType,
		MeetLink:    item.HangoutLink,
	}
	if ev.MeetLink == "" && item.ConferenceData != nil {
		for _, ep := range item.ConferenceData.EntryPoints {
			if ep.Uri != "" {
				ev.MeetLink = ep.Uri
				break
			}
		}
	}
	if item.Start != nil {
		ev.StartTime = item.Start.DateTime
		if ev.StartTime == "" {
			ev.StartTime = item.Start.Date
		}
		ev.Timezone = item.Start.TimeZone
	}
	if item.End != nil {
		ev.EndTime = item.End.DateTime
		if ev.EndTime == "" {
			ev.EndTime = item.End.Date
		}
	}
	if ev.Timezone == "" {
		ev.Timezone = "UTC"
	}
	for _, a := range item.Attendees {
		if a.Email != "" {
			ev.Attendees = append(ev.Attendees, a.Email)
		}
	}
	return ev
}

func toGoogle(ev Event) *gcal.Event {
	attendees := make([]*gcal.EventAttendee, 0, len(ev.Attendees))
	for _, email := range ev.Attendees {
		attendees = append(attendees, &gcal.EventAttendee{Email: email})
	}
	return &gcal.Event{
		Summary:     ev.Summary,
		Description: ev.Description,
		Start:       &gcal.EventDateTime{DateTime: ev.StartTime, TimeZone: ev.Timezone},
		End:         &gcal.EventDateTime{DateTime: ev.EndTime, TimeZone: ev.Timezone},
		Attendees:   attendees,
	}
}
