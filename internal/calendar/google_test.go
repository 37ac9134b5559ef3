package calendar

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"

	"github.com/tutorsync/backend/config"
	"github.com/tutorsync/backend/pkg/apperr"
)

func testProvider() *GoogleProvider {
	return &GoogleProvider{calendarID: "primary", logger: zap.NewNop()}
}

func TestWrapErrMapsDeadlineToUpstream(t *testing.T) {
	err := testProvider().wrapErr("list events", context.DeadlineExceeded)
	assert.Equal(t, apperr.KindUpstream, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "timed out")
}

func TestWrapErrMapsStatusCodes(t *testing.T) {
	p := testProvider()
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(p.wrapErr("get event", &googleapi.Error{Code: http.StatusNotFound})))
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(p.wrapErr("get event", &googleapi.Error{Code: http.StatusGone})))
	assert.Equal(t, apperr.KindAuth, apperr.KindOf(p.wrapErr("get event", &googleapi.Error{Code: http.StatusUnauthorized})))
	assert.Equal(t, apperr.KindUpstream, apperr.KindOf(p.wrapErr("get event", &googleapi.Error{Code: http.StatusInternalServerError, Message: "backend error"})))
}

func TestHTTPClientBoundsRequests(t *testing.T) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "tok"})

	client := HTTPClient(context.Background(), ts, 3*time.Second)
	assert.Equal(t, 3*time.Second, client.Timeout)

	client = HTTPClient(context.Background(), ts, 0)
	assert.Equal(t, defaultTimeout, client.Timeout)
}

func TestTokenSourceRequiresCredentials(t *testing.T) {
	_, err := TokenSource(context.Background(), config.GoogleConfig{}, gcal.CalendarScope)
	require.Error(t, err)
	assert.Equal(t, apperr.KindAuth, apperr.KindOf(err))

	ts, err := TokenSource(context.Background(), config.GoogleConfig{AccessToken: "static"}, gcal.CalendarScope)
	require.NoError(t, err)
	tok, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "static", tok.AccessToken)
}

func TestFromGoogleMeetLink(t *testing.T) {
	item := &gcal.Event{Id: "e1", Summary: "Algebra", HangoutLink: "https://meet.google.com/abc-defg-hij"}
	assert.Equal(t, "https://meet.google.com/abc-defg-hij", fromGoogle(item).MeetLink)

	// No hangout link; the first conference entry point stands in.
	item = &gcal.Event{
		Id: "e2",
		ConferenceData: &gcal.ConferenceData{EntryPoints: []*gcal.EntryPoint{
			{EntryPointType: "video", Uri: "https://meet.google.com/xyz-abcd-efg"},
		}},
	}
	assert.Equal(t, "https://meet.google.com/xyz-abcd-efg", fromGoogle(item).MeetLink)

	item = &gcal.Event{Id: "e3"}
	assert.Empty(t, fromGoogle(item).MeetLink)
}
