package sessions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkerRoundTrip(t *testing.T) {
	m := Marker{MeetingID: 84512345678, JoinURL: "https://zoom.us/j/84512345678?pwd=abc"}
	embedded := m.Embed("Bring last week's worksheet")

	parsed := ParseMarker(embedded)
	assert.Equal(t, m, parsed)
	assert.True(t, parsed.Valid())

	assert.Equal(t, "Bring last week's worksheet", StripMarker(embedded))
}

func TestMarkerEmbedFormat(t *testing.T) {
	m := Marker{MeetingID: 123, JoinURL: "https://zoom.us/j/123"}
	got := m.Embed("notes")
	assert.Equal(t, "notes\n\nZoom Meeting: https://zoom.us/j/123\n[ZoomMeetingId:123]", got)
}

func TestMarkerEmbedEmptyDescriptionStripsClean(t *testing.T) {
	m := Marker{MeetingID: 99, JoinURL: "https://zoom.us/j/99"}
	assert.Equal(t, "", StripMarker(m.Embed("")))
}

func TestParseMarkerAbsent(t *testing.T) {
	parsed := ParseMarker("just a plain description")
	assert.Zero(t, parsed.MeetingID)
	assert.Empty(t, parsed.JoinURL)
	assert.False(t, parsed.Valid())
}

func TestParseMarkerPartial(t *testing.T) {
	// The link line was edited away outside this system; the id still pairs
	// the meeting for deletion but the marker cannot be re-embedded whole.
	parsed := ParseMarker("notes\n[ZoomMeetingId:555]")
	require.EqualValues(t, 555, parsed.MeetingID)
	assert.False(t, parsed.Valid())
}

func TestStripMarkerLeavesForeignText(t *testing.T) {
	assert.Equal(t, "agenda", StripMarker("agenda"))
}
