package recordings

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var eventStart = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

func TestMatchOutsideWindowNeverMatches(t *testing.T) {
	// 49 hours away; the name could not be a stronger signal.
	c := Candidate{
		ID:        "f1",
		Name:      "Algebra Review (abcdefghij)",
		CreatedAt: eventStart.Add(49 * time.Hour),
	}
	got := Match("Algebra Review", eventStart, "https://meet.google.com/abc-defg-hij", []Candidate{c})
	assert.Nil(t, got)

	c.CreatedAt = eventStart.Add(-49 * time.Hour)
	got = Match("Algebra Review", eventStart, "https://meet.google.com/abc-defg-hij", []Candidate{c})
	assert.Nil(t, got)
}

func TestMatchByMeetingCode(t *testing.T) {
	c := Candidate{
		ID:        "f1",
		Name:      "session abcdefghij capture",
		CreatedAt: eventStart.Add(10 * time.Minute),
	}
	got := Match("Totally Different Title", eventStart, "https://meet.google.com/abc-defg-hij", []Candidate{c})
	require.NotNil(t, got)
	assert.Equal(t, "f1", got.ID)
}

func TestMatchByZoomMeetingID(t *testing.T) {
	c := Candidate{
		ID:        "f2",
		Name:      "GMT20240601-845123456.mp4",
		CreatedAt: eventStart.Add(time.Hour),
	}
	got := Match("Algebra", eventStart, "https://zoom.us/j/845123456", []Candidate{c})
	require.NotNil(t, got)
	assert.Equal(t, "f2", got.ID)
}

func TestMatchByTitlePrefix(t *testing.T) {
	c := Candidate{
		ID:        "f3",
		Name:      "Algebra Review (2024-06-01 at 10:00 GMT)",
		CreatedAt: eventStart.Add(2 * time.Hour),
	}
	got := Match("Algebra Review", eventStart, "", []Candidate{c})
	require.NotNil(t, got)
	assert.Equal(t, "f3", got.ID)
}

func TestMatchByGenericRecordingName(t *testing.T) {
	c := Candidate{
		ID:        "f4",
		Name:      "Meet Recording 2024-06-01",
		CreatedAt: eventStart.Add(90 * time.Minute),
	}
	got := Match("Algebra Review", eventStart, "", []Candidate{c})
	require.NotNil(t, got)
}

func TestMatchRejectsUnrelatedNameInsideWindow(t *testing.T) {
	c := Candidate{
		ID:        "f5",
		Name:      "vacation-clip.mp4",
		CreatedAt: eventStart.Add(time.Hour),
	}
	got := Match("Algebra Review", eventStart, "https://zoom.us/j/845123456", []Candidate{c})
	assert.Nil(t, got)
}

func TestMatchFirstCandidateWins(t *testing.T) {
	candidates := []Candidate{
		{ID: "first", Name: "Algebra Review early", CreatedAt: eventStart.Add(time.Hour)},
		{ID: "second", Name: "Algebra Review later", CreatedAt: eventStart.Add(2 * time.Hour)},
	}
	got := Match("Algebra Review", eventStart, "", candidates)
	require.NotNil(t, got)
	assert.Equal(t, "first", got.ID)
}

func TestExtractMeetingCode(t *testing.T) {
	assert.Equal(t, "abcdefghij", extractMeetingCode("https://meet.google.com/abc-defg-hij"))
	assert.Equal(t, "845123456", extractMeetingCode("https://zoom.us/j/845123456?pwd=xyz"))
	assert.Empty(t, extractMeetingCode("https://example.com/room/1"))
}
