package sessions

import (
	"regexp"
	"strconv"
	"strings"
)

// The pairing between a calendar event and its backing meeting is carried in
// the event description itself, as a trailing block the frontend never shows:
//
//	<free text>
//
//	Zoom Meeting: <join url>
//	[ZoomMeetingId:<id>]
//
// Keeping the pairing in the event makes the calendar the single source of
// truth, and it survives calendar-only edits made outside this system.

var (
	markerIDPattern   = regexp.MustCompile(`\[ZoomMeetingId:(\d+)\]`)
	markerLinkPattern = regexp.MustCompile(`Zoom Meeting: (https://\S+)`)
	stripLinkPattern  = regexp.MustCompile(`\n\nZoom Meeting: https://\S+`)
	stripIDPattern    = regexp.MustCompile(`\n\[ZoomMeetingId:\d+\]`)
)

// Marker is the parsed pairing block.
type Marker struct {
	MeetingID int64
	JoinURL   string
}

// Valid reports whether the marker carries both halves of the pairing and can
// be re-embedded unchanged.
func (m Marker) Valid() bool {
	return m.MeetingID != 0 && m.JoinURL != ""
}

// Embed appends the marker block to a display description.
func (m Marker) Embed(description string) string {
	var b strings.Builder
	b.WriteString(description)
	b.WriteString("\n\nZoom Meeting: ")
	b.WriteString(m.JoinURL)
	b.WriteString("\n[ZoomMeetingId:")
	b.WriteString(strconv.FormatInt(m.MeetingID, 10))
	b.WriteString("]")
	return b.String()
}

// ParseMarker extracts the pairing from a stored description. Fields the
// description no longer carries are left zero.
func ParseMarker(description string) Marker {
	var m Marker
	if match := markerIDPattern.FindStringSubmatch(description); match != nil {
		if id, err := strconv.ParseInt(match[1], 10, 64); err == nil {
			m.MeetingID = id
		}
	}
	if match := markerLinkPattern.FindStringSubmatch(description); match != nil {
		m.JoinURL = match[1]
	}
	return m
}

// StripMarker removes the pairing block for display.
func StripMarker(description string) string {
	description = stripLinkPattern.ReplaceAllString(description, "")
	description = stripIDPattern.ReplaceAllString(description, "")
	return strings.TrimSpace(description)
}
