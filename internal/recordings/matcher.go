// Package recordings associates calendar events with separately discovered
// recording files, and lists recent recordings from a configured store.
package recordings

import (
	"regexp"
	"strings"
	"time"
)

// Candidate is a recording file that may belong to a session.
type Candidate struct {
	ID        string
	Name      string
	URL       string
	CreatedAt time.Time
}

// matchWindow bounds how far a recording's creation time may sit from the
// event start and still count as the same session.
const matchWindow = 48 * time.Hour

var (
	meetCodePattern = regexp.MustCompile(`(?i)meet\.google\.com/([a-z]{3}-[a-z]{4}-[a-z]{3})`)
	zoomIDPattern   = regexp.MustCompile(`zoom\.us/j/(\d+)`)
)

// genericRecordingNames flag files the meeting service itself named.
var genericRecordingNames = []string{
	"meet recording",
	"meet_recording",
	"meeting recording",
}

// predicate reports whether a candidate's name ties it to the event. The list
// is ranked: earlier predicates are stronger signals.
type predicate func(title, meetingCode string, c Candidate) bool

var namePredicates = []predicate{
	nameContainsMeetingCode,
	nameSharesTitlePrefix,
	nameLooksLikeRecording,
}

// Match returns the first candidate created within the tolerance window of
// start whose name satisfies one of the ranked predicates, or nil. The result
// is a likelihood, not a certainty; callers must treat it as best effort.
func Match(title string, start time.Time, meetLink string, candidates []Candidate) *Candidate {
	code := extractMeetingCode(meetLink)
	for i := range candidates {
		c := candidates[i]
		if c.CreatedAt.IsZero() || absDuration(c.CreatedAt.Sub(start)) > matchWindow {
			continue
		}
		for _, p := range namePredicates {
			if p(title, code, c) {
				return &c
			}
		}
	}
	return nil
}

func nameContainsMeetingCode(_, code string, c Candidate) bool {
	if code == "" {
		return false
	}
	return strings.Contains(strings.ToLower(c.Name), code)
}

func nameSharesTitlePrefix(title, _ string, c Candidate) bool {
	t := strings.ToLower(strings.TrimSpace(title))
	if t == "" {
		return false
	}
	return strings.HasPrefix(strings.ToLower(c.Name), t)
}

func nameLooksLikeRecording(_, _ string, c Candidate) bool {
	name := strings.ToLower(c.Name)
	for _, marker := range genericRecordingNames {
		if strings.Contains(name, marker) {
			return true
		}
	}
	return false
}

// extractMeetingCode pulls the comparable code fragment out of a conferencing
// link: the dashless room code for Meet links, the numeric id for Zoom links.
func extractMeetingCode(meetLink string) string {
	if m := meetCodePattern.FindStringSubmatch(meetLink); m != nil {
		return strings.ToLower(strings.ReplaceAll(m[1], "-", ""))
	}
	if m := zoomIDPattern.FindStringSubmatch(meetLink); m != nil {
		return m[1]
	}
	return ""
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
