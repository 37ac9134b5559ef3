package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutorsync/backend/pkg/apperr"
)

func validInsert() InsertEvent {
	return InsertEvent{
		Title:        "Algebra Review",
		StartTime:    "2024-06-01T10:00",
		EndTime:      "2024-06-01T11:00",
		Timezone:     "UTC",
		Participants: []string{"a@x.com"},
	}
}

func TestValidateAcceptsWellFormedInput(t *testing.T) {
	require.NoError(t, validInsert().Validate())
}

func TestValidateTimeRange(t *testing.T) {
	cases := []struct {
		name    string
		start   string
		end     string
		wantErr bool
	}{
		{"end after start", "2024-06-01T10:00", "2024-06-01T11:00", false},
		{"end equals start", "2024-06-01T10:00", "2024-06-01T10:00", true},
		{"end before start", "2024-06-01T11:00", "2024-06-01T10:00", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInsert()
			in.StartTime, in.EndTime = tc.start, tc.end
			err := in.Validate()
			if !tc.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
			assert.Contains(t, err.Error(), "endTime")
		})
	}
}

func TestValidateParticipantLimit(t *testing.T) {
	in := validInsert()
	in.Participants = make([]string, 7)
	for i := range in.Participants {
		in.Participants[i] = "student" + string(rune('a'+i)) + "@example.com"
	}
	err := in.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maximum 6 participants")

	in.Participants = in.Participants[:6]
	require.NoError(t, in.Validate())
}

func TestValidateRejectsMalformedEmailAnywhere(t *testing.T) {
	in := validInsert()
	in.Participants = []string{"ok@example.com", "not-an-email", "also-ok@example.com"}
	err := in.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not-an-email")
}

func TestValidateAggregatesAllProblems(t *testing.T) {
	in := InsertEvent{
		Title:        "",
		StartTime:    "2024-06-01T11:00",
		EndTime:      "2024-06-01T10:00",
		Timezone:     "",
		Participants: []string{"bad"},
	}
	err := in.Validate()
	require.Error(t, err)
	msg := err.Error()
	for _, want := range []string{"title", "endTime", "timezone", "bad"} {
		assert.Contains(t, msg, want)
	}
	assert.GreaterOrEqual(t, strings.Count(msg, ";"), 3)
}

func TestValidateTitleLength(t *testing.T) {
	in := validInsert()
	in.Title = strings.Repeat("x", 101)
	require.Error(t, in.Validate())

	in.Title = strings.Repeat("x", 100)
	require.NoError(t, in.Validate())
}

func TestValidateTitleLengthCountsCharacters(t *testing.T) {
	// Multibyte runes count as one character each.
	in := validInsert()
	in.Title = strings.Repeat("数", 100)
	require.NoError(t, in.Validate())

	in.Title = strings.Repeat("数", 101)
	require.Error(t, in.Validate())
}

func TestDurationMinutes(t *testing.T) {
	in := validInsert()
	assert.Equal(t, 60, in.DurationMinutes())

	in.EndTime = "2024-06-01T10:45"
	assert.Equal(t, 45, in.DurationMinutes())
}

func TestParseEventTimeForms(t *testing.T) {
	for _, s := range []string{
		"2024-06-01T10:00",
		"2024-06-01T10:00:00",
		"2024-06-01T10:00:00Z",
		"2024-06-01T10:00:00+02:00",
		"2024-06-01",
	} {
		_, err := ParseEventTime(s)
		assert.NoError(t, err, s)
	}
	_, err := ParseEventTime("June 1st")
	assert.Error(t, err)
}
