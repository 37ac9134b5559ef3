package meetings

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/tutorsync/backend/pkg/apperr"
)

// startTimeLayout is the provider's expected precision; the timezone travels
// in its own field.
const startTimeLayout = "2006-01-02T15:04:05"

// Meeting is a provisioned meeting.
type Meeting struct {
	ID       int64
	JoinURL  string
	StartURL string
	Password string
}

// RecordingResult reports whether a shareable recording exists. An empty
// ShareURL with an empty Reason means no recording yet; a non-empty Reason is
// a user-displayable explanation of why an existing recording cannot be
// shared.
type RecordingResult struct {
	ShareURL string
	Password string
	Reason   string
}

type meetingSettings struct {
	HostVideo        bool   `json:"host_video"`
	ParticipantVideo bool   `json:"participant_video"`
	JoinBeforeHost   bool   `json:"join_before_host"`
	MuteUponEntry    bool   `json:"mute_upon_entry"`
	WaitingRoom      bool   `json:"waiting_room"`
	AutoRecording    string `json:"auto_recording"`
}

type createMeetingRequest struct {
	Topic     string          `json:"topic"`
	Type      int             `json:"type"`
	StartTime string          `json:"start_time"`
	Duration  int             `json:"duration"`
	Timezone  string          `json:"timezone"`
	Settings  meetingSettings `json:"settings"`
}

type meetingResponse struct {
	ID       int64  `json:"id"`
	JoinURL  string `json:"join_url"`
	StartURL string `json:"start_url"`
	Password string `json:"password"`
}

type recordingFile struct {
	ID            string `json:"id"`
	FileType      string `json:"file_type"`
	PlayURL       string `json:"play_url,omitempty"`
	DownloadURL   string `json:"download_url,omitempty"`
	RecordingType string `json:"recording_type,omitempty"`
}

type recordingsResponse struct {
	ShareURL       string          `json:"share_url,omitempty"`
	Password       string          `json:"password,omitempty"`
	RecordingFiles []recordingFile `json:"recording_files,omitempty"`
}

// CreateMeeting provisions a scheduled meeting with cloud recording enabled
// and join-before-host allowed.
func (c *Client) CreateMeeting(ctx context.Context, topic string, start time.Time, durationMinutes int, timezone string) (*Meeting, error) {
	payload := createMeetingRequest{
		Topic:     topic,
		Type:      2, // scheduled
		StartTime: start.Format(startTimeLayout),
		Duration:  durationMinutes,
		Timezone:  timezone,
		Settings: meetingSettings{
			HostVideo:        true,
			ParticipantVideo: true,
			JoinBeforeHost:   true,
			MuteUponEntry:    false,
			WaitingRoom:      false,
			AutoRecording:    "cloud",
		},
	}

	status, body, err := c.invoke(ctx, http.MethodPost, "/users/me/meetings", payload)
	if err != nil {
		return nil, err
	}
	if status != http.StatusCreated && status != http.StatusOK {
		return nil, apperr.Upstreamf("failed to create meeting: status %d", status)
	}

	var resp meetingResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, apperr.Upstream("meeting provider returned malformed meeting", err)
	}
	c.logger.Info("meeting created", zap.Int64("meeting_id", resp.ID))
	return &Meeting{ID: resp.ID, JoinURL: resp.JoinURL, StartURL: resp.StartURL, Password: resp.Password}, nil
}

// DeleteMeeting removes a meeting. A meeting that is already gone counts as
// deleted.
func (c *Client) DeleteMeeting(ctx context.Context, id int64) error {
	status, _, err := c.invoke(ctx, http.MethodDelete, fmt.Sprintf("/meetings/%d", id), nil)
	if err != nil {
		return err
	}
	switch status {
	case http.StatusNoContent, http.StatusOK:
		c.logger.Info("meeting deleted", zap.Int64("meeting_id", id))
		return nil
	case http.StatusNotFound:
		c.logger.Info("meeting already deleted or not found", zap.Int64("meeting_id", id))
		return nil
	default:
		return apperr.Upstreamf("failed to delete meeting %d: status %d", id, status)
	}
}

// RecordingStatus looks up a meeting's cloud recording. If files exist but no
// public share URL does, it toggles public sharing once and re-queries.
func (c *Client) RecordingStatus(ctx context.Context, id int64) (*RecordingResult, error) {
	status, body, err := c.invoke(ctx, http.MethodGet, recordingsPath(id), nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return &RecordingResult{}, nil
	}
	if status >= 400 {
		return &RecordingResult{Reason: reasonForStatus(status)}, nil
	}

	var resp recordingsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, apperr.Upstream("meeting provider returned malformed recording data", err)
	}
	if resp.ShareURL != "" {
		return &RecordingResult{ShareURL: resp.ShareURL, Password: resp.Password}, nil
	}
	if len(resp.RecordingFiles) == 0 {
		return &RecordingResult{}, nil
	}

	// Files exist but sharing is off. Turn it on once and look again.
	if reason := c.enablePublicSharing(ctx, id); reason != "" {
		return &RecordingResult{Reason: reason}, nil
	}
	status, body, err = c.invoke(ctx, http.MethodGet, recordingsPath(id), nil)
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		c.logger.Warn("recording re-query failed after enabling sharing",
			zap.Int64("meeting_id", id), zap.Int("status", status))
		return &RecordingResult{Reason: reasonForStatus(status)}, nil
	}
	resp = recordingsResponse{}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, apperr.Upstream("meeting provider returned malformed recording data", err)
	}
	if resp.ShareURL != "" {
		return &RecordingResult{ShareURL: resp.ShareURL, Password: resp.Password}, nil
	}
	return &RecordingResult{Reason: "recording is still processing - please try again later"}, nil
}

// enablePublicSharing returns an empty string on success, otherwise a
// user-displayable reason.
func (c *Client) enablePublicSharing(ctx context.Context, id int64) string {
	payload := map[string]any{
		"share_recording":          "publicly",
		"recording_authentication": false,
		"viewer_download":          true,
		"on_demand":                false,
		"password":                 "",
	}
	status, _, err := c.invoke(ctx, http.MethodPatch, recordingsPath(id)+"/settings", payload)
	if err != nil || status >= 400 {
		c.logger.Warn("could not enable public sharing",
			zap.Int64("meeting_id", id), zap.Int("status", status), zap.Error(err))
		return reasonForStatus(status)
	}
	return ""
}

func recordingsPath(id int64) string {
	return fmt.Sprintf("/meetings/%d/recordings", id)
}

func reasonForStatus(status int) string {
	switch status {
	case http.StatusTooManyRequests:
		return "too many requests - please try again later"
	case http.StatusUnauthorized:
		return "authentication failed - please reconnect the meeting account"
	case http.StatusForbidden, http.StatusBadRequest:
		return "recording sharing requires a paid plan or the recording:write scope"
	case http.StatusNotFound:
		return "recording not found"
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		return "meeting service error - please try again later"
	default:
		return "recording exists but cannot be shared publicly"
	}
}
