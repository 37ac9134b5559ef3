package recordings

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/tutorsync/backend/config"
	"github.com/tutorsync/backend/internal/calendar"
	"github.com/tutorsync/backend/internal/metrics"
	"github.com/tutorsync/backend/pkg/apperr"
)

// DriveStore lists recent video files from the organizer's Drive, where Meet
// drops its recordings.
type DriveStore struct {
	svc    *drive.Service
	logger *zap.Logger
}

// NewDriveStore creates a Drive-backed recording store using the calendar
// service credentials. Every call it issues is bounded by timeout.
func NewDriveStore(ctx context.Context, cfg config.GoogleConfig, timeout time.Duration, logger *zap.Logger) (*DriveStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	ts, err := calendar.TokenSource(ctx, cfg, drive.DriveReadonlyScope)
	if err != nil {
		return nil, err
	}
	svc, err := drive.NewService(ctx, option.WithHTTPClient(calendar.HTTPClient(ctx, ts, timeout)))
	if err != nil {
		return nil, fmt.Errorf("drive service: %w", err)
	}
	return &DriveStore{svc: svc, logger: logger}, nil
}

// ListRecent returns video files created inside the recent window, newest
// first.
func (s *DriveStore) ListRecent(ctx context.Context) ([]Candidate, error) {
	since := time.Now().Add(-recentWindow).Format(time.RFC3339)
	query := fmt.Sprintf("mimeType contains 'video/' and trashed = false and createdTime > '%s'", since)

	resp, err := s.svc.Files.List().
		Q(query).
		Fields("files(id, name, webViewLink, mimeType, createdTime)").
		OrderBy("createdTime desc").
		PageSize(maxCandidates).
		Context(ctx).Do()
	if err != nil {
		metrics.RecordUpstream("drive", false)
		return nil, apperr.Upstream("recording store listing failed", err)
	}
	metrics.RecordUpstream("drive", true)

	candidates := make([]Candidate, 0, len(resp.Files))
	for _, f := range resp.Files {
		created, err := time.Parse(time.RFC3339, f.CreatedTime)
		if err != nil {
			s.logger.Debug("skipping file with unparseable created time",
				zap.String("file_id", f.Id), zap.String("created_time", f.CreatedTime))
			continue
		}
		candidates = append(candidates, Candidate{
			ID:        f.Id,
			Name:      f.Name,
			URL:       f.WebViewLink,
			CreatedAt: created,
		})
	}
	return candidates, nil
}
