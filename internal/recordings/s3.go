package recordings

import (
	"context"
	"path"
	"time"

	"go.uber.org/zap"

	"github.com/tutorsync/backend/internal/metrics"
	"github.com/tutorsync/backend/pkg/apperr"
	"github.com/tutorsync/backend/pkg/storage"
)

// S3Store lists recent recording objects from a bucket. Candidate URLs are
// pre-signed, so they expire with the presign window.
type S3Store struct {
	s3     *storage.S3
	logger *zap.Logger
}

// NewS3Store creates an S3-backed recording store.
func NewS3Store(s3 *storage.S3, logger *zap.Logger) *S3Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &S3Store{s3: s3, logger: logger}
}

// ListRecent returns video objects modified inside the recent window.
func (s *S3Store) ListRecent(ctx context.Context) ([]Candidate, error) {
	objects, err := s.s3.ListRecordings(ctx, time.Now().Add(-recentWindow), maxCandidates)
	if err != nil {
		metrics.RecordUpstream("s3", false)
		return nil, apperr.Upstream("recording store listing failed", err)
	}
	metrics.RecordUpstream("s3", true)

	candidates := make([]Candidate, 0, len(objects))
	for _, obj := range objects {
		url, err := s.s3.GeneratePresignedDownloadURL(ctx, obj.Key)
		if err != nil {
			s.logger.Warn("presign failed for recording object",
				zap.String("key", obj.Key), zap.Error(err))
			continue
		}
		candidates = append(candidates, Candidate{
			ID:        obj.Key,
			Name:      path.Base(obj.Key),
			URL:       url,
			CreatedAt: obj.LastModified,
		})
	}
	return candidates, nil
}
