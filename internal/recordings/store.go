package recordings

import (
	"context"
	"time"
)

const (
	// recentWindow bounds how far back a store looks for candidates.
	recentWindow = 30 * 24 * time.Hour
	// maxCandidates caps one batch; List amortizes to a single store call
	// regardless of event count.
	maxCandidates = 100
)

// Store lists recent recording files from wherever the organizer's recordings
// land. One bounded batch per List request.
type Store interface {
	ListRecent(ctx context.Context) ([]Candidate, error)
}
