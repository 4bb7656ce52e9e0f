package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/listingtrail/internal/core/domain"
)

// CreateSnapshotRequest describes a captured page.
type CreateSnapshotRequest struct {
	URL      string
	Text     string
	HTML     string
	SourceID string

	// CapturedAt defaults to now when zero.
	CapturedAt time.Time
}

// SnapshotService records immutable page captures.
type SnapshotService interface {
	// Create stores a snapshot. A capture of the same URL with identical
	// text returns the existing snapshot instead of a duplicate.
	Create(ctx context.Context, req CreateSnapshotRequest) (*domain.Snapshot, error)

	// Get retrieves a snapshot by ID.
	Get(ctx context.Context, id string) (*domain.Snapshot, error)

	// List returns all snapshots ordered by capture time.
	List(ctx context.Context) ([]domain.Snapshot, error)
}
