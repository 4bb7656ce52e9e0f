package driven

import (
	"context"

	"github.com/custodia-labs/listingtrail/internal/core/domain"
)

// SnapshotStore persists immutable snapshots.
type SnapshotStore interface {
	// Save inserts a snapshot. Returns domain.ErrConflict if the id exists.
	Save(ctx context.Context, snapshot domain.Snapshot) error

	// Get retrieves a snapshot by ID.
	Get(ctx context.Context, id string) (*domain.Snapshot, error)

	// FindByContent returns the earliest snapshot of url with the given
	// content hash, or domain.ErrNotFound.
	FindByContent(ctx context.Context, url, contentHash string) (*domain.Snapshot, error)

	// List returns all snapshots ordered by capture time.
	List(ctx context.Context) ([]domain.Snapshot, error)
}
