package driven

import (
	"context"

	"github.com/custodia-labs/listingtrail/internal/core/domain"
)

// EvidenceStore persists evidence citations. Records are never updated.
type EvidenceStore interface {
	// Save inserts a citation. Returns domain.ErrConflict if the id exists.
	Save(ctx context.Context, evidence domain.Evidence) error

	// Get retrieves a citation by ID.
	Get(ctx context.Context, id string) (*domain.Evidence, error)

	// ListBySnapshot returns the citations drawn from a snapshot, oldest first.
	ListBySnapshot(ctx context.Context, snapshotID string) ([]domain.Evidence, error)
}
