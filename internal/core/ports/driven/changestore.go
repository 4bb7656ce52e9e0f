package driven

import (
	"context"

	"github.com/custodia-labs/listingtrail/internal/core/domain"
)

// ChangeStore is the append-only listing change log.
type ChangeStore interface {
	// Append inserts a change and assigns its Sequence.
	// Returns domain.ErrConflict if the change id was used before.
	Append(ctx context.Context, change *domain.ListingChange) error

	// Get retrieves a change by ID.
	Get(ctx context.Context, id string) (*domain.ListingChange, error)

	// ListFor returns a listing's changes ordered by ChangedAt, ties broken
	// by insertion order.
	ListFor(ctx context.Context, listingID string) ([]domain.ListingChange, error)
}

// ChangeRecorder is implemented by change stores that share a transaction
// with the listing store, so a change and the projection it yields are
// written together.
type ChangeRecorder interface {
	// Record appends change, assigning its Sequence, then saves the listing
	// returned by project for the recorded change. Either both writes are
	// kept or neither is.
	Record(ctx context.Context, change *domain.ListingChange, project func(domain.ListingChange) domain.Listing) error
}
