package driven

import (
	"context"

	"github.com/custodia-labs/listingtrail/internal/core/domain"
)

// ListingStore persists listing projections.
//
// The stored field set is a cache over the change history. Only the listing
// service writes it, and only while holding the listing's write lock.
type ListingStore interface {
	// Create inserts a new listing. Returns domain.ErrConflict if the id exists.
	Create(ctx context.Context, listing domain.Listing) error

	// Save replaces the stored projection of an existing listing.
	Save(ctx context.Context, listing domain.Listing) error

	// Get retrieves a listing by ID.
	Get(ctx context.Context, id string) (*domain.Listing, error)

	// List returns all listings ordered by ID.
	List(ctx context.Context) ([]domain.Listing, error)
}
