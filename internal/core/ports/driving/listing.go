package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/listingtrail/internal/core/domain"
)

// RegisterListingRequest creates a listing with an empty field set.
type RegisterListingRequest struct {
	// ID is optional; a UUID is generated when empty.
	ID           string
	Title        string
	Neighborhood string
	SnapshotID   string
}

// ApplyChangeRequest describes one field transition.
type ApplyChangeRequest struct {
	// ChangeID is optional; a UUID is generated when empty.
	ChangeID  string
	ListingID string
	FieldPath string

	// OldValue, when non-null, must equal the value in effect at ChangedAt.
	OldValue domain.Value
	NewValue domain.Value

	// EvidenceIDs cite ledger records supporting NewValue, in priority order.
	EvidenceIDs []string

	SnapshotID string
	Confidence float64

	// ChangedAt defaults to the snapshot capture time, or now.
	ChangedAt time.Time
}

// ListingService owns listing projections and their change history.
type ListingService interface {
	// Register creates a listing.
	Register(ctx context.Context, req RegisterListingRequest) (*domain.Listing, error)

	// Get returns the current projection, or the projection as of the
	// capture time of snapshotID when it is non-empty.
	Get(ctx context.Context, id, snapshotID string) (*domain.Listing, error)

	// GetAsOf returns the projection as of an instant.
	GetAsOf(ctx context.Context, id string, at time.Time) (*domain.Listing, error)

	// List returns all current projections ordered by ID.
	List(ctx context.Context) ([]domain.Listing, error)

	// ApplyChange appends a change to history and updates the projection.
	// It is the only way a listing's fields are mutated.
	ApplyChange(ctx context.Context, req ApplyChangeRequest) (*domain.ListingChange, error)

	// History returns a listing's changes in replay order.
	History(ctx context.Context, id string) ([]domain.ListingChange, error)

	// Rebuild replays history into the cached projection.
	Rebuild(ctx context.Context, id string) (*domain.Listing, error)
}
