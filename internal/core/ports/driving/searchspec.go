package driving

import (
	"context"

	"github.com/custodia-labs/listingtrail/internal/core/domain"
)

// SearchSpecService manages search specs, named sets of hard constraints.
type SearchSpecService interface {
	// Create validates and stores a spec. A UUID is generated when the id is empty.
	Create(ctx context.Context, spec domain.SearchSpec) (*domain.SearchSpec, error)

	// Get retrieves a spec by ID.
	Get(ctx context.Context, id string) (*domain.SearchSpec, error)

	// List returns all specs.
	List(ctx context.Context) ([]domain.SearchSpec, error)
}
