package driven

import (
	"context"

	"github.com/custodia-labs/listingtrail/internal/core/domain"
)

// SearchSpecStore persists search specs.
type SearchSpecStore interface {
	// Save inserts a spec. Returns domain.ErrConflict if the id exists.
	Save(ctx context.Context, spec domain.SearchSpec) error

	// Get retrieves a spec by ID.
	Get(ctx context.Context, id string) (*domain.SearchSpec, error)

	// List returns all specs, newest first.
	List(ctx context.Context) ([]domain.SearchSpec, error)
}
