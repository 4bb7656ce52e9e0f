package services

import (
	"context"
	"time"

	"github.com/custodia-labs/listingtrail/internal/core/domain"
	"github.com/custodia-labs/listingtrail/internal/core/ports/driven"
	"github.com/custodia-labs/listingtrail/internal/core/ports/driving"
)

// Ensure SearchSpecService implements the interface.
var _ driving.SearchSpecService = (*SearchSpecService)(nil)

// SearchSpecService manages search specs, named sets of hard constraints.
type SearchSpecService struct {
	store driven.SearchSpecStore
	now   func() time.Time
}

// NewSearchSpecService creates a new search spec service.
func NewSearchSpecService(store driven.SearchSpecStore) *SearchSpecService {
	return &SearchSpecService{store: store, now: time.Now}
}

// Create validates and stores a spec.
func (s *SearchSpecService) Create(ctx context.Context, spec domain.SearchSpec) (*domain.SearchSpec, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}
	if spec.ID == "" {
		spec.ID = newID()
	} else if err := requireUUID("search spec", spec.ID); err != nil {
		return nil, err
	}
	spec.Normalize()
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if spec.CreatedAt.IsZero() {
		spec.CreatedAt = s.now().UTC()
	}
	if err := s.store.Save(ctx, spec); err != nil {
		return nil, err
	}
	return &spec, nil
}

// Get retrieves a spec by ID.
func (s *SearchSpecService) Get(ctx context.Context, id string) (*domain.SearchSpec, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}
	if err := requireUUID("search spec", id); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, id)
}

// List returns all specs.
func (s *SearchSpecService) List(ctx context.Context) ([]domain.SearchSpec, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}
	return s.store.List(ctx)
}
