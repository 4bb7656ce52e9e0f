package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/listingtrail/internal/core/domain"
	"github.com/custodia-labs/listingtrail/internal/core/ports/driven"
)

// Ensure SearchSpecStore implements the interface.
var _ driven.SearchSpecStore = (*SearchSpecStore)(nil)

// SearchSpecStore is an in-memory implementation of driven.SearchSpecStore.
type SearchSpecStore struct {
	mu    sync.RWMutex
	specs map[string]domain.SearchSpec
}

// NewSearchSpecStore creates a new in-memory search spec store.
func NewSearchSpecStore() *SearchSpecStore {
	return &SearchSpecStore{
		specs: make(map[string]domain.SearchSpec),
	}
}

// Save inserts a spec.
func (s *SearchSpecStore) Save(_ context.Context, spec domain.SearchSpec) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.specs[spec.ID]; exists {
		return fmt.Errorf("search spec %s: %w", spec.ID, domain.ErrConflict)
	}
	spec.Hard = append([]domain.Constraint(nil), spec.Hard...)
	s.specs[spec.ID] = spec
	return nil
}

// Get retrieves a spec by ID.
func (s *SearchSpecStore) Get(_ context.Context, id string) (*domain.SearchSpec, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	spec, ok := s.specs[id]
	if !ok {
		return nil, fmt.Errorf("search spec %s: %w", id, domain.ErrNotFound)
	}
	spec.Hard = append([]domain.Constraint(nil), spec.Hard...)
	return &spec, nil
}

// List returns all specs, newest first.
func (s *SearchSpecStore) List(_ context.Context) ([]domain.SearchSpec, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.SearchSpec, 0, len(s.specs))
	for _, spec := range s.specs {
		result = append(result, spec)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}
