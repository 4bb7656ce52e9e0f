package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/listingtrail/internal/core/domain"
	"github.com/custodia-labs/listingtrail/internal/core/ports/driven"
)

// Ensure ChangeStore implements the interface.
var _ driven.ChangeStore = (*ChangeStore)(nil)

// ChangeStore is an in-memory implementation of driven.ChangeStore.
type ChangeStore struct {
	mu        sync.RWMutex
	changes   map[string]domain.ListingChange
	byListing map[string][]string
	seq       int64
}

// NewChangeStore creates a new in-memory change store.
func NewChangeStore() *ChangeStore {
	return &ChangeStore{
		changes:   make(map[string]domain.ListingChange),
		byListing: make(map[string][]string),
	}
}

// Append inserts a change and assigns its sequence number.
func (s *ChangeStore) Append(_ context.Context, change *domain.ListingChange) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.changes[change.ID]; exists {
		return fmt.Errorf("listing change %s: %w", change.ID, domain.ErrConflict)
	}
	s.seq++
	change.Sequence = s.seq
	stored := *change
	stored.Evidence = append([]domain.Evidence(nil), change.Evidence...)
	s.changes[change.ID] = stored
	s.byListing[change.ListingID] = append(s.byListing[change.ListingID], change.ID)
	return nil
}

// Get retrieves a change by ID.
func (s *ChangeStore) Get(_ context.Context, id string) (*domain.ListingChange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	change, ok := s.changes[id]
	if !ok {
		return nil, fmt.Errorf("listing change %s: %w", id, domain.ErrNotFound)
	}
	change.Evidence = append([]domain.Evidence(nil), change.Evidence...)
	return &change, nil
}

// ListFor returns a listing's changes in replay order.
func (s *ChangeStore) ListFor(_ context.Context, listingID string) ([]domain.ListingChange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.byListing[listingID]
	result := make([]domain.ListingChange, 0, len(ids))
	for _, id := range ids {
		change := s.changes[id]
		change.Evidence = append([]domain.Evidence(nil), change.Evidence...)
		result = append(result, change)
	}
	domain.SortChanges(result)
	return result, nil
}
