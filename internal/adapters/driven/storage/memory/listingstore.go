package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/listingtrail/internal/core/domain"
	"github.com/custodia-labs/listingtrail/internal/core/ports/driven"
)

// Ensure ListingStore implements the interface.
var _ driven.ListingStore = (*ListingStore)(nil)

// ListingStore is an in-memory implementation of driven.ListingStore.
// Listings are deep-copied in and out so callers never alias stored state.
type ListingStore struct {
	mu       sync.RWMutex
	listings map[string]domain.Listing
}

// NewListingStore creates a new in-memory listing store.
func NewListingStore() *ListingStore {
	return &ListingStore{
		listings: make(map[string]domain.Listing),
	}
}

// Create inserts a new listing.
func (s *ListingStore) Create(_ context.Context, listing domain.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.listings[listing.ID]; exists {
		return fmt.Errorf("listing %s: %w", listing.ID, domain.ErrConflict)
	}
	s.listings[listing.ID] = listing.Clone()
	return nil
}

// Save replaces the projection of an existing listing.
func (s *ListingStore) Save(_ context.Context, listing domain.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.listings[listing.ID]; !exists {
		return fmt.Errorf("listing %s: %w", listing.ID, domain.ErrNotFound)
	}
	s.listings[listing.ID] = listing.Clone()
	return nil
}

// Get retrieves a listing by ID.
func (s *ListingStore) Get(_ context.Context, id string) (*domain.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	listing, ok := s.listings[id]
	if !ok {
		return nil, fmt.Errorf("listing %s: %w", id, domain.ErrNotFound)
	}
	out := listing.Clone()
	return &out, nil
}

// List returns all listings ordered by ID.
func (s *ListingStore) List(_ context.Context) ([]domain.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Listing, 0, len(s.listings))
	for _, listing := range s.listings {
		result = append(result, listing.Clone())
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}
