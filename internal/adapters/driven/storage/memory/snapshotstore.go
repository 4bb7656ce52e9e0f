package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/listingtrail/internal/core/domain"
	"github.com/custodia-labs/listingtrail/internal/core/ports/driven"
)

// Ensure SnapshotStore implements the interface.
var _ driven.SnapshotStore = (*SnapshotStore)(nil)

// SnapshotStore is an in-memory implementation of driven.SnapshotStore.
type SnapshotStore struct {
	mu        sync.RWMutex
	snapshots map[string]domain.Snapshot
	order     []string
}

// NewSnapshotStore creates a new in-memory snapshot store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{
		snapshots: make(map[string]domain.Snapshot),
	}
}

// Save inserts a snapshot.
func (s *SnapshotStore) Save(_ context.Context, snapshot domain.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.snapshots[snapshot.ID]; exists {
		return fmt.Errorf("snapshot %s: %w", snapshot.ID, domain.ErrConflict)
	}
	s.snapshots[snapshot.ID] = snapshot
	s.order = append(s.order, snapshot.ID)
	return nil
}

// Get retrieves a snapshot by ID.
func (s *SnapshotStore) Get(_ context.Context, id string) (*domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot, ok := s.snapshots[id]
	if !ok {
		return nil, fmt.Errorf("snapshot %s: %w", id, domain.ErrNotFound)
	}
	return &snapshot, nil
}

// FindByContent returns the first snapshot of url with the given hash.
func (s *SnapshotStore) FindByContent(_ context.Context, url, contentHash string) (*domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.order {
		snapshot := s.snapshots[id]
		if snapshot.URL == url && snapshot.ContentHash == contentHash {
			return &snapshot, nil
		}
	}
	return nil, fmt.Errorf("snapshot of %s: %w", url, domain.ErrNotFound)
}

// List returns all snapshots ordered by capture time.
func (s *SnapshotStore) List(_ context.Context) ([]domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Snapshot, 0, len(s.order))
	for _, id := range s.order {
		result = append(result, s.snapshots[id])
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CapturedAt.Before(result[j].CapturedAt)
	})
	return result, nil
}
