package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/listingtrail/internal/core/domain"
	"github.com/custodia-labs/listingtrail/internal/core/ports/driven"
)

// Ensure EvidenceStore implements the interface.
var _ driven.EvidenceStore = (*EvidenceStore)(nil)

// EvidenceStore is an in-memory implementation of driven.EvidenceStore.
type EvidenceStore struct {
	mu         sync.RWMutex
	evidence   map[string]domain.Evidence
	bySnapshot map[string][]string
}

// NewEvidenceStore creates a new in-memory evidence store.
func NewEvidenceStore() *EvidenceStore {
	return &EvidenceStore{
		evidence:   make(map[string]domain.Evidence),
		bySnapshot: make(map[string][]string),
	}
}

// Save inserts a citation.
func (s *EvidenceStore) Save(_ context.Context, ev domain.Evidence) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.evidence[ev.ID]; exists {
		return fmt.Errorf("evidence %s: %w", ev.ID, domain.ErrConflict)
	}
	s.evidence[ev.ID] = copyEvidence(ev)
	s.bySnapshot[ev.SnapshotID] = append(s.bySnapshot[ev.SnapshotID], ev.ID)
	return nil
}

// Get retrieves a citation by ID.
func (s *EvidenceStore) Get(_ context.Context, id string) (*domain.Evidence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ev, ok := s.evidence[id]
	if !ok {
		return nil, fmt.Errorf("evidence %s: %w", id, domain.ErrNotFound)
	}
	ev = copyEvidence(ev)
	return &ev, nil
}

// ListBySnapshot returns the citations drawn from a snapshot.
func (s *EvidenceStore) ListBySnapshot(_ context.Context, snapshotID string) ([]domain.Evidence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.bySnapshot[snapshotID]
	result := make([]domain.Evidence, 0, len(ids))
	for _, id := range ids {
		result = append(result, copyEvidence(s.evidence[id]))
	}
	return result, nil
}

func copyEvidence(ev domain.Evidence) domain.Evidence {
	if ev.Locator != nil {
		loc := *ev.Locator
		ev.Locator = &loc
	}
	return ev
}
