package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/listingtrail/internal/core/domain"
	"github.com/custodia-labs/listingtrail/internal/core/ports/driven"
)

// Ensure AlertStore implements the interface.
var _ driven.AlertStore = (*AlertStore)(nil)

// AlertStore is an in-memory implementation of driven.AlertStore.
type AlertStore struct {
	mu       sync.RWMutex
	alerts   map[string]domain.Alert
	byChange map[string]string
}

// NewAlertStore creates a new in-memory alert store.
func NewAlertStore() *AlertStore {
	return &AlertStore{
		alerts:   make(map[string]domain.Alert),
		byChange: make(map[string]string),
	}
}

// Create inserts an alert. At most one alert exists per listing change.
func (s *AlertStore) Create(_ context.Context, alert domain.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.alerts[alert.ID]; exists {
		return fmt.Errorf("alert %s: %w", alert.ID, domain.ErrConflict)
	}
	if _, exists := s.byChange[alert.ListingChangeID]; exists {
		return fmt.Errorf("alert for change %s: %w", alert.ListingChangeID, domain.ErrConflict)
	}
	s.alerts[alert.ID] = alert
	s.byChange[alert.ListingChangeID] = alert.ID
	return nil
}

// Update replaces the status of an existing alert still in status from.
func (s *AlertStore) Update(_ context.Context, alert domain.Alert, from domain.AlertStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.alerts[alert.ID]
	if !ok {
		return fmt.Errorf("alert %s: %w", alert.ID, domain.ErrNotFound)
	}
	if existing.Status != from {
		return fmt.Errorf("alert %s is %s, not %s: %w", alert.ID, existing.Status, from, domain.ErrInvalidState)
	}
	existing.Status = alert.Status
	existing.UpdatedAt = alert.UpdatedAt
	s.alerts[alert.ID] = existing
	return nil
}

// Get retrieves an alert by ID.
func (s *AlertStore) Get(_ context.Context, id string) (*domain.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	alert, ok := s.alerts[id]
	if !ok {
		return nil, fmt.Errorf("alert %s: %w", id, domain.ErrNotFound)
	}
	return &alert, nil
}

// GetByChange retrieves the alert raised for a listing change.
func (s *AlertStore) GetByChange(_ context.Context, listingChangeID string) (*domain.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byChange[listingChangeID]
	if !ok {
		return nil, fmt.Errorf("alert for change %s: %w", listingChangeID, domain.ErrNotFound)
	}
	alert := s.alerts[id]
	return &alert, nil
}

// List returns alerts matching the filter, newest first.
func (s *AlertStore) List(_ context.Context, filter driven.AlertFilter) ([]domain.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Alert, 0, len(s.alerts))
	for _, alert := range s.alerts {
		if filter.Status.IsValid() && alert.Status != filter.Status {
			continue
		}
		if filter.ListingID != "" && alert.ListingID != filter.ListingID {
			continue
		}
		result = append(result, alert)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}
