package driven

import (
	"context"

	"github.com/custodia-labs/listingtrail/internal/core/domain"
)

// AlertFilter narrows AlertStore.List. Zero fields match everything.
type AlertFilter struct {
	Status    domain.AlertStatus
	ListingID string
}

// AlertStore persists alerts.
type AlertStore interface {
	// Create inserts an alert. Returns domain.ErrConflict if the id or the
	// listing change id already has an alert.
	Create(ctx context.Context, alert domain.Alert) error

	// Update replaces the stored status and updated_at of an alert, but only
	// while its stored status is still from. Returns domain.ErrInvalidState
	// when another update got there first.
	Update(ctx context.Context, alert domain.Alert, from domain.AlertStatus) error

	// Get retrieves an alert by ID.
	Get(ctx context.Context, id string) (*domain.Alert, error)

	// GetByChange retrieves the alert raised for a listing change.
	GetByChange(ctx context.Context, listingChangeID string) (*domain.Alert, error)

	// List returns alerts matching the filter, newest first.
	List(ctx context.Context, filter AlertFilter) ([]domain.Alert, error)
}
