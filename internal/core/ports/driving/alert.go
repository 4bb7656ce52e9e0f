package driving

import (
	"context"

	"github.com/custodia-labs/listingtrail/internal/core/domain"
)

// AlertService tracks whether listing changes have been surfaced.
type AlertService interface {
	// Raise returns the alert for a listing change, creating it on first call.
	Raise(ctx context.Context, listingChangeID string) (*domain.Alert, error)

	// Transition moves an alert to a new status.
	Transition(ctx context.Context, id string, status domain.AlertStatus) (*domain.Alert, error)

	// Acknowledge moves an open alert to acknowledged.
	Acknowledge(ctx context.Context, id string) (*domain.Alert, error)

	// Dismiss moves an open alert to dismissed.
	Dismiss(ctx context.Context, id string) (*domain.Alert, error)

	// Get retrieves an alert by ID.
	Get(ctx context.Context, id string) (*domain.Alert, error)

	// List returns alerts, optionally filtered by status.
	// An invalid (zero) status matches every alert.
	List(ctx context.Context, status domain.AlertStatus) ([]domain.Alert, error)
}
