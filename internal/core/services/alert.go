package services

import (
	"context"
	"errors"
	"time"

	"github.com/custodia-labs/listingtrail/internal/core/domain"
	"github.com/custodia-labs/listingtrail/internal/core/ports/driven"
	"github.com/custodia-labs/listingtrail/internal/core/ports/driving"
	"github.com/custodia-labs/listingtrail/internal/logger"
)

// Ensure AlertService implements the interface.
var _ driving.AlertService = (*AlertService)(nil)

// AlertService tracks whether listing changes have been surfaced.
type AlertService struct {
	alerts  driven.AlertStore
	changes driven.ChangeStore
	now     func() time.Time
}

// NewAlertService creates a new alert service.
func NewAlertService(alerts driven.AlertStore, changes driven.ChangeStore) *AlertService {
	return &AlertService{alerts: alerts, changes: changes, now: time.Now}
}

// Raise returns the alert for a listing change, creating it on first call.
// The store's uniqueness on the change id settles concurrent raises.
func (s *AlertService) Raise(ctx context.Context, listingChangeID string) (*domain.Alert, error) {
	if s.alerts == nil || s.changes == nil {
		return nil, domain.ErrNotImplemented
	}
	if err := requireID("listing change", listingChangeID); err != nil {
		return nil, err
	}

	existing, err := s.alerts.GetByChange(ctx, listingChangeID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	change, err := s.changes.Get(ctx, listingChangeID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	alert := domain.Alert{
		ID:              newID(),
		ListingID:       change.ListingID,
		ListingChangeID: change.ID,
		FieldPath:       change.FieldPath,
		Status:          domain.AlertOpen,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.alerts.Create(ctx, alert); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return s.alerts.GetByChange(ctx, listingChangeID)
		}
		return nil, err
	}
	logger.Debug("alert %s raised for change %s", alert.ID, change.ID)
	return &alert, nil
}

// Transition moves an alert to a new status. The store only applies the
// move if the alert is still in the status it was read in, so concurrent
// transitions of one alert cannot both succeed.
func (s *AlertService) Transition(ctx context.Context, id string, status domain.AlertStatus) (*domain.Alert, error) {
	alert, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := alert.Status.CanTransition(status); err != nil {
		return nil, err
	}
	from := alert.Status
	alert.Status = status
	alert.UpdatedAt = s.now().UTC()
	if err := s.alerts.Update(ctx, *alert, from); err != nil {
		return nil, err
	}
	logger.Debug("alert %s is now %s", alert.ID, alert.Status)
	return alert, nil
}

// Acknowledge moves an open alert to acknowledged.
func (s *AlertService) Acknowledge(ctx context.Context, id string) (*domain.Alert, error) {
	return s.Transition(ctx, id, domain.AlertAcknowledged)
}

// Dismiss moves an open alert to dismissed.
func (s *AlertService) Dismiss(ctx context.Context, id string) (*domain.Alert, error) {
	return s.Transition(ctx, id, domain.AlertDismissed)
}

// Get retrieves an alert by ID.
func (s *AlertService) Get(ctx context.Context, id string) (*domain.Alert, error) {
	if s.alerts == nil {
		return nil, domain.ErrNotImplemented
	}
	if err := requireID("alert", id); err != nil {
		return nil, err
	}
	return s.alerts.Get(ctx, id)
}

// List returns alerts, optionally filtered by status.
func (s *AlertService) List(ctx context.Context, status domain.AlertStatus) ([]domain.Alert, error) {
	if s.alerts == nil {
		return nil, domain.ErrNotImplemented
	}
	return s.alerts.List(ctx, driven.AlertFilter{Status: status})
}
