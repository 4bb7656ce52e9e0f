package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/listingtrail/internal/core/domain"
	"github.com/custodia-labs/listingtrail/internal/core/ports/driven"
)

func TestAlertService_RaiseIsIdempotent(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	l.listings.SetAlertService(nil)
	listing := l.register(t, "Alpha", "mission", "")
	change := l.set(t, listing.ID, "price", domain.IntValue(3200))

	first, err := l.alerts.Raise(ctx, change.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AlertOpen, first.Status)
	assert.Equal(t, listing.ID, first.ListingID)

	second, err := l.alerts.Raise(ctx, change.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	all, err := l.alertStore.List(ctx, driven.AlertFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestAlertService_ConcurrentRaise(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	l.listings.SetAlertService(nil)
	listing := l.register(t, "Alpha", "mission", "")
	change := l.set(t, listing.ID, "price", domain.IntValue(3200))

	var wg sync.WaitGroup
	ids := make([]string, 20)
	for i := range ids {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			alert, err := l.alerts.Raise(ctx, change.ID)
			if assert.NoError(t, err) {
				ids[n] = alert.ID
			}
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
}

func TestAlertService_RaiseUnknownChange(t *testing.T) {
	l := newLedger(t)
	_, err := l.alerts.Raise(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAlertService_Transitions(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	listing := l.register(t, "Alpha", "mission", "")
	l.set(t, listing.ID, "price", domain.IntValue(3200))
	l.set(t, listing.ID, "price", domain.IntValue(3000))

	open, err := l.alerts.List(ctx, domain.AlertOpen)
	require.NoError(t, err)
	require.Len(t, open, 2)

	acked, err := l.alerts.Acknowledge(ctx, open[0].ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AlertAcknowledged, acked.Status)
	assert.True(t, acked.UpdatedAt.After(acked.CreatedAt))

	_, err = l.alerts.Transition(ctx, acked.ID, domain.AlertOpen)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	_, err = l.alerts.Dismiss(ctx, acked.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	dismissed, err := l.alerts.Dismiss(ctx, open[1].ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AlertDismissed, dismissed.Status)

	_, err = l.alerts.Acknowledge(ctx, dismissed.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	remaining, err := l.alerts.List(ctx, domain.AlertOpen)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	all, err := l.alerts.List(ctx, domain.AlertStatus(0))
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = l.alerts.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// lockstepAlertStore holds every Get until two readers have arrived, so both
// callers see the same status before either writes.
type lockstepAlertStore struct {
	driven.AlertStore
	reads sync.WaitGroup
}

func (s *lockstepAlertStore) Get(ctx context.Context, id string) (*domain.Alert, error) {
	alert, err := s.AlertStore.Get(ctx, id)
	s.reads.Done()
	s.reads.Wait()
	return alert, err
}

func TestAlertService_ConcurrentTransitionsHaveOneWinner(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	listing := l.register(t, "Alpha", "mission", "")
	l.set(t, listing.ID, "price", domain.IntValue(3200))

	open, err := l.alerts.List(ctx, domain.AlertOpen)
	require.NoError(t, err)
	require.Len(t, open, 1)
	id := open[0].ID

	store := &lockstepAlertStore{AlertStore: l.alertStore}
	store.reads.Add(2)
	svc := NewAlertService(store, nil)

	targets := []domain.AlertStatus{domain.AlertAcknowledged, domain.AlertDismissed}
	errs := make([]error, len(targets))
	var wg sync.WaitGroup
	for i, target := range targets {
		wg.Add(1)
		go func(i int, target domain.AlertStatus) {
			defer wg.Done()
			_, errs[i] = svc.Transition(ctx, id, target)
		}(i, target)
	}
	wg.Wait()

	var winner domain.AlertStatus
	failures := 0
	for i, err := range errs {
		if err == nil {
			winner = targets[i]
			continue
		}
		failures++
		assert.ErrorIs(t, err, domain.ErrInvalidState)
	}
	require.Equal(t, 1, failures, "exactly one transition must lose")

	final, err := l.alerts.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, winner, final.Status)
}
