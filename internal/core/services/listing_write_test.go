package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/listingtrail/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/listingtrail/internal/core/domain"
	"github.com/custodia-labs/listingtrail/internal/core/ports/driving"
)

var errDiskFull = errors.New("disk full")

// flakyListingStore fails the next failSaves calls to Save.
type flakyListingStore struct {
	*memory.ListingStore
	mu        sync.Mutex
	failSaves int
}

func (s *flakyListingStore) Save(ctx context.Context, listing domain.Listing) error {
	s.mu.Lock()
	if s.failSaves > 0 {
		s.failSaves--
		s.mu.Unlock()
		return errDiskFull
	}
	s.mu.Unlock()
	return s.ListingStore.Save(ctx, listing)
}

func (s *flakyListingStore) failNext(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failSaves = n
}

func newFlakyListingService(t *testing.T) (*ListingService, *flakyListingStore) {
	t.Helper()
	listings := &flakyListingStore{ListingStore: memory.NewListingStore()}
	svc := NewListingService(listings, memory.NewChangeStore(), memory.NewSnapshotStore(), memory.NewEvidenceStore())
	return svc, listings
}

func TestListingService_ApplyChange_RepairsFailedSave(t *testing.T) {
	svc, listings := newFlakyListingService(t)
	ctx := context.Background()
	listing, err := svc.Register(ctx, driving.RegisterListingRequest{Title: "Alpha"})
	require.NoError(t, err)

	listings.failNext(1)
	change, err := svc.ApplyChange(ctx, driving.ApplyChangeRequest{
		ListingID: listing.ID, FieldPath: "price", NewValue: domain.IntValue(2000),
	})
	require.NoError(t, err)

	got, err := svc.Get(ctx, listing.ID, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Revision)
	assert.True(t, got.Fields["price"].Value.Equal(change.NewValue))
}

func TestListingService_ApplyChange_StaleProjectionIsReported(t *testing.T) {
	svc, listings := newFlakyListingService(t)
	ctx := context.Background()
	listing, err := svc.Register(ctx, driving.RegisterListingRequest{Title: "Alpha"})
	require.NoError(t, err)

	// Both the save and the repair fail.
	listings.failNext(2)
	_, err = svc.ApplyChange(ctx, driving.ApplyChangeRequest{
		ListingID: listing.ID, FieldPath: "price", NewValue: domain.IntValue(2000),
	})
	require.ErrorIs(t, err, errDiskFull)

	history, err := svc.History(ctx, listing.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)

	// The next change sees the logged one and brings the cache back in line.
	_, err = svc.ApplyChange(ctx, driving.ApplyChangeRequest{
		ListingID: listing.ID, FieldPath: "beds", NewValue: domain.IntValue(2),
	})
	require.NoError(t, err)

	got, err := svc.Get(ctx, listing.ID, "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Revision)
	assert.True(t, got.Fields["price"].Value.Equal(domain.IntValue(2000)))
	assert.True(t, got.Fields["beds"].Value.Equal(domain.IntValue(2)))
}

// brokenAlerts fails every raise.
type brokenAlerts struct {
	driving.AlertService
	raised int
}

func (a *brokenAlerts) Raise(context.Context, string) (*domain.Alert, error) {
	a.raised++
	return nil, errDiskFull
}

func TestListingService_ApplyChange_AlertFailureKeepsChange(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	alerts := &brokenAlerts{}
	l.listings.SetAlertService(alerts)
	listing := l.register(t, "Alpha", "mission", "")

	change, err := l.listings.ApplyChange(ctx, driving.ApplyChangeRequest{
		ListingID: listing.ID, FieldPath: "price", NewValue: domain.IntValue(3200),
	})
	require.NoError(t, err)
	require.NotNil(t, change)
	assert.Equal(t, 1, alerts.raised)

	history, err := l.listings.History(ctx, listing.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, change.ID, history[0].ID)
}
