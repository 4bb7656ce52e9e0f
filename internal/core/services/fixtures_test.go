package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/listingtrail/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/listingtrail/internal/core/domain"
	"github.com/custodia-labs/listingtrail/internal/core/ports/driving"
)

var baseTime = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// testClock returns increasing instants one minute apart.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: baseTime}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Minute)
	return c.now
}

// ledger wires every service over fresh memory stores.
type ledger struct {
	clock     *testClock
	snapshots *SnapshotService
	evidence  *EvidenceService
	listings  *ListingService
	alerts    *AlertService
	specs     *SearchSpecService
	compare   *ComparisonService
	nearMiss  *NearMissService
	importer  *ImportService

	alertStore *memory.AlertStore
}

func newLedger(t *testing.T) *ledger {
	t.Helper()
	clock := newTestClock()

	snapshotStore := memory.NewSnapshotStore()
	evidenceStore := memory.NewEvidenceStore()
	listingStore := memory.NewListingStore()
	changeStore := memory.NewChangeStore()
	specStore := memory.NewSearchSpecStore()
	alertStore := memory.NewAlertStore()

	l := &ledger{
		clock:      clock,
		snapshots:  NewSnapshotService(snapshotStore),
		evidence:   NewEvidenceService(evidenceStore, snapshotStore),
		listings:   NewListingService(listingStore, changeStore, snapshotStore, evidenceStore),
		alerts:     NewAlertService(alertStore, changeStore),
		specs:      NewSearchSpecService(specStore),
		alertStore: alertStore,
	}
	l.snapshots.now = clock.Now
	l.evidence.now = clock.Now
	l.listings.now = clock.Now
	l.alerts.now = clock.Now
	l.specs.now = clock.Now
	l.listings.SetAlertService(l.alerts)
	l.compare = NewComparisonService(l.listings)
	l.nearMiss = NewNearMissService(specStore, l.listings)
	l.importer = NewImportService(nil, l.snapshots, l.evidence, l.listings, l.specs)
	return l
}

func (l *ledger) snapshot(t *testing.T, url, text string) *domain.Snapshot {
	t.Helper()
	snap, err := l.snapshots.Create(context.Background(), driving.CreateSnapshotRequest{URL: url, Text: text})
	require.NoError(t, err)
	return snap
}

func (l *ledger) cite(t *testing.T, snapshotID, excerpt string) *domain.Evidence {
	t.Helper()
	ev, err := l.evidence.Cite(context.Background(), snapshotID, excerpt)
	require.NoError(t, err)
	return ev
}

func (l *ledger) register(t *testing.T, title, neighborhood, snapshotID string) *domain.Listing {
	t.Helper()
	listing, err := l.listings.Register(context.Background(), driving.RegisterListingRequest{
		Title: title, Neighborhood: neighborhood, SnapshotID: snapshotID,
	})
	require.NoError(t, err)
	return listing
}

func (l *ledger) set(t *testing.T, listingID, path string, v domain.Value, evidenceIDs ...string) *domain.ListingChange {
	t.Helper()
	change, err := l.listings.ApplyChange(context.Background(), driving.ApplyChangeRequest{
		ListingID: listingID, FieldPath: path, NewValue: v, EvidenceIDs: evidenceIDs,
	})
	require.NoError(t, err)
	return change
}
