package mcp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/listingtrail/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/listingtrail/internal/core/domain"
	"github.com/custodia-labs/listingtrail/internal/core/ports/driving"
	"github.com/custodia-labs/listingtrail/internal/core/services"
)

// mockListingService is a mock implementation of driving.ListingService.
type mockListingService struct {
	listings []domain.Listing
	listing  *domain.Listing
	changes  []domain.ListingChange
	err      error
}

func (m *mockListingService) Register(_ context.Context, _ driving.RegisterListingRequest) (*domain.Listing, error) {
	return m.listing, m.err
}

func (m *mockListingService) Get(_ context.Context, _, _ string) (*domain.Listing, error) {
	return m.listing, m.err
}

func (m *mockListingService) GetAsOf(_ context.Context, _ string, _ time.Time) (*domain.Listing, error) {
	return m.listing, m.err
}

func (m *mockListingService) List(_ context.Context) ([]domain.Listing, error) {
	return m.listings, m.err
}

func (m *mockListingService) ApplyChange(_ context.Context, _ driving.ApplyChangeRequest) (*domain.ListingChange, error) {
	return nil, m.err
}

func (m *mockListingService) History(_ context.Context, _ string) ([]domain.ListingChange, error) {
	return m.changes, m.err
}

func (m *mockListingService) Rebuild(_ context.Context, _ string) (*domain.Listing, error) {
	return m.listing, m.err
}

// ledger wires real services over memory stores.
type ledger struct {
	ports     *Ports
	snapshots *services.SnapshotService
	evidence  *services.EvidenceService
	listings  *services.ListingService
	specs     *services.SearchSpecService
}

func newLedger(t *testing.T) *ledger {
	t.Helper()
	snapshotStore := memory.NewSnapshotStore()
	evidenceStore := memory.NewEvidenceStore()
	changeStore := memory.NewChangeStore()
	specStore := memory.NewSearchSpecStore()

	l := &ledger{
		snapshots: services.NewSnapshotService(snapshotStore),
		evidence:  services.NewEvidenceService(evidenceStore, snapshotStore),
		listings:  services.NewListingService(memory.NewListingStore(), changeStore, snapshotStore, evidenceStore),
		specs:     services.NewSearchSpecService(specStore),
	}
	alerts := services.NewAlertService(memory.NewAlertStore(), changeStore)
	l.listings.SetAlertService(alerts)
	l.ports = &Ports{
		Listings:  l.listings,
		Compare:   services.NewComparisonService(l.listings),
		NearMiss:  services.NewNearMissService(specStore, l.listings),
		Evidence:  l.evidence,
		Snapshots: l.snapshots,
		Alerts:    alerts,
	}
	return l
}

// seed stores a snapshot quoting the rent and a listing citing it.
func (l *ledger) seed(t *testing.T, title string, rent int64) (*domain.Listing, *domain.Snapshot, *domain.Evidence) {
	t.Helper()
	ctx := context.Background()
	snap, err := l.snapshots.Create(ctx, driving.CreateSnapshotRequest{
		URL:  "https://rentals.example/" + title,
		Text: title + " rents for " + domain.IntValue(rent).String() + " a month",
	})
	require.NoError(t, err)
	ev, err := l.evidence.Cite(ctx, snap.ID, domain.IntValue(rent).String())
	require.NoError(t, err)
	listing, err := l.listings.Register(ctx, driving.RegisterListingRequest{Title: title, SnapshotID: snap.ID})
	require.NoError(t, err)
	_, err = l.listings.ApplyChange(ctx, driving.ApplyChangeRequest{
		ListingID:   listing.ID,
		FieldPath:   "price",
		NewValue:    domain.IntValue(rent),
		EvidenceIDs: []string{ev.ID},
	})
	require.NoError(t, err)
	return listing, snap, ev
}

func (l *ledger) server(t *testing.T) *Server {
	t.Helper()
	server, err := NewServer(l.ports)
	require.NoError(t, err)
	return server
}
