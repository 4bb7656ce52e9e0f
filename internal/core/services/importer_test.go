package services

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/listingtrail/internal/core/domain"
)

// stubReader returns a fixed bundle for any path.
type stubReader struct {
	bundle *domain.Bundle
	paths  []string
}

func (r *stubReader) Read(_ context.Context, _ io.Reader) (*domain.Bundle, error) {
	return r.bundle, nil
}

func (r *stubReader) ReadFile(_ context.Context, path string) (*domain.Bundle, error) {
	r.paths = append(r.paths, path)
	return r.bundle, nil
}

func sampleBundle() *domain.Bundle {
	day1 := baseTime.Add(24 * time.Hour)
	day2 := baseTime.Add(48 * time.Hour)
	return &domain.Bundle{
		SchemaVersion: "v1",
		Snapshots: []domain.BundleSnapshot{
			{Key: "alpha-1", URL: "https://example.com/alpha", Text: "Rent: $1,800. Cats OK.", CapturedAt: day1,
				Citations: []domain.BundleCitation{{Key: "a1-price", Excerpt: "$1,800"}, {Key: "a1-pets", Excerpt: "Cats OK"}}},
			{Key: "alpha-2", URL: "https://example.com/alpha", Text: "Rent: $2,000. Cats OK.", CapturedAt: day2,
				Citations: []domain.BundleCitation{{Key: "a2-price", Excerpt: "$2,000"}}},
		},
		Listings: []domain.BundleListing{
			{Key: "alpha", Title: "Alpha Flat", Neighborhood: "mission", Snapshot: "alpha-1"},
		},
		Changes: []domain.BundleChange{
			{Listing: "alpha", Field: "price", Value: domain.IntValue(1800), Citations: []string{"a1-price"}},
			{Listing: "alpha", Field: "pets", Value: domain.BoolValue(true), Citations: []string{"a1-pets"}},
			{Listing: "alpha", Field: "price", Value: domain.IntValue(2000), Citations: []string{"a2-price"}},
		},
		SearchSpecs: []domain.SearchSpec{
			{ID: uuid.NewString(), Name: "budget", Hard: []domain.Constraint{
				domain.MaxConstraint("price", decimal.NewFromInt(1800)),
			}},
		},
	}
}

func TestImportService_Import(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	bundle := sampleBundle()

	result, err := l.importer.Import(ctx, bundle)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Snapshots)
	assert.Equal(t, 3, result.Evidence)
	assert.Equal(t, 1, result.Listings)
	assert.Equal(t, 3, result.Changes)
	assert.Equal(t, 1, result.SearchSpecs)
	assert.Zero(t, result.Skipped)

	id := result.ListingIDs["alpha"]
	assert.Equal(t, ListingIDForKey("alpha"), id)

	listing, err := l.listings.Get(ctx, id, "")
	require.NoError(t, err)
	assert.True(t, listing.Fields["price"].Value.Equal(domain.IntValue(2000)))
	assert.Equal(t, "$2,000", listing.Fields["price"].Evidence[0].Excerpt)
	assert.True(t, listing.Fields["pets"].Value.Equal(domain.BoolValue(true)))

	history, err := l.listings.History(ctx, id)
	require.NoError(t, err)
	require.Len(t, history, 3)
	last := history[2]
	assert.True(t, last.OldValue.Equal(domain.IntValue(1800)))
	assert.True(t, last.ChangedAt.Equal(bundle.Snapshots[1].CapturedAt), "changes take their snapshot's capture time")

	// Pinned to the first capture the price is still 1800.
	pinned, err := l.listings.Get(ctx, id, listing.RegisteredSnapshotID)
	require.NoError(t, err)
	assert.True(t, pinned.Fields["price"].Value.Equal(domain.IntValue(1800)))
}

func TestImportService_ReimportSkipsExisting(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	bundle := sampleBundle()

	_, err := l.importer.Import(ctx, bundle)
	require.NoError(t, err)

	again, err := l.importer.Import(ctx, bundle)
	require.NoError(t, err)
	assert.Zero(t, again.Listings)
	assert.Zero(t, again.Changes)
	assert.Zero(t, again.SearchSpecs)
	assert.Equal(t, 5, again.Skipped, "one listing, three changes and one spec")

	history, err := l.listings.History(ctx, again.ListingIDs["alpha"])
	require.NoError(t, err)
	assert.Len(t, history, 3)
}

func TestImportService_ExplicitChangeIDIsIdempotent(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	snap := l.snapshot(t, "https://example.com/beta", "Rent: $900")
	listing := l.register(t, "Beta", "soma", snap.ID)
	changeID := uuid.NewString()

	bundle := &domain.Bundle{Changes: []domain.BundleChange{
		{ID: changeID, Listing: listing.ID, Field: "price", Value: domain.IntValue(900), ChangedAt: baseTime.Add(time.Hour)},
	}}
	first, err := l.importer.Import(ctx, bundle)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Changes)

	// Same id, different value: only the id check can skip it.
	bundle.Changes[0].Value = domain.IntValue(905)
	second, err := l.importer.Import(ctx, bundle)
	require.NoError(t, err)
	assert.Zero(t, second.Changes)
	assert.Equal(t, 1, second.Skipped)

	history, err := l.listings.History(ctx, listing.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.True(t, history[0].NewValue.Equal(domain.IntValue(900)))
}

func TestImportService_RejectsInvalidBundle(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		bundle domain.Bundle
	}{
		{"unknown version", domain.Bundle{SchemaVersion: "v2"}},
		{"snapshot without url", domain.Bundle{Snapshots: []domain.BundleSnapshot{{Key: "s"}}}},
		{"unknown citation", domain.Bundle{Changes: []domain.BundleChange{
			{Listing: "x", Field: "price", Citations: []string{"nope"}},
		}}},
		{"bad spec", domain.Bundle{SearchSpecs: []domain.SearchSpec{
			{Hard: []domain.Constraint{domain.MaxConstraint("price", decimal.Zero)}},
		}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.importer.Import(ctx, &tt.bundle)
			assert.ErrorIs(t, err, domain.ErrInvalidArgument)
		})
	}

	snaps, err := l.snapshots.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, snaps, "validation happens before any write")
}

func TestImportService_UnknownListingFails(t *testing.T) {
	l := newLedger(t)
	_, err := l.importer.Import(context.Background(), &domain.Bundle{Changes: []domain.BundleChange{
		{Listing: uuid.NewString(), Field: "price", Value: domain.IntValue(1)},
	}})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestImportService_ImportFile(t *testing.T) {
	l := newLedger(t)
	reader := &stubReader{bundle: sampleBundle()}
	importer := NewImportService(reader, l.snapshots, l.evidence, l.listings, l.specs)

	result, err := importer.ImportFile(context.Background(), "bundle.yaml")
	require.NoError(t, err)
	assert.Equal(t, []string{"bundle.yaml"}, reader.paths)
	assert.Equal(t, 3, result.Changes)

	_, err = l.importer.ImportFile(context.Background(), "bundle.yaml")
	assert.ErrorIs(t, err, domain.ErrNotImplemented)
}
