package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/listingtrail/internal/app"
	"github.com/custodia-labs/listingtrail/internal/core/domain"
	"github.com/custodia-labs/listingtrail/internal/core/ports/driving"
)

// setupTestLedger injects the services of an in-memory ledger. The ledger
// outlives individual commands so tests can seed it and run several
// commands against it.
func setupTestLedger(t *testing.T) *app.App {
	t.Helper()
	a, err := app.New(app.Options{ConfigDir: t.TempDir(), Storage: "memory"})
	require.NoError(t, err)

	snapshotService = a.Snapshots
	evidenceService = a.Evidence
	listingService = a.Listings
	comparisonService = a.Compare
	nearMissService = a.NearMiss
	searchSpecService = a.SearchSpecs
	alertService = a.Alerts
	importService = a.Importer
	settingsService = a.Settings

	t.Cleanup(func() {
		snapshotService = nil
		evidenceService = nil
		listingService = nil
		comparisonService = nil
		nearMissService = nil
		searchSpecService = nil
		alertService = nil
		importService = nil
		settingsService = nil
		_ = a.Close()
	})
	return a
}

// execute runs the root command with args and returns its output. Flag
// values are reset afterwards because cobra keeps them between runs.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		resetFlags(rootCmd)
	}()

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// seedListing stores a snapshot, cites the price in it and registers a
// listing with that price.
func seedListing(t *testing.T, a *app.App, title string, price int64) (*domain.Listing, *domain.Evidence) {
	t.Helper()
	ctx := context.Background()
	priceText := domain.IntValue(price).String()
	snap, err := a.Snapshots.Create(ctx, driving.CreateSnapshotRequest{
		URL:  "https://rentals.example/" + title,
		Text: title + " is offered at " + priceText + " per month",
	})
	require.NoError(t, err)
	ev, err := a.Evidence.Cite(ctx, snap.ID, priceText)
	require.NoError(t, err)
	listing, err := a.Listings.Register(ctx, driving.RegisterListingRequest{
		Title: title, Neighborhood: "mission", SnapshotID: snap.ID,
	})
	require.NoError(t, err)
	_, err = a.Listings.ApplyChange(ctx, driving.ApplyChangeRequest{
		ListingID: listing.ID, FieldPath: "price", NewValue: domain.IntValue(price), EvidenceIDs: []string{ev.ID},
	})
	require.NoError(t, err)
	return listing, ev
}
