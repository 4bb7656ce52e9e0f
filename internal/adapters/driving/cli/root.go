// Package cli provides the listingtrail command line, built on cobra.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/listingtrail/internal/app"
	"github.com/custodia-labs/listingtrail/internal/core/ports/driving"
)

// version is set at build time via SetVersion.
var version = "dev"

// Services used by the commands. Tests inject fakes through setServices;
// otherwise they are wired from the application on first use.
var (
	snapshotService   driving.SnapshotService
	evidenceService   driving.EvidenceService
	listingService    driving.ListingService
	comparisonService driving.ComparisonService
	nearMissService   driving.NearMissService
	searchSpecService driving.SearchSpecService
	alertService      driving.AlertService
	importService     driving.ImportService
	settingsService   driving.SettingsService

	// application is the wired ledger, nil when services were injected.
	application *app.App
)

// Global flags.
var (
	configDir   string
	storageFlag string
	dataDirFlag string
	verbose     bool
)

// skipWiring marks commands that run without opening the ledger.
const skipWiring = "skip-wiring"

var rootCmd = &cobra.Command{
	Use:   "listingtrail",
	Short: "Provenance-verified rental listing ledger",
	Long: `listingtrail keeps rental listings whose every field is backed by a
citation into an immutable page snapshot, or explicitly marked as missing
evidence.

It compares listings field by field, finds listings that narrowly miss a
search's hard constraints and tracks alerts for listing changes.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: wire,
	PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
		return closeApp()
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.listingtrail)")
	flags.StringVar(&storageFlag, "storage", "", "storage backend: sqlite or memory (overrides storage.backend)")
	flags.StringVar(&dataDirFlag, "data-dir", "", "database directory (overrides storage.data_dir)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	defer closeApp() //nolint:errcheck
	return rootCmd.ExecuteContext(ctx)
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// wire opens the ledger unless services are already present.
func wire(cmd *cobra.Command, _ []string) error {
	if cmd.Annotations[skipWiring] == "true" || listingService != nil {
		return nil
	}
	a, err := app.New(app.Options{
		ConfigDir: configDir,
		Storage:   storageFlag,
		DataDir:   dataDirFlag,
		Verbose:   verbose,
	})
	if err != nil {
		return err
	}
	useApp(a)
	return nil
}

// useApp points every command at the services of a.
func useApp(a *app.App) {
	application = a
	snapshotService = a.Snapshots
	evidenceService = a.Evidence
	listingService = a.Listings
	comparisonService = a.Compare
	nearMissService = a.NearMiss
	searchSpecService = a.SearchSpecs
	alertService = a.Alerts
	importService = a.Importer
	settingsService = a.Settings
}

func closeApp() error {
	if application == nil {
		return nil
	}
	err := application.Close()
	application = nil
	snapshotService = nil
	evidenceService = nil
	listingService = nil
	comparisonService = nil
	nearMissService = nil
	searchSpecService = nil
	alertService = nil
	importService = nil
	settingsService = nil
	return err
}
