package cli

import (
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/listingtrail/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/listingtrail/internal/core/domain"
	"github.com/custodia-labs/listingtrail/internal/logger"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the REST API",
	Long: `Serve the ledger's JSON API under /api, with Prometheus metrics at
/api/metrics.

While serving, config.toml is watched and alert and logging settings are
re-applied when it changes.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if err := requireService("listing", listingService != nil); err != nil {
		return err
	}

	settings := domain.DefaultAppSettings()
	if settingsService != nil {
		current, err := settingsService.Get()
		if err != nil {
			return err
		}
		settings = *current
	}
	if serveAddr != "" {
		settings.Server.Addr = serveAddr
	}

	server, err := httpapi.NewServer(httpapi.Services{
		Snapshots:   snapshotService,
		Evidence:    evidenceService,
		Listings:    listingService,
		Compare:     comparisonService,
		NearMiss:    nearMissService,
		SearchSpecs: searchSpecService,
		Alerts:      alertService,
	}, settings.Server)
	if err != nil {
		return err
	}

	logger.SetJSON(true)
	cmd.Printf("Serving API on %s\n", settings.Server.Addr)

	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		return server.Run(ctx)
	})
	if application != nil {
		g.Go(func() error {
			if err := application.WatchConfig(ctx); err != nil {
				// The API keeps serving without live reload.
				logger.Warn("config watcher stopped: %v", err)
			}
			return nil
		})
		if path := application.DatabasePath(); path != "" {
			logger.Info("ledger database: %s", path)
		}
	}
	return g.Wait()
}
