// Package app composes the ledger: it loads settings, opens the configured
// storage backend and wires the core services that the driving adapters use.
package app

import (
	"context"
	"fmt"

	"github.com/custodia-labs/listingtrail/internal/adapters/driven/bundle"
	"github.com/custodia-labs/listingtrail/internal/adapters/driven/config/file"
	"github.com/custodia-labs/listingtrail/internal/adapters/driven/extract/htmltext"
	"github.com/custodia-labs/listingtrail/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/listingtrail/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/listingtrail/internal/core/domain"
	"github.com/custodia-labs/listingtrail/internal/core/ports/driven"
	"github.com/custodia-labs/listingtrail/internal/core/services"
	"github.com/custodia-labs/listingtrail/internal/logger"
)

// Options override the configuration file.
type Options struct {
	// ConfigDir holds config.toml. Empty means ~/.listingtrail.
	ConfigDir string

	// Storage overrides storage.backend when set.
	Storage string

	// DataDir overrides storage.data_dir when set.
	DataDir string

	// Verbose forces debug logging regardless of log.verbose.
	Verbose bool
}

// App is a wired ledger.
type App struct {
	Config   *file.ConfigStore
	Settings *services.SettingsService

	Snapshots   *services.SnapshotService
	Evidence    *services.EvidenceService
	Listings    *services.ListingService
	Alerts      *services.AlertService
	SearchSpecs *services.SearchSpecService
	Compare     *services.ComparisonService
	NearMiss    *services.NearMissService
	Importer    *services.ImportService

	opts    Options
	backend domain.StorageBackend
	sqlite  *sqlite.Store
}

// stores is the set of driven ports a backend provides.
type stores struct {
	snapshots driven.SnapshotStore
	evidence  driven.EvidenceStore
	listings  driven.ListingStore
	changes   driven.ChangeStore
	specs     driven.SearchSpecStore
	alerts    driven.AlertStore
}

// New loads configuration and wires every service.
func New(opts Options) (*App, error) {
	cfg, err := file.NewConfigStore(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	a := &App{
		Config:   cfg,
		Settings: services.NewSettingsService(cfg),
		opts:     opts,
	}

	settings, err := a.Current()
	if err != nil {
		return nil, err
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", cfg.Path(), err)
	}

	st, err := a.open(settings.Storage)
	if err != nil {
		return nil, err
	}

	a.Snapshots = services.NewSnapshotService(st.snapshots)
	a.Snapshots.SetTextExtractor(htmltext.New())
	a.Evidence = services.NewEvidenceService(st.evidence, st.snapshots)
	a.Listings = services.NewListingService(st.listings, st.changes, st.snapshots, st.evidence)
	a.Alerts = services.NewAlertService(st.alerts, st.changes)
	a.SearchSpecs = services.NewSearchSpecService(st.specs)
	a.Listings.SetAlertService(a.Alerts)
	a.Compare = services.NewComparisonService(a.Listings)
	a.NearMiss = services.NewNearMissService(st.specs, a.Listings)
	a.Importer = services.NewImportService(bundle.NewReader(), a.Snapshots, a.Evidence, a.Listings, a.SearchSpecs)

	a.Apply(settings)
	logger.Debug("ledger ready: backend=%s config=%s", a.backend, cfg.Path())
	return a, nil
}

// Current returns the settings from the config file with the command-line
// overrides applied.
func (a *App) Current() (*domain.AppSettings, error) {
	settings, err := a.Settings.Get()
	if err != nil {
		return nil, fmt.Errorf("reading settings: %w", err)
	}
	if a.opts.Storage != "" {
		settings.Storage.Backend = domain.StorageBackend(a.opts.Storage)
	}
	if a.opts.DataDir != "" {
		settings.Storage.DataDir = a.opts.DataDir
	}
	if a.opts.Verbose {
		settings.Log.Verbose = true
	}
	return settings, nil
}

func (a *App) open(cfg domain.StorageSettings) (stores, error) {
	a.backend = cfg.Backend
	switch cfg.Backend {
	case domain.StorageMemory:
		return stores{
			snapshots: memory.NewSnapshotStore(),
			evidence:  memory.NewEvidenceStore(),
			listings:  memory.NewListingStore(),
			changes:   memory.NewChangeStore(),
			specs:     memory.NewSearchSpecStore(),
			alerts:    memory.NewAlertStore(),
		}, nil
	case domain.StorageSQLite:
		db, err := sqlite.NewStore(cfg.DataDir)
		if err != nil {
			return stores{}, fmt.Errorf("opening ledger database: %w", err)
		}
		a.sqlite = db
		return stores{
			snapshots: db.SnapshotStore(),
			evidence:  db.EvidenceStore(),
			listings:  db.ListingStore(),
			changes:   db.ChangeStore(),
			specs:     db.SearchSpecStore(),
			alerts:    db.AlertStore(),
		}, nil
	default:
		return stores{}, fmt.Errorf("storage backend %q: %w", cfg.Backend, domain.ErrInvalidArgument)
	}
}

// Backend reports the storage backend in use.
func (a *App) Backend() domain.StorageBackend {
	return a.backend
}

// DatabasePath returns the SQLite file, or "" for the memory backend.
func (a *App) DatabasePath() string {
	if a.sqlite == nil {
		return ""
	}
	return a.sqlite.Path()
}

// Apply pushes the settings that may change at runtime into the services.
func (a *App) Apply(settings *domain.AppSettings) {
	logger.SetVerbose(settings.Log.Verbose)
	a.Listings.SetAlertSettings(settings.Alerts)
}

// WatchConfig reloads config.toml on change and re-applies runtime settings
// until ctx is cancelled. Server and storage settings need a restart.
func (a *App) WatchConfig(ctx context.Context) error {
	w, err := file.NewWatcher(a.Config, func() {
		settings, err := a.Current()
		if err != nil {
			logger.Warn("applying reloaded settings: %v", err)
			return
		}
		if err := settings.Validate(); err != nil {
			logger.Warn("ignoring reloaded settings: %v", err)
			return
		}
		a.Apply(settings)
		logger.Info("alert watch list: %v", describeWatched(settings.Alerts.WatchedFields))
	})
	if err != nil {
		return err
	}
	return w.Run(ctx)
}

func describeWatched(fields []string) string {
	if len(fields) == 0 {
		return "all fields"
	}
	return fmt.Sprint(fields)
}

// Close releases the storage backend.
func (a *App) Close() error {
	if a.sqlite == nil {
		return nil
	}
	if err := a.sqlite.Close(); err != nil {
		return fmt.Errorf("closing ledger database: %w", err)
	}
	return nil
}
