package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/listingtrail/internal/core/domain"
	"github.com/custodia-labs/listingtrail/internal/core/ports/driven"
	"github.com/custodia-labs/listingtrail/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyServerAddr      = "server.addr"
	keyServerRateLimit = "server.rate_limit"
	keyServerRateBurst = "server.rate_burst"
	keyServerCORS      = "server.cors_origins"
	keyStorageBackend  = "storage.backend"
	keyStorageDataDir  = "storage.data_dir"
	keyLogVerbose      = "log.verbose"
	keyAlertsWatched   = "alerts.watched_fields"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings, falling back to defaults for
// anything not configured.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()
	if s.configStore == nil {
		return &defaults, nil
	}

	settings := &domain.AppSettings{
		Server: domain.ServerSettings{
			Addr:        s.getString(keyServerAddr, defaults.Server.Addr),
			RateLimit:   s.getFloat(keyServerRateLimit, defaults.Server.RateLimit),
			RateBurst:   s.getInt(keyServerRateBurst, defaults.Server.RateBurst),
			CORSOrigins: s.getStringSlice(keyServerCORS, defaults.Server.CORSOrigins),
		},
		Storage: domain.StorageSettings{
			Backend: s.getBackend(defaults.Storage.Backend),
			DataDir: s.configStore.GetString(keyStorageDataDir),
		},
		Log: domain.LogSettings{
			Verbose: s.getBool(keyLogVerbose, defaults.Log.Verbose),
		},
		Alerts: domain.AlertSettings{
			WatchedFields: s.configStore.GetStringSlice(keyAlertsWatched),
		},
	}
	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if s.configStore == nil {
		return domain.ErrNotImplemented
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	values := []struct {
		key   string
		value any
	}{
		{keyServerAddr, settings.Server.Addr},
		{keyServerRateLimit, settings.Server.RateLimit},
		{keyServerRateBurst, int64(settings.Server.RateBurst)},
		{keyServerCORS, settings.Server.CORSOrigins},
		{keyStorageBackend, settings.Storage.Backend.String()},
		{keyStorageDataDir, settings.Storage.DataDir},
		{keyLogVerbose, settings.Log.Verbose},
		{keyAlertsWatched, settings.Alerts.WatchedFields},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// Set updates one setting from its string form. List settings take a
// comma-separated value; an empty value clears them.
func (s *SettingsService) Set(key, value string) error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	switch key {
	case keyServerAddr:
		settings.Server.Addr = value
	case keyServerRateLimit:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%s: %q is not a number: %w", key, value, domain.ErrInvalidArgument)
		}
		settings.Server.RateLimit = f
	case keyServerRateBurst:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: %q is not an integer: %w", key, value, domain.ErrInvalidArgument)
		}
		settings.Server.RateBurst = n
	case keyServerCORS:
		settings.Server.CORSOrigins = splitList(value)
	case keyStorageBackend:
		settings.Storage.Backend = domain.StorageBackend(value)
	case keyStorageDataDir:
		settings.Storage.DataDir = value
	case keyLogVerbose:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s: %q is not a boolean: %w", key, value, domain.ErrInvalidArgument)
		}
		settings.Log.Verbose = b
	case keyAlertsWatched:
		settings.Alerts.WatchedFields = splitList(value)
	default:
		return fmt.Errorf("unknown setting %q: %w", key, domain.ErrInvalidArgument)
	}

	return s.Save(settings)
}

// Keys returns the recognised setting keys in lexical order.
func (s *SettingsService) Keys() []string {
	keys := []string{
		keyServerAddr, keyServerRateLimit, keyServerRateBurst, keyServerCORS,
		keyStorageBackend, keyStorageDataDir, keyLogVerbose, keyAlertsWatched,
	}
	sort.Strings(keys)
	return keys
}

// Validate checks the current settings.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return settings.Validate()
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getStringSlice(key string, defaultVal []string) []string {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetStringSlice(key)
}

func (s *SettingsService) getBackend(defaultVal domain.StorageBackend) domain.StorageBackend {
	val := s.configStore.GetString(keyStorageBackend)
	if val == "" {
		return defaultVal
	}
	return domain.StorageBackend(val)
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
