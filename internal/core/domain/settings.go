package domain

import (
	"fmt"
	"strings"
)

const unknownDescription = "Unknown"

// StorageBackend selects where the ledger persists its records.
type StorageBackend string

// Available storage backends.
const (
	// StorageSQLite persists to a local SQLite database.
	StorageSQLite StorageBackend = "sqlite"

	// StorageMemory keeps everything in process memory.
	StorageMemory StorageBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b StorageBackend) IsValid() bool {
	switch b {
	case StorageSQLite, StorageMemory:
		return true
	default:
		return false
	}
}

// IsPersistent returns true if records survive a restart.
func (b StorageBackend) IsPersistent() bool {
	return b == StorageSQLite
}

// String returns the string representation.
func (b StorageBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b StorageBackend) Description() string {
	switch b {
	case StorageSQLite:
		return "SQLite (persistent)"
	case StorageMemory:
		return "Memory (ephemeral)"
	default:
		return unknownDescription
	}
}

// ServerSettings configures the HTTP API.
type ServerSettings struct {
	// Addr is the listen address.
	Addr string

	// RateLimit is the sustained request rate per second. Zero disables it.
	RateLimit float64

	// RateBurst is the token bucket size.
	RateBurst int

	// CORSOrigins lists browser origins allowed to call the API.
	CORSOrigins []string
}

// StorageSettings configures persistence.
type StorageSettings struct {
	// Backend selects the store implementation.
	Backend StorageBackend

	// DataDir holds the SQLite database. Empty means ~/.listingtrail/data.
	DataDir string
}

// LogSettings configures process logging.
type LogSettings struct {
	// Verbose enables debug output.
	Verbose bool
}

// AlertSettings configures which changes raise alerts.
type AlertSettings struct {
	// WatchedFields limits alerting to these field paths. Empty means all.
	WatchedFields []string
}

// Watches reports whether a change to fieldPath qualifies for an alert.
func (a AlertSettings) Watches(fieldPath string) bool {
	if len(a.WatchedFields) == 0 {
		return true
	}
	for _, f := range a.WatchedFields {
		if strings.EqualFold(f, fieldPath) {
			return true
		}
	}
	return false
}

// AppSettings holds all application configuration.
type AppSettings struct {
	Server  ServerSettings
	Storage StorageSettings
	Log     LogSettings
	Alerts  AlertSettings
}

// DefaultAppSettings returns sensible defaults.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Server: ServerSettings{
			Addr:        ":8080",
			RateLimit:   50,
			RateBurst:   100,
			CORSOrigins: []string{"http://localhost:5173", "http://127.0.0.1:5173"},
		},
		Storage: StorageSettings{
			Backend: StorageSQLite,
		},
	}
}

// Validate checks the settings are usable.
func (s *AppSettings) Validate() error {
	if strings.TrimSpace(s.Server.Addr) == "" {
		return fmt.Errorf("server.addr is required: %w", ErrInvalidArgument)
	}
	if s.Server.RateLimit < 0 {
		return fmt.Errorf("server.rate_limit must be >= 0: %w", ErrInvalidArgument)
	}
	if s.Server.RateLimit > 0 && s.Server.RateBurst < 1 {
		return fmt.Errorf("server.rate_burst must be >= 1 when rate limiting: %w", ErrInvalidArgument)
	}
	if !s.Storage.Backend.IsValid() {
		return fmt.Errorf("storage.backend %q: %w", s.Storage.Backend, ErrInvalidArgument)
	}
	return nil
}
