// Package sqlite provides a unified SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements every ledger store
// through a single database connection:
//
//   - SnapshotStore: Immutable snapshots
//   - EvidenceStore: Citations, with their text-span locators
//   - ListingStore: Listing projections; field evidence is stored by reference
//   - ChangeStore: Append-only change log ordered by (changed_at, seq)
//   - SearchSpecStore: Search specs with constraints encoded as JSON
//   - AlertStore: Alerts, unique per listing change
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.listingtrail/data/ledger.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
