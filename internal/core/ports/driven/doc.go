// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - SnapshotStore: Immutable snapshot persistence
//   - EvidenceStore: Citation persistence
//   - ListingStore: Cached listing projections
//   - ChangeStore: Append-only listing change history
//   - SearchSpecStore: Search specs and their hard constraints
//   - AlertStore: Alert state persistence
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
//   - BundleReader: Decodes extraction bundles for import
//   - TextExtractor: Derives snapshot text from captured HTML
//
// Stores never enforce business rules beyond identity: duplicate ids fail
// with domain.ErrConflict and unknown ids with domain.ErrNotFound.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
