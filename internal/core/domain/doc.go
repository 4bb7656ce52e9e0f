// Package domain defines the core business entities for listingtrail.
//
// This package is part of the hexagonal architecture's innermost layer.
// It defines the provenance model every other package builds on:
//
//   - Snapshot: An immutable, content-addressed capture of a source page
//   - Evidence: A citation linking a field value to an excerpt of a snapshot
//   - Field: A typed value plus its evidence set
//   - Listing: The current projection of a listing's fields
//   - ListingChange: An append-only, evidence-backed field transition
//   - SearchSpec: Hard constraints evaluated by the near-miss classifier
//   - Alert: A tracked notice that a listing change occurred
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. All other packages depend on
// domain, never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library, github.com/shopspring/decimal
//   - Cannot Import: Any internal/ package, any other external dependency
package domain
