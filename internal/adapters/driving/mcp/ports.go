package mcp

import (
	"github.com/custodia-labs/listingtrail/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Listings serves projections and history.
	Listings driving.ListingService

	// Compare diffs two listings.
	Compare driving.ComparisonService

	// NearMiss classifies listings against a search spec.
	NearMiss driving.NearMissService

	// Evidence resolves and verifies citations.
	Evidence driving.EvidenceService

	// Snapshots serves captured page text.
	Snapshots driving.SnapshotService

	// Alerts lists pending change alerts.
	Alerts driving.AlertService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Listings == nil {
		return ErrMissingListingService
	}
	// The rest are optional; their tools report ErrNotImplemented.
	return nil
}
