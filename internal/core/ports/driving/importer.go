package driving

import (
	"context"

	"github.com/custodia-labs/listingtrail/internal/core/domain"
)

// ImportService applies extraction bundles to the ledger.
type ImportService interface {
	// Import validates and applies a decoded bundle. Snapshots, listings
	// and changes already in the ledger are skipped, so re-importing a
	// bundle only adds citations.
	Import(ctx context.Context, bundle *domain.Bundle) (*domain.ImportResult, error)

	// ImportFile reads a bundle from disk and imports it.
	ImportFile(ctx context.Context, path string) (*domain.ImportResult, error)
}
