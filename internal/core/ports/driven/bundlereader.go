package driven

import (
	"context"
	"io"

	"github.com/custodia-labs/listingtrail/internal/core/domain"
)

// BundleReader decodes import bundles produced by the extraction pipeline.
type BundleReader interface {
	// Read decodes a bundle from r. Malformed input is domain.ErrInvalidArgument.
	Read(ctx context.Context, r io.Reader) (*domain.Bundle, error)

	// ReadFile decodes the bundle stored at path.
	ReadFile(ctx context.Context, path string) (*domain.Bundle, error)
}
