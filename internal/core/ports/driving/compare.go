package driving

import (
	"context"

	"github.com/custodia-labs/listingtrail/internal/core/domain"
)

// CompareRequest selects two listing states. An empty snapshot id means
// the current projection.
type CompareRequest struct {
	LeftID          string
	RightID         string
	LeftSnapshotID  string
	RightSnapshotID string
}

// ComparisonService diffs listings field by field.
type ComparisonService interface {
	// Compare resolves both sides and diffs their values.
	Compare(ctx context.Context, req CompareRequest) (*domain.Comparison, error)
}
