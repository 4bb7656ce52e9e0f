package driving

import (
	"context"

	"github.com/custodia-labs/listingtrail/internal/core/domain"
)

// NearMissService classifies listings that miss one hard constraint.
type NearMissService interface {
	// Find returns listings failing exactly one numeric constraint of the
	// search spec by at most threshold, closest misses first.
	Find(ctx context.Context, searchSpecID string, threshold float64) ([]domain.NearMiss, error)
}
