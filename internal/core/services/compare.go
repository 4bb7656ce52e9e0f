package services

import (
	"context"

	"github.com/custodia-labs/listingtrail/internal/core/domain"
	"github.com/custodia-labs/listingtrail/internal/core/ports/driving"
)

// Ensure ComparisonService implements the interface.
var _ driving.ComparisonService = (*ComparisonService)(nil)

// ComparisonService diffs two listing states. It only reads.
type ComparisonService struct {
	listings driving.ListingService
}

// NewComparisonService creates a new comparison service.
func NewComparisonService(listings driving.ListingService) *ComparisonService {
	return &ComparisonService{listings: listings}
}

// Compare resolves both sides, each pinned to a snapshot or current, and
// diffs their field values.
func (s *ComparisonService) Compare(ctx context.Context, req driving.CompareRequest) (*domain.Comparison, error) {
	if s.listings == nil {
		return nil, domain.ErrNotImplemented
	}
	if err := requireUUID("left listing", req.LeftID); err != nil {
		return nil, err
	}
	if err := requireUUID("right listing", req.RightID); err != nil {
		return nil, err
	}

	left, err := s.listings.Get(ctx, req.LeftID, req.LeftSnapshotID)
	if err != nil {
		return nil, err
	}
	right, err := s.listings.Get(ctx, req.RightID, req.RightSnapshotID)
	if err != nil {
		return nil, err
	}

	comparison := domain.Compare(left, right)
	return &comparison, nil
}
