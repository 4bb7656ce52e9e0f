package services

import (
	"context"
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/custodia-labs/listingtrail/internal/core/domain"
	"github.com/custodia-labs/listingtrail/internal/core/ports/driven"
	"github.com/custodia-labs/listingtrail/internal/core/ports/driving"
	"github.com/custodia-labs/listingtrail/internal/logger"
)

// Ensure NearMissService implements the interface.
var _ driving.NearMissService = (*NearMissService)(nil)

// NearMissService classifies listings that miss exactly one hard constraint.
type NearMissService struct {
	specs    driven.SearchSpecStore
	listings driving.ListingService
}

// NewNearMissService creates a new near-miss service.
func NewNearMissService(specs driven.SearchSpecStore, listings driving.ListingService) *NearMissService {
	return &NearMissService{specs: specs, listings: listings}
}

// Find evaluates every listing against the spec's hard constraints.
//
// A listing qualifies when exactly one constraint fails, that constraint is
// numeric with a measurable overshoot, and the overshoot is <= threshold.
// Results are ordered by overshoot, then listing id.
func (s *NearMissService) Find(ctx context.Context, searchSpecID string, threshold float64) ([]domain.NearMiss, error) {
	if s.specs == nil || s.listings == nil {
		return nil, domain.ErrNotImplemented
	}
	if err := requireUUID("search spec", searchSpecID); err != nil {
		return nil, err
	}
	if math.IsNaN(threshold) || threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("threshold %v outside [0, 1]: %w", threshold, domain.ErrInvalidArgument)
	}

	spec, err := s.specs.Get(ctx, searchSpecID)
	if err != nil {
		return nil, err
	}
	listings, err := s.listings.List(ctx)
	if err != nil {
		return nil, err
	}

	logger.Section("Near Miss")
	logger.Debug("spec %s: %d constraints, %d listings, threshold %v",
		spec.ID, len(spec.Hard), len(listings), threshold)

	limit := decimal.NewFromFloat(threshold)
	results := make([]domain.NearMiss, 0)
	for i := range listings {
		listing := &listings[i]
		miss, ok, err := classify(spec, listing, limit)
		if err != nil {
			return nil, err
		}
		if ok {
			results = append(results, miss)
		}
	}

	domain.SortNearMisses(results)
	logger.Debug("%d near misses", len(results))
	return results, nil
}

// classify evaluates one listing. Every constraint is evaluated, even past a
// second failure, so a type mismatch is reported whatever the constraint order.
func classify(spec *domain.SearchSpec, listing *domain.Listing, limit decimal.Decimal) (domain.NearMiss, bool, error) {
	var (
		failed   *domain.Constraint
		failedEv domain.Evaluation
		failures int
	)
	for i := range spec.Hard {
		c := &spec.Hard[i]
		ev, err := c.Evaluate(listing)
		if err != nil {
			return domain.NearMiss{}, false, err
		}
		if ev.Passed {
			continue
		}
		failures++
		if failures == 1 {
			failed, failedEv = c, ev
		}
	}

	if failures != 1 || !failedEv.Measurable || failedEv.Overshoot.GreaterThan(limit) {
		return domain.NearMiss{}, false, nil
	}
	return domain.NearMiss{
		ListingID:  listing.ID,
		Title:      listing.Title,
		Reason:     domain.NearMissReason(failed, failedEv.Actual, failedEv.Overshoot),
		Constraint: failed.Name,
		FieldName:  failed.Field,
		Field:      failedEv.Field,
		Overshoot:  failedEv.Overshoot,
	}, true, nil
}
