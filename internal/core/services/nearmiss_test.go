package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/listingtrail/internal/core/domain"
)

func (l *ledger) spec(t *testing.T, constraints ...domain.Constraint) *domain.SearchSpec {
	t.Helper()
	spec, err := l.specs.Create(context.Background(), domain.SearchSpec{Hard: constraints})
	require.NoError(t, err)
	return spec
}

func maxPrice(bound int64) domain.Constraint {
	return domain.MaxConstraint("price", decimal.NewFromInt(bound))
}

// L1 has price 2000 cited by e1; S1 requires max_price 1800.
func TestNearMissService_Scenario(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	snap := l.snapshot(t, "https://example.com/l1", "Rent is $2,000 a month")
	e1 := l.cite(t, snap.ID, "$2,000")
	l1 := l.register(t, "L1", "mission", snap.ID)
	l.set(t, l1.ID, "price", domain.IntValue(2000), e1.ID)
	s1 := l.spec(t, maxPrice(1800))

	results, err := l.nearMiss.Find(ctx, s1.ID, 0.12)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, l1.ID, results[0].ListingID)
	assert.Equal(t, "L1", results[0].Title)
	assert.Equal(t, "price", results[0].FieldName)
	assert.Contains(t, results[0].Reason, "price")
	assert.Contains(t, results[0].Reason, "max_price")
	assert.Equal(t, []string{e1.ID}, results[0].Field.EvidenceIDs())

	results, err = l.nearMiss.Find(ctx, s1.ID, 0.05)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestNearMissService_ThresholdBoundaryInclusive(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	exact := l.register(t, "Exact", "mission", "")
	l.set(t, exact.ID, "price", domain.IntValue(2016)) // (2016-1800)/1800 = 0.12
	over := l.register(t, "Over", "mission", "")
	l.set(t, over.ID, "price", domain.IntValue(2017))
	s := l.spec(t, maxPrice(1800))

	results, err := l.nearMiss.Find(ctx, s.ID, 0.12)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, exact.ID, results[0].ListingID)
}

func TestNearMissService_ExclusionRules(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	full := l.register(t, "Full match", "mission", "")
	l.set(t, full.ID, "price", domain.IntValue(1700))
	l.set(t, full.ID, "beds", domain.IntValue(2))

	twoFailures := l.register(t, "Two failures", "mission", "")
	l.set(t, twoFailures.ID, "price", domain.IntValue(1900))
	l.set(t, twoFailures.ID, "beds", domain.IntValue(1))

	missingPrice := l.register(t, "No price", "mission", "")
	l.set(t, missingPrice.ID, "beds", domain.IntValue(2))

	nullPrice := l.register(t, "Null price", "mission", "")
	l.set(t, nullPrice.ID, "price", domain.NullValue())
	l.set(t, nullPrice.ID, "beds", domain.IntValue(2))

	bedsShort := l.register(t, "Beds short", "mission", "")
	l.set(t, bedsShort.ID, "price", domain.IntValue(1500))
	l.set(t, bedsShort.ID, "beds", domain.IntValue(1))

	priceOver := l.register(t, "Price over", "mission", "")
	l.set(t, priceOver.ID, "price", domain.IntValue(1850))
	l.set(t, priceOver.ID, "beds", domain.IntValue(3))

	s := l.spec(t, maxPrice(1800), domain.MinConstraint("beds", decimal.NewFromInt(2)))

	results, err := l.nearMiss.Find(ctx, s.ID, 1)
	require.NoError(t, err)
	require.Len(t, results, 2)
	// 1850 over 1800 is ~0.028; 1 under 2 is 0.5.
	assert.Equal(t, priceOver.ID, results[0].ListingID)
	assert.Equal(t, bedsShort.ID, results[1].ListingID)
	assert.Equal(t, "min_beds", results[1].Constraint)
}

func TestNearMissService_CategoricalFailureIsNotNearMiss(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	noLaundry := l.register(t, "No laundry", "mission", "")
	l.set(t, noLaundry.ID, "price", domain.IntValue(1500))
	l.set(t, noLaundry.ID, "laundry", domain.BoolValue(false))

	wrongArea := l.register(t, "Wrong area", "sunset", "")
	l.set(t, wrongArea.ID, "price", domain.IntValue(1500))
	l.set(t, wrongArea.ID, "laundry", domain.BoolValue(true))

	s := l.spec(t, maxPrice(1800), domain.RequireConstraint("laundry"),
		domain.OneOfConstraint(domain.AttrNeighborhood, "mission", "castro"))

	results, err := l.nearMiss.Find(ctx, s.ID, 1)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestNearMissService_ZeroConstraints(t *testing.T) {
	l := newLedger(t)
	listing := l.register(t, "Alpha", "mission", "")
	l.set(t, listing.ID, "price", domain.IntValue(9999))
	s := l.spec(t)

	results, err := l.nearMiss.Find(context.Background(), s.ID, 1)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestNearMissService_TiesOrderedByListingID(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	var ids []string
	for _, title := range []string{"A", "B", "C"} {
		listing := l.register(t, title, "mission", "")
		l.set(t, listing.ID, "price", domain.IntValue(1900))
		ids = append(ids, listing.ID)
	}
	s := l.spec(t, maxPrice(1800))

	results, err := l.nearMiss.Find(ctx, s.ID, 0.1)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for i := 1; i < len(results); i++ {
		assert.Less(t, results[i-1].ListingID, results[i].ListingID)
	}
}

func TestNearMissService_Errors(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	text := l.register(t, "Call for price", "mission", "")
	l.set(t, text.ID, "price", domain.StringValue("call"))
	s := l.spec(t, maxPrice(1800))

	_, err := l.nearMiss.Find(ctx, s.ID, 0.1)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument, "numeric constraint on a string value")

	for _, threshold := range []float64{-0.01, 1.01} {
		_, err = l.nearMiss.Find(ctx, s.ID, threshold)
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	}

	_, err = l.nearMiss.Find(ctx, "not-a-uuid", 0.1)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = l.nearMiss.Find(ctx, uuid.NewString(), 0.1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestNearMissService_TypeMismatchReportedInAnyConstraintOrder(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	listing := l.register(t, "Call for price", "mission", "")
	l.set(t, listing.ID, "price", domain.StringValue("call"))
	l.set(t, listing.ID, "beds", domain.IntValue(1))
	l.set(t, listing.ID, "laundry", domain.BoolValue(false))

	minBeds := domain.MinConstraint("beds", decimal.NewFromInt(2))
	laundry := domain.RequireConstraint("laundry")

	orders := map[string][]domain.Constraint{
		"price first": {maxPrice(1800), minBeds, laundry},
		"price last":  {minBeds, laundry, maxPrice(1800)},
	}
	for name, constraints := range orders {
		t.Run(name, func(t *testing.T) {
			s := l.spec(t, constraints...)
			_, err := l.nearMiss.Find(ctx, s.ID, 1)
			assert.ErrorIs(t, err, domain.ErrInvalidArgument)
		})
	}
}
