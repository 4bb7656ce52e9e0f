package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/listingtrail/internal/core/domain"
	"github.com/custodia-labs/listingtrail/internal/core/ports/driving"
)

func TestComparisonService_Compare(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	alpha := l.register(t, "Alpha", "mission", "")
	bravo := l.register(t, "Bravo", "castro", "")
	l.set(t, alpha.ID, "price", domain.IntValue(3200))
	l.set(t, alpha.ID, "beds", domain.IntValue(2))
	l.set(t, alpha.ID, "laundry", domain.BoolValue(true))
	l.set(t, bravo.ID, "price", domain.IntValue(2800))
	l.set(t, bravo.ID, "beds", domain.IntValue(2))

	cmp, err := l.compare.Compare(ctx, driving.CompareRequest{LeftID: alpha.ID, RightID: bravo.ID})
	require.NoError(t, err)
	assert.Equal(t, alpha.ID, cmp.LeftID)
	require.Len(t, cmp.Fields, 3)
	assert.Equal(t, []string{"laundry", "price"}, cmp.DifferentFields())

	reverse, err := l.compare.Compare(ctx, driving.CompareRequest{LeftID: bravo.ID, RightID: alpha.ID})
	require.NoError(t, err)
	assert.Equal(t, cmp.DifferentFields(), reverse.DifferentFields())

	after, err := l.listings.Get(ctx, alpha.ID, "")
	require.NoError(t, err)
	assert.Equal(t, int64(3), after.Revision, "compare must not mutate listings")
}

func TestComparisonService_SameListingAcrossSnapshots(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	s1 := l.snapshot(t, "https://example.com/alpha", "Price $3,200")
	alpha := l.register(t, "Alpha", "mission", s1.ID)
	l.set(t, alpha.ID, "price", domain.IntValue(3200), l.cite(t, s1.ID, "$3,200").ID)

	s2 := l.snapshot(t, "https://example.com/alpha", "Price $2,800")
	l.set(t, alpha.ID, "price", domain.IntValue(2800), l.cite(t, s2.ID, "$2,800").ID)

	cmp, err := l.compare.Compare(ctx, driving.CompareRequest{
		LeftID: alpha.ID, LeftSnapshotID: s1.ID,
		RightID: alpha.ID, RightSnapshotID: s2.ID,
	})
	require.NoError(t, err)
	require.Len(t, cmp.Fields, 1)
	row := cmp.Fields[0]
	assert.True(t, row.Different)
	assert.True(t, row.Left.Value.Equal(domain.IntValue(3200)))
	assert.True(t, row.Right.Value.Equal(domain.IntValue(2800)))
	assert.Equal(t, s1.ID, cmp.LeftSnapshotID)
	assert.Equal(t, s2.ID, cmp.RightSnapshotID)
}

func TestComparisonService_Errors(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	alpha := l.register(t, "Alpha", "mission", "")

	tests := []struct {
		name string
		req  driving.CompareRequest
		want error
	}{
		{"malformed left", driving.CompareRequest{LeftID: "abc", RightID: alpha.ID}, domain.ErrInvalidArgument},
		{"malformed right", driving.CompareRequest{LeftID: alpha.ID, RightID: ""}, domain.ErrInvalidArgument},
		{"unknown right", driving.CompareRequest{LeftID: alpha.ID, RightID: uuid.NewString()}, domain.ErrNotFound},
		{"unknown snapshot", driving.CompareRequest{LeftID: alpha.ID, RightID: alpha.ID, RightSnapshotID: "gone"}, domain.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.compare.Compare(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
