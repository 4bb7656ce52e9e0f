package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/listingtrail/internal/core/domain"
	"github.com/custodia-labs/listingtrail/internal/core/ports/driving"
)

func TestSnapshotService_Create(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	snap, err := l.snapshots.Create(ctx, driving.CreateSnapshotRequest{
		URL: "https://example.com/alpha", Text: "Alpha. $3,200.", HTML: "<p>Alpha. $3,200.</p>",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, snap.ID)
	assert.Equal(t, domain.HashText("Alpha. $3,200."), snap.ContentHash)
	assert.False(t, snap.CapturedAt.IsZero())
	assert.True(t, snap.Intact())

	got, err := l.snapshots.Get(ctx, snap.ID)
	require.NoError(t, err)
	assert.Equal(t, snap.Text, got.Text)
}

func TestSnapshotService_Create_Dedup(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	first := l.snapshot(t, "https://example.com/alpha", "same text")
	second := l.snapshot(t, "https://example.com/alpha", "same text")
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.ContentHash, second.ContentHash)

	otherURL := l.snapshot(t, "https://example.com/bravo", "same text")
	assert.NotEqual(t, first.ID, otherURL.ID)
	assert.Equal(t, first.ContentHash, otherURL.ContentHash)

	changed := l.snapshot(t, "https://example.com/alpha", "new text")
	assert.NotEqual(t, first.ID, changed.ID)

	all, err := l.snapshots.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestSnapshotService_Errors(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	_, err := l.snapshots.Create(ctx, driving.CreateSnapshotRequest{Text: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = l.snapshots.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = l.snapshots.Get(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = NewSnapshotService(nil).List(ctx)
	assert.ErrorIs(t, err, domain.ErrNotImplemented)
}

type upperExtractor struct{}

func (upperExtractor) ExtractText(markup string) string {
	return strings.ToUpper(strings.Trim(markup, "<>"))
}

func TestSnapshotService_Create_DerivesTextFromHTML(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	l.snapshots.SetTextExtractor(upperExtractor{})

	snap, err := l.snapshots.Create(ctx, driving.CreateSnapshotRequest{
		URL: "https://example.com/alpha", HTML: "<loft>",
	})
	require.NoError(t, err)
	assert.Equal(t, "LOFT", snap.Text)
	assert.Equal(t, "<loft>", snap.HTML)
	assert.Equal(t, domain.HashText("LOFT"), snap.ContentHash)

	ev, err := l.evidence.Cite(ctx, snap.ID, "LOFT")
	require.NoError(t, err)
	assert.Equal(t, 0, ev.Locator.StartChar)

	given, err := l.snapshots.Create(ctx, driving.CreateSnapshotRequest{
		URL: "https://example.com/bravo", Text: "as captured", HTML: "<ignored>",
	})
	require.NoError(t, err)
	assert.Equal(t, "as captured", given.Text)
}
