package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/listingtrail/internal/core/domain"
)

const alphaText = "Listing Alpha at 123 Mission St. Price $3,200 per month. 2 beds, 1 bath. In-unit laundry."

func TestEvidenceService_Cite_TextSpan(t *testing.T) {
	l := newLedger(t)
	snap := l.snapshot(t, "https://example.com/alpha", alphaText)

	ev := l.cite(t, snap.ID, "$3,200 per month")
	assert.Equal(t, domain.EvidenceKindTextSpan, ev.Kind)
	require.NotNil(t, ev.Locator)
	assert.Equal(t, domain.HashText("$3,200 per month"), ev.Locator.TextHash)

	issues, err := l.evidence.Verify(context.Background(), ev.ID)
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestEvidenceService_Cite_Summary(t *testing.T) {
	l := newLedger(t)
	snap := l.snapshot(t, "https://example.com/alpha", alphaText)

	ev := l.cite(t, snap.ID, "two bedroom unit")
	assert.Equal(t, domain.EvidenceKindSummary, ev.Kind)
	assert.Nil(t, ev.Locator)
}

func TestEvidenceService_Cite_Errors(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	snap := l.snapshot(t, "https://example.com/alpha", alphaText)

	_, err := l.evidence.Cite(ctx, "no-such-snapshot", "x")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = l.evidence.Cite(ctx, snap.ID, "")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = l.evidence.Get(ctx, "no-such-evidence")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEvidenceService_CiteSpan(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	snap := l.snapshot(t, "https://example.com/alpha", alphaText)

	ev, err := l.evidence.CiteSpan(ctx, snap.ID, 8, 13)
	require.NoError(t, err)
	assert.Equal(t, "Alpha", ev.Excerpt)

	_, err = l.evidence.CiteSpan(ctx, snap.ID, 10, 5000)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	list, err := l.evidence.ListBySnapshot(ctx, snap.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = l.evidence.ListBySnapshot(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEvidenceService_Verify_DetectsTampering(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	snap := l.snapshot(t, "https://example.com/alpha", alphaText)

	tampered := domain.Evidence{
		ID:         "tampered",
		SnapshotID: snap.ID,
		Kind:       domain.EvidenceKindTextSpan,
		Locator:    &domain.Locator{StartChar: 0, EndChar: 7, TextHash: domain.HashText("Listing"), SourceFormat: domain.SourceFormatText},
		Excerpt:    "Lasting",
	}
	require.NoError(t, l.evidence.evidence.Save(ctx, tampered))

	issues, err := l.evidence.Verify(ctx, "tampered")
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, domain.IssueExcerptMismatch, issues[0].Code)
}
