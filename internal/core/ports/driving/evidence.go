package driving

import (
	"context"

	"github.com/custodia-labs/listingtrail/internal/core/domain"
)

// EvidenceService is the citation ledger.
type EvidenceService interface {
	// Cite records an excerpt of a snapshot. Excerpts found verbatim in the
	// snapshot text become text spans; anything else is a summary.
	Cite(ctx context.Context, snapshotID, excerpt string) (*domain.Evidence, error)

	// CiteSpan records the characters [start, end) of a snapshot's text.
	CiteSpan(ctx context.Context, snapshotID string, start, end int) (*domain.Evidence, error)

	// Get retrieves a citation by ID.
	Get(ctx context.Context, id string) (*domain.Evidence, error)

	// Verify re-resolves a citation against its snapshot.
	// An empty result means the citation is consistent.
	Verify(ctx context.Context, id string) ([]domain.EvidenceIssue, error)

	// ListBySnapshot returns the citations drawn from a snapshot.
	ListBySnapshot(ctx context.Context, snapshotID string) ([]domain.Evidence, error)
}
