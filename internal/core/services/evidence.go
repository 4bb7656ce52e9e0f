package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/listingtrail/internal/core/domain"
	"github.com/custodia-labs/listingtrail/internal/core/ports/driven"
	"github.com/custodia-labs/listingtrail/internal/core/ports/driving"
)

// Ensure EvidenceService implements the interface.
var _ driving.EvidenceService = (*EvidenceService)(nil)

// EvidenceService is the citation ledger.
type EvidenceService struct {
	evidence  driven.EvidenceStore
	snapshots driven.SnapshotStore
	now       func() time.Time
}

// NewEvidenceService creates a new evidence service.
func NewEvidenceService(evidence driven.EvidenceStore, snapshots driven.SnapshotStore) *EvidenceService {
	return &EvidenceService{evidence: evidence, snapshots: snapshots, now: time.Now}
}

// Cite records an excerpt of a snapshot.
func (s *EvidenceService) Cite(ctx context.Context, snapshotID, excerpt string) (*domain.Evidence, error) {
	if s.evidence == nil || s.snapshots == nil {
		return nil, domain.ErrNotImplemented
	}
	if err := requireID("snapshot", snapshotID); err != nil {
		return nil, err
	}
	if excerpt == "" {
		return nil, fmt.Errorf("excerpt is required: %w", domain.ErrInvalidArgument)
	}
	snap, err := s.snapshots.Get(ctx, snapshotID)
	if err != nil {
		return nil, err
	}

	ev := domain.Evidence{
		ID:         newID(),
		SnapshotID: snap.ID,
		Kind:       domain.EvidenceKindSummary,
		Excerpt:    excerpt,
		CreatedAt:  s.now().UTC(),
	}
	if loc, ok := domain.LocateExcerpt(snap.Text, excerpt); ok {
		ev.Kind = domain.EvidenceKindTextSpan
		ev.Locator = loc
	}
	if err := s.evidence.Save(ctx, ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

// CiteSpan records the characters [start, end) of a snapshot's text.
func (s *EvidenceService) CiteSpan(ctx context.Context, snapshotID string, start, end int) (*domain.Evidence, error) {
	if s.evidence == nil || s.snapshots == nil {
		return nil, domain.ErrNotImplemented
	}
	if err := requireID("snapshot", snapshotID); err != nil {
		return nil, err
	}
	snap, err := s.snapshots.Get(ctx, snapshotID)
	if err != nil {
		return nil, err
	}
	excerpt, ok := domain.ResolveSpan(snap.Text, start, end)
	if !ok {
		return nil, fmt.Errorf("span [%d,%d) outside snapshot %s: %w", start, end, snapshotID, domain.ErrInvalidArgument)
	}

	ev := domain.Evidence{
		ID:         newID(),
		SnapshotID: snap.ID,
		Kind:       domain.EvidenceKindTextSpan,
		Locator: &domain.Locator{
			StartChar:    start,
			EndChar:      end,
			TextHash:     domain.HashText(excerpt),
			SourceFormat: domain.SourceFormatText,
		},
		Excerpt:   excerpt,
		CreatedAt: s.now().UTC(),
	}
	if err := s.evidence.Save(ctx, ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

// Get retrieves a citation by ID.
func (s *EvidenceService) Get(ctx context.Context, id string) (*domain.Evidence, error) {
	if s.evidence == nil {
		return nil, domain.ErrNotImplemented
	}
	if err := requireID("evidence", id); err != nil {
		return nil, err
	}
	return s.evidence.Get(ctx, id)
}

// Verify re-resolves a citation against its snapshot.
func (s *EvidenceService) Verify(ctx context.Context, id string) ([]domain.EvidenceIssue, error) {
	ev, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	snap, err := s.snapshots.Get(ctx, ev.SnapshotID)
	if err != nil {
		return nil, fmt.Errorf("evidence %s: %w", id, err)
	}
	issues := domain.CheckEvidence(ev, snap)
	if issues == nil {
		issues = []domain.EvidenceIssue{}
	}
	return issues, nil
}

// ListBySnapshot returns the citations drawn from a snapshot.
func (s *EvidenceService) ListBySnapshot(ctx context.Context, snapshotID string) ([]domain.Evidence, error) {
	if s.evidence == nil || s.snapshots == nil {
		return nil, domain.ErrNotImplemented
	}
	if _, err := s.snapshots.Get(ctx, snapshotID); err != nil {
		return nil, err
	}
	return s.evidence.ListBySnapshot(ctx, snapshotID)
}
