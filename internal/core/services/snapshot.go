package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/listingtrail/internal/core/domain"
	"github.com/custodia-labs/listingtrail/internal/core/ports/driven"
	"github.com/custodia-labs/listingtrail/internal/core/ports/driving"
	"github.com/custodia-labs/listingtrail/internal/logger"
)

// Ensure SnapshotService implements the interface.
var _ driving.SnapshotService = (*SnapshotService)(nil)

// SnapshotService records immutable page captures.
type SnapshotService struct {
	store     driven.SnapshotStore
	extractor driven.TextExtractor
	now       func() time.Time
}

// NewSnapshotService creates a new snapshot service.
func NewSnapshotService(store driven.SnapshotStore) *SnapshotService {
	return &SnapshotService{store: store, now: time.Now}
}

// SetTextExtractor lets captures that carry only HTML be stored with text
// derived from the markup.
func (s *SnapshotService) SetTextExtractor(x driven.TextExtractor) {
	s.extractor = x
}

// Create stores a snapshot, deduplicating identical captures of a URL.
func (s *SnapshotService) Create(ctx context.Context, req driving.CreateSnapshotRequest) (*domain.Snapshot, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}
	if strings.TrimSpace(req.URL) == "" {
		return nil, fmt.Errorf("snapshot url is required: %w", domain.ErrInvalidArgument)
	}

	text := req.Text
	if strings.TrimSpace(text) == "" && req.HTML != "" && s.extractor != nil {
		text = s.extractor.ExtractText(req.HTML)
	}

	hash := domain.HashText(text)
	existing, err := s.store.FindByContent(ctx, req.URL, hash)
	if err == nil {
		logger.Debug("snapshot of %s unchanged, reusing %s", req.URL, existing.ID)
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	capturedAt := req.CapturedAt
	if capturedAt.IsZero() {
		capturedAt = s.now()
	}
	snapshot := domain.Snapshot{
		ID:          newID(),
		SourceID:    req.SourceID,
		URL:         req.URL,
		ContentHash: hash,
		Text:        text,
		HTML:        req.HTML,
		CapturedAt:  capturedAt.UTC(),
	}
	if err := s.store.Save(ctx, snapshot); err != nil {
		return nil, err
	}
	logger.Debug("snapshot %s captured from %s", snapshot.ID, snapshot.URL)
	return &snapshot, nil
}

// Get retrieves a snapshot by ID.
func (s *SnapshotService) Get(ctx context.Context, id string) (*domain.Snapshot, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}
	if err := requireID("snapshot", id); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, id)
}

// List returns all snapshots ordered by capture time.
func (s *SnapshotService) List(ctx context.Context) ([]domain.Snapshot, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}
	return s.store.List(ctx)
}
