package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/listingtrail/internal/core/domain"
	"github.com/custodia-labs/listingtrail/internal/core/ports/driven"
	"github.com/custodia-labs/listingtrail/internal/core/ports/driving"
	"github.com/custodia-labs/listingtrail/internal/logger"
)

// Ensure ListingService implements the interface.
var _ driving.ListingService = (*ListingService)(nil)

// ListingService owns listing projections and their change history.
//
// A listing's field set is a cache over its change log. ApplyChange appends
// to the log and recomputes the cache by replay while holding the listing's
// write lock, so the two never diverge.
type ListingService struct {
	listings  driven.ListingStore
	changes   driven.ChangeStore
	recorder  driven.ChangeRecorder
	snapshots driven.SnapshotStore
	evidence  driven.EvidenceStore

	alerts      driving.AlertService
	alertsMu    sync.RWMutex
	alertConfig domain.AlertSettings

	locks *keyedLocks
	now   func() time.Time
}

// NewListingService creates a new listing service.
func NewListingService(
	listings driven.ListingStore,
	changes driven.ChangeStore,
	snapshots driven.SnapshotStore,
	evidence driven.EvidenceStore,
) *ListingService {
	recorder, _ := changes.(driven.ChangeRecorder)
	return &ListingService{
		listings:  listings,
		changes:   changes,
		recorder:  recorder,
		snapshots: snapshots,
		evidence:  evidence,
		locks:     newKeyedLocks(),
		now:       time.Now,
	}
}

// SetAlertService enables alert raising for applied changes.
func (s *ListingService) SetAlertService(alerts driving.AlertService) {
	s.alerts = alerts
}

// SetAlertSettings replaces the set of watched field paths.
// Safe to call while changes are being applied.
func (s *ListingService) SetAlertSettings(settings domain.AlertSettings) {
	s.alertsMu.Lock()
	defer s.alertsMu.Unlock()
	s.alertConfig = settings
}

func (s *ListingService) watches(fieldPath string) bool {
	s.alertsMu.RLock()
	defer s.alertsMu.RUnlock()
	return s.alertConfig.Watches(fieldPath)
}

func (s *ListingService) ready() error {
	if s.listings == nil || s.changes == nil || s.snapshots == nil || s.evidence == nil {
		return domain.ErrNotImplemented
	}
	return nil
}

// Register creates a listing with an empty field set.
func (s *ListingService) Register(ctx context.Context, req driving.RegisterListingRequest) (*domain.Listing, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	id := req.ID
	if id == "" {
		id = newID()
	} else if err := requireUUID("listing", id); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("listing title is required: %w", domain.ErrInvalidArgument)
	}
	if req.SnapshotID != "" {
		if _, err := s.snapshots.Get(ctx, req.SnapshotID); err != nil {
			return nil, err
		}
	}

	now := s.now().UTC()
	listing := domain.Listing{
		ID:                   id,
		Title:                req.Title,
		Neighborhood:         req.Neighborhood,
		SnapshotID:           req.SnapshotID,
		RegisteredSnapshotID: req.SnapshotID,
		Fields:               map[string]domain.Field{},
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := s.listings.Create(ctx, listing); err != nil {
		return nil, err
	}
	logger.Debug("listing %s registered (%s)", listing.ID, listing.Title)
	return &listing, nil
}

// Get returns the current projection, or the projection as of a snapshot's
// capture time when snapshotID is set.
func (s *ListingService) Get(ctx context.Context, id, snapshotID string) (*domain.Listing, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if err := requireUUID("listing", id); err != nil {
		return nil, err
	}
	listing, err := s.listings.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if snapshotID == "" {
		return listing, nil
	}

	snap, err := s.snapshots.Get(ctx, snapshotID)
	if err != nil {
		return nil, err
	}
	pinned, err := s.project(ctx, listing, snap.CapturedAt)
	if err != nil {
		return nil, err
	}
	pinned.SnapshotID = snap.ID
	return pinned, nil
}

// GetAsOf returns the projection as of an instant.
func (s *ListingService) GetAsOf(ctx context.Context, id string, at time.Time) (*domain.Listing, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if err := requireUUID("listing", id); err != nil {
		return nil, err
	}
	if at.IsZero() {
		return nil, fmt.Errorf("as-of time is required: %w", domain.ErrInvalidArgument)
	}
	listing, err := s.listings.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.project(ctx, listing, at)
}

func (s *ListingService) project(ctx context.Context, listing *domain.Listing, at time.Time) (*domain.Listing, error) {
	history, err := s.changes.ListFor(ctx, listing.ID)
	if err != nil {
		return nil, err
	}
	base := listing.Baseline()
	projected := domain.Replay(&base, history, at)
	return &projected, nil
}

// List returns all current projections ordered by ID.
func (s *ListingService) List(ctx context.Context) ([]domain.Listing, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.listings.List(ctx)
}

// History returns a listing's changes in replay order.
func (s *ListingService) History(ctx context.Context, id string) ([]domain.ListingChange, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if err := requireUUID("listing", id); err != nil {
		return nil, err
	}
	if _, err := s.listings.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.changes.ListFor(ctx, id)
}

// ApplyChange appends a change to history and updates the projection.
//
// ChangedAt defaults to the capture time of the change's snapshot, or now.
// OldValue is stamped with the value in effect at ChangedAt. A non-null
// OldValue supplied by the caller acts as an optimistic check and must match.
func (s *ListingService) ApplyChange(ctx context.Context, req driving.ApplyChangeRequest) (*domain.ListingChange, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if err := requireUUID("listing", req.ListingID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.FieldPath) == "" {
		return nil, fmt.Errorf("field_path is required: %w", domain.ErrInvalidArgument)
	}
	if req.Confidence < 0 || req.Confidence > 1 || math.IsNaN(req.Confidence) {
		return nil, fmt.Errorf("confidence %v outside [0, 1]: %w", req.Confidence, domain.ErrInvalidArgument)
	}

	evidence, err := s.resolveEvidence(ctx, req.EvidenceIDs)
	if err != nil {
		return nil, err
	}
	snapshotID := req.SnapshotID
	if snapshotID == "" && len(evidence) > 0 {
		snapshotID = evidence[0].SnapshotID
	}
	changedAt := req.ChangedAt
	if snapshotID != "" {
		snap, err := s.snapshots.Get(ctx, snapshotID)
		if err != nil {
			return nil, err
		}
		if changedAt.IsZero() {
			changedAt = snap.CapturedAt
		}
	}

	changeID := req.ChangeID
	if changeID == "" {
		changeID = newID()
	}

	unlock := s.locks.Lock(req.ListingID)
	defer unlock()

	// Stamped under the lock so that default timestamps follow lock order.
	if changedAt.IsZero() {
		changedAt = s.now()
	}

	listing, err := s.listings.Get(ctx, req.ListingID)
	if err != nil {
		return nil, err
	}
	history, err := s.changes.ListFor(ctx, req.ListingID)
	if err != nil {
		return nil, err
	}

	current := domain.ValueAt(history, req.FieldPath, changedAt)
	if !req.OldValue.IsNull() && !req.OldValue.Equal(current) {
		return nil, fmt.Errorf("listing %s field %s is %s, not %s: %w",
			req.ListingID, req.FieldPath, current, req.OldValue, domain.ErrConflict)
	}

	change := domain.ListingChange{
		ID:         changeID,
		ListingID:  req.ListingID,
		FieldPath:  req.FieldPath,
		OldValue:   current,
		NewValue:   req.NewValue,
		ChangedAt:  changedAt.UTC(),
		SnapshotID: snapshotID,
		Evidence:   evidence,
		Confidence: req.Confidence,
	}
	base := listing.Baseline()
	project := func(recorded domain.ListingChange) domain.Listing {
		return domain.Replay(&base, append(history, recorded), time.Time{})
	}
	if err := s.record(ctx, &change, project); err != nil {
		return nil, err
	}
	logger.Debug("listing %s: %s %s -> %s (change %s)",
		listing.ID, change.FieldPath, change.OldValue, change.NewValue, change.ID)

	if s.alerts != nil && s.watches(change.FieldPath) && !change.OldValue.Equal(change.NewValue) {
		// Best effort: the change is already committed.
		if _, err := s.alerts.Raise(ctx, change.ID); err != nil {
			logger.Warn("change %s applied but alert not raised: %v", change.ID, err)
		}
	}
	return &change, nil
}

// record appends change and saves the projection it yields. Stores that
// implement driven.ChangeRecorder do both in one transaction. Otherwise a
// failed save is repaired by replaying the stored history.
func (s *ListingService) record(ctx context.Context, change *domain.ListingChange, project func(domain.ListingChange) domain.Listing) error {
	if s.recorder != nil {
		return s.recorder.Record(ctx, change, project)
	}
	if err := s.changes.Append(ctx, change); err != nil {
		return err
	}
	err := s.listings.Save(ctx, project(*change))
	if err == nil {
		return nil
	}
	logger.Warn("saving projection of listing %s: %v; rebuilding from history", change.ListingID, err)
	if _, rerr := s.rebuild(ctx, change.ListingID); rerr != nil {
		return fmt.Errorf("change %s applied but projection of listing %s is stale until rebuilt: %w",
			change.ID, change.ListingID, rerr)
	}
	return nil
}

func (s *ListingService) resolveEvidence(ctx context.Context, ids []string) ([]domain.Evidence, error) {
	evidence := make([]domain.Evidence, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ev, err := s.evidence.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		evidence = append(evidence, *ev)
	}
	return evidence, nil
}

// Rebuild replays history into the cached projection.
func (s *ListingService) Rebuild(ctx context.Context, id string) (*domain.Listing, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if err := requireUUID("listing", id); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(id)
	defer unlock()
	return s.rebuild(ctx, id)
}

// rebuild replays history into the cached projection. Callers hold the
// listing's lock.
func (s *ListingService) rebuild(ctx context.Context, id string) (*domain.Listing, error) {
	listing, err := s.listings.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	projected, err := s.project(ctx, listing, time.Time{})
	if err != nil {
		return nil, err
	}
	if err := s.listings.Save(ctx, *projected); err != nil {
		return nil, err
	}
	logger.Debug("listing %s rebuilt at revision %d", id, projected.Revision)
	return projected, nil
}
