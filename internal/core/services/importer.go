package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/listingtrail/internal/core/domain"
	"github.com/custodia-labs/listingtrail/internal/core/ports/driven"
	"github.com/custodia-labs/listingtrail/internal/core/ports/driving"
	"github.com/custodia-labs/listingtrail/internal/logger"
)

// Ensure ImportService implements the interface.
var _ driving.ImportService = (*ImportService)(nil)

// listingKeySpace namespaces listing ids derived from bundle keys.
var listingKeySpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("listingtrail:listing"))

// ImportService applies bundles through the other services, so every record
// goes through the same validation as an API call.
type ImportService struct {
	reader    driven.BundleReader
	snapshots driving.SnapshotService
	evidence  driving.EvidenceService
	listings  driving.ListingService
	specs     driving.SearchSpecService
}

// NewImportService creates a new import service.
func NewImportService(
	reader driven.BundleReader,
	snapshots driving.SnapshotService,
	evidence driving.EvidenceService,
	listings driving.ListingService,
	specs driving.SearchSpecService,
) *ImportService {
	return &ImportService{
		reader:    reader,
		snapshots: snapshots,
		evidence:  evidence,
		listings:  listings,
		specs:     specs,
	}
}

// ListingIDForKey returns the id a bundle listing key maps to when the
// bundle does not name one.
func ListingIDForKey(key string) string {
	return uuid.NewSHA1(listingKeySpace, []byte(key)).String()
}

// ImportFile reads a bundle from disk and imports it.
func (s *ImportService) ImportFile(ctx context.Context, path string) (*domain.ImportResult, error) {
	if s.reader == nil {
		return nil, domain.ErrNotImplemented
	}
	bundle, err := s.reader.ReadFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return s.Import(ctx, bundle)
}

// Import validates the whole bundle, then applies snapshots, citations,
// listings, changes and search specs in that order. It stops at the first
// failure; records written before it remain, as the ledger is append-only.
func (s *ImportService) Import(ctx context.Context, b *domain.Bundle) (*domain.ImportResult, error) {
	if s.snapshots == nil || s.evidence == nil || s.listings == nil || s.specs == nil {
		return nil, domain.ErrNotImplemented
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	logger.Section("Import")

	result := &domain.ImportResult{ListingIDs: make(map[string]string, len(b.Listings))}
	snapshots := make(map[string]*domain.Snapshot, len(b.Snapshots))
	citations := make(map[string]*domain.Evidence)

	for _, bs := range b.Snapshots {
		snap, err := s.snapshots.Create(ctx, driving.CreateSnapshotRequest{
			URL:        bs.URL,
			Text:       bs.Text,
			HTML:       bs.HTML,
			SourceID:   bs.SourceID,
			CapturedAt: bs.CapturedAt,
		})
		if err != nil {
			return result, fmt.Errorf("snapshot %s: %w", bs.Key, err)
		}
		snapshots[bs.Key] = snap
		result.Snapshots++

		for _, c := range bs.Citations {
			ev, err := s.evidence.Cite(ctx, snap.ID, c.Excerpt)
			if err != nil {
				return result, fmt.Errorf("citation %s: %w", c.Key, err)
			}
			citations[c.Key] = ev
			result.Evidence++
		}
	}

	for _, bl := range b.Listings {
		id := bl.ID
		if id == "" {
			id = ListingIDForKey(bl.Key)
		}
		req := driving.RegisterListingRequest{ID: id, Title: bl.Title, Neighborhood: bl.Neighborhood}
		if bl.Snapshot != "" {
			req.SnapshotID = snapshots[bl.Snapshot].ID
		}
		_, err := s.listings.Register(ctx, req)
		switch {
		case err == nil:
			result.Listings++
		case errors.Is(err, domain.ErrConflict):
			logger.Debug("listing %s (%s) already registered", bl.Key, id)
			result.Skipped++
		default:
			return result, fmt.Errorf("listing %s: %w", bl.Key, err)
		}
		result.ListingIDs[bl.Key] = id
	}

	for i, bc := range b.Changes {
		applied, err := s.applyChange(ctx, bc, result.ListingIDs, snapshots, citations)
		if err != nil {
			return result, fmt.Errorf("changes[%d]: %w", i, err)
		}
		if applied {
			result.Changes++
		} else {
			result.Skipped++
		}
	}

	for i := range b.SearchSpecs {
		if _, err := s.specs.Create(ctx, b.SearchSpecs[i]); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				result.Skipped++
				continue
			}
			return result, fmt.Errorf("search_specs[%d]: %w", i, err)
		}
		result.SearchSpecs++
	}

	logger.Debug("import: %d snapshots, %d citations, %d listings, %d changes, %d specs, %d skipped",
		result.Snapshots, result.Evidence, result.Listings, result.Changes, result.SearchSpecs, result.Skipped)
	return result, nil
}

// applyChange applies one bundle change. It reports false when the change
// is already reflected in the ledger.
func (s *ImportService) applyChange(
	ctx context.Context,
	bc domain.BundleChange,
	listingIDs map[string]string,
	snapshots map[string]*domain.Snapshot,
	citations map[string]*domain.Evidence,
) (bool, error) {
	listingID, ok := listingIDs[bc.Listing]
	if !ok {
		listingID = bc.Listing
	}

	req := driving.ApplyChangeRequest{
		ChangeID:   bc.ID,
		ListingID:  listingID,
		FieldPath:  bc.Field,
		NewValue:   bc.Value,
		Confidence: bc.Confidence,
		ChangedAt:  bc.ChangedAt,
	}
	if bc.OldValue != nil {
		req.OldValue = *bc.OldValue
	}

	var snap *domain.Snapshot
	if bc.Snapshot != "" {
		snap = snapshots[bc.Snapshot]
		req.SnapshotID = snap.ID
	}
	for _, key := range bc.Citations {
		ev := citations[key]
		req.EvidenceIDs = append(req.EvidenceIDs, ev.ID)
		if snap == nil {
			snap = s.snapshotOf(ev, snapshots)
		}
	}

	at := bc.ChangedAt
	if at.IsZero() && snap != nil {
		at = snap.CapturedAt
	}
	if done, err := s.alreadyHolds(ctx, listingID, bc, at); err != nil || done {
		return false, err
	}

	_, err := s.listings.ApplyChange(ctx, req)
	if errors.Is(err, domain.ErrConflict) && bc.ID != "" {
		logger.Debug("change %s already recorded", bc.ID)
		return false, nil
	}
	return err == nil, err
}

func (s *ImportService) snapshotOf(ev *domain.Evidence, snapshots map[string]*domain.Snapshot) *domain.Snapshot {
	for _, snap := range snapshots {
		if snap.ID == ev.SnapshotID {
			return snap
		}
	}
	return nil
}

// alreadyHolds reports whether the listing's field already has the change's
// value at the instant the change would take effect.
func (s *ImportService) alreadyHolds(ctx context.Context, listingID string, bc domain.BundleChange, at time.Time) (bool, error) {
	var listing *domain.Listing
	var err error
	if at.IsZero() {
		listing, err = s.listings.Get(ctx, listingID, "")
	} else {
		listing, err = s.listings.GetAsOf(ctx, listingID, at)
	}
	if err != nil {
		return false, err
	}
	current := domain.NullValue()
	if f, ok := listing.Fields[bc.Field]; ok {
		current = f.Value
	}
	return current.Equal(bc.Value), nil
}
