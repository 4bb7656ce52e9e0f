package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/listingtrail/internal/core/domain"
	"github.com/custodia-labs/listingtrail/internal/core/ports/driving"
)

func (s *Server) handleListListings(c *gin.Context) {
	listings, err := s.svcs.Listings.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"listings": listings})
}

func (s *Server) handleRegisterListing(c *gin.Context) {
	var req registerListingRequest
	if err := bind(c, &req); err != nil {
		respondError(c, err)
		return
	}
	listing, err := s.svcs.Listings.Register(c.Request.Context(), driving.RegisterListingRequest{
		ID:           req.ID,
		Title:        req.Title,
		Neighborhood: req.Neighborhood,
		SnapshotID:   req.SnapshotID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, gin.H{"listing": listing})
}

// handleGetListing serves the current projection, the projection at a
// snapshot (?snapshot_id=) or at an instant (?as_of=RFC3339).
func (s *Server) handleGetListing(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	snapshotID := c.Query("snapshot_id")
	asOf := c.Query("as_of")

	var (
		listing *domain.Listing
		err     error
	)
	switch {
	case snapshotID != "" && asOf != "":
		err = fmt.Errorf("snapshot_id and as_of are exclusive: %w", domain.ErrInvalidArgument)
	case asOf != "":
		var at time.Time
		at, err = time.Parse(time.RFC3339Nano, asOf)
		if err != nil {
			err = fmt.Errorf("as_of %q is not RFC 3339: %w", asOf, domain.ErrInvalidArgument)
			break
		}
		listing, err = s.svcs.Listings.GetAsOf(ctx, id, at)
	default:
		listing, err = s.svcs.Listings.Get(ctx, id, snapshotID)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"listing": listing})
}

func (s *Server) handleHistory(c *gin.Context) {
	changes, err := s.svcs.Listings.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"listing_id": c.Param("id"), "history": changes})
}

func (s *Server) handleApplyChange(c *gin.Context) {
	var req applyChangeRequest
	if err := bind(c, &req); err != nil {
		respondError(c, err)
		return
	}
	var changedAt time.Time
	if req.ChangedAt != nil {
		changedAt = *req.ChangedAt
	}
	change, err := s.svcs.Listings.ApplyChange(c.Request.Context(), driving.ApplyChangeRequest{
		ChangeID:    req.ChangeID,
		ListingID:   c.Param("id"),
		FieldPath:   req.FieldPath,
		OldValue:    req.OldValue,
		NewValue:    req.NewValue,
		EvidenceIDs: req.EvidenceIDs,
		SnapshotID:  req.SnapshotID,
		Confidence:  req.Confidence,
		ChangedAt:   changedAt,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, gin.H{"change": change})
}

func (s *Server) handleRebuild(c *gin.Context) {
	listing, err := s.svcs.Listings.Rebuild(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"listing": listing})
}
