package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/listingtrail/internal/core/domain"
	"github.com/custodia-labs/listingtrail/internal/core/ports/driving"
)

func (s *Server) handleListSnapshots(c *gin.Context) {
	if s.svcs.Snapshots == nil {
		notImplemented(c, "snapshots")
		return
	}
	snaps, err := s.svcs.Snapshots.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"snapshots": snaps})
}

func (s *Server) handleCreateSnapshot(c *gin.Context) {
	if s.svcs.Snapshots == nil {
		notImplemented(c, "snapshots")
		return
	}
	var req createSnapshotRequest
	if err := bind(c, &req); err != nil {
		respondError(c, err)
		return
	}
	var capturedAt time.Time
	if req.CapturedAt != nil {
		capturedAt = *req.CapturedAt
	}
	snap, err := s.svcs.Snapshots.Create(c.Request.Context(), driving.CreateSnapshotRequest{
		URL:        req.URL,
		Text:       req.Text,
		HTML:       req.HTML,
		SourceID:   req.SourceID,
		CapturedAt: capturedAt,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, gin.H{"snapshot": snap})
}

func (s *Server) handleGetSnapshot(c *gin.Context) {
	if s.svcs.Snapshots == nil {
		notImplemented(c, "snapshots")
		return
	}
	snap, err := s.svcs.Snapshots.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"snapshot": snap})
}

func (s *Server) handleSnapshotEvidence(c *gin.Context) {
	if s.svcs.Evidence == nil {
		notImplemented(c, "evidence")
		return
	}
	evs, err := s.svcs.Evidence.ListBySnapshot(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"evidence": evs})
}

func (s *Server) handleCite(c *gin.Context) {
	if s.svcs.Evidence == nil {
		notImplemented(c, "evidence")
		return
	}
	var req citeRequest
	if err := bind(c, &req); err != nil {
		respondError(c, err)
		return
	}
	ctx := c.Request.Context()
	var (
		ev  *domain.Evidence
		err error
	)
	if req.Start != nil {
		ev, err = s.svcs.Evidence.CiteSpan(ctx, req.SnapshotID, *req.Start, *req.End)
	} else {
		ev, err = s.svcs.Evidence.Cite(ctx, req.SnapshotID, req.Excerpt)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, gin.H{"evidence": ev})
}

func (s *Server) handleGetEvidence(c *gin.Context) {
	if s.svcs.Evidence == nil {
		notImplemented(c, "evidence")
		return
	}
	ev, err := s.svcs.Evidence.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"evidence": ev})
}

func (s *Server) handleVerifyEvidence(c *gin.Context) {
	if s.svcs.Evidence == nil {
		notImplemented(c, "evidence")
		return
	}
	issues, err := s.svcs.Evidence.Verify(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if issues == nil {
		issues = []domain.EvidenceIssue{}
	}
	respondOK(c, http.StatusOK, gin.H{"evidence_id": c.Param("id"), "valid": len(issues) == 0, "issues": issues})
}
