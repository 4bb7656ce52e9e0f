package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/listingtrail/internal/core/domain"
	"github.com/custodia-labs/listingtrail/internal/core/ports/driving"
)

func (s *Server) handleCompare(c *gin.Context) {
	if s.svcs.Compare == nil {
		notImplemented(c, "compare")
		return
	}
	var req compareRequest
	if err := bind(c, &req); err != nil {
		respondError(c, err)
		return
	}
	cmp, err := s.svcs.Compare.Compare(c.Request.Context(), driving.CompareRequest{
		LeftID:          req.LeftID,
		RightID:         req.RightID,
		LeftSnapshotID:  req.LeftSnapshotID,
		RightSnapshotID: req.RightSnapshotID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"comparison": cmp})
}

func (s *Server) handleNearMiss(c *gin.Context) {
	if s.svcs.NearMiss == nil {
		notImplemented(c, "near-miss")
		return
	}
	var req nearMissRequest
	if err := bind(c, &req); err != nil {
		respondError(c, err)
		return
	}
	results, err := s.svcs.NearMiss.Find(c.Request.Context(), req.SearchSpecID, *req.Threshold)
	if err != nil {
		respondError(c, err)
		return
	}
	if results == nil {
		results = []domain.NearMiss{}
	}
	respondOK(c, http.StatusOK, gin.H{"search_spec_id": req.SearchSpecID, "near_miss": results})
}

func (s *Server) handleListSearchSpecs(c *gin.Context) {
	if s.svcs.SearchSpecs == nil {
		notImplemented(c, "search specs")
		return
	}
	specs, err := s.svcs.SearchSpecs.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"search_specs": specs})
}

func (s *Server) handleCreateSearchSpec(c *gin.Context) {
	if s.svcs.SearchSpecs == nil {
		notImplemented(c, "search specs")
		return
	}
	var req createSearchSpecRequest
	if err := bind(c, &req); err != nil {
		respondError(c, err)
		return
	}
	spec, err := s.svcs.SearchSpecs.Create(c.Request.Context(), domain.SearchSpec{
		ID:        req.ID,
		Name:      req.Name,
		RawPrompt: req.RawPrompt,
		Hard:      req.Hard,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, gin.H{"search_spec": spec})
}

func (s *Server) handleGetSearchSpec(c *gin.Context) {
	if s.svcs.SearchSpecs == nil {
		notImplemented(c, "search specs")
		return
	}
	spec, err := s.svcs.SearchSpecs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"search_spec": spec})
}
