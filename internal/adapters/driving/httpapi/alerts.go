package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/listingtrail/internal/core/domain"
)

func (s *Server) handleListAlerts(c *gin.Context) {
	if s.svcs.Alerts == nil {
		notImplemented(c, "alerts")
		return
	}
	var status domain.AlertStatus
	if q := c.Query("status"); q != "" {
		parsed, err := domain.ParseAlertStatus(q)
		if err != nil {
			respondError(c, err)
			return
		}
		status = parsed
	}
	alerts, err := s.svcs.Alerts.List(c.Request.Context(), status)
	if err != nil {
		respondError(c, err)
		return
	}
	if alerts == nil {
		alerts = []domain.Alert{}
	}
	respondOK(c, http.StatusOK, gin.H{"alerts": alerts})
}

func (s *Server) handleGetAlert(c *gin.Context) {
	if s.svcs.Alerts == nil {
		notImplemented(c, "alerts")
		return
	}
	alert, err := s.svcs.Alerts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"alert": alert})
}

func (s *Server) handleTransitionAlert(c *gin.Context) {
	if s.svcs.Alerts == nil {
		notImplemented(c, "alerts")
		return
	}
	var req transitionRequest
	if err := bind(c, &req); err != nil {
		respondError(c, err)
		return
	}
	next, err := domain.ParseAlertStatus(req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	alert, err := s.svcs.Alerts.Transition(c.Request.Context(), c.Param("id"), next)
	if err != nil {
		respondError(c, err)
		return
	}
	s.metrics.alerts.WithLabelValues(alert.Status.String()).Inc()
	respondOK(c, http.StatusOK, gin.H{"alert": alert})
}
