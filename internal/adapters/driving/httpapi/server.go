package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/listingtrail/internal/core/domain"
	"github.com/custodia-labs/listingtrail/internal/core/ports/driving"
	"github.com/custodia-labs/listingtrail/internal/logger"
)

// ErrMissingListingService is returned when the server is built without
// the listing service every route group depends on.
var ErrMissingListingService = errors.New("httpapi: listing service is required")

const shutdownTimeout = 10 * time.Second

// Services holds the driving ports the API exposes. Routes whose service is
// nil answer 501.
type Services struct {
	Snapshots   driving.SnapshotService
	Evidence    driving.EvidenceService
	Listings    driving.ListingService
	Compare     driving.ComparisonService
	NearMiss    driving.NearMissService
	SearchSpecs driving.SearchSpecService
	Alerts      driving.AlertService
}

// Server is the REST API.
type Server struct {
	svcs    Services
	engine  *gin.Engine
	metrics *metrics
	addr    string
}

func init() {
	gin.SetMode(gin.ReleaseMode)
}

// NewServer builds the router for the given services and settings.
func NewServer(svcs Services, cfg domain.ServerSettings) (*Server, error) {
	if svcs.Listings == nil {
		return nil, ErrMissingListingService
	}
	corsHandler, err := corsMiddleware(cfg.CORSOrigins)
	if err != nil {
		return nil, err
	}

	s := &Server{
		svcs:    svcs,
		engine:  gin.New(),
		metrics: newMetrics(),
		addr:    cfg.Addr,
	}
	s.engine.Use(
		gin.Recovery(),
		requestLogger(),
		s.metrics.middleware(),
		corsHandler,
		rateLimit(cfg.RateLimit, cfg.RateBurst),
	)
	s.engine.NoRoute(func(c *gin.Context) {
		abortWith(c, http.StatusNotFound, "NOT_FOUND", "no such route")
	})
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	api := s.engine.Group("/api")
	api.GET("/healthz", s.handleHealth)
	api.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{})))

	snapshots := api.Group("/snapshots")
	snapshots.GET("", s.handleListSnapshots)
	snapshots.POST("", s.handleCreateSnapshot)
	snapshots.GET("/:id", s.handleGetSnapshot)
	snapshots.GET("/:id/evidence", s.handleSnapshotEvidence)

	evidence := api.Group("/evidence")
	evidence.POST("", s.handleCite)
	evidence.GET("/:id", s.handleGetEvidence)
	evidence.GET("/:id/verify", s.handleVerifyEvidence)

	listings := api.Group("/listings")
	listings.GET("", s.handleListListings)
	listings.POST("", s.handleRegisterListing)
	listings.GET("/:id", s.handleGetListing)
	listings.GET("/:id/history", s.handleHistory)
	listings.POST("/:id/changes", s.handleApplyChange)
	listings.POST("/:id/rebuild", s.handleRebuild)

	api.POST("/compare", s.handleCompare)
	api.POST("/near-miss", s.handleNearMiss)

	specs := api.Group("/search-specs")
	specs.GET("", s.handleListSearchSpecs)
	specs.POST("", s.handleCreateSearchSpec)
	specs.GET("/:id", s.handleGetSearchSpec)

	alerts := api.Group("/alerts")
	alerts.GET("", s.handleListAlerts)
	alerts.GET("/:id", s.handleGetAlert)
	alerts.POST("/:id/transition", s.handleTransitionAlert)
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP API listening on %s", ln.Addr())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down HTTP API: %w", err)
		}
		logger.Info("HTTP API stopped")
		return nil
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	respondOK(c, http.StatusOK, gin.H{"status": "ok"})
}

// notImplemented answers 501 when a route's service was not wired.
func notImplemented(c *gin.Context, what string) {
	respondError(c, fmt.Errorf("%s: %w", what, domain.ErrNotImplemented))
}
