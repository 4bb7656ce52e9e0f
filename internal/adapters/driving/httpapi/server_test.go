package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/listingtrail/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/listingtrail/internal/core/domain"
	"github.com/custodia-labs/listingtrail/internal/core/ports/driving"
	"github.com/custodia-labs/listingtrail/internal/core/services"
)

const missingID = "00000000-0000-4000-8000-000000000000"

type testEnv struct {
	server   *Server
	svcs     Services
	listings *services.ListingService
}

func newTestEnv(t *testing.T, cfg domain.ServerSettings) *testEnv {
	t.Helper()
	snapshotStore := memory.NewSnapshotStore()
	evidenceStore := memory.NewEvidenceStore()
	changeStore := memory.NewChangeStore()
	specStore := memory.NewSearchSpecStore()

	snapshots := services.NewSnapshotService(snapshotStore)
	evidence := services.NewEvidenceService(evidenceStore, snapshotStore)
	listings := services.NewListingService(memory.NewListingStore(), changeStore, snapshotStore, evidenceStore)
	alerts := services.NewAlertService(memory.NewAlertStore(), changeStore)
	listings.SetAlertService(alerts)

	svcs := Services{
		Snapshots:   snapshots,
		Evidence:    evidence,
		Listings:    listings,
		Compare:     services.NewComparisonService(listings),
		NearMiss:    services.NewNearMissService(specStore, listings),
		SearchSpecs: services.NewSearchSpecService(specStore),
		Alerts:      alerts,
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:0"
	}
	server, err := NewServer(svcs, cfg)
	require.NoError(t, err)
	return &testEnv{server: server, svcs: svcs, listings: listings}
}

type response struct {
	SchemaVersion string          `json:"schema_version"`
	Status        string          `json:"status"`
	Data          json.RawMessage `json:"data"`
	Error         *apiError       `json:"error"`
}

func (e *testEnv) do(t *testing.T, method, path string, body any) (int, response) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, ok := body.(string)
		if !ok {
			b, err := json.Marshal(body)
			require.NoError(t, err)
			raw = string(b)
		}
		reader = bytes.NewReader([]byte(raw))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)

	var resp response
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	}
	return rec.Code, resp
}

func decodeData[T any](t *testing.T, resp response, key string) T {
	t.Helper()
	var data map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	raw, ok := data[key]
	require.True(t, ok, "missing data key %q in %s", key, resp.Data)
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

// seedListing creates a snapshot, a citation and a listing with a price.
func (e *testEnv) seedListing(t *testing.T, title, price string) (*domain.Listing, *domain.Evidence) {
	t.Helper()
	ctx := context.Background()
	text := title + " asks $" + price + " per month"
	snap, err := e.svcs.Snapshots.Create(ctx, driving.CreateSnapshotRequest{URL: "https://example.com/" + title, Text: text})
	require.NoError(t, err)
	ev, err := e.svcs.Evidence.Cite(ctx, snap.ID, "$"+price)
	require.NoError(t, err)
	listing, err := e.listings.Register(ctx, driving.RegisterListingRequest{Title: title, SnapshotID: snap.ID})
	require.NoError(t, err)
	_, err = e.listings.ApplyChange(ctx, driving.ApplyChangeRequest{
		ListingID:   listing.ID,
		FieldPath:   "price",
		NewValue:    mustNumber(t, price),
		EvidenceIDs: []string{ev.ID},
	})
	require.NoError(t, err)
	return listing, ev
}

func mustNumber(t *testing.T, s string) domain.Value {
	t.Helper()
	var v domain.Value
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func TestNewServer_RequiresListings(t *testing.T) {
	_, err := NewServer(Services{}, domain.ServerSettings{Addr: ":0"})
	assert.ErrorIs(t, err, ErrMissingListingService)
}

func TestNewServer_RejectsBadOrigin(t *testing.T) {
	svcs := Services{Listings: services.NewListingService(nil, nil, nil, nil)}
	_, err := NewServer(svcs, domain.ServerSettings{Addr: ":0", CORSOrigins: []string{"not a url"}})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, domain.ServerSettings{})
	code, resp := env.do(t, http.MethodGet, "/api/healthz", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, SchemaVersion, resp.SchemaVersion)
	assert.Equal(t, "success", resp.Status)
}

func TestUnknownRoute(t *testing.T) {
	env := newTestEnv(t, domain.ServerSettings{})
	code, resp := env.do(t, http.MethodGet, "/api/nope", nil)
	assert.Equal(t, http.StatusNotFound, code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
}

func TestGetListing(t *testing.T) {
	env := newTestEnv(t, domain.ServerSettings{})
	listing, ev := env.seedListing(t, "loft", "2400")

	code, resp := env.do(t, http.MethodGet, "/api/listings/"+listing.ID, nil)
	require.Equal(t, http.StatusOK, code)
	got := decodeData[domain.Listing](t, resp, "listing")
	assert.Equal(t, listing.ID, got.ID)
	price, ok := got.Fields["price"]
	require.True(t, ok)
	assert.Equal(t, "2400", price.Value.String())
	require.Len(t, price.Evidence, 1)
	assert.Equal(t, ev.ID, price.Evidence[0].ID)
}

func TestGetListing_NotFound(t *testing.T) {
	env := newTestEnv(t, domain.ServerSettings{})
	code, resp := env.do(t, http.MethodGet, "/api/listings/"+missingID, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
}

func TestGetListing_AsOf(t *testing.T) {
	env := newTestEnv(t, domain.ServerSettings{})
	listing, _ := env.seedListing(t, "loft", "2400")

	code, resp := env.do(t, http.MethodGet, "/api/listings/"+listing.ID+"?as_of=2000-01-01T00:00:00Z", nil)
	require.Equal(t, http.StatusOK, code)
	got := decodeData[domain.Listing](t, resp, "listing")
	assert.Empty(t, got.Fields)

	code, resp = env.do(t, http.MethodGet, "/api/listings/"+listing.ID+"?as_of=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)

	code, _ = env.do(t, http.MethodGet, "/api/listings/"+listing.ID+"?as_of=2000-01-01T00:00:00Z&snapshot_id=x", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestRegisterAndApplyChange(t *testing.T) {
	env := newTestEnv(t, domain.ServerSettings{})

	code, resp := env.do(t, http.MethodPost, "/api/listings", map[string]any{"title": "studio"})
	require.Equal(t, http.StatusCreated, code)
	listing := decodeData[domain.Listing](t, resp, "listing")

	code, resp = env.do(t, http.MethodPost, "/api/listings/"+listing.ID+"/changes", map[string]any{
		"field_path": "bedrooms",
		"new_value":  1,
	})
	require.Equal(t, http.StatusCreated, code, string(resp.Data))
	change := decodeData[domain.ListingChange](t, resp, "change")
	assert.Equal(t, "bedrooms", change.FieldPath)
	assert.True(t, change.OldValue.IsNull())

	code, resp = env.do(t, http.MethodGet, "/api/listings/"+listing.ID+"/history", nil)
	require.Equal(t, http.StatusOK, code)
	history := decodeData[[]domain.ListingChange](t, resp, "history")
	require.Len(t, history, 1)
	assert.Equal(t, change.ID, history[0].ID)

	// A stale old_value is rejected.
	code, resp = env.do(t, http.MethodPost, "/api/listings/"+listing.ID+"/changes", map[string]any{
		"field_path": "bedrooms",
		"old_value":  3,
		"new_value":  2,
	})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "CONFLICT", resp.Error.Code)

	code, resp = env.do(t, http.MethodPost, "/api/listings/"+listing.ID+"/rebuild", nil)
	require.Equal(t, http.StatusOK, code)
	rebuilt := decodeData[domain.Listing](t, resp, "listing")
	assert.Equal(t, "1", rebuilt.Fields["bedrooms"].Value.String())
}

func TestRegister_Validation(t *testing.T) {
	env := newTestEnv(t, domain.ServerSettings{})

	code, resp := env.do(t, http.MethodPost, "/api/listings", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, resp.Error.Message, "title is required")

	code, _ = env.do(t, http.MethodPost, "/api/listings", `{"title": `)
	assert.Equal(t, http.StatusBadRequest, code)

	code, resp = env.do(t, http.MethodPost, "/api/listings", map[string]any{"title": "x", "schema_version": "v2"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, resp.Error.Message, "schema_version must be v1")
}

func TestCompare(t *testing.T) {
	env := newTestEnv(t, domain.ServerSettings{})
	left, _ := env.seedListing(t, "left", "2400")
	right, _ := env.seedListing(t, "right", "2600")

	code, resp := env.do(t, http.MethodPost, "/api/compare", map[string]any{
		"listing_id_left":  left.ID,
		"listing_id_right": right.ID,
	})
	require.Equal(t, http.StatusOK, code)
	cmp := decodeData[domain.Comparison](t, resp, "comparison")
	assert.Equal(t, left.ID, cmp.LeftID)
	assert.Equal(t, []string{"price"}, cmp.DifferentFields())
}

func TestCompare_Validation(t *testing.T) {
	env := newTestEnv(t, domain.ServerSettings{})

	code, resp := env.do(t, http.MethodPost, "/api/compare", map[string]any{"listing_id_left": "abc"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, resp.Error.Message, "listing_id_left")
	assert.Contains(t, resp.Error.Message, "listing_id_right is required")

	code, _ = env.do(t, http.MethodPost, "/api/compare", map[string]any{
		"listing_id_left":  missingID,
		"listing_id_right": missingID,
	})
	assert.Equal(t, http.StatusNotFound, code)
}

func TestNearMiss(t *testing.T) {
	env := newTestEnv(t, domain.ServerSettings{})
	near, _ := env.seedListing(t, "near", "2150")
	env.seedListing(t, "far", "3000")
	env.seedListing(t, "fits", "1900")

	code, resp := env.do(t, http.MethodPost, "/api/search-specs", map[string]any{
		"hard": []map[string]any{{"field": "price", "op": "max", "bound": 2000}},
	})
	require.Equal(t, http.StatusCreated, code, string(resp.Data))
	spec := decodeData[domain.SearchSpec](t, resp, "search_spec")
	assert.Equal(t, "max_price", spec.Hard[0].Name)

	code, resp = env.do(t, http.MethodPost, "/api/near-miss", map[string]any{
		"search_spec_id": spec.ID,
		"threshold":      0.1,
	})
	require.Equal(t, http.StatusOK, code)
	results := decodeData[[]map[string]any](t, resp, "near_miss")
	require.Len(t, results, 1)
	assert.Equal(t, near.ID, results[0]["listing_id"])
	assert.Equal(t, "max_price", results[0]["constraint"])
	assert.Contains(t, results[0], "price")
}

func TestNearMiss_Validation(t *testing.T) {
	env := newTestEnv(t, domain.ServerSettings{})

	code, resp := env.do(t, http.MethodPost, "/api/near-miss", map[string]any{"search_spec_id": missingID})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, resp.Error.Message, "threshold is required")

	code, _ = env.do(t, http.MethodPost, "/api/near-miss", map[string]any{"search_spec_id": missingID, "threshold": 1.5})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = env.do(t, http.MethodPost, "/api/near-miss", map[string]any{"search_spec_id": missingID, "threshold": 0.1})
	assert.Equal(t, http.StatusNotFound, code)
}

func TestEvidenceRoutes(t *testing.T) {
	env := newTestEnv(t, domain.ServerSettings{})

	code, resp := env.do(t, http.MethodPost, "/api/snapshots", map[string]any{
		"url":  "https://example.com/a",
		"text": "Sunny two bedroom near the park",
	})
	require.Equal(t, http.StatusCreated, code)
	snap := decodeData[domain.Snapshot](t, resp, "snapshot")

	code, resp = env.do(t, http.MethodPost, "/api/evidence", map[string]any{
		"snapshot_id": snap.ID,
		"excerpt":     "two bedroom",
	})
	require.Equal(t, http.StatusCreated, code)
	ev := decodeData[domain.Evidence](t, resp, "evidence")
	assert.Equal(t, domain.EvidenceKindTextSpan, ev.Kind)

	code, resp = env.do(t, http.MethodPost, "/api/evidence", map[string]any{
		"snapshot_id": snap.ID,
		"start_char":  0,
		"end_char":    5,
	})
	require.Equal(t, http.StatusCreated, code)
	span := decodeData[domain.Evidence](t, resp, "evidence")
	assert.Equal(t, "Sunny", span.Excerpt)

	code, resp = env.do(t, http.MethodGet, "/api/evidence/"+ev.ID+"/verify", nil)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, decodeData[bool](t, resp, "valid"))
	assert.Empty(t, decodeData[[]domain.EvidenceIssue](t, resp, "issues"))

	code, resp = env.do(t, http.MethodGet, "/api/snapshots/"+snap.ID+"/evidence", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decodeData[[]domain.Evidence](t, resp, "evidence"), 2)

	code, _ = env.do(t, http.MethodPost, "/api/evidence", map[string]any{"snapshot_id": snap.ID})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestAlertRoutes(t *testing.T) {
	env := newTestEnv(t, domain.ServerSettings{})
	env.seedListing(t, "loft", "2400")

	code, resp := env.do(t, http.MethodGet, "/api/alerts?status=open", nil)
	require.Equal(t, http.StatusOK, code)
	alerts := decodeData[[]domain.Alert](t, resp, "alerts")
	require.Len(t, alerts, 1)
	id := alerts[0].ID

	code, resp = env.do(t, http.MethodPost, "/api/alerts/"+id+"/transition", map[string]any{"status": "acknowledged"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, domain.AlertAcknowledged, decodeData[domain.Alert](t, resp, "alert").Status)

	// Terminal states cannot move again.
	code, resp = env.do(t, http.MethodPost, "/api/alerts/"+id+"/transition", map[string]any{"status": "dismissed"})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "INVALID_STATE", resp.Error.Code)

	code, _ = env.do(t, http.MethodPost, "/api/alerts/"+id+"/transition", map[string]any{"status": "snoozed"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = env.do(t, http.MethodGet, "/api/alerts?status=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, resp = env.do(t, http.MethodGet, "/api/alerts?status=open", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, decodeData[[]domain.Alert](t, resp, "alerts"))
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, domain.ServerSettings{})
	env.do(t, http.MethodGet, "/api/healthz", nil)

	req := httptest.NewRequest(http.MethodGet, "/api/metrics", nil)
	rec := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `listingtrail_http_requests_total{method="GET",route="/api/healthz",status="200"} 1`)
}

func TestRateLimit(t *testing.T) {
	env := newTestEnv(t, domain.ServerSettings{RateLimit: 0.001, RateBurst: 1})

	code, _ := env.do(t, http.MethodGet, "/api/healthz", nil)
	assert.Equal(t, http.StatusOK, code)
	code, resp := env.do(t, http.MethodGet, "/api/healthz", nil)
	assert.Equal(t, http.StatusTooManyRequests, code)
	assert.Equal(t, codeRateLimited, resp.Error.Code)
}

func TestCORS(t *testing.T) {
	env := newTestEnv(t, domain.ServerSettings{CORSOrigins: []string{"http://localhost:5173"}})

	req := httptest.NewRequest(http.MethodOptions, "/api/listings", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

// failingListings makes every call fail with an unclassified error.
type failingListings struct {
	driving.ListingService
}

func (failingListings) List(context.Context) ([]domain.Listing, error) {
	return nil, errors.New("disk on fire")
}

func TestInternalError(t *testing.T) {
	server, err := NewServer(Services{Listings: failingListings{}}, domain.ServerSettings{Addr: ":0"})
	require.NoError(t, err)
	env := &testEnv{server: server}

	code, resp := env.do(t, http.MethodGet, "/api/listings", nil)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "INTERNAL", resp.Error.Code)
}

func TestUnwiredServiceIsNotImplemented(t *testing.T) {
	server, err := NewServer(Services{Listings: failingListings{}}, domain.ServerSettings{Addr: ":0"})
	require.NoError(t, err)
	env := &testEnv{server: server}

	code, _ := env.do(t, http.MethodGet, "/api/alerts", nil)
	assert.Equal(t, http.StatusNotImplemented, code)
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	env := newTestEnv(t, domain.ServerSettings{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- env.server.Run(ctx) }()
	cancel()
	assert.NoError(t, <-done)
}
