package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/monarch-rideshare-sync/internal/adapters/clients"
	"github.com/eshaffer321/monarch-rideshare-sync/internal/adapters/credentials"
	"github.com/eshaffer321/monarch-rideshare-sync/internal/adapters/providers"
	"github.com/eshaffer321/monarch-rideshare-sync/internal/api"
	"github.com/eshaffer321/monarch-rideshare-sync/internal/api/dto"
	"github.com/eshaffer321/monarch-rideshare-sync/internal/application/service"
	"github.com/eshaffer321/monarch-rideshare-sync/internal/domain/activity"
	"github.com/eshaffer321/monarch-rideshare-sync/internal/infrastructure/config"
	"github.com/eshaffer321/monarch-rideshare-sync/internal/infrastructure/logging"
	"github.com/eshaffer321/monarch-rideshare-sync/internal/infrastructure/storage"
)

type stubLedger struct {
	mu      sync.Mutex
	txns    []activity.LedgerTransaction
	tags    []activity.Tag
	applied []activity.Decision
}

func (l *stubLedger) PendingTransactions(context.Context) ([]activity.LedgerTransaction, error) {
	return l.txns, nil
}

func (l *stubLedger) Tags(context.Context) ([]activity.Tag, error) {
	return l.tags, nil
}

func (l *stubLedger) ApplyDecision(_ context.Context, d activity.Decision) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.applied = append(l.applied, d)
	return nil
}

type stubRides struct {
	rides []activity.RideRecord
}

func (s stubRides) Name() string { return "uber_rides" }

func (s stubRides) FetchRides(context.Context, providers.FetchOptions) ([]activity.RideRecord, error) {
	return s.rides, nil
}

func loggedIn() credentials.Static {
	h := http.Header{"Cookie": []string{"sid=1"}}
	return credentials.Static{
		credentials.ServiceMonarch:   http.Header{"Authorization": []string{"Token abc123"}},
		credentials.ServiceUberRides: h,
	}
}

// newService builds a ReconcileService with only the ride provider enabled.
func newService(store storage.Repository, ledger *stubLedger, rides stubRides, creds credentials.Provider) *service.ReconcileService {
	cfg := config.Default()
	cfg.Providers.UberEats.Enabled = false
	cfg.Providers.BayWheels.Enabled = false
	cl := &clients.Clients{Credentials: creds, Ledger: ledger, Rides: rides}
	return service.NewReconcileService(cfg, cl, store, logging.Discard())
}

func newTestServer(t *testing.T) (*api.Server, *storage.MockRepository, *stubLedger) {
	t.Helper()
	repo := storage.NewMockRepository()
	ledger := &stubLedger{}
	svc := newService(repo, ledger, stubRides{}, loggedIn())
	return api.NewServer(api.DefaultConfig(), svc, logging.Discard()), repo, ledger
}

func rideDay() time.Time {
	return time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
}

func TestServer_HealthEndpoint(t *testing.T) {
	server, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	server.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response dto.HealthResponse
	err := json.NewDecoder(rec.Body).Decode(&response)
	require.NoError(t, err)
	assert.Equal(t, "ok", response.Status)
}

func TestServer_MatchEndpoint(t *testing.T) {
	t.Run("POST /api/match pairs a ride", func(t *testing.T) {
		repo := storage.NewMockRepository()
		ledger := &stubLedger{txns: []activity.LedgerTransaction{{
			ID: "t1", Amount: decimal.RequireFromString("-23.50"), Date: rideDay(),
			RawDescription: "UBER *TRIP", Merchant: activity.MerchantRide,
		}}}
		rides := stubRides{rides: []activity.RideRecord{{
			UUID: "r1", Location: "Office", Cost: "$23.50",
			Details: &activity.RideDetails{StartTime: rideDay().Add(9 * time.Hour), Fare: "$23.50"},
		}}}
		server := api.NewServer(api.DefaultConfig(), newService(repo, ledger, rides, loggedIn()), logging.Discard())

		req := httptest.NewRequest(http.MethodPost, "/api/match", nil)
		rec := httptest.NewRecorder()

		server.Router().ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var response dto.MatchResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.NotEmpty(t, response.RunID)
		require.Len(t, response.Rows, 1)
		require.NotNil(t, response.Rows[0].Ride)
		assert.Equal(t, "r1", response.Rows[0].Ride.SourceID)
		assert.Equal(t, 1, response.Matched)
		assert.True(t, repo.CompleteRunCalled)
	})

	t.Run("POST /api/match reports missing sessions", func(t *testing.T) {
		svc := newService(storage.NewMockRepository(), &stubLedger{}, stubRides{}, credentials.Static{})
		server := api.NewServer(api.DefaultConfig(), svc, logging.Discard())

		req := httptest.NewRequest(http.MethodPost, "/api/match", nil)
		rec := httptest.NewRecorder()

		server.Router().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		var apiErr dto.APIError
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&apiErr))
		assert.Len(t, apiErr.Services, 2)
	})

	t.Run("GET /api/match is not routed", func(t *testing.T) {
		server, _, _ := newTestServer(t)

		rec := httptest.NewRecorder()
		server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/match", nil))

		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestServer_DecisionsEndpoints(t *testing.T) {
	server, repo, ledger := newTestServer(t)

	body := `{"transaction_id":"t1","note":"  Uber to Office  ","tag_id":"g1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/decisions", strings.NewReader(body))
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, ledger.applied, 1)
	assert.Equal(t, "Uber to Office", ledger.applied[0].Note)
	assert.True(t, repo.SaveDecisionCalled)

	rec = httptest.NewRecorder()
	server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/decisions", nil))

	var response dto.DecisionListResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	assert.Equal(t, 1, response.Count)
}

func TestServer_TagsEndpoints(t *testing.T) {
	server, _, ledger := newTestServer(t)
	ledger.tags = []activity.Tag{{ID: "g1", Name: "Work", Order: 1}}

	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/tags/sync", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/tags/g1", strings.NewReader(`{"checked":true}`))
	server.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var response dto.TagListResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	require.Len(t, response.Tags, 1)
	assert.True(t, response.Tags[0].Checked)
}

func TestServer_RunsEndpoints(t *testing.T) {
	t.Run("GET /api/runs/:id returns 404 for missing run", func(t *testing.T) {
		server, _, _ := newTestServer(t)

		rec := httptest.NewRecorder()
		server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs/missing", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestServer_CORS(t *testing.T) {
	server, _, _ := newTestServer(t)

	t.Run("sets CORS headers for allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		rec := httptest.NewRecorder()

		server.Router().ServeHTTP(rec, req)

		assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("handles OPTIONS preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/decisions", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		rec := httptest.NewRecorder()

		server.Router().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}
