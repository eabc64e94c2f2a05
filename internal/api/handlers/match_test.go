package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/monarch-rideshare-sync/internal/adapters/credentials"
	"github.com/eshaffer321/monarch-rideshare-sync/internal/api/dto"
	"github.com/eshaffer321/monarch-rideshare-sync/internal/api/handlers"
	"github.com/eshaffer321/monarch-rideshare-sync/internal/application/service"
	"github.com/eshaffer321/monarch-rideshare-sync/internal/domain/activity"
	"github.com/eshaffer321/monarch-rideshare-sync/internal/domain/matcher"
	"github.com/eshaffer321/monarch-rideshare-sync/internal/infrastructure/logging"
)

func TestMatchHandler_Run(t *testing.T) {
	t.Run("returns rows", func(t *testing.T) {
		// Arrange
		date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
		fake := newFakeReconciler()
		fake.result = &service.MatchResult{
			RunID:   "run-1",
			Matched: 1,
			Rows: []matcher.MatchedRow{{
				Transaction: matcher.TransactionRef{ID: "t1", Amount: decimal.RequireFromString("-23.50"), Date: date, Merchant: activity.MerchantRide},
				Ride: &matcher.Candidate{
					Kind: matcher.KindBase, Amount: decimal.RequireFromString("-23.50"), Date: date,
					Ride: &activity.RideRecord{UUID: "r1", Details: &activity.RideDetails{MapURL: "https://map"}},
				},
				SuggestedNote: "Uber to Work",
			}},
		}
		handler := handlers.NewMatchHandler(fake, logging.Discard())

		// Act
		rec := httptest.NewRecorder()
		handler.Run(rec, httptest.NewRequest(http.MethodPost, "/api/match", nil))

		// Assert
		assert.Equal(t, http.StatusOK, rec.Code)
		var response dto.MatchResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.Equal(t, "run-1", response.RunID)
		require.Len(t, response.Rows, 1)
		row := response.Rows[0]
		assert.Equal(t, -23.5, row.Transaction.Amount)
		assert.Equal(t, "2024-03-15", row.Transaction.Date)
		assert.Equal(t, "ride", row.Transaction.Merchant)
		require.NotNil(t, row.Ride)
		assert.Equal(t, "r1", row.Ride.SourceID)
		assert.Equal(t, "https://map", row.Ride.MapURL)
		assert.Empty(t, row.BikeShare)
	})

	t.Run("not logged in", func(t *testing.T) {
		fake := newFakeReconciler()
		fake.matchErr = &service.NotLoggedInError{Statuses: []credentials.Status{
			{Service: credentials.ServiceMonarch, LoggedIn: true},
			{Service: credentials.ServiceBayWheels, LoggedIn: false},
		}}
		handler := handlers.NewMatchHandler(fake, logging.Discard())

		rec := httptest.NewRecorder()
		handler.Run(rec, httptest.NewRequest(http.MethodPost, "/api/match", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		var apiErr dto.APIError
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&apiErr))
		assert.Equal(t, dto.ErrCodeNotLoggedIn, apiErr.Code)
		assert.Equal(t, "Not logged in.", apiErr.Message)
		require.Len(t, apiErr.Services, 2)
		assert.False(t, apiErr.Services[1].LoggedIn)
		assert.Equal(t, "Bay Wheels", apiErr.Services[1].DisplayName)
	})

	t.Run("already running", func(t *testing.T) {
		fake := newFakeReconciler()
		fake.matchErr = service.ErrMatchInProgress
		handler := handlers.NewMatchHandler(fake, logging.Discard())

		rec := httptest.NewRecorder()
		handler.Run(rec, httptest.NewRequest(http.MethodPost, "/api/match", nil))

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("upstream failure", func(t *testing.T) {
		fake := newFakeReconciler()
		fake.matchErr = errors.New("Monarch HTTP 500")
		handler := handlers.NewMatchHandler(fake, logging.Discard())

		rec := httptest.NewRecorder()
		handler.Run(rec, httptest.NewRequest(http.MethodPost, "/api/match", nil))

		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Contains(t, rec.Body.String(), "Monarch HTTP 500")
	})
}
