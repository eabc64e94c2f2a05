package uber

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/monarch-rideshare-sync/internal/adapters/credentials"
	"github.com/eshaffer321/monarch-rideshare-sync/internal/adapters/graphql"
	"github.com/eshaffer321/monarch-rideshare-sync/internal/adapters/providers"
	"github.com/eshaffer321/monarch-rideshare-sync/internal/infrastructure/logging"
)

const eatsPageOne = `{"data":{
  "orderUuids":["o2","o1"],
  "ordersMap":{
    "o1":{"storeInfo":{"title":"Taqueria"},
          "fareInfo":{"totalPrice":2150.4,"checkoutInfo":[{"label":"Subtotal","rawValue":17.5},{"label":"Tip","rawValue":4}]},
          "baseEaterOrder":{"completedAt":"2024-03-10T19:00:00Z","shoppingCart":{"items":[{"title":"Burrito","quantity":2},{"title":"Chips","quantity":1}]}}},
    "o2":{"storeInfo":{"title":"Pho House"},
          "fareInfo":{"totalPrice":1899,"checkoutInfo":[]},
          "baseEaterOrder":{"completedAt":"2024-03-12T19:00:00Z","shoppingCart":{"items":[{"title":"Pho","quantity":1}]}}}
  },
  "meta":{"hasMore":true}}}`

const eatsPageTwo = `{"data":{
  "orderUuids":["o0"],
  "ordersMap":{
    "o0":{"storeInfo":{"title":"Pizza"},
          "fareInfo":{"totalPrice":3000,"checkoutInfo":[]},
          "baseEaterOrder":{"completedAt":"2024-03-01T19:00:00Z","shoppingCart":{"items":[]}}}
  },
  "meta":{"hasMore":true}}}`

func TestEatsProvider_FetchDeliveries(t *testing.T) {
	// Arrange
	var cursors []string
	pages := []string{eatsPageOne, eatsPageTwo}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body pastOrdersRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		cursors = append(cursors, body.LastWorkflowUUID)
		_, _ = w.Write([]byte(pages[len(cursors)-1]))
	}))
	defer server.Close()

	provider := NewEatsProvider(testClient(server.URL, credentials.ServiceUberEats), 0, logging.Discard())

	// Act
	orders, err := provider.FetchDeliveries(context.Background(), providers.FetchOptions{
		Cutoff: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []string{"", "o1"}, cursors)
	require.Len(t, orders, 3)

	assert.Equal(t, "o2", orders[0].OrderUUID)
	assert.Equal(t, "Pho House", orders[0].StoreName)
	assert.Nil(t, orders[0].Tip)

	taco := orders[1]
	assert.Equal(t, int64(2150), taco.CostCents)
	require.NotNil(t, taco.Tip)
	assert.Equal(t, "4", taco.Tip.String())
	assert.Equal(t, []string{"Burrito (x2)", "Chips"}, taco.ItemStrings())
	assert.Equal(t, time.Date(2024, 3, 10, 19, 0, 0, 0, time.UTC), taco.CompletedAt)

	assert.Equal(t, "Pizza", orders[2].StoreName)
}

func TestEatsProvider_StopsWhenNoMore(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = w.Write([]byte(`{"data":{"orderUuids":["o1"],"ordersMap":{"o1":{"storeInfo":{"title":"A"},"fareInfo":{"totalPrice":100,"checkoutInfo":[]},"baseEaterOrder":{"completedAt":"2024-03-10T19:00:00Z","shoppingCart":{"items":[]}}}},"meta":{"hasMore":false}}}`))
	}))
	defer server.Close()

	orders, err := NewEatsProvider(testClient(server.URL, credentials.ServiceUberEats), 0, logging.Discard()).
		FetchDeliveries(context.Background(), providers.FetchOptions{})

	require.NoError(t, err)
	assert.Len(t, orders, 1)
	assert.Equal(t, 1, calls)
}

func TestEatsProvider_PageBudget(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = w.Write([]byte(`{"data":{"orderUuids":["o1"],"ordersMap":{"o1":{"storeInfo":{"title":"A"},"fareInfo":{"totalPrice":100,"checkoutInfo":[]},"baseEaterOrder":{"completedAt":"2024-03-10T19:00:00Z","shoppingCart":{"items":[]}}}},"meta":{"hasMore":true}}}`))
	}))
	defer server.Close()

	_, err := NewEatsProvider(testClient(server.URL, credentials.ServiceUberEats), 3, logging.Discard()).
		FetchDeliveries(context.Background(), providers.FetchOptions{})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestEatsProvider_EmptyPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"orderUuids":[],"ordersMap":{},"meta":{"hasMore":true}}}`))
	}))
	defer server.Close()

	orders, err := NewEatsProvider(testClient(server.URL, credentials.ServiceUberEats), 0, logging.Discard()).
		FetchDeliveries(context.Background(), providers.FetchOptions{})

	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestEatsProvider_MissingCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	}))
	defer server.Close()

	client := graphql.NewClient(server.URL, credentials.ServiceUberEats, credentials.Static{},
		graphql.WithLogger(logging.Discard()))

	_, err := NewEatsProvider(client, 0, logging.Discard()).
		FetchDeliveries(context.Background(), providers.FetchOptions{})

	assert.ErrorIs(t, err, credentials.ErrMissing)
}
