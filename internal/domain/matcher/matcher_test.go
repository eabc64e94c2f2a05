package matcher

import (
	"errors"
	"testing"
	"time"

	"github.com/eshaffer321/monarch-rideshare-sync/internal/domain/activity"
	"github.com/eshaffer321/monarch-rideshare-sync/internal/domain/location"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(now time.Time) Config {
	cfg := DefaultConfig()
	cfg.Location = time.UTC
	cfg.Now = func() time.Time { return now }
	return cfg
}

var farFuture = time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestMatcher(aliases map[string]string) *Matcher {
	return NewMatcher(testConfig(farFuture), location.NewShortener(aliases, nil))
}

func day(s string) time.Time {
	t, err := activity.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func usd(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// Helper to create test transaction
func makeTransaction(id, amount, date, description string) activity.LedgerTransaction {
	return activity.LedgerTransaction{
		ID:             id,
		Amount:         usd(amount),
		Date:           day(date),
		RawDescription: description,
		AccountName:    "Checking",
		Merchant:       activity.ClassifyDescription(description),
	}
}

func makeRide(id, cost string, start time.Time, waypoints ...string) activity.RideRecord {
	return activity.RideRecord{
		UUID:        id,
		Cost:        cost,
		RequestedAt: start,
		Details: &activity.RideDetails{
			StartTime: start,
			EndTime:   start.Add(20 * time.Minute),
			Waypoints: waypoints,
			Fare:      cost,
		},
	}
}

func at(date string, hour int) time.Time {
	return day(date).Add(time.Duration(hour) * time.Hour)
}

func TestMatcher_RideScenario(t *testing.T) {
	// Arrange
	m := newTestMatcher(nil)
	txns := []activity.LedgerTransaction{
		makeTransaction("tx1", "-23.50", "2024-03-01", "UBER *TRIP HELP.UBER.COM"),
	}
	batch := activity.Batch{Rides: []activity.RideRecord{
		makeRide("r1", "$23.50", at("2024-03-01", 8), "123 Main St, SF", "456 Oak Ave, SF"),
	}}

	// Act
	rows, err := m.Match(txns, batch)

	// Assert
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.False(t, rows[0].Warn)
	require.NotNil(t, rows[0].Ride)
	assert.Equal(t, "r1", rows[0].Ride.Ride.UUID)
	assert.Equal(t, "Uber from 123 Main St to 456 Oak Ave", rows[0].SuggestedNote)
}

func TestMatcher_RecentTripUsesPlaceholder(t *testing.T) {
	// Arrange
	m := NewMatcher(testConfig(day("2024-03-10")), location.NewShortener(nil, nil))
	txns := []activity.LedgerTransaction{
		makeTransaction("tx1", "-23.50", "2024-03-01", "UBER *TRIP"),
	}
	batch := activity.Batch{Rides: []activity.RideRecord{
		makeRide("r1", "$23.50", at("2024-03-01", 8), "123 Main St, SF", "456 Oak Ave, SF"),
	}}

	// Act
	rows, err := m.Match(txns, batch)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Uber from ___ to 456 Oak Ave", rows[0].SuggestedNote)
}

func TestMatcher_RideDescriptionAliases(t *testing.T) {
	aliases := map[string]string{
		"1 Market St, San Francisco, CA": "work",
		"99 Home Rd, Oakland, CA":        "my house",
		"500 Gym Way, Oakland, CA":       "the gym",
	}

	tests := []struct {
		name      string
		waypoints []string
		location  string
		want      string
	}{
		{
			name:      "home destination reads back to",
			waypoints: []string{"1 Market St, San Francisco, CA", "99 Home Rd, Oakland, CA"},
			want:      "Uber from work back to my house",
		},
		{
			name:      "alias destination",
			waypoints: []string{"99 Home Rd, Oakland, CA", "1 Market St, San Francisco, CA"},
			want:      "Uber from my house to work",
		},
		{
			name:      "intermediate stops joined with and",
			waypoints: []string{"1 Market St, San Francisco, CA", "500 Gym Way, Oakland, CA", "7 Pine St, Oakland, CA", "99 Home Rd, Oakland, CA"},
			want:      "Uber from work back to my house via the gym and 7 Pine St, Oakland, CA",
		},
		{
			name:      "airport heuristic",
			waypoints: []string{"San Francisco International Airport (SFO), San Francisco, CA", "1 Market St, San Francisco, CA"},
			want:      "Uber from the airport to work",
		},
		{
			name:      "unaliased destination uses activity title",
			waypoints: []string{"1 Market St, San Francisco, CA", "12 Elm St, Berkeley, CA"},
			location:  "12 Elm St",
			want:      "Uber from work to 12 Elm St",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			m := newTestMatcher(aliases)
			ride := makeRide("r1", "$10.00", at("2024-03-01", 8), tt.waypoints...)
			ride.Location = tt.location

			// Act
			got := m.rideDescription(ride)

			// Assert
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatcher_OrderPreservationAndExclusivity(t *testing.T) {
	// Arrange
	m := newTestMatcher(nil)
	tip := usd("3.00")
	txns := []activity.LedgerTransaction{
		makeTransaction("tx-eats", "-25.50", "2024-03-02", "UBER *EATS"),
		makeTransaction("tx-none", "-99.00", "2024-03-02", "UBER *TRIP"),
		makeTransaction("tx-bike", "-5.00", "2024-03-03", "LYFT *RIDE SUN 6PM"),
		makeTransaction("tx-ride", "-12.00", "2024-03-01", "UBER *TRIP"),
	}
	batch := activity.Batch{
		Rides: []activity.RideRecord{
			makeRide("r1", "$12.00", at("2024-03-01", 9), "A St, SF", "B St, SF"),
		},
		Deliveries: []activity.DeliveryRecord{{
			OrderUUID:   "o1",
			StoreName:   "Tacos",
			CostCents:   2550,
			Tip:         &tip,
			CompletedAt: at("2024-03-02", 19),
			Items:       []activity.LineItem{{Title: "Burrito", Quantity: 1}},
		}},
		BikeShares: []activity.BikeShareRecord{
			{ID: "b1", Cost: "$5.00", StartedAt: at("2024-03-03", 7)},
		},
	}

	// Act
	rows, err := m.Match(txns, batch)

	// Assert
	require.NoError(t, err)
	require.Len(t, rows, len(txns))
	for i, row := range rows {
		assert.Equal(t, txns[i].ID, row.Transaction.ID)
		populated := 0
		if row.Ride != nil {
			populated++
		}
		if row.Delivery != nil {
			populated++
		}
		if len(row.BikeShare) > 0 {
			populated++
		}
		assert.LessOrEqual(t, populated, 1, "row %s", row.Transaction.ID)
	}
	assert.NotNil(t, rows[0].Delivery)
	assert.False(t, rows[1].Matched())
	assert.Equal(t, "", rows[1].SuggestedNote)
	assert.Len(t, rows[2].BikeShare, 1)
	assert.NotNil(t, rows[3].Ride)
}

func TestMatcher_RideToleranceBoundary(t *testing.T) {
	tests := []struct {
		name       string
		amount     string
		cost       string
		wantMatch  bool
		wantWarn   bool
		wantAmount string
	}{
		{name: "exact", amount: "-20.00", cost: "$20.00", wantMatch: true, wantWarn: false, wantAmount: "-20.00"},
		{name: "floor band upper edge", amount: "-20.00", cost: "$22.50", wantMatch: true, wantWarn: true, wantAmount: "-22.50"},
		{name: "floor band lower edge", amount: "-20.00", cost: "$17.50", wantMatch: true, wantWarn: true, wantAmount: "-17.50"},
		{name: "one cent past floor band", amount: "-20.00", cost: "$22.51", wantMatch: false},
		{name: "percent band edge", amount: "-40.00", cost: "$44.00", wantMatch: true, wantWarn: true, wantAmount: "-44.00"},
		{name: "one cent past percent band", amount: "-40.00", cost: "$44.01", wantMatch: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			m := newTestMatcher(nil)
			txns := []activity.LedgerTransaction{makeTransaction("tx1", tt.amount, "2024-03-01", "UBER *TRIP")}
			batch := activity.Batch{Rides: []activity.RideRecord{
				makeRide("r1", tt.cost, at("2024-03-01", 8), "A St, SF", "B St, SF"),
			}}

			// Act
			rows, err := m.Match(txns, batch)

			// Assert
			require.NoError(t, err)
			if !tt.wantMatch {
				assert.Nil(t, rows[0].Ride)
				assert.False(t, rows[0].Warn)
				return
			}
			require.NotNil(t, rows[0].Ride)
			assert.Equal(t, tt.wantWarn, rows[0].Warn)
			assert.True(t, usd(tt.wantAmount).Equal(rows[0].Ride.Amount))
		})
	}
}

func TestMatcher_RideFallsThroughToForeignPool(t *testing.T) {
	// Arrange
	m := newTestMatcher(nil)
	txns := []activity.LedgerTransaction{makeTransaction("tx1", "-20.00", "2024-03-01", "UBER *TRIP")}
	batch := activity.Batch{Rides: []activity.RideRecord{
		makeRide("usd", "$22.51", at("2024-03-01", 8), "A St, SF", "B St, SF"),
		makeRide("eur", "€17,20", at("2024-03-02", 8), "Rue A, Paris", "Rue B, Paris"),
	}}

	// Act
	rows, err := m.Match(txns, batch)

	// Assert
	require.NoError(t, err)
	require.NotNil(t, rows[0].Ride)
	assert.Equal(t, "eur", rows[0].Ride.Ride.UUID)
	assert.Equal(t, KindForeign, rows[0].Ride.Kind)
	assert.True(t, rows[0].Warn)
}

func TestMatcher_TipSplitAndMerge(t *testing.T) {
	newBatch := func() activity.Batch {
		ride := makeRide("r1", "$20.00", at("2024-03-01", 8), "A St, SF", "B St, SF")
		ride.Location = "B St"
		ride.Details.Fare = "$23.00"
		return activity.Batch{Rides: []activity.RideRecord{ride}}
	}

	t.Run("combined candidate matches the fare", func(t *testing.T) {
		// Arrange
		m := newTestMatcher(nil)
		txns := []activity.LedgerTransaction{makeTransaction("tx1", "-23.00", "2024-03-01", "UBER *TRIP")}

		// Act
		rows, err := m.Match(txns, newBatch())

		// Assert
		require.NoError(t, err)
		require.NotNil(t, rows[0].Ride)
		assert.False(t, rows[0].Warn)
		assert.Equal(t, KindCombined, rows[0].Ride.Kind)
		assert.Equal(t, "$23.00", rows[0].Ride.DisplayCost)
	})

	t.Run("tip candidate matches the difference with a wide window", func(t *testing.T) {
		// Arrange
		m := newTestMatcher(nil)
		txns := []activity.LedgerTransaction{makeTransaction("tx1", "-3.00", "2024-03-11", "UBER *TRIP")}

		// Act
		rows, err := m.Match(txns, newBatch())

		// Assert
		require.NoError(t, err)
		require.NotNil(t, rows[0].Ride)
		assert.False(t, rows[0].Warn)
		assert.Equal(t, KindTip, rows[0].Ride.Kind)
		assert.True(t, rows[0].Ride.IsTip)
		assert.Equal(t, "Uber from A St to B St (tip)", rows[0].SuggestedNote)
		assert.Equal(t, "B St [TIP]", rows[0].Ride.DisplayName)
	})

	t.Run("variants leave the base candidate untouched", func(t *testing.T) {
		// Arrange
		m := newTestMatcher(nil)

		// Act
		pools := m.BuildPools(newBatch())

		// Assert
		require.Len(t, pools.Rides, 3)
		assert.Equal(t, KindBase, pools.Rides[0].Kind)
		assert.True(t, usd("-20.00").Equal(pools.Rides[0].Amount))
		assert.Empty(t, pools.Rides[0].DisplayCost)
		assert.False(t, pools.Rides[0].IsTip)
		assert.True(t, usd("-23.00").Equal(pools.Rides[1].Amount))
		assert.True(t, usd("-3.00").Equal(pools.Rides[2].Amount))
		assert.Equal(t, "$23.00", pools.Rides[0].Ride.Details.Fare)
	})
}

func TestMatcher_RideDateWindow(t *testing.T) {
	// Arrange
	m := newTestMatcher(nil)
	txns := []activity.LedgerTransaction{makeTransaction("tx1", "-15.00", "2024-03-04", "UBER *TRIP")}
	batch := activity.Batch{Rides: []activity.RideRecord{
		makeRide("r1", "$15.00", at("2024-03-01", 8), "A St, SF", "B St, SF"),
	}}

	// Act
	rows, err := m.Match(txns, batch)

	// Assert
	require.NoError(t, err)
	assert.Nil(t, rows[0].Ride)
}

func TestMatcher_ClosestDateWins(t *testing.T) {
	// Arrange
	m := newTestMatcher(nil)
	txns := []activity.LedgerTransaction{makeTransaction("tx1", "-15.00", "2024-03-05", "UBER *TRIP")}
	batch := activity.Batch{Rides: []activity.RideRecord{
		makeRide("far", "$15.00", at("2024-03-03", 8), "A St, SF", "B St, SF"),
		makeRide("near", "$15.00", at("2024-03-05", 8), "A St, SF", "C St, SF"),
	}}

	// Act
	rows, err := m.Match(txns, batch)

	// Assert
	require.NoError(t, err)
	require.NotNil(t, rows[0].Ride)
	assert.Equal(t, "near", rows[0].Ride.Ride.UUID)
}

func TestMatcher_TieKeepsFirstSeen(t *testing.T) {
	// Arrange
	m := newTestMatcher(nil)
	txns := []activity.LedgerTransaction{makeTransaction("tx1", "-15.00", "2024-03-05", "UBER *TRIP")}
	batch := activity.Batch{Rides: []activity.RideRecord{
		makeRide("after", "$15.00", at("2024-03-06", 8), "A St, SF", "B St, SF"),
		makeRide("before", "$15.00", at("2024-03-04", 8), "A St, SF", "C St, SF"),
	}}

	// Act
	rows, err := m.Match(txns, batch)

	// Assert
	require.NoError(t, err)
	require.NotNil(t, rows[0].Ride)
	assert.Equal(t, "after", rows[0].Ride.Ride.UUID)
}

func TestMatcher_RideWithoutDetails(t *testing.T) {
	// Arrange
	m := newTestMatcher(nil)
	txns := []activity.LedgerTransaction{makeTransaction("tx1", "-18.40", "2024-03-01", "UBER *TRIP")}
	batch := activity.Batch{Rides: []activity.RideRecord{{
		UUID:        "r1",
		Location:    "Home Depot",
		Cost:        "$18.40",
		RequestedAt: at("2024-03-01", 12),
		Error:       "trip details unavailable",
	}}}

	// Act
	rows, err := m.Match(txns, batch)

	// Assert
	require.NoError(t, err)
	require.NotNil(t, rows[0].Ride)
	assert.False(t, rows[0].Warn)
	assert.Equal(t, "Uber to Home Depot", rows[0].SuggestedNote)
}

func TestMatcher_Delivery(t *testing.T) {
	tip := usd("4.00")
	order := activity.DeliveryRecord{
		OrderUUID:   "o1",
		StoreName:   "Tacos",
		CostCents:   2550,
		Tip:         &tip,
		CompletedAt: at("2024-03-02", 19),
		Items: []activity.LineItem{
			{Title: "Burrito", Quantity: 1},
			{Title: "Chips", Quantity: 3},
		},
	}

	tests := []struct {
		name     string
		amount   string
		date     string
		wantKind CandidateKind
		wantWarn bool
		wantNote string
	}{
		{name: "full charge", amount: "-25.50", date: "2024-03-02", wantKind: KindBase, wantNote: "Uber Eats from Tacos: Burrito, Chips (x3)"},
		{name: "tip only", amount: "-4.00", date: "2024-03-06", wantKind: KindTip, wantNote: "Uber Eats from Tacos: Burrito, Chips (x3) (tip)"},
		{name: "charge without tip", amount: "-21.50", date: "2024-03-01", wantKind: KindWithoutTip, wantNote: "Uber Eats from Tacos: Burrito, Chips (x3)"},
		{name: "within tolerance", amount: "-26.00", date: "2024-03-02", wantKind: KindBase, wantWarn: true, wantNote: "Uber Eats from Tacos: Burrito, Chips (x3)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			m := newTestMatcher(nil)
			txns := []activity.LedgerTransaction{makeTransaction("tx1", tt.amount, tt.date, "UBER *EATS")}

			// Act
			rows, err := m.Match(txns, activity.Batch{Deliveries: []activity.DeliveryRecord{order}})

			// Assert
			require.NoError(t, err)
			require.NotNil(t, rows[0].Delivery)
			assert.Nil(t, rows[0].Ride)
			assert.Equal(t, tt.wantKind, rows[0].Delivery.Kind)
			assert.Equal(t, tt.wantWarn, rows[0].Warn)
			assert.Equal(t, tt.wantNote, rows[0].SuggestedNote)
		})
	}

	t.Run("outside window", func(t *testing.T) {
		m := newTestMatcher(nil)
		txns := []activity.LedgerTransaction{makeTransaction("tx1", "-25.50", "2024-03-08", "UBER *EATS")}

		rows, err := m.Match(txns, activity.Batch{Deliveries: []activity.DeliveryRecord{order}})

		require.NoError(t, err)
		assert.Nil(t, rows[0].Delivery)
	})
}

func TestMatcher_UnknownMerchant(t *testing.T) {
	// Arrange
	m := newTestMatcher(nil)
	txns := []activity.LedgerTransaction{
		makeTransaction("tx1", "-10.00", "2024-03-01", "UBER *TRIP"),
		makeTransaction("tx2", "-10.00", "2024-03-01", "STARBUCKS 1234"),
	}

	// Act
	rows, err := m.Match(txns, activity.Batch{})

	// Assert
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownMerchant))
	assert.Nil(t, rows)
}

func TestMatcher_EmptyInput(t *testing.T) {
	m := newTestMatcher(nil)

	rows, err := m.Match(nil, activity.Batch{})

	require.NoError(t, err)
	assert.Empty(t, rows)
}
