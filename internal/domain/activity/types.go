// Package activity defines the records exchanged between the budgeting
// ledger, the activity providers (rides, deliveries, bike share) and the
// matching engine.
package activity

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MerchantClass identifies which provider a ledger charge belongs to.
// It is resolved once when the transaction is ingested.
type MerchantClass string

const (
	MerchantUnknown   MerchantClass = ""
	MerchantRide      MerchantClass = "ride"
	MerchantDelivery  MerchantClass = "delivery"
	MerchantBikeShare MerchantClass = "bike_share"
)

// Description prefixes written by the card processor on ledger lines.
const (
	RidePrefix      = "UBER *TRIP"
	DeliveryPrefix  = "UBER *EATS"
	BikeSharePrefix = "LYFT *"
)

// ClassifyDescription maps a raw ledger description to a merchant class.
func ClassifyDescription(raw string) MerchantClass {
	switch {
	case strings.HasPrefix(raw, RidePrefix):
		return MerchantRide
	case strings.HasPrefix(raw, DeliveryPrefix):
		return MerchantDelivery
	case strings.HasPrefix(raw, BikeSharePrefix):
		return MerchantBikeShare
	default:
		return MerchantUnknown
	}
}

// Known reports whether the class is one the matcher can handle.
func (c MerchantClass) Known() bool {
	return c == MerchantRide || c == MerchantDelivery || c == MerchantBikeShare
}

// LedgerTransaction is a pending charge awaiting review.
// Amount is negative for money spent.
type LedgerTransaction struct {
	ID             string          `json:"id"`
	Amount         decimal.Decimal `json:"amount"`
	Date           time.Time       `json:"date"` // calendar date, midnight UTC
	RawDescription string          `json:"raw_description"`
	AccountName    string          `json:"account_name"`
	Merchant       MerchantClass   `json:"merchant"`
}

// RideRecord is a single trip from the ride provider.
type RideRecord struct {
	UUID        string       `json:"uuid"`
	Location    string       `json:"location"` // activity title, usually the destination
	Subtitle    string       `json:"subtitle,omitempty"`
	Cost        string       `json:"cost"` // e.g. "$23.50", "€12,00", "$9.10 • Surge"
	RequestedAt time.Time    `json:"requested_at,omitempty"`
	Details     *RideDetails `json:"details"`
	Error       string       `json:"error,omitempty"`
}

// RideDetails holds the per-trip enrichment.
type RideDetails struct {
	MapURL    string    `json:"map_url,omitempty"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Waypoints []string  `json:"waypoints"`
	Fare      string    `json:"fare"`
}

// StartTime returns the trip start, falling back to the request time when
// trip details could not be fetched.
func (r RideRecord) StartTime() time.Time {
	if r.Details != nil && !r.Details.StartTime.IsZero() {
		return r.Details.StartTime
	}
	return r.RequestedAt
}

// LineItem is one entry in a delivery order's cart.
type LineItem struct {
	Title    string `json:"title"`
	Quantity int    `json:"quantity"`
}

// String renders the item for memos: the title alone, or "title (xN)".
func (i LineItem) String() string {
	if i.Quantity <= 1 {
		return i.Title
	}
	return fmt.Sprintf("%s (x%d)", i.Title, i.Quantity)
}

// DeliveryRecord is a completed food-delivery order.
type DeliveryRecord struct {
	OrderUUID   string           `json:"order_uuid"`
	StoreName   string           `json:"store_name"`
	CostCents   int64            `json:"cost_cents"`
	Tip         *decimal.Decimal `json:"tip,omitempty"` // major units
	CompletedAt time.Time        `json:"completed_at"`
	Items       []LineItem       `json:"items"`
	Error       string           `json:"error,omitempty"`
}

// ItemStrings renders every cart item.
func (d DeliveryRecord) ItemStrings() []string {
	out := make([]string, 0, len(d.Items))
	for _, item := range d.Items {
		out = append(out, item.String())
	}
	return out
}

// BikeShareRecord is a single bike-share ride.
type BikeShareRecord struct {
	ID        string           `json:"id"`
	Cost      string           `json:"cost"` // e.g. "$5.00"
	StartedAt time.Time        `json:"started_at"`
	Details   *BikeTripDetails `json:"details"`
	Error     string           `json:"error,omitempty"`
}

// BikeTripDetails holds the per-ride address lookup.
type BikeTripDetails struct {
	StartAddress string `json:"start_address"`
	EndAddress   string `json:"end_address"`
}

// Batch is everything fetched from the activity providers for one run.
type Batch struct {
	Rides      []RideRecord
	Deliveries []DeliveryRecord
	BikeShares []BikeShareRecord
}
