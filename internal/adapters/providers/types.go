// Package providers defines the fetch contracts shared by the activity
// providers and the budgeting ledger.
package providers

import (
	"context"
	"time"

	"github.com/eshaffer321/monarch-rideshare-sync/internal/domain/activity"
)

// FetchOptions bounds how far back a provider paginates.
type FetchOptions struct {
	// Cutoff stops pagination once a page reaches records older than it.
	Cutoff time.Time
	// Newest is the most recent ledger date of interest. Providers that
	// page backwards from a point in time start a few days after it.
	Newest time.Time
	// Limit caps the number of records requested. Zero means provider default.
	Limit int
}

// RideSource fetches ride-hailing trips.
type RideSource interface {
	Name() string
	FetchRides(ctx context.Context, opts FetchOptions) ([]activity.RideRecord, error)
}

// DeliverySource fetches food-delivery orders.
type DeliverySource interface {
	Name() string
	FetchDeliveries(ctx context.Context, opts FetchOptions) ([]activity.DeliveryRecord, error)
}

// BikeShareSource fetches bike-share rides.
type BikeShareSource interface {
	Name() string
	FetchBikeShares(ctx context.Context, opts FetchOptions) ([]activity.BikeShareRecord, error)
}

// Ledger is the budgeting backend holding the transactions to reconcile.
type Ledger interface {
	// PendingTransactions returns ride and delivery charges, newest first.
	PendingTransactions(ctx context.Context) ([]activity.LedgerTransaction, error)
	// Tags returns the household transaction tags.
	Tags(ctx context.Context) ([]activity.Tag, error)
	// ApplyDecision writes the note, marks the transaction reviewed and
	// applies the tag when one is set.
	ApplyDecision(ctx context.Context, d activity.Decision) error
}

// ProgressFunc receives a human-readable progress message.
type ProgressFunc func(message string)

// Report calls fn when it is set.
func (fn ProgressFunc) Report(message string) {
	if fn != nil {
		fn(message)
	}
}
