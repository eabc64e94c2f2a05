// Package matcher pairs pending ledger transactions with ride, delivery and
// bike-share activity and suggests a memo for each.
//
// Matching is heuristic:
//   - Rides: exact amount within 2 days (14 for tips), then within
//     max($2.50, 10%), then any foreign-currency ride by date alone
//   - Deliveries: exact amount within 5 days, then within max($0.50, 10%)
//   - Bike share: a single ride by exact amount, or a same-day group whose
//     costs add up to the charge
//
// Anything accepted past the exact tier sets Warn on the row.
//
// Example usage:
//
//	m := matcher.NewMatcher(matcher.DefaultConfig(), location.NewShortener(aliases, nil))
//	rows, err := m.Match(transactions, batch)
//	for _, row := range rows {
//		fmt.Println(row.Transaction.ID, row.SuggestedNote)
//	}
package matcher

import (
	"fmt"

	"github.com/eshaffer321/monarch-rideshare-sync/internal/domain/activity"
	"github.com/eshaffer321/monarch-rideshare-sync/internal/domain/location"
)

// Matcher matches ledger transactions with provider activity.
// It holds no per-run state and is safe for concurrent use.
type Matcher struct {
	config Config
	places *location.Shortener
}

// NewMatcher creates a new matcher with the given config
func NewMatcher(config Config, places *location.Shortener) *Matcher {
	return &Matcher{
		config: config,
		places: places,
	}
}

// Match returns one row per transaction, in input order. Unmatched
// transactions are kept with an empty note. A transaction with an unknown
// merchant class aborts the run with ErrUnknownMerchant.
func (m *Matcher) Match(transactions []activity.LedgerTransaction, batch activity.Batch) ([]MatchedRow, error) {
	pools := m.BuildPools(batch)
	rows := make([]MatchedRow, 0, len(transactions))
	for _, tx := range transactions {
		row, err := m.matchOne(tx, pools)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (m *Matcher) matchOne(tx activity.LedgerTransaction, pools Pools) (MatchedRow, error) {
	row := MatchedRow{
		Transaction: TransactionRef{
			ID:          tx.ID,
			Amount:      tx.Amount,
			Date:        tx.Date,
			AccountName: tx.AccountName,
			Description: tx.RawDescription,
			Merchant:    tx.Merchant,
		},
		BikeShare: []activity.BikeShareRecord{},
	}

	switch tx.Merchant {
	case activity.MerchantRide:
		row.Ride, row.Warn = m.matchRide(tx, pools)
		if row.Ride != nil {
			row.SuggestedNote = row.Ride.Description
		}
	case activity.MerchantDelivery:
		row.Delivery, row.Warn = m.matchDelivery(tx, pools)
		if row.Delivery != nil {
			row.SuggestedNote = row.Delivery.Description
		}
	case activity.MerchantBikeShare:
		row.BikeShare = m.resolveBikeShare(tx, pools.BikeShares)
		row.SuggestedNote = m.bikeShareNote(row.BikeShare)
	default:
		return MatchedRow{}, fmt.Errorf("%w: %s %q", ErrUnknownMerchant, tx.ID, tx.RawDescription)
	}
	return row, nil
}
