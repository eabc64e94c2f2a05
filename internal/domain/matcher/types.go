package matcher

import (
	"errors"
	"time"

	"github.com/eshaffer321/monarch-rideshare-sync/internal/domain/activity"
	"github.com/shopspring/decimal"
)

// ErrUnknownMerchant is returned when a transaction outside the three known
// merchant classes reaches the matcher. Callers must pre-filter.
var ErrUnknownMerchant = errors.New("matcher: transaction has unknown merchant class")

// Config holds matcher configuration
type Config struct {
	RideWindowDays      int // Default: 2
	TipWindowDays       int // Ride tip candidates, default: 14
	DeliveryWindowDays  int // Default: 5
	BikeShareWindowDays int // Single-ride charges, default: 5

	RideMinTolerance     decimal.Decimal // Default: 2.50
	DeliveryMinTolerance decimal.Decimal // Default: 0.50
	TolerancePercent     decimal.Decimal // Default: 0.10 of the target amount
	BikeShareSumEpsilon  decimal.Decimal // Default: 1e-9

	// Trips newer than this get a placeholder start instead of a raw address.
	RecentTripAge time.Duration

	// Location reduces provider timestamps to calendar dates. Nil means time.Local.
	Location *time.Location
	// Now is used for the recent-trip check. Nil means time.Now.
	Now func() time.Time
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		RideWindowDays:       2,
		TipWindowDays:        14,
		DeliveryWindowDays:   5,
		BikeShareWindowDays:  5,
		RideMinTolerance:     decimal.RequireFromString("2.50"),
		DeliveryMinTolerance: decimal.RequireFromString("0.50"),
		TolerancePercent:     decimal.RequireFromString("0.10"),
		BikeShareSumEpsilon:  decimal.New(1, -9),
		RecentTripAge:        120 * 24 * time.Hour,
	}
}

// CandidateKind says which variant of a source record a candidate is.
type CandidateKind string

const (
	KindBase       CandidateKind = "base"
	KindCombined   CandidateKind = "combined"    // ride charged amount plus tip, priced at the fare
	KindTip        CandidateKind = "tip"         // the tip alone
	KindWithoutTip CandidateKind = "without_tip" // delivery total minus tip
	KindForeign    CandidateKind = "foreign"     // not numerically comparable to the ledger
)

// Candidate is one comparable unit derived from an activity record.
// Candidates are values; variants are built by constructors, never by
// editing a shared record.
type Candidate struct {
	Kind        CandidateKind   `json:"kind"`
	Amount      decimal.Decimal `json:"amount"` // ledger sign convention, zero for foreign
	Date        time.Time       `json:"date"`   // calendar date
	Description string          `json:"description"`
	IsTip       bool            `json:"is_tip"`

	// Display overrides for the review screen.
	DisplayCost string `json:"display_cost,omitempty"`
	DisplayName string `json:"display_name,omitempty"`

	Ride      *activity.RideRecord      `json:"ride,omitempty"`
	Delivery  *activity.DeliveryRecord  `json:"delivery,omitempty"`
	BikeShare *activity.BikeShareRecord `json:"bike_share,omitempty"`
}

// TransactionRef is the projection of a ledger transaction carried on a row.
type TransactionRef struct {
	ID          string                 `json:"id"`
	Amount      decimal.Decimal        `json:"amount"`
	Date        time.Time              `json:"date"`
	AccountName string                 `json:"account_name"`
	Description string                 `json:"description"`
	Merchant    activity.MerchantClass `json:"merchant"`
}

// MatchedRow is the engine's output for one ledger transaction.
// At most one of Ride, Delivery and BikeShare is populated.
type MatchedRow struct {
	Transaction   TransactionRef             `json:"transaction"`
	Warn          bool                       `json:"warn"`
	Ride          *Candidate                 `json:"ride"`
	Delivery      *Candidate                 `json:"delivery"`
	BikeShare     []activity.BikeShareRecord `json:"bike_share"`
	SuggestedNote string                     `json:"suggested_note"`
}

// Matched reports whether any activity was attached to the row.
func (r MatchedRow) Matched() bool {
	return r.Ride != nil || r.Delivery != nil || len(r.BikeShare) > 0
}
