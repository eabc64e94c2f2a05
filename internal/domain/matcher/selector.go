package matcher

import (
	"math"
	"time"

	"github.com/eshaffer321/monarch-rideshare-sync/internal/domain/activity"
	"github.com/shopspring/decimal"
)

type acceptFunc func(Candidate) bool

// dayDistance is the absolute number of whole days between two calendar dates.
func dayDistance(a, b time.Time) int {
	return int(math.Round(math.Abs(a.Sub(b).Hours() / 24)))
}

func exactAmount(target decimal.Decimal) acceptFunc {
	return func(c Candidate) bool {
		return c.Amount.Equal(target)
	}
}

// withinTolerance accepts amounts within max(floor, percent of target).
func withinTolerance(target, floor, percent decimal.Decimal) acceptFunc {
	band := decimal.Max(floor, target.Abs().Mul(percent))
	return func(c Candidate) bool {
		return c.Amount.Sub(target).Abs().LessThanOrEqual(band)
	}
}

func anyAmount(Candidate) bool { return true }

// selectBest returns a copy of the accepted candidate closest in time to
// date and inside its window. Equal distances keep the first one seen.
func selectBest(pool []Candidate, date time.Time, window func(Candidate) int, accept acceptFunc) *Candidate {
	bestIdx := -1
	bestDistance := math.MaxInt
	for i, c := range pool {
		if !accept(c) {
			continue
		}
		d := dayDistance(date, c.Date)
		if d > window(c) {
			continue
		}
		if d < bestDistance {
			bestIdx = i
			bestDistance = d
		}
	}
	if bestIdx < 0 {
		return nil
	}
	best := pool[bestIdx]
	return &best
}

func (m *Matcher) rideWindow(c Candidate) int {
	if c.IsTip {
		return m.config.TipWindowDays
	}
	return m.config.RideWindowDays
}

func (m *Matcher) deliveryWindow(Candidate) int { return m.config.DeliveryWindowDays }

func (m *Matcher) bikeShareWindow(Candidate) int { return m.config.BikeShareWindowDays }

// matchRide tries exact amount, then the tolerance band, then the foreign
// pool by date alone. Anything past the first tier is a soft match.
func (m *Matcher) matchRide(tx activity.LedgerTransaction, pools Pools) (*Candidate, bool) {
	if c := selectBest(pools.Rides, tx.Date, m.rideWindow, exactAmount(tx.Amount)); c != nil {
		return c, false
	}
	soft := withinTolerance(tx.Amount, m.config.RideMinTolerance, m.config.TolerancePercent)
	if c := selectBest(pools.Rides, tx.Date, m.rideWindow, soft); c != nil {
		return c, true
	}
	if c := selectBest(pools.ForeignRides, tx.Date, m.rideWindow, anyAmount); c != nil {
		return c, true
	}
	return nil, false
}

// matchDelivery tries exact amount, then the tolerance band.
func (m *Matcher) matchDelivery(tx activity.LedgerTransaction, pools Pools) (*Candidate, bool) {
	if c := selectBest(pools.Deliveries, tx.Date, m.deliveryWindow, exactAmount(tx.Amount)); c != nil {
		return c, false
	}
	soft := withinTolerance(tx.Amount, m.config.DeliveryMinTolerance, m.config.TolerancePercent)
	if c := selectBest(pools.Deliveries, tx.Date, m.deliveryWindow, soft); c != nil {
		return c, true
	}
	return nil, false
}
