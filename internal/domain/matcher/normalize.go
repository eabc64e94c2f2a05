package matcher

import (
	"fmt"
	"strings"
	"time"

	"github.com/eshaffer321/monarch-rideshare-sync/internal/domain/activity"
	"github.com/eshaffer321/monarch-rideshare-sync/internal/domain/location"
	"github.com/shopspring/decimal"
)

const (
	costSeparator      = "•"
	recentPlaceholder  = "___"
	deliveryBrand      = "Uber Eats"
	tipSuffix          = " (tip)"
	tipDisplaySuffix   = " [TIP]"
	unknownBikeAddress = "unknown"
)

// primaryCost returns the first value of a composite cost such as
// "$9.10 • Surge".
func primaryCost(raw string) string {
	if i := strings.Index(raw, costSeparator); i >= 0 {
		raw = raw[:i]
	}
	return strings.TrimSpace(raw)
}

// parseMoney reads a currency-prefixed amount like "$1,234.50" as a
// positive decimal in major units.
func parseMoney(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	start := strings.IndexAny(s, "-0123456789.")
	if start < 0 {
		return decimal.Zero, fmt.Errorf("no amount in %q", raw)
	}
	s = strings.ReplaceAll(s[start:], ",", "")
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse amount %q: %w", raw, err)
	}
	return d, nil
}

func (m *Matcher) calendar(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	return activity.CalendarDate(t, m.config.Location)
}

func (m *Matcher) now() time.Time {
	if m.config.Now != nil {
		return m.config.Now()
	}
	return time.Now()
}

// rideCandidates normalizes one ride. Dollar-denominated rides go to the
// same-currency pool with up to three candidates; anything else yields a
// single foreign candidate.
func (m *Matcher) rideCandidates(r activity.RideRecord) (sameCurrency []Candidate, foreign []Candidate) {
	date := m.calendar(r.StartTime())
	if date.IsZero() {
		return nil, nil
	}
	rec := r
	description := m.rideDescription(r)

	cost := primaryCost(r.Cost)
	if !strings.HasPrefix(cost, "$") {
		return nil, []Candidate{{
			Kind:        KindForeign,
			Date:        date,
			Description: description,
			Ride:        &rec,
		}}
	}

	charged, err := parseMoney(cost)
	if err != nil {
		return nil, nil
	}
	base := Candidate{
		Kind:        KindBase,
		Amount:      charged.Neg(),
		Date:        date,
		Description: description,
		Ride:        &rec,
	}
	sameCurrency = append(sameCurrency, base)

	if r.Details == nil || r.Details.Fare == "" {
		return sameCurrency, nil
	}
	fare, err := parseMoney(primaryCost(r.Details.Fare))
	if err != nil || fare.Equal(charged) {
		return sameCurrency, nil
	}
	sameCurrency = append(sameCurrency, combinedRide(base, fare, r.Details.Fare), tipRide(base, fare, charged))
	return sameCurrency, nil
}

func combinedRide(base Candidate, fare decimal.Decimal, fareText string) Candidate {
	c := base
	c.Kind = KindCombined
	c.Amount = fare.Neg()
	c.DisplayCost = fareText
	return c
}

func tipRide(base Candidate, fare, charged decimal.Decimal) Candidate {
	c := base
	c.Kind = KindTip
	c.Amount = fare.Sub(charged).Neg()
	c.Description = base.Description + tipSuffix
	c.IsTip = true
	c.DisplayName = base.Ride.Location + tipDisplaySuffix
	return c
}

// rideDescription builds "Uber from X to Y via Z".
func (m *Matcher) rideDescription(r activity.RideRecord) string {
	if r.Details == nil || len(r.Details.Waypoints) == 0 {
		if r.Location != "" {
			return "Uber to " + r.Location
		}
		return "Uber ride"
	}
	waypoints := r.Details.Waypoints
	first, last := waypoints[0], waypoints[len(waypoints)-1]

	var b strings.Builder
	b.WriteString("Uber from ")
	if name, _, ok := m.places.Lookup(first); ok {
		b.WriteString(name)
	} else if m.now().Sub(r.StartTime()) > m.config.RecentTripAge {
		b.WriteString(location.FirstSegment(first))
	} else {
		b.WriteString(recentPlaceholder)
	}

	if name, home, ok := m.places.Lookup(last); ok {
		if home {
			b.WriteString(" back to ")
		} else {
			b.WriteString(" to ")
		}
		b.WriteString(name)
	} else {
		b.WriteString(" to ")
		if r.Location != "" {
			b.WriteString(r.Location)
		} else {
			b.WriteString(location.FirstSegment(last))
		}
	}

	if len(waypoints) > 2 {
		via := make([]string, 0, len(waypoints)-2)
		for _, p := range waypoints[1 : len(waypoints)-1] {
			via = append(via, m.places.ShortOr(p, p))
		}
		b.WriteString(" via ")
		b.WriteString(strings.Join(via, " and "))
	}
	return b.String()
}

// deliveryCandidates normalizes one order: the full charge, and when a
// tip is present, the tip alone and the charge without it.
func (m *Matcher) deliveryCandidates(d activity.DeliveryRecord) []Candidate {
	date := m.calendar(d.CompletedAt)
	if date.IsZero() {
		return nil
	}
	rec := d
	total := decimal.New(d.CostCents, -2)
	note := fmt.Sprintf("%s from %s: %s", deliveryBrand, d.StoreName, strings.Join(d.ItemStrings(), ", "))

	base := Candidate{
		Kind:        KindBase,
		Amount:      total.Neg(),
		Date:        date,
		Description: note,
		Delivery:    &rec,
	}
	out := []Candidate{base}
	if d.Tip == nil || d.Tip.IsZero() {
		return out
	}
	tip := *d.Tip
	return append(out, tipDelivery(base, tip), withoutTipDelivery(base, total, tip))
}

func tipDelivery(base Candidate, tip decimal.Decimal) Candidate {
	c := base
	c.Kind = KindTip
	c.Amount = tip.Neg()
	c.Description = base.Description + tipSuffix
	c.IsTip = true
	c.DisplayName = base.Delivery.StoreName + tipDisplaySuffix
	return c
}

func withoutTipDelivery(base Candidate, total, tip decimal.Decimal) Candidate {
	c := base
	c.Kind = KindWithoutTip
	c.Amount = total.Sub(tip).Neg()
	return c
}

// bikeShareCandidate normalizes one bike ride. Rides with an unreadable
// cost or no timestamp are left out of the pool.
func (m *Matcher) bikeShareCandidate(b activity.BikeShareRecord) (Candidate, bool) {
	date := m.calendar(b.StartedAt)
	if date.IsZero() {
		return Candidate{}, false
	}
	amount, err := parseMoney(strings.TrimPrefix(strings.TrimSpace(b.Cost), "$"))
	if err != nil {
		return Candidate{}, false
	}
	rec := b
	return Candidate{
		Kind:        KindBase,
		Amount:      amount.Neg(),
		Date:        date,
		Description: m.bikeRideNote(b),
		BikeShare:   &rec,
	}, true
}

func (m *Matcher) bikeRideLeg(b activity.BikeShareRecord) (string, string) {
	if b.Details == nil {
		return unknownBikeAddress, unknownBikeAddress
	}
	start := m.places.ShortOr(b.Details.StartAddress, b.Details.StartAddress)
	end := m.places.ShortOr(b.Details.EndAddress, b.Details.EndAddress)
	return start, end
}

func (m *Matcher) bikeRideNote(b activity.BikeShareRecord) string {
	start, end := m.bikeRideLeg(b)
	return fmt.Sprintf("Bike ride from %s to %s", start, end)
}

func (m *Matcher) multiBikeRideNote(rides []activity.BikeShareRecord) string {
	pairs := make([]string, 0, len(rides))
	for _, b := range rides {
		start, end := m.bikeRideLeg(b)
		pairs = append(pairs, start+" to "+end)
	}
	return "Multiple bike rides: " + strings.Join(pairs, ", ")
}
