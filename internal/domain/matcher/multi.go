package matcher

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"github.com/eshaffer321/monarch-rideshare-sync/internal/domain/activity"
	"github.com/shopspring/decimal"
)

// rideCountPattern finds the "*2 RIDES 06-14" token the bike-share operator
// writes on batched charges.
var rideCountPattern = regexp.MustCompile(`\*(\d+)\s+RIDES?\s+(\d{1,2})-(\d{1,2})`)

// parseRideCount returns the ride count and zero-padded MM-DD token.
// ok is false when the description carries no such token.
func parseRideCount(description string) (count int, monthDay string, ok bool) {
	groups := rideCountPattern.FindStringSubmatch(description)
	if groups == nil {
		return 0, "", false
	}
	count, err := strconv.Atoi(groups[1])
	if err != nil {
		return 0, "", false
	}
	month, err := strconv.Atoi(groups[2])
	if err != nil {
		return 0, "", false
	}
	day, err := strconv.Atoi(groups[3])
	if err != nil {
		return 0, "", false
	}
	return count, fmt.Sprintf("%02d-%02d", month, day), true
}

// resolveBikeShare returns the rides behind one bike-share charge, earliest
// first. An empty result means the charge is unresolved.
func (m *Matcher) resolveBikeShare(tx activity.LedgerTransaction, pool []Candidate) []activity.BikeShareRecord {
	count, monthDay, ok := parseRideCount(tx.RawDescription)
	if !ok || count <= 1 {
		c := selectBest(pool, tx.Date, m.bikeShareWindow, exactAmount(tx.Amount))
		if c == nil {
			return []activity.BikeShareRecord{}
		}
		return []activity.BikeShareRecord{*c.BikeShare}
	}

	group := sameDayRides(pool, monthDay)
	if len(group) == 0 || !m.validateGroupSum(group, tx.Amount) {
		return []activity.BikeShareRecord{}
	}
	sort.SliceStable(group, func(i, j int) bool {
		return group[i].BikeShare.StartedAt.Before(group[j].BikeShare.StartedAt)
	})
	rides := make([]activity.BikeShareRecord, 0, len(group))
	for _, c := range group {
		rides = append(rides, *c.BikeShare)
	}
	return rides
}

func sameDayRides(pool []Candidate, monthDay string) []Candidate {
	var out []Candidate
	for _, c := range pool {
		if c.Date.Format("01-02") == monthDay {
			out = append(out, c)
		}
	}
	return out
}

// validateGroupSum checks the rides add up to the charge. Any difference
// beyond the epsilon leaves the charge unresolved.
func (m *Matcher) validateGroupSum(group []Candidate, target decimal.Decimal) bool {
	sum := decimal.Zero
	for _, c := range group {
		sum = sum.Add(c.Amount)
	}
	return sum.Sub(target).Abs().LessThan(m.config.BikeShareSumEpsilon)
}

func (m *Matcher) bikeShareNote(rides []activity.BikeShareRecord) string {
	switch len(rides) {
	case 0:
		return ""
	case 1:
		return m.bikeRideNote(rides[0])
	default:
		return m.multiBikeRideNote(rides)
	}
}
