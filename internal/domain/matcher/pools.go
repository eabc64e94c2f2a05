package matcher

import "github.com/eshaffer321/monarch-rideshare-sync/internal/domain/activity"

// Pools holds the normalized candidates for one batch. Order within each
// pool follows the provider's record order, which is also the tie-break.
type Pools struct {
	Rides        []Candidate // dollar-denominated, comparable to the ledger
	ForeignRides []Candidate
	Deliveries   []Candidate
	BikeShares   []Candidate
}

// BuildPools normalizes every record in the batch.
func (m *Matcher) BuildPools(batch activity.Batch) Pools {
	var p Pools
	for _, r := range batch.Rides {
		same, foreign := m.rideCandidates(r)
		p.Rides = append(p.Rides, same...)
		p.ForeignRides = append(p.ForeignRides, foreign...)
	}
	for _, d := range batch.Deliveries {
		p.Deliveries = append(p.Deliveries, m.deliveryCandidates(d)...)
	}
	for _, b := range batch.BikeShares {
		if c, ok := m.bikeShareCandidate(b); ok {
			p.BikeShares = append(p.BikeShares, c)
		}
	}
	return p
}
