package storage

import (
	"time"

	"github.com/eshaffer321/monarch-rideshare-sync/internal/domain/matcher"
)

// Match run statuses
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// MatchRun records one reconciliation run and the rows it produced.
type MatchRun struct {
	ID           string     `json:"id"`
	StartedAt    time.Time  `json:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	Status       string     `json:"status"`
	Transactions int        `json:"transactions"`
	Matched      int        `json:"matched"`
	SoftMatched  int        `json:"soft_matched"`

	RidesFetched      int `json:"rides_fetched"`
	DeliveriesFetched int `json:"deliveries_fetched"`
	BikeSharesFetched int `json:"bike_shares_fetched"`

	ErrorMessage string `json:"error_message,omitempty"`

	// Rows is only populated by GetRun.
	Rows []matcher.MatchedRow `json:"rows,omitempty"`
}

// DecisionFilters narrows ListDecisions.
type DecisionFilters struct {
	TransactionID string // empty = all
	Limit         int    // 0 = default 50
	Offset        int
}
