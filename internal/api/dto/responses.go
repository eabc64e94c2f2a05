package dto

import "time"

// HealthResponse is returned by the health check endpoint.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// TransactionResponse is the ledger side of a review row.
type TransactionResponse struct {
	ID          string  `json:"id"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
	AccountName string  `json:"account_name"`
	Description string  `json:"description"`
	Merchant    string  `json:"merchant"`
}

// CandidateResponse is the ride or delivery attached to a row.
type CandidateResponse struct {
	Kind        string   `json:"kind"`
	Amount      float64  `json:"amount"`
	Date        string   `json:"date"`
	Description string   `json:"description"`
	IsTip       bool     `json:"is_tip"`
	DisplayName string   `json:"display_name,omitempty"`
	DisplayCost string   `json:"display_cost,omitempty"`
	SourceID    string   `json:"source_id"`
	MapURL      string   `json:"map_url,omitempty"`
	Items       []string `json:"items,omitempty"`
}

// BikeRideResponse is one bike-share ride attached to a row.
type BikeRideResponse struct {
	ID           string `json:"id"`
	Cost         string `json:"cost"`
	StartedAt    string `json:"started_at"`
	StartAddress string `json:"start_address,omitempty"`
	EndAddress   string `json:"end_address,omitempty"`
	Error        string `json:"error,omitempty"`
}

// RowResponse is one ledger transaction with its suggested match.
type RowResponse struct {
	Transaction   TransactionResponse `json:"transaction"`
	Warn          bool                `json:"warn"`
	Ride          *CandidateResponse  `json:"ride"`
	Delivery      *CandidateResponse  `json:"delivery"`
	BikeShare     []BikeRideResponse  `json:"bike_share"`
	SuggestedNote string              `json:"suggested_note"`
}

// MatchResponse is returned by POST /api/match.
type MatchResponse struct {
	RunID       string        `json:"run_id"`
	Rows        []RowResponse `json:"rows"`
	Count       int           `json:"count"`
	Matched     int           `json:"matched"`
	SoftMatched int           `json:"soft_matched"`
	Skipped     int           `json:"skipped"`
}

// RunResponse represents a match run in API responses.
type RunResponse struct {
	ID                string        `json:"id"`
	StartedAt         string        `json:"started_at"`
	CompletedAt       string        `json:"completed_at,omitempty"`
	Status            string        `json:"status"`
	Transactions      int           `json:"transactions"`
	Matched           int           `json:"matched"`
	SoftMatched       int           `json:"soft_matched"`
	RidesFetched      int           `json:"rides_fetched"`
	DeliveriesFetched int           `json:"deliveries_fetched"`
	BikeSharesFetched int           `json:"bike_shares_fetched"`
	ErrorMessage      string        `json:"error_message,omitempty"`
	Rows              []RowResponse `json:"rows,omitempty"`
}

// RunListResponse is returned when listing match runs.
type RunListResponse struct {
	Runs  []RunResponse `json:"runs"`
	Count int           `json:"count"`
}

// DecisionResponse is a recorded review decision.
type DecisionResponse struct {
	TransactionID string `json:"transaction_id"`
	Note          string `json:"note"`
	TagID         string `json:"tag_id,omitempty"`
	DecidedAt     string `json:"decided_at"`
}

// DecisionListResponse is returned when listing decisions.
type DecisionListResponse struct {
	Decisions []DecisionResponse `json:"decisions"`
	Count     int                `json:"count"`
	Limit     int                `json:"limit"`
	Offset    int                `json:"offset"`
}

// TagResponse is a cached household tag.
type TagResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Color   string `json:"color"`
	Order   int    `json:"order"`
	Checked bool   `json:"checked"`
}

// TagListResponse is returned when listing tags.
type TagListResponse struct {
	Tags  []TagResponse `json:"tags"`
	Count int           `json:"count"`
}

// LocationsResponse holds the alias table.
type LocationsResponse struct {
	Locations map[string]string `json:"locations"`
	Count     int               `json:"count"`
}

// CredentialStatusResponse reports one service's session state.
type CredentialStatusResponse struct {
	Service     string `json:"service"`
	DisplayName string `json:"display_name"`
	LoggedIn    bool   `json:"logged_in"`
}

// CredentialsResponse is returned by GET /api/credentials.
type CredentialsResponse struct {
	Services []CredentialStatusResponse `json:"services"`
	AllSet   bool                       `json:"all_set"`
}

// NewHealthResponse creates a health response with current timestamp.
func NewHealthResponse() HealthResponse {
	return HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
