package dto

// DecisionRequest is the body of POST /api/decisions.
type DecisionRequest struct {
	TransactionID string `json:"transaction_id"`
	Note          string `json:"note"`
	TagID         string `json:"tag_id,omitempty"`
}

// TagUpdateRequest is the body of PUT /api/tags/{id}.
type TagUpdateRequest struct {
	Checked *bool `json:"checked"`
}

// LocationsRequest is the body of PUT /api/locations.
type LocationsRequest struct {
	Locations map[string]string `json:"locations"`
}

// DecisionListParams represents query parameters for listing decisions.
type DecisionListParams struct {
	TransactionID string `json:"transaction_id"`
	Limit         int    `json:"limit"`
	Offset        int    `json:"offset"`
}

// DefaultDecisionListParams returns default values for decision list params.
func DefaultDecisionListParams() DecisionListParams {
	return DecisionListParams{
		Limit: 50,
	}
}

// RunListParams represents query parameters for listing match runs.
type RunListParams struct {
	Limit int `json:"limit"`
}

// DefaultRunListParams returns default values for run list params.
func DefaultRunListParams() RunListParams {
	return RunListParams{
		Limit: 20,
	}
}
