package activity

import "time"

// Tag is a household transaction tag from the ledger.
// Checked marks tags the user wants offered as one-click actions.
type Tag struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Color   string `json:"color"`
	Order   int    `json:"order"`
	Checked bool   `json:"checked"`
}

// Decision is the user's verdict on one ledger transaction.
// An empty TagID means no tag is applied.
type Decision struct {
	TransactionID string    `json:"transaction_id"`
	Note          string    `json:"note"`
	TagID         string    `json:"tag_id,omitempty"`
	DecidedAt     time.Time `json:"decided_at"`
}

// CalendarDate reduces a timestamp to its calendar date in loc, expressed
// as midnight UTC so that dates from different zones compare cleanly.
func CalendarDate(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD ledger date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}
