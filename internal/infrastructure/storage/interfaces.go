package storage

import (
	"github.com/eshaffer321/monarch-rideshare-sync/internal/domain/activity"
)

// Repository defines the complete storage interface.
// This interface allows swapping implementations
// and makes testing with mocks straightforward.
type Repository interface {
	LocationRepository
	TagRepository
	RunRepository
	DecisionRepository
	Close() error
}

// LocationRepository stores the place alias table.
type LocationRepository interface {
	// ListLocations returns every alias keyed by full place string
	ListLocations() (map[string]string, error)

	// ReplaceLocations swaps the whole table. Blank keys or names are dropped.
	ReplaceLocations(aliases map[string]string) error
}

// TagRepository caches the ledger's household tags with a local checked flag.
type TagRepository interface {
	// ListTags returns tags in ledger order
	ListTags() ([]activity.Tag, error)

	// ReplaceTags swaps the cached tags, keeping the checked flag the
	// caller set on each
	ReplaceTags(tags []activity.Tag) error

	// SetTagChecked updates one tag. Returns false when the tag is unknown.
	SetTagChecked(id string, checked bool) (bool, error)
}

// RunRepository tracks matching runs.
type RunRepository interface {
	// StartRun records a run as running
	StartRun(run *MatchRun) error

	// CompleteRun stores counts and rows and marks the run completed
	CompleteRun(run *MatchRun) error

	// FailRun marks a run failed with a message
	FailRun(id string, message string) error

	// ListRuns returns recent runs, newest first, without rows
	ListRuns(limit int) ([]MatchRun, error)

	// GetRun returns a run with its rows, or nil when not found
	GetRun(id string) (*MatchRun, error)
}

// DecisionRepository keeps a local log of decisions written to the ledger.
type DecisionRepository interface {
	// SaveDecision appends a decision
	SaveDecision(d *activity.Decision) error

	// ListDecisions returns decisions newest first
	ListDecisions(filters DecisionFilters) ([]activity.Decision, error)
}
