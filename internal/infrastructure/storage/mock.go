package storage

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/eshaffer321/monarch-rideshare-sync/internal/domain/activity"
)

// MockRepository is an in-memory implementation of Repository for testing.
// It stores all data in maps and slices, making tests fast and isolated.
type MockRepository struct {
	mu        sync.Mutex
	locations map[string]string
	tags      []activity.Tag
	runs      map[string]*MatchRun
	decisions []activity.Decision

	// Hooks for test assertions
	StartRunCalled     bool
	CompleteRunCalled  bool
	FailRunCalled      bool
	LastCompletedRun   *MatchRun
	SaveDecisionCalled bool
	LastSavedDecision  *activity.Decision

	// Error injection for testing error paths
	ListLocationsErr    error
	ReplaceLocationsErr error
	ListTagsErr         error
	ReplaceTagsErr      error
	StartRunErr         error
	CompleteRunErr      error
	ListRunsErr         error
	GetRunErr           error
	SaveDecisionErr     error
	ListDecisionsErr    error
}

// NewMockRepository creates a new mock repository for testing
func NewMockRepository() *MockRepository {
	return &MockRepository{
		locations: make(map[string]string),
		tags:      make([]activity.Tag, 0),
		runs:      make(map[string]*MatchRun),
		decisions: make([]activity.Decision, 0),
	}
}

// Compile-time check that MockRepository implements Repository
var _ Repository = (*MockRepository)(nil)

// Close does nothing for mock
func (m *MockRepository) Close() error {
	return nil
}

// ListLocations returns a copy of the alias map
func (m *MockRepository) ListLocations() (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListLocationsErr != nil {
		return nil, m.ListLocationsErr
	}
	out := make(map[string]string, len(m.locations))
	for k, v := range m.locations {
		out[k] = v
	}
	return out, nil
}

// ReplaceLocations swaps the alias map
func (m *MockRepository) ReplaceLocations(aliases map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReplaceLocationsErr != nil {
		return m.ReplaceLocationsErr
	}
	m.locations = CleanAliases(aliases)
	return nil
}

// ListTags returns tags sorted like the SQLite store
func (m *MockRepository) ListTags() ([]activity.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListTagsErr != nil {
		return nil, m.ListTagsErr
	}
	out := make([]activity.Tag, len(m.tags))
	copy(out, m.tags)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// ReplaceTags swaps the cached tags
func (m *MockRepository) ReplaceTags(tags []activity.Tag) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReplaceTagsErr != nil {
		return m.ReplaceTagsErr
	}
	m.tags = make([]activity.Tag, len(tags))
	copy(m.tags, tags)
	return nil
}

// SetTagChecked updates one tag
func (m *MockRepository) SetTagChecked(id string, checked bool) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.tags {
		if m.tags[i].ID == id {
			m.tags[i].Checked = checked
			return true, nil
		}
	}
	return false, nil
}

// StartRun stores a running run
func (m *MockRepository) StartRun(run *MatchRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StartRunCalled = true
	if m.StartRunErr != nil {
		return m.StartRunErr
	}
	if run.Status == "" {
		run.Status = RunStatusRunning
	}
	copied := *run
	m.runs[run.ID] = &copied
	return nil
}

// CompleteRun marks a run complete
func (m *MockRepository) CompleteRun(run *MatchRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CompleteRunCalled = true
	m.LastCompletedRun = run
	if m.CompleteRunErr != nil {
		return m.CompleteRunErr
	}
	if _, ok := m.runs[run.ID]; !ok {
		return fmt.Errorf("match run %s not found", run.ID)
	}
	copied := *run
	copied.Status = RunStatusCompleted
	if copied.CompletedAt == nil {
		now := time.Now()
		copied.CompletedAt = &now
	}
	m.runs[run.ID] = &copied
	return nil
}

// FailRun marks a run failed
func (m *MockRepository) FailRun(id string, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FailRunCalled = true
	run, ok := m.runs[id]
	if !ok {
		return fmt.Errorf("match run %s not found", id)
	}
	now := time.Now()
	run.Status = RunStatusFailed
	run.ErrorMessage = message
	run.CompletedAt = &now
	return nil
}

// ListRuns returns runs newest first without rows
func (m *MockRepository) ListRuns(limit int) ([]MatchRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListRunsErr != nil {
		return nil, m.ListRunsErr
	}
	out := make([]MatchRun, 0, len(m.runs))
	for _, run := range m.runs {
		copied := *run
		copied.Rows = nil
		out = append(out, copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// GetRun returns a run or nil
func (m *MockRepository) GetRun(id string) (*MatchRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetRunErr != nil {
		return nil, m.GetRunErr
	}
	run, ok := m.runs[id]
	if !ok {
		return nil, nil
	}
	copied := *run
	return &copied, nil
}

// SaveDecision appends a decision
func (m *MockRepository) SaveDecision(d *activity.Decision) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveDecisionCalled = true
	m.LastSavedDecision = d
	if m.SaveDecisionErr != nil {
		return m.SaveDecisionErr
	}
	if d.DecidedAt.IsZero() {
		d.DecidedAt = time.Now()
	}
	m.decisions = append(m.decisions, *d)
	return nil
}

// ListDecisions returns decisions newest first
func (m *MockRepository) ListDecisions(filters DecisionFilters) ([]activity.Decision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListDecisionsErr != nil {
		return nil, m.ListDecisionsErr
	}
	out := make([]activity.Decision, 0, len(m.decisions))
	for i := len(m.decisions) - 1; i >= 0; i-- {
		d := m.decisions[i]
		if filters.TransactionID != "" && d.TransactionID != filters.TransactionID {
			continue
		}
		out = append(out, d)
	}
	if filters.Offset > 0 {
		if filters.Offset >= len(out) {
			return []activity.Decision{}, nil
		}
		out = out[filters.Offset:]
	}
	if filters.Limit > 0 && len(out) > filters.Limit {
		out = out[:filters.Limit]
	}
	return out, nil
}
