package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/eshaffer321/monarch-rideshare-sync/internal/domain/activity"
	"github.com/eshaffer321/monarch-rideshare-sync/internal/domain/matcher"
)

// Storage provides SQLite database access for aliases, tags, runs and
// decisions. It implements the Repository interface.
type Storage struct {
	db *sql.DB
}

// Compile-time check that Storage implements Repository
var _ Repository = (*Storage)(nil)

// NewStorage creates a new storage instance with SQLite database
func NewStorage(dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign key constraints (SQLite-specific)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Run all pending migrations
	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Storage{db: db}, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

// SchemaVersion returns the applied migration version.
func (s *Storage) SchemaVersion() (int64, error) {
	return schemaVersion(s.db)
}

// ListLocations returns every alias keyed by full place string
func (s *Storage) ListLocations() (map[string]string, error) {
	rows, err := s.db.Query(`SELECT place, short_name FROM location_aliases ORDER BY place`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	aliases := make(map[string]string)
	for rows.Next() {
		var place, short string
		if err := rows.Scan(&place, &short); err != nil {
			return nil, err
		}
		aliases[place] = short
	}
	return aliases, rows.Err()
}

// ReplaceLocations swaps the whole alias table in one transaction
func (s *Storage) ReplaceLocations(aliases map[string]string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM location_aliases`); err != nil {
		return err
	}
	for place, short := range CleanAliases(aliases) {
		if _, err := tx.Exec(`
			INSERT INTO location_aliases (place, short_name, updated_at) VALUES (?, ?, ?)
		`, place, short, time.Now()); err != nil {
			return fmt.Errorf("failed to save alias %q: %w", place, err)
		}
	}
	return tx.Commit()
}

// CleanAliases trims entries and drops those with a blank key or name.
func CleanAliases(aliases map[string]string) map[string]string {
	out := make(map[string]string, len(aliases))
	for place, short := range aliases {
		place, short = strings.TrimSpace(place), strings.TrimSpace(short)
		if place == "" || short == "" {
			continue
		}
		out[place] = short
	}
	return out
}

// ListTags returns tags in ledger order
func (s *Storage) ListTags() ([]activity.Tag, error) {
	rows, err := s.db.Query(`
		SELECT id, name, color, sort_order, checked
		FROM tags
		ORDER BY sort_order, name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := make([]activity.Tag, 0)
	for rows.Next() {
		var tag activity.Tag
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.Color, &tag.Order, &tag.Checked); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

// ReplaceTags swaps the cached tags in one transaction
func (s *Storage) ReplaceTags(tags []activity.Tag) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM tags`); err != nil {
		return err
	}
	for _, tag := range tags {
		if _, err := tx.Exec(`
			INSERT INTO tags (id, name, color, sort_order, checked) VALUES (?, ?, ?, ?, ?)
		`, tag.ID, tag.Name, tag.Color, tag.Order, tag.Checked); err != nil {
			return fmt.Errorf("failed to save tag %s: %w", tag.ID, err)
		}
	}
	return tx.Commit()
}

// SetTagChecked updates one tag's checked flag
func (s *Storage) SetTagChecked(id string, checked bool) (bool, error) {
	result, err := s.db.Exec(`UPDATE tags SET checked = ? WHERE id = ?`, checked, id)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// StartRun records a run as running
func (s *Storage) StartRun(run *MatchRun) error {
	if run.Status == "" {
		run.Status = RunStatusRunning
	}
	_, err := s.db.Exec(`
		INSERT INTO match_runs (id, started_at, status) VALUES (?, ?, ?)
	`, run.ID, run.StartedAt, run.Status)
	return err
}

// CompleteRun stores counts and rows and marks the run completed
func (s *Storage) CompleteRun(run *MatchRun) error {
	rows := run.Rows
	if rows == nil {
		rows = []matcher.MatchedRow{}
	}
	rowsJSON, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("failed to encode rows: %w", err)
	}

	completedAt := time.Now()
	if run.CompletedAt != nil {
		completedAt = *run.CompletedAt
	}

	result, err := s.db.Exec(`
		UPDATE match_runs
		SET completed_at = ?, status = ?, transactions = ?, matched = ?, soft_matched = ?,
		    rides_fetched = ?, deliveries_fetched = ?, bike_shares_fetched = ?, rows_json = ?
		WHERE id = ?
	`, completedAt, RunStatusCompleted, run.Transactions, run.Matched, run.SoftMatched,
		run.RidesFetched, run.DeliveriesFetched, run.BikeSharesFetched, string(rowsJSON), run.ID)
	if err != nil {
		return err
	}
	return requireOneRow(result, "match run", run.ID)
}

// FailRun marks a run failed with a message
func (s *Storage) FailRun(id string, message string) error {
	result, err := s.db.Exec(`
		UPDATE match_runs SET completed_at = ?, status = ?, error_message = ? WHERE id = ?
	`, time.Now(), RunStatusFailed, message, id)
	if err != nil {
		return err
	}
	return requireOneRow(result, "match run", id)
}

func requireOneRow(result sql.Result, what, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %s not found", what, id)
	}
	return nil
}

const runColumns = `
	id, started_at, completed_at, status, transactions, matched, soft_matched,
	rides_fetched, deliveries_fetched, bike_shares_fetched, error_message`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner, extra ...any) (*MatchRun, error) {
	var run MatchRun
	var completedAt sql.NullTime
	dest := []any{
		&run.ID, &run.StartedAt, &completedAt, &run.Status, &run.Transactions, &run.Matched,
		&run.SoftMatched, &run.RidesFetched, &run.DeliveriesFetched, &run.BikeSharesFetched,
		&run.ErrorMessage,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	if completedAt.Valid {
		t := completedAt.Time
		run.CompletedAt = &t
	}
	return &run, nil
}

// ListRuns returns recent runs, newest first
func (s *Storage) ListRuns(limit int) ([]MatchRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`SELECT `+runColumns+` FROM match_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]MatchRun, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// GetRun returns a run with its rows, or nil when not found
func (s *Storage) GetRun(id string) (*MatchRun, error) {
	var rowsJSON string
	row := s.db.QueryRow(`SELECT `+runColumns+`, rows_json FROM match_runs WHERE id = ?`, id)
	run, err := scanRun(row, &rowsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(rowsJSON), &run.Rows); err != nil {
		return nil, fmt.Errorf("failed to decode rows for run %s: %w", id, err)
	}
	return run, nil
}

// SaveDecision appends a decision
func (s *Storage) SaveDecision(d *activity.Decision) error {
	if d.DecidedAt.IsZero() {
		d.DecidedAt = time.Now()
	}
	_, err := s.db.Exec(`
		INSERT INTO decisions (transaction_id, note, tag_id, decided_at) VALUES (?, ?, ?, ?)
	`, d.TransactionID, d.Note, d.TagID, d.DecidedAt)
	return err
}

// ListDecisions returns decisions newest first
func (s *Storage) ListDecisions(filters DecisionFilters) ([]activity.Decision, error) {
	if filters.Limit <= 0 {
		filters.Limit = 50
	}

	query := `SELECT transaction_id, note, tag_id, decided_at FROM decisions`
	var args []any
	if filters.TransactionID != "" {
		query += ` WHERE transaction_id = ?`
		args = append(args, filters.TransactionID)
	}
	query += ` ORDER BY decided_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, filters.Limit, filters.Offset)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	decisions := make([]activity.Decision, 0)
	for rows.Next() {
		var d activity.Decision
		if err := rows.Scan(&d.TransactionID, &d.Note, &d.TagID, &d.DecidedAt); err != nil {
			return nil, err
		}
		decisions = append(decisions, d)
	}
	return decisions, rows.Err()
}
