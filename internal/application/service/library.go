package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/eshaffer321/monarch-rideshare-sync/internal/domain/activity"
	"github.com/eshaffer321/monarch-rideshare-sync/internal/infrastructure/storage"
)

var (
	ErrInvalidDecision = errors.New("decision needs a transaction id")
	ErrTagNotFound     = errors.New("tag not found")
	ErrRunNotFound     = errors.New("match run not found")
)

// Apply writes the decision to the ledger and then records it locally.
// Nothing is recorded when the ledger rejects the write.
func (s *ReconcileService) Apply(ctx context.Context, d activity.Decision) (*activity.Decision, error) {
	d.TransactionID = strings.TrimSpace(d.TransactionID)
	d.TagID = strings.TrimSpace(d.TagID)
	d.Note = strings.TrimSpace(d.Note)
	if d.TransactionID == "" {
		return nil, ErrInvalidDecision
	}

	if err := s.clients.Ledger.ApplyDecision(ctx, d); err != nil {
		return nil, err
	}
	d.DecidedAt = s.now()
	if err := s.storage.SaveDecision(&d); err != nil {
		return nil, fmt.Errorf("record decision: %w", err)
	}

	s.logger.Info("decision applied",
		slog.String("txn", d.TransactionID),
		slog.Bool("tagged", d.TagID != ""))
	return &d, nil
}

// Decisions lists recorded decisions, newest first.
func (s *ReconcileService) Decisions(filters storage.DecisionFilters) ([]activity.Decision, error) {
	return s.storage.ListDecisions(filters)
}

// Tags returns the cached household tags.
func (s *ReconcileService) Tags() ([]activity.Tag, error) {
	return s.storage.ListTags()
}

// SyncTags refreshes the tag cache from the ledger. Tags that were checked
// before stay checked.
func (s *ReconcileService) SyncTags(ctx context.Context) ([]activity.Tag, error) {
	remote, err := s.clients.Ledger.Tags(ctx)
	if err != nil {
		return nil, err
	}
	existing, err := s.storage.ListTags()
	if err != nil {
		return nil, err
	}
	checked := make(map[string]bool, len(existing))
	for _, tag := range existing {
		checked[tag.ID] = tag.Checked
	}
	for i := range remote {
		remote[i].Checked = checked[remote[i].ID]
	}
	if err := s.storage.ReplaceTags(remote); err != nil {
		return nil, err
	}
	s.logger.Info("tags synced", slog.Int("count", len(remote)))
	return s.storage.ListTags()
}

// SetTagChecked marks a tag as offered (or not) on the review screen.
func (s *ReconcileService) SetTagChecked(id string, checked bool) error {
	found, err := s.storage.SetTagChecked(id, checked)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrTagNotFound, id)
	}
	return nil
}

// Locations returns the alias table.
func (s *ReconcileService) Locations() (map[string]string, error) {
	return s.storage.ListLocations()
}

// SaveLocations replaces the alias table. Blank keys or names are dropped.
func (s *ReconcileService) SaveLocations(aliases map[string]string) (map[string]string, error) {
	if err := s.storage.ReplaceLocations(aliases); err != nil {
		return nil, err
	}
	return s.storage.ListLocations()
}

// SetLocation adds or renames one alias.
func (s *ReconcileService) SetLocation(place, short string) error {
	aliases, err := s.storage.ListLocations()
	if err != nil {
		return err
	}
	aliases[place] = short
	return s.storage.ReplaceLocations(aliases)
}

// RemoveLocation deletes one alias. Removing a missing alias is a no-op.
func (s *ReconcileService) RemoveLocation(place string) error {
	aliases, err := s.storage.ListLocations()
	if err != nil {
		return err
	}
	if _, ok := aliases[place]; !ok {
		return nil
	}
	delete(aliases, place)
	return s.storage.ReplaceLocations(aliases)
}

// SeedLocations copies the configured aliases into an empty alias table.
func (s *ReconcileService) SeedLocations() error {
	if len(s.cfg.Locations.Aliases) == 0 {
		return nil
	}
	current, err := s.storage.ListLocations()
	if err != nil {
		return err
	}
	if len(current) > 0 {
		return nil
	}
	s.logger.Info("seeding location aliases from config", slog.Int("count", len(s.cfg.Locations.Aliases)))
	return s.storage.ReplaceLocations(s.cfg.Locations.Aliases)
}

// Runs lists recent match runs without their rows.
func (s *ReconcileService) Runs(limit int) ([]storage.MatchRun, error) {
	return s.storage.ListRuns(limit)
}

// Run returns one match run with its rows.
func (s *ReconcileService) Run(id string) (*storage.MatchRun, error) {
	run, err := s.storage.GetRun(id)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return run, nil
}
