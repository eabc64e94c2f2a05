package handlers_test

import (
	"context"
	"fmt"

	"github.com/eshaffer321/monarch-rideshare-sync/internal/adapters/credentials"
	"github.com/eshaffer321/monarch-rideshare-sync/internal/application/service"
	"github.com/eshaffer321/monarch-rideshare-sync/internal/domain/activity"
	"github.com/eshaffer321/monarch-rideshare-sync/internal/infrastructure/storage"
)

// fakeReconciler serves canned results backed by a MockRepository.
type fakeReconciler struct {
	repo     *storage.MockRepository
	result   *service.MatchResult
	matchErr error
	applyErr error
	syncErr  error
	remote   []activity.Tag
	statuses []credentials.Status
}

func newFakeReconciler() *fakeReconciler {
	return &fakeReconciler{repo: storage.NewMockRepository()}
}

func (f *fakeReconciler) Match(context.Context, service.MatchOptions) (*service.MatchResult, error) {
	return f.result, f.matchErr
}

func (f *fakeReconciler) CredentialStatus(context.Context) ([]credentials.Status, error) {
	return f.statuses, nil
}

func (f *fakeReconciler) Apply(_ context.Context, d activity.Decision) (*activity.Decision, error) {
	if d.TransactionID == "" {
		return nil, service.ErrInvalidDecision
	}
	if f.applyErr != nil {
		return nil, f.applyErr
	}
	if err := f.repo.SaveDecision(&d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (f *fakeReconciler) Decisions(filters storage.DecisionFilters) ([]activity.Decision, error) {
	return f.repo.ListDecisions(filters)
}

func (f *fakeReconciler) Tags() ([]activity.Tag, error) {
	return f.repo.ListTags()
}

func (f *fakeReconciler) SyncTags(context.Context) ([]activity.Tag, error) {
	if f.syncErr != nil {
		return nil, f.syncErr
	}
	if err := f.repo.ReplaceTags(f.remote); err != nil {
		return nil, err
	}
	return f.repo.ListTags()
}

func (f *fakeReconciler) SetTagChecked(id string, checked bool) error {
	found, err := f.repo.SetTagChecked(id, checked)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: %s", service.ErrTagNotFound, id)
	}
	return nil
}

func (f *fakeReconciler) Locations() (map[string]string, error) {
	return f.repo.ListLocations()
}

func (f *fakeReconciler) SaveLocations(aliases map[string]string) (map[string]string, error) {
	if err := f.repo.ReplaceLocations(aliases); err != nil {
		return nil, err
	}
	return f.repo.ListLocations()
}

func (f *fakeReconciler) Runs(limit int) ([]storage.MatchRun, error) {
	return f.repo.ListRuns(limit)
}

func (f *fakeReconciler) Run(id string) (*storage.MatchRun, error) {
	run, err := f.repo.GetRun(id)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, fmt.Errorf("%w: %s", service.ErrRunNotFound, id)
	}
	return run, nil
}
