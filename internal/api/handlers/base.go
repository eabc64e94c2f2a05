package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/eshaffer321/monarch-rideshare-sync/internal/adapters/credentials"
	"github.com/eshaffer321/monarch-rideshare-sync/internal/api/dto"
	"github.com/eshaffer321/monarch-rideshare-sync/internal/application/service"
	"github.com/eshaffer321/monarch-rideshare-sync/internal/domain/activity"
	"github.com/eshaffer321/monarch-rideshare-sync/internal/infrastructure/storage"
)

// Reconciler is the part of the reconcile service the handlers use.
type Reconciler interface {
	Match(ctx context.Context, opts service.MatchOptions) (*service.MatchResult, error)
	CredentialStatus(ctx context.Context) ([]credentials.Status, error)
	Apply(ctx context.Context, d activity.Decision) (*activity.Decision, error)
	Decisions(filters storage.DecisionFilters) ([]activity.Decision, error)
	Tags() ([]activity.Tag, error)
	SyncTags(ctx context.Context) ([]activity.Tag, error)
	SetTagChecked(id string, checked bool) error
	Locations() (map[string]string, error)
	SaveLocations(aliases map[string]string) (map[string]string, error)
	Runs(limit int) ([]storage.MatchRun, error)
	Run(id string) (*storage.MatchRun, error)
}

var _ Reconciler = (*service.ReconcileService)(nil)

// Base provides shared functionality for all handlers.
type Base struct {
	svc    Reconciler
	logger *slog.Logger
}

// NewBase creates a new base handler.
func NewBase(svc Reconciler, logger *slog.Logger) *Base {
	if logger == nil {
		logger = slog.Default()
	}
	return &Base{svc: svc, logger: logger}
}

// WriteJSON writes a JSON response with the given status code.
func (b *Base) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError writes an error response with the given status code.
func (b *Base) WriteError(w http.ResponseWriter, status int, err dto.APIError) {
	b.WriteJSON(w, status, err)
}

// WriteInternal logs err and writes a generic 500.
func (b *Base) WriteInternal(w http.ResponseWriter, r *http.Request, err error) {
	b.logger.Error("request failed",
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()))
	b.WriteError(w, http.StatusInternalServerError, dto.InternalError())
}

// ParseIntParam parses an integer query parameter with a default value.
func ParseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return parsed
}

// ParseBoolParam parses a boolean query parameter with a default value.
func ParseBoolParam(r *http.Request, name string, defaultVal bool) bool {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	return val == "true" || val == "1"
}
