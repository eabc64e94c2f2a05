package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/eshaffer321/monarch-rideshare-sync/internal/api/dto"
	"github.com/eshaffer321/monarch-rideshare-sync/internal/application/service"
)

// MatchHandler runs a match and returns the review rows.
type MatchHandler struct {
	*Base
}

// NewMatchHandler creates a new match handler.
func NewMatchHandler(svc Reconciler, logger *slog.Logger) *MatchHandler {
	return &MatchHandler{Base: NewBase(svc, logger)}
}

// Run handles POST /api/match.
func (h *MatchHandler) Run(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.Match(r.Context(), service.MatchOptions{
		Progress: func(msg string) { h.logger.Debug(msg) },
	})

	var notLoggedIn *service.NotLoggedInError
	switch {
	case errors.As(err, &notLoggedIn):
		h.WriteError(w, http.StatusUnauthorized, dto.NotLoggedInError(toCredentialResponses(notLoggedIn.Statuses)))
		return
	case errors.Is(err, service.ErrMatchInProgress):
		h.WriteError(w, http.StatusConflict, dto.ConflictError(err.Error()))
		return
	case err != nil:
		h.logger.Error("match failed", slog.String("error", err.Error()))
		h.WriteError(w, http.StatusBadGateway, dto.UpstreamError(err.Error()))
		return
	}

	h.WriteJSON(w, http.StatusOK, dto.MatchResponse{
		RunID:       result.RunID,
		Rows:        toRowResponses(result.Rows),
		Count:       len(result.Rows),
		Matched:     result.Matched,
		SoftMatched: result.SoftMatched,
		Skipped:     result.Skipped,
	})
}
