package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eshaffer321/monarch-rideshare-sync/internal/api/dto"
	"github.com/eshaffer321/monarch-rideshare-sync/internal/application/service"
)

// RunsHandler handles match run-related HTTP requests.
type RunsHandler struct {
	*Base
}

// NewRunsHandler creates a new runs handler.
func NewRunsHandler(svc Reconciler, logger *slog.Logger) *RunsHandler {
	return &RunsHandler{
		Base: NewBase(svc, logger),
	}
}

// List handles GET /api/runs - returns recent match runs without rows.
func (h *RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := ParseIntParam(r, "limit", dto.DefaultRunListParams().Limit)

	runs, err := h.svc.Runs(limit)
	if err != nil {
		h.WriteInternal(w, r, err)
		return
	}

	response := dto.RunListResponse{
		Runs:  make([]dto.RunResponse, 0, len(runs)),
		Count: len(runs),
	}
	for _, run := range runs {
		run.Rows = nil
		response.Runs = append(response.Runs, toRunResponse(run))
	}

	h.WriteJSON(w, http.StatusOK, response)
}

// Get handles GET /api/runs/{id} - returns a single run with its rows.
func (h *RunsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("run ID is required"))
		return
	}

	run, err := h.svc.Run(id)
	if errors.Is(err, service.ErrRunNotFound) {
		h.WriteError(w, http.StatusNotFound, dto.NotFoundError("match run"))
		return
	}
	if err != nil {
		h.WriteInternal(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, toRunResponse(*run))
}
