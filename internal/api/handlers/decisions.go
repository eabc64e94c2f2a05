package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/eshaffer321/monarch-rideshare-sync/internal/api/dto"
	"github.com/eshaffer321/monarch-rideshare-sync/internal/application/service"
	"github.com/eshaffer321/monarch-rideshare-sync/internal/domain/activity"
	"github.com/eshaffer321/monarch-rideshare-sync/internal/infrastructure/storage"
)

// DecisionsHandler applies and lists review decisions.
type DecisionsHandler struct {
	*Base
}

// NewDecisionsHandler creates a new decisions handler.
func NewDecisionsHandler(svc Reconciler, logger *slog.Logger) *DecisionsHandler {
	return &DecisionsHandler{Base: NewBase(svc, logger)}
}

// Apply handles POST /api/decisions - writes the note and tag to the ledger.
func (h *DecisionsHandler) Apply(w http.ResponseWriter, r *http.Request) {
	var req dto.DecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid JSON body"))
		return
	}

	d, err := h.svc.Apply(r.Context(), activity.Decision{
		TransactionID: req.TransactionID,
		Note:          req.Note,
		TagID:         req.TagID,
	})
	if errors.Is(err, service.ErrInvalidDecision) {
		h.WriteError(w, http.StatusBadRequest, dto.ValidationError(err.Error()))
		return
	}
	if err != nil {
		h.logger.Error("apply failed",
			slog.String("txn", req.TransactionID),
			slog.String("error", err.Error()))
		h.WriteError(w, http.StatusBadGateway, dto.UpstreamError(err.Error()))
		return
	}

	h.WriteJSON(w, http.StatusCreated, toDecisionResponse(*d))
}

// List handles GET /api/decisions.
func (h *DecisionsHandler) List(w http.ResponseWriter, r *http.Request) {
	params := dto.DefaultDecisionListParams()
	params.TransactionID = r.URL.Query().Get("transaction_id")
	params.Limit = ParseIntParam(r, "limit", params.Limit)
	params.Offset = ParseIntParam(r, "offset", params.Offset)

	decisions, err := h.svc.Decisions(storage.DecisionFilters{
		TransactionID: params.TransactionID,
		Limit:         params.Limit,
		Offset:        params.Offset,
	})
	if err != nil {
		h.WriteInternal(w, r, err)
		return
	}

	response := dto.DecisionListResponse{
		Decisions: make([]dto.DecisionResponse, 0, len(decisions)),
		Count:     len(decisions),
		Limit:     params.Limit,
		Offset:    params.Offset,
	}
	for _, d := range decisions {
		response.Decisions = append(response.Decisions, toDecisionResponse(d))
	}
	h.WriteJSON(w, http.StatusOK, response)
}
