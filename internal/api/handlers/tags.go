package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eshaffer321/monarch-rideshare-sync/internal/api/dto"
	"github.com/eshaffer321/monarch-rideshare-sync/internal/application/service"
)

// TagsHandler serves the cached household tags.
type TagsHandler struct {
	*Base
}

// NewTagsHandler creates a new tags handler.
func NewTagsHandler(svc Reconciler, logger *slog.Logger) *TagsHandler {
	return &TagsHandler{Base: NewBase(svc, logger)}
}

// List handles GET /api/tags.
func (h *TagsHandler) List(w http.ResponseWriter, r *http.Request) {
	tags, err := h.svc.Tags()
	if err != nil {
		h.WriteInternal(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, dto.TagListResponse{Tags: toTagResponses(tags), Count: len(tags)})
}

// Sync handles POST /api/tags/sync - refreshes tags from the ledger.
func (h *TagsHandler) Sync(w http.ResponseWriter, r *http.Request) {
	tags, err := h.svc.SyncTags(r.Context())
	if err != nil {
		h.logger.Error("tag sync failed", slog.String("error", err.Error()))
		h.WriteError(w, http.StatusBadGateway, dto.UpstreamError(err.Error()))
		return
	}
	h.WriteJSON(w, http.StatusOK, dto.TagListResponse{Tags: toTagResponses(tags), Count: len(tags)})
}

// Update handles PUT /api/tags/{id} - toggles whether a tag is offered.
func (h *TagsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.TagUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid JSON body"))
		return
	}
	if req.Checked == nil {
		h.WriteError(w, http.StatusBadRequest, dto.ValidationError("checked is required"))
		return
	}

	err := h.svc.SetTagChecked(id, *req.Checked)
	if errors.Is(err, service.ErrTagNotFound) {
		h.WriteError(w, http.StatusNotFound, dto.NotFoundError("tag"))
		return
	}
	if err != nil {
		h.WriteInternal(w, r, err)
		return
	}

	h.List(w, r)
}
