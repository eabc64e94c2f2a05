package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/eshaffer321/monarch-rideshare-sync/internal/api/dto"
)

// LocationsHandler serves the place alias table.
type LocationsHandler struct {
	*Base
}

// NewLocationsHandler creates a new locations handler.
func NewLocationsHandler(svc Reconciler, logger *slog.Logger) *LocationsHandler {
	return &LocationsHandler{Base: NewBase(svc, logger)}
}

// List handles GET /api/locations.
func (h *LocationsHandler) List(w http.ResponseWriter, r *http.Request) {
	aliases, err := h.svc.Locations()
	if err != nil {
		h.WriteInternal(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, dto.LocationsResponse{Locations: aliases, Count: len(aliases)})
}

// Replace handles PUT /api/locations - replaces the whole table.
func (h *LocationsHandler) Replace(w http.ResponseWriter, r *http.Request) {
	var req dto.LocationsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid JSON body"))
		return
	}
	if req.Locations == nil {
		req.Locations = map[string]string{}
	}

	aliases, err := h.svc.SaveLocations(req.Locations)
	if err != nil {
		h.WriteInternal(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, dto.LocationsResponse{Locations: aliases, Count: len(aliases)})
}
