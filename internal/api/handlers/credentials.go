package handlers

import (
	"log/slog"
	"net/http"

	"github.com/eshaffer321/monarch-rideshare-sync/internal/adapters/credentials"
	"github.com/eshaffer321/monarch-rideshare-sync/internal/api/dto"
)

// CredentialsHandler reports which services have a captured session.
type CredentialsHandler struct {
	*Base
}

// NewCredentialsHandler creates a new credentials handler.
func NewCredentialsHandler(svc Reconciler, logger *slog.Logger) *CredentialsHandler {
	return &CredentialsHandler{Base: NewBase(svc, logger)}
}

// Status handles GET /api/credentials. Header values are never returned.
func (h *CredentialsHandler) Status(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.svc.CredentialStatus(r.Context())
	if err != nil {
		h.WriteInternal(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, dto.CredentialsResponse{
		Services: toCredentialResponses(statuses),
		AllSet:   len(credentials.Missing(statuses)) == 0,
	})
}
