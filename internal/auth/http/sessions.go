package http

import (
	"net/http"

	"github.com/soiree-app/soiree/internal/auth/domain"
	"github.com/soiree-app/soiree/internal/auth/service"
	"github.com/soiree-app/soiree/pkg/httpx"
)

// SessionListHandler serves GET /v1/admin/sessions, optionally filtered with
// ?role=. Admin only.
type SessionListHandler struct {
	SessionService *service.SessionService
}

type sessionListResponse struct {
	Sessions []service.SessionView `json:"sessions"`
}

func (h *SessionListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var role *domain.Role
	if q := r.URL.Query().Get("role"); q != "" {
		parsed, err := domain.ParseTokenRole(q)
		if err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "unknown_role", "")
			return
		}
		role = &parsed
	}

	views, err := h.SessionService.List(r.Context(), role)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, sessionListResponse{Sessions: views})
}

// SessionRevokeHandler serves POST /v1/admin/sessions/{id}/revoke: denylists
// one token id without disturbing the role's other sessions. Admin plus
// step-up gated.
type SessionRevokeHandler struct {
	SessionService *service.SessionService
}

func (h *SessionRevokeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Missing session id.")
		return
	}

	if err := h.SessionService.RevokeOne(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{"revoked": id})
}
