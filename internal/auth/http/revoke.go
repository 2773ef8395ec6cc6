package http

import (
	"net/http"

	"github.com/soiree-app/soiree/internal/auth/domain"
	"github.com/soiree-app/soiree/internal/auth/service"
	"github.com/soiree-app/soiree/pkg/httpx"
)

// RoleRevokeHandler serves POST /v1/admin/roles/{role}/revoke: a version bump
// that invalidates every outstanding token for the role at once. The route is
// admin plus step-up gated.
type RoleRevokeHandler struct {
	RevocationService *service.RevocationService
}

type roleRevokeResponse struct {
	Role    string `json:"role"`
	Version int64  `json:"version"`
}

func (h *RoleRevokeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	role, err := domain.ParseTokenRole(r.PathValue("role"))
	if err != nil {
		httpx.WriteError(w, http.StatusNotFound, "unknown_role", "")
		return
	}

	version, err := h.RevocationService.Bump(r.Context(), role)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, roleRevokeResponse{
		Role:    role.String(),
		Version: version,
	})
}
