package http

import (
	"net/http"

	"github.com/soiree-app/soiree/internal/auth/domain"
	"github.com/soiree-app/soiree/internal/auth/service"
	"github.com/soiree-app/soiree/pkg/httpx"
)

// LogoutHandler serves POST /v1/auth/logout: the caller revokes their own
// session id and the role cookie is cleared. No step-up needed; giving up
// your own access is never an escalation.
type LogoutHandler struct {
	SessionService *service.SessionService
	SecureCookie   bool
}

func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeServiceError(w, r, service.ErrUnauthorized)
		return
	}

	if err := h.SessionService.RevokeOne(r.Context(), claims.ID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName(domain.Role(claims.Role)),
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	httpx.WriteJSON(w, http.StatusOK, map[string]string{"revoked": claims.ID})
}
