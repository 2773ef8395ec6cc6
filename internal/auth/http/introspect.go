package http

import (
	"net/http"

	"github.com/soiree-app/soiree/internal/auth/service"
	"github.com/soiree-app/soiree/pkg/httpx"
)

// IntrospectHandler serves GET /v1/auth/introspect: the authenticated caller
// sees their own token's identity and lifetime. Useful for clients deciding
// when to re-login.
type IntrospectHandler struct{}

type introspectResponse struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	Version   int64  `json:"version"`
	IssuedAt  int64  `json:"issued_at"`
	ExpiresAt int64  `json:"expires_at"`
}

func (h *IntrospectHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeServiceError(w, r, service.ErrUnauthorized)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, introspectResponse{
		ID:        claims.ID,
		Role:      claims.Role,
		Version:   claims.Ver,
		IssuedAt:  claims.IssuedAt.Unix(),
		ExpiresAt: claims.ExpiresAt.Unix(),
	})
}
