package http

import (
	"encoding/json"
	"net/http"

	"github.com/soiree-app/soiree/internal/auth/domain"
	"github.com/soiree-app/soiree/internal/auth/service"
	"github.com/soiree-app/soiree/pkg/httpx"
)

// LoginHandler serves POST /v1/auth/{role}/login. A successful login returns
// the token in the JSON body for programmatic clients and sets the role
// cookie for browser clients in the same response.
type LoginHandler struct {
	LoginService *service.LoginService
	SecureCookie bool
}

type loginRequest struct {
	Secret string `json:"secret"`
}

type loginResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	Role      string `json:"role"`
	ExpiresIn int64  `json:"expires_in"`
	Reused    bool   `json:"reused,omitempty"`
}

func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	role, err := domain.ParseTokenRole(r.PathValue("role"))
	if err != nil {
		httpx.WriteError(w, http.StatusNotFound, "unknown_role", "")
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_body", "Expected JSON with a secret field.")
		return
	}

	result, err := h.LoginService.Login(r.Context(), role, req.Secret, httpx.ClientIP(r), r.UserAgent())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName(role),
		Value:    result.Token,
		Path:     "/",
		MaxAge:   int(result.TTL.Seconds()),
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	httpx.WriteJSON(w, http.StatusOK, loginResponse{
		Token:     result.Token,
		TokenType: "Bearer",
		Role:      result.Claims.Role,
		ExpiresIn: int64(result.TTL.Seconds()),
		Reused:    result.Reused,
	})
}
