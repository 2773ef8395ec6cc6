package http

import (
	"encoding/json"
	"net/http"

	"github.com/soiree-app/soiree/internal/auth/service"
	"github.com/soiree-app/soiree/pkg/httpx"
)

// StepUpHandler serves POST /v1/auth/step-up. The caller already holds a
// valid admin bearer token (enforced by RequireRole on the route) and
// re-supplies the raw admin secret to receive a short-lived step-up token
// bound to their session.
type StepUpHandler struct {
	StepUpService *service.StepUpService
}

type stepUpRequest struct {
	Secret string `json:"secret"`
}

type stepUpResponse struct {
	StepUpToken string `json:"step_up_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

func (h *StepUpHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeServiceError(w, r, service.ErrUnauthorized)
		return
	}

	var req stepUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_body", "Expected JSON with a secret field.")
		return
	}

	grant, err := h.StepUpService.Issue(r.Context(), claims.ID, req.Secret, httpx.ClientIP(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, stepUpResponse{
		StepUpToken: grant.Token,
		ExpiresIn:   int64(grant.ExpiresIn.Seconds()),
	})
}
