package http

import (
	"errors"
	"net/http"

	"github.com/soiree-app/soiree/internal/auth/domain"
	"github.com/soiree-app/soiree/internal/auth/service"
	"github.com/soiree-app/soiree/pkg/httpx"
	"github.com/soiree-app/soiree/pkg/slogx"
)

// writeServiceError maps the service error taxonomy onto HTTP responses.
// Credential failures stay deliberately vague: a 401 body never says whether
// the secret was wrong, the token expired, or the session was revoked.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var credErr *service.CredentialError
	if errors.As(err, &credErr) {
		remaining := credErr.Remaining
		httpx.WriteJSON(w, http.StatusUnauthorized, httpx.ErrorBody{
			Error:             "unauthorized",
			AttemptsRemaining: &remaining,
		})
		return
	}

	switch {
	case errors.Is(err, service.ErrUnauthorized):
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "")
	case errors.Is(err, service.ErrRateLimited):
		httpx.WriteError(w, http.StatusTooManyRequests,
			"rate_limited", "Too many failed attempts. Try again later.")
	case errors.Is(err, service.ErrStepUpRequired):
		httpx.WriteError(w, http.StatusPreconditionRequired,
			"step_up_required", "Re-authentication required for this operation.")
	case errors.Is(err, service.ErrSharedStoreRequired):
		httpx.WriteError(w, http.StatusServiceUnavailable,
			"shared_store_required", "Operation requires the shared store.")
	case errors.Is(err, service.ErrConfig):
		slogx.FromContext(r.Context()).Error("configuration error", "err", err)
		httpx.WriteError(w, http.StatusServiceUnavailable,
			"configuration_error", "Service is misconfigured.")
	case errors.Is(err, service.ErrStoreUnavailable):
		slogx.FromContext(r.Context()).Error("store unavailable", "err", err)
		httpx.WriteError(w, http.StatusServiceUnavailable,
			"store_unavailable", "Backing store is unavailable.")
	case errors.Is(err, domain.ErrUnknownRole):
		httpx.WriteError(w, http.StatusNotFound, "unknown_role", "")
	default:
		slogx.FromContext(r.Context()).Error("unhandled service error", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "")
	}
}
