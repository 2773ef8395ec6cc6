package http

import (
	"context"
	"net/http"

	"github.com/soiree-app/soiree/internal/auth/domain"
	"github.com/soiree-app/soiree/internal/auth/service"
	"github.com/soiree-app/soiree/pkg/httpx"
	"github.com/soiree-app/soiree/pkg/slogx"
	"github.com/soiree-app/soiree/pkg/tokenx"
)

type ctxKey string

const ctxKeyClaims ctxKey = "claims"

// ClaimsFromContext returns the verified claims attached by RequireRole.
func ClaimsFromContext(ctx context.Context) (tokenx.Claims, bool) {
	c, ok := ctx.Value(ctxKeyClaims).(tokenx.Claims)
	return c, ok
}

// CookieName is the role-scoped cookie carrying a browser session's token.
func CookieName(role domain.Role) string {
	return "soiree_auth_" + role.String()
}

// RequireRole authenticates the request and confines it to the given roles,
// widened by the privilege order. The bearer header is checked first, then
// the cookie of each acceptable role. Failures are a bare 401; the body never
// says which check failed.
func (rt *Router) RequireRole(required ...domain.Role) httpx.Middleware {
	accepted := domain.Accepting(required...)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token := httpx.BearerToken(r)
			if token == "" {
				for _, role := range accepted {
					if c, err := r.Cookie(CookieName(role)); err == nil && c.Value != "" {
						token = c.Value
						break
					}
				}
			}
			if token == "" {
				writeServiceError(w, r, service.ErrUnauthorized)
				return
			}

			claims, err := rt.LoginService.Authorize(ctx, token, required...)
			if err != nil {
				slogx.FromContext(ctx).Warn("authorization failed", "err", err)
				writeServiceError(w, r, err)
				return
			}

			ctx = context.WithValue(ctx, ctxKeyClaims, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireStepUp gates destructive admin operations on a step-up token in the
// x-admin-step-up header. A missing header is a 428 so clients know to run
// the re-auth flow; a present but invalid one is a plain 401.
func (rt *Router) RequireStepUp() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeServiceError(w, r, service.ErrUnauthorized)
				return
			}

			stepUp := r.Header.Get("x-admin-step-up")
			if stepUp == "" {
				writeServiceError(w, r, service.ErrStepUpRequired)
				return
			}

			if err := rt.StepUpService.Verify(stepUp, claims.ID); err != nil {
				writeServiceError(w, r, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireCron gates the scheduler endpoints on the x-cron-secret header.
// Cron has no token lifecycle, just the shared secret.
func (rt *Router) RequireCron() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			secret := r.Header.Get("x-cron-secret")
			if err := rt.LoginService.VerifyCron(r.Context(), secret, httpx.ClientIP(r)); err != nil {
				writeServiceError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
