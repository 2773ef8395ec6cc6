package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/soiree-app/soiree/internal/auth/domain"
	"github.com/soiree-app/soiree/internal/auth/service"
	"github.com/soiree-app/soiree/internal/auth/store"
	"github.com/soiree-app/soiree/pkg/httpx"
	"github.com/soiree-app/soiree/pkg/slogx"
	"github.com/soiree-app/soiree/pkg/tokenx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	codec        *tokenx.Codec
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	secureCookie bool

	store               store.Store
	LoginService        *service.LoginService
	StepUpService       *service.StepUpService
	RevocationService   *service.RevocationService
	SessionService      *service.SessionService
	HousekeepingService *service.HousekeepingService
}

func NewRouter(
	codec *tokenx.Codec,
	buildVersion string,
	secureCookie bool,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		codec:        codec,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		secureCookie: secureCookie,
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerAdmin()
	r.registerCron()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	loginHandler := &LoginHandler{
		LoginService: r.LoginService,
		SecureCookie: r.secureCookie,
	}

	// Credential-accepting endpoints sit behind the strict transport limit;
	// the per-(role, ip) lockout window inside the service is separate.
	r.Mux.Handle("POST /v1/auth/{role}/login",
		httpx.Chain(loginHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		))

	r.Mux.Handle("POST /v1/auth/step-up",
		httpx.Chain(&StepUpHandler{StepUpService: r.StepUpService},
			httpx.RateLimitByIP(httpx.StrictLimit),
			r.RequireRole(domain.RoleAdmin),
		))

	r.Mux.Handle("GET /v1/auth/introspect",
		httpx.Chain(&IntrospectHandler{},
			httpx.RateLimitByIP(httpx.LenientLimit),
			r.RequireRole(domain.RoleStaff, domain.RoleAdmin, domain.RoleUpload),
		))

	r.Mux.Handle("POST /v1/auth/logout",
		httpx.Chain(&LogoutHandler{SessionService: r.SessionService, SecureCookie: r.secureCookie},
			httpx.RateLimitByIP(httpx.ModerateLimit),
			r.RequireRole(domain.RoleStaff, domain.RoleAdmin, domain.RoleUpload),
		))
}

func (r *Router) registerAdmin() {
	r.Mux.Handle("POST /v1/admin/roles/{role}/revoke",
		httpx.Chain(&RoleRevokeHandler{RevocationService: r.RevocationService},
			httpx.RateLimitByIP(httpx.ModerateLimit),
			r.RequireRole(domain.RoleAdmin),
			r.RequireStepUp(),
		))

	r.Mux.Handle("GET /v1/admin/sessions",
		httpx.Chain(&SessionListHandler{SessionService: r.SessionService},
			httpx.RateLimitByIP(httpx.ModerateLimit),
			r.RequireRole(domain.RoleAdmin),
		))

	r.Mux.Handle("POST /v1/admin/sessions/{id}/revoke",
		httpx.Chain(&SessionRevokeHandler{SessionService: r.SessionService},
			httpx.RateLimitByIP(httpx.ModerateLimit),
			r.RequireRole(domain.RoleAdmin),
			r.RequireStepUp(),
		))
}

func (r *Router) registerCron() {
	r.Mux.Handle("POST /v1/cron/housekeeping",
		httpx.Chain(&HousekeepingHandler{Housekeeping: r.HousekeepingService},
			httpx.RateLimitByIP(httpx.ModerateLimit),
			r.RequireCron(),
		))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store, r.codec))
}
