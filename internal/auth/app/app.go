package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/soiree-app/soiree/internal/auth/domain"
	httpapi "github.com/soiree-app/soiree/internal/auth/http"
	"github.com/soiree-app/soiree/internal/auth/service"
	"github.com/soiree-app/soiree/internal/auth/store"
	"github.com/soiree-app/soiree/internal/auth/store/drivers/memory"
	"github.com/soiree-app/soiree/internal/auth/store/drivers/redis"
	"github.com/soiree-app/soiree/pkg/slogx"
	"github.com/soiree-app/soiree/pkg/tokenx"
)

// BuildVersion should be set at build time via ldflags.
const BuildVersion = "v0.1.0"

// Application encapsulates the auth service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	primary  store.Store
	fallback store.Store
	codec    *tokenx.Codec // nil when the signing key is missing or weak

	loginService        *service.LoginService
	stepUpService       *service.StepUpService
	revocationService   *service.RevocationService
	rateLimitService    *service.RateLimitService
	sessionService      *service.SessionService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized. A missing or
// weak signing key is not fatal here: the process starts, health endpoints
// answer, and every token path reports the configuration error instead.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "soiree-auth",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initStore(); err != nil {
		return nil, err
	}
	app.initCodec()
	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("auth service starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"shared_store", app.primary.Shared(),
		"production_policy", app.cfg.ProductionPolicy,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.primary.Close(); err != nil {
		app.logger.Error("error closing store", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// initStore selects the shared Redis store when configured, the process-local
// memory store otherwise. The memory fallback exists either way: it is where
// fail-open roles land during a shared-store outage.
func (app *Application) initStore() error {
	app.fallback = memory.NewStore()

	if app.cfg.RedisURL == "" {
		app.logger.Warn("no AUTH_REDIS_URL configured, using in-memory store (single instance only)")
		app.primary = memory.NewStore()
		return nil
	}

	st, err := redis.NewStore(redis.DefaultConfig(app.cfg.RedisURL))
	if err != nil {
		return fmt.Errorf("failed to initialize shared store: %w", err)
	}
	app.primary = st
	app.logger.Info("connected to shared store")
	return nil
}

func (app *Application) initCodec() {
	codec, err := tokenx.New(app.cfg.SigningKey)
	if err != nil {
		// Startup proceeds; token issuance and verification will answer 503
		// until the key is fixed.
		app.logger.Error("signing key rejected, token paths disabled", "error", err)
		return
	}
	app.codec = codec
}

func (app *Application) initServices() {
	secrets := domain.Secrets{
		SigningKey: app.cfg.SigningKey,
		Staff:      app.cfg.StaffPIN,
		Admin:      app.cfg.AdminSecret,
		Upload:     app.cfg.UploadPIN,
		Cron:       app.cfg.CronSecret,
	}
	policy := service.Policy{Production: app.cfg.ProductionPolicy}

	app.revocationService = &service.RevocationService{
		Store:    app.primary,
		Fallback: app.fallback,
		Policy:   policy,
	}
	app.rateLimitService = &service.RateLimitService{
		Store:    app.primary,
		Fallback: app.fallback,
		Policy:   policy,
	}
	app.sessionService = &service.SessionService{
		Store:      app.primary,
		Revocation: app.revocationService,
	}
	app.loginService = &service.LoginService{
		Codec:      app.codec,
		Secrets:    secrets,
		Store:      app.primary,
		RateLimit:  app.rateLimitService,
		Revocation: app.revocationService,
		Sessions:   app.sessionService,
	}
	app.stepUpService = &service.StepUpService{
		Codec:     app.codec,
		Secrets:   secrets,
		RateLimit: app.rateLimitService,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.primary,
		app.fallback,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

func (app *Application) initHTTP() {
	secureCookie := app.cfg.ProductionPolicy || app.cfg.Env == "prod"

	app.router = httpapi.NewRouter(app.codec, BuildVersion, secureCookie, app.primary, app.logger)
	app.router.LoginService = app.loginService
	app.router.StepUpService = app.stepUpService
	app.router.RevocationService = app.revocationService
	app.router.SessionService = app.sessionService
	app.router.HousekeepingService = app.housekeepingService
	app.router.ApplyRoutes()

	app.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", app.cfg.Port),
		Handler: app.router,
	}
}
