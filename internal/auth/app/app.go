package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cobrax/tenauth/internal/auth/audit"
	httpapi "github.com/cobrax/tenauth/internal/auth/http"
	"github.com/cobrax/tenauth/internal/auth/metrics"
	"github.com/cobrax/tenauth/internal/auth/service"
	"github.com/cobrax/tenauth/internal/auth/store"
	"github.com/cobrax/tenauth/internal/auth/store/drivers/sqlite"
	"github.com/cobrax/tenauth/pkg/httpx"
	"github.com/cobrax/tenauth/pkg/jwtx"
	"github.com/cobrax/tenauth/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application wires the token service and its dependencies into a runnable
// HTTP server.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db      store.Store
	signer  jwtx.Signer
	keys    *jwtx.KeySet
	auditor *audit.Recorder
	metrics *metrics.Metrics

	tokenService        *service.TokenService
	membershipService   *service.MembershipService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "tenauth",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	signer, keys, err := InitSigningKeys(cfg, app.logger)
	if err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.signer = signer
	app.keys = keys

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("tenauth starting", "port", app.cfg.Port, "version", BuildVersion)

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
	app.logger.Info("shutting down tenauth...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	// Drain buffered security events before the database goes away.
	app.auditor.Close()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("tenauth stopped")
	return nil
}

// initDatabase initializes the database and applies migrations.
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initServices initializes the business logic services.
func (app *Application) initServices() {
	auditOpts := []audit.RecorderOption{audit.WithLogger(app.logger)}
	if app.cfg.AuditBufferLen > 0 {
		auditOpts = append(auditOpts, audit.WithAsyncBuffer(app.cfg.AuditBufferLen))
	}
	app.auditor = audit.NewRecorder(app.db.SecurityEvents(), auditOpts...)
	app.metrics = metrics.New()

	app.tokenService = &service.TokenService{
		Signer:     app.signer,
		Verifier:   jwtx.NewCommonEdDSA(app.keys, app.cfg.Issuer),
		Store:      app.db,
		Audit:      app.auditor,
		Metrics:    app.metrics,
		Issuer:     app.cfg.Issuer,
		AccessTTL:  app.cfg.AccessTokenTTL,
		RefreshTTL: app.cfg.RefreshTokenTTL,
	}

	app.membershipService = &service.MembershipService{
		Store: app.db,
		Audit: app.auditor,
	}
}

// initHTTP initializes the HTTP router, server, and housekeeping.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(app.keys, BuildVersion, app.db, app.logger)

	router.TokenService = app.tokenService
	router.MembershipService = app.membershipService
	router.Metrics = app.metrics
	router.Audit = app.auditor
	router.AdminKeyHash = app.cfg.AdminKeyHash
	router.SecureCookies = app.cfg.SecureCookies
	router.RateLimits = httpapi.RateLimits{
		Exchange: app.cfg.ExchangeLimit,
		Validate: app.cfg.ValidateLimit,
		Refresh:  app.cfg.RefreshLimit,
	}
	router.CORS = httpx.CORSConfig{
		AllowedOrigins: app.cfg.CORSOrigins,
		AllowLocalhost: app.cfg.Env == "dev",
	}
	router.ApplyRoutes()

	app.router = router

	// Limiter windows accumulate stale entries; sweep them alongside the
	// database cleanup.
	sweepers := make([]service.Sweeper, 0, 3)
	for _, l := range router.Limiters() {
		sweepers = append(sweepers, l)
	}
	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
		app.cfg.EventRetention,
		sweepers...,
	)

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
