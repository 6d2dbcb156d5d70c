package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"herdbook/internal/alerts"
	"herdbook/internal/auth"
	"herdbook/internal/config"
	"herdbook/internal/countdown"
	apierrors "herdbook/internal/errors"
	"herdbook/internal/exporter"
	"herdbook/internal/infrastructure"
	customMiddleware "herdbook/internal/middleware"
	"herdbook/internal/services"
	handlers "herdbook/internal/transport/http"
	"herdbook/pkg/contracts"
)

// AlertsPath is where the websocket countdown feed is mounted
const AlertsPath = "/api/alerts/ws"

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.BusinessMetrics
	ErrorHandler  *apierrors.ErrorHandler
	RoleChecker   auth.RoleChecker
	AlertsHub     *alerts.Hub
	Services      *ServiceContainer

	clock      countdown.Clock
	httpClient *http.Client
	listener   net.Listener
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Export    *services.ExportService
	Countdown *services.CountdownService
	Health    *services.HealthService
}

// Option customizes an Application before it is wired
type Option func(*Application)

// WithClock replaces the system clock used for classification
func WithClock(clock countdown.Clock) Option {
	return func(a *Application) { a.clock = clock }
}

// WithPaths replaces the executable-relative directory layout
func WithPaths(paths *config.Paths) Option {
	return func(a *Application) { a.Paths = paths }
}

// WithHTTPClient sets the client used for remote role lookups
func WithHTTPClient(client *http.Client) Option {
	return func(a *Application) { a.httpClient = client }
}

// WithListener serves on an existing listener instead of the configured port
func WithListener(l net.Listener) Option {
	return func(a *Application) { a.listener = l }
}

// NewApplication creates a new application instance with dependency injection
func NewApplication(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Application, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	a := &Application{
		Config: cfg,
		Logger: logger,
		clock:  countdown.SystemClock,
	}
	for _, opt := range opts {
		opt(a)
	}

	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", contracts.Version),
		slog.String("build", contracts.GetFullVersionString()))

	if a.Paths == nil {
		paths, err := cfg.ResolvePaths()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve paths: %w", err)
		}
		a.Paths = paths
	}
	if err := a.Paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}
	a.Paths.LogPathResolution(logger)

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	a.OTelProviders = otelProviders

	a.Metrics, err = infrastructure.CreateBusinessMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}

	if err := a.initializeServices(); err != nil {
		return nil, err
	}

	a.setupRouter()
	a.createServer()

	return a, nil
}

// initializeServices wires the role checker, the alerts hub and the services
func (a *Application) initializeServices() error {
	a.ErrorHandler = apierrors.NewErrorHandler(a.Logger, a.Config.Logging.Development)

	checker, err := auth.NewFromConfig(a.Config, a.httpClient, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to create role checker: %w", err)
	}
	a.RoleChecker = checker
	if checker == nil {
		a.Logger.Warn("Role checking disabled, exports are open to every caller")
	}

	if a.Config.Alerts.Enabled {
		a.AlertsHub = alerts.NewHub(alerts.OptionsFromConfig(a.Config), a.clock, a.Metrics, a.Logger)
	}

	exportService, err := services.NewExportService(a.Config.Export, a.Metrics, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to create export service: %w", err)
	}

	var hub services.AlertsHub
	if a.AlertsHub != nil {
		hub = a.AlertsHub
	}

	a.Services = &ServiceContainer{
		Export:    exportService,
		Countdown: services.NewCountdownService(a.clock, a.Metrics, a.Logger),
		Health:    services.NewHealthService(contracts.Version, a.Paths.ExportsDir, hub, a.Logger),
	}
	return nil
}

// setupRouter configures the HTTP router with all middleware and routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()
	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	// Middleware that does not wrap the ResponseWriter is safe for websockets
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	if a.AlertsHub != nil {
		r.HandleFunc(AlertsPath, a.AlertsHub.ServeWS)
	}

	r.Group(func(r chi.Router) {
		// RequestID → RealIP → OTel → Logger → Recoverer → Security → CORS → RateLimit → Timeout
		r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics).Handler)
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.ErrorHandler))
		r.Use(customMiddleware.SecurityHeaders)

		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(a.getCORSConfig()))
		}

		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
				a.ErrorHandler,
			).Handler)
		}

		if a.Config.Server.RequestTimeout > 0 {
			r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.ErrorHandler))
		}

		a.setupAPIRoutes(r)
	})

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", handlers.MetricsHandler(a.OTelProviders.PrometheusHTTP))
	}

	a.Router = r
}

// setupAPIRoutes mounts the handlers under /api
func (a *Application) setupAPIRoutes(r chi.Router) {
	validator := customMiddleware.NewValidator(a.Logger)
	guard := customMiddleware.NewRoleGuard(a.RoleChecker, a.ErrorHandler, a.Metrics, a.Logger)

	exportHandler := handlers.NewExportHandler(
		a.Services.Export,
		validator,
		exporter.NewFileSink(a.Paths.ExportsDir),
		a.ErrorHandler,
		a.Logger,
	)
	countdownHandler := handlers.NewCountdownHandler(a.Services.Countdown, validator, a.ErrorHandler, a.Logger)
	healthHandler := handlers.NewHealthHandler(a.Services.Health, a.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Mount("/health", healthHandler.Routes())
		r.Get("/version", healthHandler.Version)

		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.MaxBodySize(a.Config.Export.MaxBodyBytes))
			r.Use(guard.RequireRole(a.Config.Auth.ExportRole))
			r.Mount("/export", exportHandler.Routes())
		})

		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.MaxBodySize(a.Config.Export.MaxBodyBytes))
			r.Mount("/countdown", countdownHandler.Routes())
		})
	})
}

// getCORSConfig builds the CORS policy from the security section
func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	return customMiddleware.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-Request-ID",
			customMiddleware.UserIDHeader,
		},
		ExposedHeaders: []string{
			"Content-Disposition",
			"X-Request-ID",
		},
		AllowCredentials: true,
		MaxAge:           300,
		Logger:           a.Logger,
	}
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start runs the HTTP server and the alerts hub until ctx is cancelled or
// one of them fails, then shuts both down.
func (a *Application) Start(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	if a.AlertsHub != nil {
		g.Go(func() error {
			return a.AlertsHub.Run(gctx)
		})
	}

	g.Go(func() error {
		a.Logger.InfoContext(gctx, "HTTP server listening", slog.String("addr", a.Server.Addr))

		var err error
		if a.listener != nil {
			err = a.Server.Serve(a.listener)
		} else {
			err = a.Server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return a.Stop(infrastructure.DetachedContext(gctx))
	})

	return g.Wait()
}

// Stop gracefully stops the HTTP server and flushes telemetry
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return errors.Join(errs...)
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	err := a.Start(ctx)
	a.Logger.Info("Application stopped", slog.Duration("uptime", time.Since(start)))
	return err
}
