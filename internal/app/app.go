package app

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"nsecli/internal/config"
	"nsecli/internal/errors"
	"nsecli/internal/hostcsv"
	"nsecli/internal/infrastructure"
	customMiddleware "nsecli/internal/middleware"
	"nsecli/internal/services"
	handlers "nsecli/internal/transport/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

const (
	VERSION = "v1.2.0"
	AppName = "NSE CSV Relay"
)

var (
	// BuildTime is set at compile time
	BuildTime = time.Now().Format(time.RFC3339)
	// BuildID is a unique identifier for this build
	BuildID = generateBuildID()
)

func generateBuildID() string {
	// Deterministic build ID based on version and build date
	h := sha256.New()
	h.Write([]byte(VERSION))
	h.Write([]byte(time.Now().Format("2006-01-02")))
	return fmt.Sprintf("%x", h.Sum(nil))[:12]
}

// Application represents the relay server container
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Router        *chi.Mux
	Server        *http.Server
	Host          *hostcsv.Client
	RelayService  *services.RelayService
	HealthService *services.HealthService
	Metrics       *infrastructure.Metrics
	Logger        *slog.Logger
}

// NewApplication creates a new application instance with dependency injection
func NewApplication() (*Application, error) {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize the single infrastructure logger
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", VERSION))

	// Validate and log all paths at startup for debugging
	paths, err := config.GetPaths()
	if err != nil {
		return nil, fmt.Errorf("failed to get paths: %w", err)
	}

	logger.Info("Ensuring required directories exist")
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	paths.LogPathResolution()

	// Missing hosting credentials are non-fatal here; readiness reports
	// them and uploads fail upstream until they are configured.
	if err := cfg.ValidateRelay(); err != nil {
		logger.Warn("Hosting service credentials incomplete",
			slog.String("error", err.Error()),
			slog.String("action", "Set NSE_RELAY_API_KEY and NSE_RELAY_TEMPLATE_ID"))
	}

	// Create application
	app := &Application{
		Config:  cfg,
		Paths:   paths,
		Metrics: infrastructure.NewMetrics(),
		Logger:  logger,
	}

	// Initialize services in order
	app.initializeServices()

	// Setup router
	app.setupRouter()

	// Create HTTP server
	app.createServer()

	return app, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices() {
	a.Host = hostcsv.New(a.Config.Relay, a.Logger)
	a.RelayService = services.NewRelayService(a.Host, a.Metrics, a.Logger)
	a.HealthService = services.NewHealthService(VERSION, BuildTime, BuildID, a.Config, a.Paths, a.Logger)
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// Ordering: RequestID -> RealIP -> Metrics -> Logger -> Recoverer
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.Metrics(a.Metrics))
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.Logger))
	r.Use(customMiddleware.SecurityHeaders)
	r.Use(customMiddleware.CORS(a.getCORSConfig()))

	// Rate limiting
	if a.Config.Security.RateLimit.Enabled {
		r.Use(customMiddleware.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.Logger,
		).Handler)
	}

	errorHandler := errors.NewErrorHandler(a.Logger, a.Config.Logging.Development)
	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	// Relay endpoints sit at the server root so existing sheet clients
	// keep their /update-data and /get-data paths.
	r.Group(func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		// The request deadline must outlast the hosting-service client
		// timeout so an upstream stall surfaces as 502, not 504.
		r.Use(customMiddleware.Timeout(a.Config.Relay.Timeout+5*time.Second, a.Logger))

		relayHandler := handlers.NewRelayHandler(a.RelayService, a.Logger, errorHandler)
		relayHandler.RegisterRoutes(r)
	})

	a.setupAPIRoutes(r)

	// Prometheus exposition outside the timeout and content-type groups
	r.Handle("/metrics", a.Metrics.Handler())

	a.Router = r
}

// setupAPIRoutes configures the health and version endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(customMiddleware.Timeout(a.Config.Server.ReadTimeout, a.Logger))

		healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/health/ready", healthHandler.ReadinessCheck)
		r.Get("/health/live", healthHandler.LivenessCheck)
		r.Get("/version", healthHandler.Version)
	})
}

// getCORSConfig returns the CORS configuration for the relay surface
func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	corsConfig := customMiddleware.CORSConfig{
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"X-Request-ID",
			"X-Requested-With",
		},
		ExposedHeaders: []string{
			"X-Request-ID",
		},
		AllowCredentials: true,
		MaxAge:           300,
		Logger:           a.Logger,
	}

	corsConfig.AllowedOrigins = []string{
		fmt.Sprintf("http://localhost:%d", a.Config.Server.Port),
		fmt.Sprintf("http://127.0.0.1:%d", a.Config.Server.Port),
	}
	if a.Config.Security.EnableCORS && len(a.Config.Security.AllowedOrigins) > 0 {
		corsConfig.AllowedOrigins = append(corsConfig.AllowedOrigins, a.Config.Security.AllowedOrigins...)
	}

	a.Logger.Info("CORS configured",
		slog.Any("allowed_origins", corsConfig.AllowedOrigins))

	return corsConfig
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

// Start starts the application
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", AppName),
		slog.String("version", VERSION),
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level))

	a.Logger.InfoContext(ctx, "Application paths",
		slog.String("executable_dir", a.Paths.ExecutableDir),
		slog.String("data_dir", a.Paths.DataDir),
		slog.String("logs_dir", a.Paths.LogsDir))

	// Start server
	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			// Signal shutdown through context instead of os.Exit
			cancel()
		}
	}()

	// Perform health check on critical paths
	if err := a.performStartupHealthCheck(ctx); err != nil {
		a.Logger.WarnContext(ctx, "Startup health check warnings", slog.String("warnings", err.Error()))
	}

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))

	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	// Stop server
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")

	// Release the log file handle after the shutdown record is written
	infrastructure.CloseLogFile()

	return nil
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Start application
	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	// Wait for interrupt or server failure
	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal")
		// Graceful shutdown
		return a.Stop(context.Background())
	case <-ctx.Done():
		// ListenAndServe failed and cancelled the context
		a.Stop(context.Background())
		return fmt.Errorf("server terminated unexpectedly")
	}
}

// performStartupHealthCheck verifies critical directories are writable
func (a *Application) performStartupHealthCheck(ctx context.Context) error {
	var warnings []string

	directories := map[string]string{
		"Data":      a.Paths.DataDir,
		"Downloads": a.Paths.DownloadsDir,
		"Logs":      a.Paths.LogsDir,
	}

	for name, dir := range directories {
		// Try to create a test file to verify write access
		testFile := filepath.Join(dir, ".write_test")
		if err := os.WriteFile(testFile, []byte("test"), 0644); err != nil {
			warnings = append(warnings, fmt.Sprintf("%s directory not writable: %s", name, dir))
		} else {
			os.Remove(testFile)
		}
	}

	if len(warnings) > 0 {
		return fmt.Errorf("startup health check warnings: %s", strings.Join(warnings, "; "))
	}

	a.Logger.InfoContext(ctx, "Startup health check passed")
	return nil
}
