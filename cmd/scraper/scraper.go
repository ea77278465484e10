package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/duksosleepy/scraper/internal/admission"
	"github.com/duksosleepy/scraper/internal/api"
	"github.com/duksosleepy/scraper/internal/config"
	"github.com/duksosleepy/scraper/internal/fetch"
	"github.com/duksosleepy/scraper/internal/identity"
	"github.com/duksosleepy/scraper/internal/logger"
	"github.com/duksosleepy/scraper/internal/observability"
	"github.com/duksosleepy/scraper/internal/ratelimit"
	"github.com/duksosleepy/scraper/internal/scrape"
	"github.com/duksosleepy/scraper/internal/storage"
	"github.com/duksosleepy/scraper/internal/version"
)

var (
	configFile  = flag.String("config", "", "Path to configuration file")
	showVersion = flag.Bool("version", false, "Print version information and exit")
)

func main() {
	flag.Parse()

	ver := version.GetInfo()
	if *showVersion {
		fmt.Println(ver.String())
		os.Exit(0)
	}

	// Load configuration
	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Initialize structured logging
	log, closer, err := logger.Setup(cfg.Logging, ver)
	if err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		os.Exit(1)
	}
	if closer != nil {
		defer closer.Close()
	}
	slog.SetDefault(log)

	// Initialize observability (OpenTelemetry)
	otelProvider, err := observability.Setup(cfg.Metrics, cfg.Observability, ver)
	if err != nil {
		slog.Error("Failed to initialize observability", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := otelProvider.Shutdown(shutdownCtx); err != nil {
			slog.Error("Failed to shutdown observability", "error", err)
		}
	}()

	// Initialize storage
	storageInstance, err := storage.NewFactory().Create(cfg.Storage)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer storageInstance.Close()

	// Wrap storage with instrumentation if metrics are enabled
	var activeStorage storage.Storage = storageInstance
	if cfg.Metrics.Enabled {
		instrumented, err := observability.NewInstrumentedStorage(storageInstance)
		if err != nil {
			slog.Error("Failed to create instrumented storage", "error", err)
			os.Exit(1)
		}
		activeStorage = instrumented
	}

	// Initialize credential store and seed configured bindings
	creds := identity.NewStore(cfg.Security.DefaultToken, cfg.Security.UniqueTokens)
	creds.Seed(cfg.Security.SeedBindings)

	// Initialize rate limiter if enabled
	var limiter ratelimit.Limiter
	if cfg.Security.RateLimit.Enabled {
		rlCfg := cfg.Security.RateLimit
		memLimiter := ratelimit.NewMemoryLimiter(rlCfg.MaxRequests, rlCfg.Window, rlCfg.CleanupInterval)
		defer memLimiter.Close()
		limiter = memLimiter
	}

	gate := admission.NewGate(limiter, creds, slog.Default())

	// Initialize the scrape service
	fetcher := fetch.NewHTTPFetcher(cfg.Fetcher.Timeout, cfg.Fetcher.UserAgents)
	scrapeService := scrape.NewService(activeStorage, fetcher,
		scrape.WithLogger(slog.Default()),
	)

	// Wrap the scrape service with instrumentation if metrics are enabled
	var activeScraper scrape.ServiceInterface = scrapeService
	if cfg.Metrics.Enabled {
		instrumented, err := observability.NewInstrumentedScraper(scrapeService)
		if err != nil {
			slog.Error("Failed to create instrumented scraper", "error", err)
			os.Exit(1)
		}
		activeScraper = instrumented
	}

	// Initialize HTTP handlers with storage for health checks
	handlers := api.NewHandlers(activeScraper, api.WithStorage(activeStorage))

	// Setup routes with middleware
	routeOpts := []api.RouteOption{}
	if cfg.Observability.Tracing.Enabled {
		routeOpts = append(routeOpts, api.WithOTelMiddleware(cfg.Observability.ServiceName))
	}

	router := api.SetupRoutes(handlers, gate, routeOpts...)

	// Start metrics server if enabled
	var metricsServer *observability.MetricsServer
	if cfg.Metrics.Enabled {
		metricsServer = observability.NewMetricsServer(cfg.Metrics.Port, cfg.Metrics.Path, otelProvider)
		go func() {
			if err := metricsServer.Start(); err != nil && err != http.ErrServerClosed {
				slog.Error("Metrics server failed", "error", err)
			}
		}()
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in a goroutine
	go func() {
		slog.Info("Starting server", "addr", server.Addr)

		var err error
		if cfg.Server.TLSEnabled {
			if cfg.Server.TLSCertFile == "" || cfg.Server.TLSKeyFile == "" {
				slog.Error("TLS is enabled but cert file or key file is not specified")
				os.Exit(1)
			}
			slog.Info("Starting HTTPS server with TLS")
			err = server.ListenAndServeTLS(cfg.Server.TLSCertFile, cfg.Server.TLSKeyFile)
		} else {
			slog.Info("Starting HTTP server")
			err = server.ListenAndServe()
		}

		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server")

	// Create a deadline to wait for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown metrics server
	if metricsServer != nil {
		if err := metricsServer.Shutdown(ctx); err != nil {
			slog.Error("Metrics server forced to shutdown", "error", err)
		}
	}

	// Attempt graceful shutdown
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("Server shutdown complete")
}
