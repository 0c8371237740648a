package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"framecheck/internal/config"
	"framecheck/internal/middleware"
	"framecheck/internal/models"
	"framecheck/internal/routes"
	"framecheck/internal/services"
)

const (
	shutdownTimeout        = 10 * time.Second
	limiterCleanupInterval = 5 * time.Minute
)

func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the estimation HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

// serve runs the HTTP server until ctx is cancelled, then drains it
func serve(ctx context.Context, cfg *config.Config) error {
	gin.SetMode(cfg.GinMode)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	deps, err := buildDependencies(ctx, cfg)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           routes.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[HTTP] Server starting on http://localhost:%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen on :%s: %w", cfg.Port, err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Printf("[HTTP] Shutdown signal received, shutting down server gracefully...")
	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[HTTP] Server shutdown: %v", err)
	}
	log.Printf("[HTTP] Server shutdown complete")
	return nil
}

// buildDependencies wires the engine. Background workers stop with ctx.
func buildDependencies(ctx context.Context, cfg *config.Config) (routes.Dependencies, error) {
	telemetry := services.NewTelemetry()

	catalog, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		return routes.Dependencies{}, err
	}

	cache := services.NewMemoryCache(cfg.CacheTTL,
		services.WithMaxEntries(cfg.CacheMaxEntries),
		services.WithCacheTelemetry(telemetry))
	cache.StartSweeper(ctx, cfg.CacheSweepInterval)

	history := services.NewEstimationHistory(cfg.HistorySize)

	// The hub pushes engine stats and the engine pushes events to the hub.
	var estimator *services.EstimationService
	hub := services.NewWebSocketHub(services.StatsFunc(func() models.EngineStats {
		return estimator.Stats()
	}), cfg.StatsInterval)
	estimator = newEstimator(cfg, cache, telemetry, history, hub)
	go hub.Run(ctx)

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	limiter.StartCleanup(ctx, limiterCleanupInterval, cfg.RateLimiterTTL)

	var auth *services.AuthService
	if cfg.AuthEnabled {
		auth = services.NewAuthService(cfg.AuthSecret, cfg.TokenExpiry)
		log.Printf("[SECURITY] Token auth enabled for /api and /ws")
	}

	return routes.Dependencies{
		Estimator:         estimator,
		Scorer:            services.NewCompatibilityScorer(telemetry),
		Catalog:           catalog,
		History:           history,
		Hub:               hub,
		Auth:              auth,
		Telemetry:         telemetry,
		Limiter:           limiter,
		SecurityLogger:    middleware.NewSecurityLogger(),
		AllowedOrigins:    cfg.AllowedOrigins,
		MetricsAllowedIPs: cfg.MetricsAllowedIPs,
		StartTime:         time.Now(),
	}, nil
}

// newEstimator attaches the Gemini provider only when a key is configured
func newEstimator(cfg *config.Config, cache services.FPSCache, telemetry *services.Telemetry, observers ...services.EstimationObserver) *services.EstimationService {
	opts := []services.EstimationOption{
		services.WithCoalescing(cfg.CoalesceRequests),
		services.WithTelemetry(telemetry),
		services.WithObservers(observers...),
	}
	if cfg.ProviderConfigured() {
		opts = append(opts, services.WithProvider(services.NewGeminiClient(services.GeminiConfig{
			APIKey:  cfg.ProviderAPIKey,
			URL:     cfg.ProviderURL,
			Timeout: cfg.ProviderTimeout,
		}, telemetry)))
		log.Printf("[PROVIDER] Gemini provider configured")
	} else {
		log.Printf("[PROVIDER] GEMINI_API_KEY not set, estimates are computed locally")
	}
	return services.NewEstimationService(cache, opts...)
}

// loadCatalog tolerates a missing file; a malformed one is an error
func loadCatalog(path string) (*services.Catalog, error) {
	catalog, err := services.LoadCatalog(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Printf("[CATALOG] %s not found, continuing without a game catalog", path)
		return services.NewCatalog(nil), nil
	}
	return catalog, err
}
