package routes

import (
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"framecheck/internal/middleware"
	"framecheck/internal/services"
)

// Dependencies are the wired services the HTTP layer serves
type Dependencies struct {
	Estimator      *services.EstimationService
	Scorer         *services.CompatibilityScorer
	Catalog        services.GameCatalog
	History        *services.EstimationHistory
	Hub            *services.WebSocketHub
	Auth           *services.AuthService // nil disables token checks
	Telemetry      *services.Telemetry
	Limiter        *middleware.RateLimiter
	SecurityLogger *middleware.SecurityLogger

	AllowedOrigins    []string
	MetricsAllowedIPs []string
	CatalogCacheAge   time.Duration
	StartTime         time.Time
}

// NewRouter builds the engine with the middleware chain and every route group
func NewRouter(deps Dependencies) *gin.Engine {
	r := gin.New()

	r.Use(middleware.RecoveryMiddleware())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.AccessLogMiddleware())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.CORSMiddleware(deps.AllowedOrigins))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/ws"})))

	RegisterAPIRoutes(r, deps)
	RegisterAuthRoutes(r, deps)
	RegisterMonitorRoutes(r, deps)

	return r
}
