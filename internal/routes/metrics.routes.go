package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"framecheck/internal/controllers"
	"framecheck/internal/middleware"
)

func RegisterMonitorRoutes(r *gin.Engine, deps Dependencies) {
	r.GET("/healthz", controllers.Healthz(deps.Estimator, deps.Catalog, deps.StartTime))

	if registry := deps.Telemetry.Registry(); registry != nil {
		handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
		r.GET("/metrics",
			middleware.IPWhitelistMiddleware(middleware.NewIPWhitelist(deps.MetricsAllowedIPs)),
			gin.WrapH(handler))
	}
}
