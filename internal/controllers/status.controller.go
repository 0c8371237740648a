package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"framecheck/internal/services"
	"framecheck/internal/util"
)

// GetStats returns the engine counters together with feed and uptime details
func GetStats(estimator *services.EstimationService, hub *services.WebSocketHub, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		clients := 0
		if hub != nil {
			clients = hub.ClientCount()
		}
		c.JSON(http.StatusOK, gin.H{
			"engine":     estimator.Stats(),
			"ws_clients": clients,
			"uptime":     util.FormatUptime(time.Since(startTime)),
		})
	}
}

func Healthz(estimator *services.EstimationService, catalog services.GameCatalog, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		games := 0
		if catalog != nil {
			games = len(catalog.Games())
		}
		c.JSON(http.StatusOK, gin.H{
			"status":              "ok",
			"uptime":              util.FormatUptime(time.Since(startTime)),
			"provider_configured": estimator.ProviderConfigured(),
			"catalog_games":       games,
			"cache_entries":       estimator.Stats().CacheEntries,
		})
	}
}
