package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	cachecontrol "go.eigsys.de/gin-cachecontrol/v2"

	"framecheck/internal/controllers"
	"framecheck/internal/middleware"
)

// DefaultCatalogCacheAge is how long clients may cache catalog responses
const DefaultCatalogCacheAge = 5 * time.Minute

func RegisterAPIRoutes(r *gin.Engine, deps Dependencies) {
	api := r.Group("/api")
	if deps.Limiter != nil {
		api.Use(middleware.RateLimitMiddleware(deps.Limiter))
	}
	if deps.Auth != nil {
		api.Use(middleware.AuthMiddleware(deps.Auth, deps.SecurityLogger))
	}

	noStore := cachecontrol.New(cachecontrol.Config{
		NoStore:        true,
		NoCache:        true,
		MustRevalidate: true,
	})

	api.POST("/fps/estimate", noStore, controllers.EstimateFPS(deps.Estimator, deps.Catalog))
	api.POST("/compatibility", noStore, controllers.CheckCompatibility(deps.Scorer, deps.Catalog))
	api.GET("/history", noStore, controllers.GetEstimationHistory(deps.History))
	api.GET("/stats", noStore, controllers.GetStats(deps.Estimator, deps.Hub, deps.StartTime))

	games := api.Group("/games", catalogCacheHeaders(deps))
	{
		games.GET("", controllers.ListGames(deps.Catalog))
		games.GET("/:name", controllers.GetGame(deps.Catalog))
	}
}

// catalogCacheHeaders lets shared caches keep catalog responses unless
// they sit behind token auth
func catalogCacheHeaders(deps Dependencies) gin.HandlerFunc {
	if deps.Auth != nil {
		return cachecontrol.New(cachecontrol.Config{
			NoCache:        true,
			MustRevalidate: true,
		})
	}
	age := deps.CatalogCacheAge
	if age <= 0 {
		age = DefaultCatalogCacheAge
	}
	return cachecontrol.New(cachecontrol.Config{
		Public: true,
		MaxAge: cachecontrol.Duration(age),
	})
}
