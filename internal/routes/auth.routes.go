package routes

import (
	"github.com/gin-gonic/gin"

	"framecheck/internal/controllers"
	"framecheck/internal/middleware"
)

// RegisterAuthRoutes registers the live feed endpoint.
// Token generation must be done via CLI (no HTTP endpoints).
func RegisterAuthRoutes(r *gin.Engine, deps Dependencies) {
	if deps.Hub == nil {
		return
	}

	handlers := []gin.HandlerFunc{}
	if deps.Limiter != nil {
		handlers = append(handlers, middleware.RateLimitMiddleware(deps.Limiter))
	}
	handlers = append(handlers, controllers.HandleWebSocket(deps.Hub, deps.Auth, deps.SecurityLogger))

	r.GET("/ws", handlers...)
}
