package controllers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"framecheck/internal/models"
	"framecheck/internal/services"
	"framecheck/internal/util"
)

// EstimateFPS handles POST /api/fps/estimate. A game sent without
// fpsProfiles is looked up in the catalog by name.
func EstimateFPS(estimator *services.EstimationService, catalog services.GameCatalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.EstimationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body", err)
			return
		}

		if len(req.Game.FpsProfiles) == 0 && catalog != nil {
			if game, ok := catalog.Game(req.Game.Name); ok {
				req.Game = game.FpsProfile()
			}
		}

		est, err := estimator.Estimate(c.Request.Context(), req)
		if err != nil {
			writeError(c, err)
			return
		}

		log.Printf("[ESTIMATE] [request_id=%s] %s %s/%s -> %d fps (%s)",
			util.RequestID(c.Request.Context()), req.Game.Name, req.Resolution, req.Quality, est.FPS, est.Source)
		c.JSON(http.StatusOK, est.Response())
	}
}
