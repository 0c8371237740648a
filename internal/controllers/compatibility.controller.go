package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"framecheck/internal/models"
	"framecheck/internal/services"
)

// CheckCompatibility handles POST /api/compatibility. Embedded games and
// catalog names may be mixed; embedded games are scored first.
func CheckCompatibility(scorer *services.CompatibilityScorer, catalog services.GameCatalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.CompatibilityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body", err)
			return
		}

		games := req.Games
		if len(req.GameNames) > 0 {
			if catalog == nil {
				badRequest(c, "game catalog not available", nil)
				return
			}
			resolved, err := services.ResolveRequirements(catalog, req.GameNames)
			if err != nil {
				writeError(c, err)
				return
			}
			games = append(games, resolved...)
		}

		c.JSON(http.StatusOK, scorer.Score(req.System, games, req.Resolution, req.Quality, req.TargetFPS))
	}
}
