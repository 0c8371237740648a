package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"framecheck/internal/models"
	"framecheck/internal/services"
)

func ListGames(catalog services.GameCatalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		games := catalog.Games()
		c.JSON(http.StatusOK, gin.H{
			"count": len(games),
			"games": games,
		})
	}
}

func GetGame(catalog services.GameCatalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		game, ok := catalog.Game(c.Param("name"))
		if !ok {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "game not found"})
			return
		}
		c.JSON(http.StatusOK, game)
	}
}
