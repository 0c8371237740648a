package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"framecheck/internal/models"
	"framecheck/internal/services"
)

// GetEstimationHistory returns the recent estimation outcomes
// Query params: duration=5m|10m|1h|24h (default: 10m), 0 for the whole window
func GetEstimationHistory(history *services.EstimationHistory) gin.HandlerFunc {
	return func(c *gin.Context) {
		durationStr := c.DefaultQuery("duration", "10m")

		duration, err := time.ParseDuration(durationStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid duration format"})
			return
		}

		data := history.Recent(duration)
		c.JSON(http.StatusOK, gin.H{
			"duration": durationStr,
			"count":    len(data),
			"data":     data,
		})
	}
}
