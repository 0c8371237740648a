package controllers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"framecheck/internal/models"
	"framecheck/internal/services"
	"framecheck/internal/util"
)

// writeError maps service errors onto HTTP statuses and the JSON error shape
func writeError(c *gin.Context, err error) {
	var verr *services.ValidationError
	var perr *services.ProviderError

	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
	case errors.Is(err, services.ErrGameNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: err.Error()})
	case errors.As(err, &perr):
		c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Error:          "provider error",
			ProviderStatus: perr.Status,
			Detail:         perr.Body,
		})
	default:
		log.Printf("[HTTP] [request_id=%s] Unexpected error: %v", util.RequestID(c.Request.Context()), err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "internal error", Detail: err.Error()})
	}
}

func badRequest(c *gin.Context, msg string, err error) {
	resp := models.ErrorResponse{Error: msg}
	if err != nil {
		resp.Detail = err.Error()
	}
	c.JSON(http.StatusBadRequest, resp)
}
