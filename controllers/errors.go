package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	logging "github.com/phillip/event-listing-go/logging"
	services "github.com/phillip/event-listing-go/services"
)

// respondError maps service errors onto HTTP responses.
func respondError(c *gin.Context, err error) {
	var (
		verr *services.ValidationError
		rerr *services.ReferenceError
		cerr *services.ConflictError
	)

	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "field": verr.Field})
	case errors.As(err, &rerr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": rerr.Error(), "field": rerr.Field})
	case errors.As(err, &cerr):
		c.JSON(http.StatusConflict, gin.H{"error": cerr.Error(), "field": cerr.Field})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
	default:
		_ = c.Error(err)
		logging.FromContext(c.Request.Context()).Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
