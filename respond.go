package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"therapy-cards/services"
)

// respondError übersetzt Servicefehler in HTTP-Antworten.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	var verr *services.ValidationError
	var serr *services.StorageError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "missing_columns": verr.Missing})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, services.ErrUnsupportedFormat), errors.Is(err, services.ErrInvalidFile):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &serr):
		log.Error("Speicherfehler", zap.String("op", serr.Op), zap.Error(serr.Err), zap.String("path", c.FullPath()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage error"})
	default:
		log.Error("Unerwarteter Fehler", zap.Error(err), zap.String("path", c.FullPath()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
