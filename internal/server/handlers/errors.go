package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/prasertw/voltbook/internal/repository"
	"github.com/prasertw/voltbook/internal/service/billing"
	"github.com/prasertw/voltbook/internal/service/users"
)

// writeError maps the service error taxonomy onto HTTP responses. Store
// failures come back as 502 so the client knows a retry may help; everything
// unexpected stays a generic 500.
func writeError(c *gin.Context, logger *zap.Logger, err error) {
	var dup *billing.DuplicateError
	var invalid *billing.ValidationError

	switch {
	case errors.As(err, &dup):
		c.JSON(http.StatusConflict, gin.H{"error": dup.Error()})
	case errors.As(err, &invalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": invalid.Error()})
	case errors.Is(err, users.ErrInvalidRole):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, repository.ErrUnavailable):
		logger.Error("store unavailable", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "storage unavailable, please retry"})
	default:
		logger.Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
