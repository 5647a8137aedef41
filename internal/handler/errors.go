// Package handler provides HTTP request handlers for the application.
package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bjjvault/video-gateway/internal/apperr"
	"github.com/bjjvault/video-gateway/internal/models"
	"github.com/bjjvault/video-gateway/pkg/logger"
)

// respondError maps err onto an ErrorResponse. Only the public message of
// storage and internal failures reaches the caller.
func respondError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	status := apperr.HTTPStatus(kind)

	fields := []zap.Field{
		zap.Error(err),
		zap.String("kind", string(kind)),
		zap.String("path", c.Request.URL.Path),
	}
	if status >= http.StatusInternalServerError {
		logger.Log.Error("Request failed", fields...)
	} else {
		logger.Log.Warn("Request rejected", fields...)
	}

	_ = c.Error(err)
	writeError(c, status, apperr.PublicMessage(err))
}

func writeError(c *gin.Context, status int, message string) {
	c.JSON(status, models.ErrorResponse{
		Timestamp: time.Now(),
		Status:    status,
		Error:     http.StatusText(status),
		Message:   message,
		Path:      c.Request.URL.Path,
	})
}
