package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/hlsrec/hls-recommender-go/internal/models"
	"github.com/hlsrec/hls-recommender-go/internal/service"
	"github.com/hlsrec/hls-recommender-go/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func respondError(c *gin.Context, status int, message string, details map[string]interface{}) {
	c.JSON(status, models.ErrorResponse{
		Status:    status,
		Error:     http.StatusText(status),
		Message:   message,
		Timestamp: time.Now(),
		Path:      c.Request.URL.Path,
		Details:   details,
	})
}

func badRequest(c *gin.Context, message string) {
	logger.Log.Warn("Bad request",
		zap.String("message", message),
		zap.String("path", c.Request.URL.Path),
	)
	respondError(c, http.StatusBadRequest, message, nil)
}

// handleError maps service errors to HTTP responses.
func handleError(c *gin.Context, err error) {
	var (
		validationErr *service.ValidationError
		notFoundErr   *service.NotFoundError
		conflictErr   *service.ConflictError
		transcodeErr  *service.TranscodeError
		processingErr *service.ProcessingError
	)

	switch {
	case errors.As(err, &validationErr):
		logger.Log.Warn("Validation error",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
		)
		respondError(c, http.StatusBadRequest, validationErr.Message, nil)
	case errors.As(err, &notFoundErr):
		respondError(c, http.StatusNotFound, notFoundErr.Error(), map[string]interface{}{
			"resource": notFoundErr.Resource,
			"id":       notFoundErr.ID,
		})
	case errors.As(err, &conflictErr):
		respondError(c, http.StatusConflict, conflictErr.Message, nil)
	case errors.As(err, &transcodeErr):
		logger.Log.Warn("Transcode error",
			zap.String("path", c.Request.URL.Path),
			zap.String("diagnostics", transcodeErr.Diagnostics),
		)
		respondError(c, http.StatusUnprocessableEntity, transcodeErr.Error(), map[string]interface{}{
			"diagnostics": transcodeErr.Diagnostics,
		})
	case errors.As(err, &processingErr):
		logger.Log.Error("Processing error",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
		)
		respondError(c, http.StatusInternalServerError, "Failed to process request", nil)
	default:
		logger.Log.Error("Unexpected error",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
		)
		respondError(c, http.StatusInternalServerError, "An unexpected error occurred", nil)
	}
}
