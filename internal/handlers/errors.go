package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/approval_engine/internal/apperrors"
	"github.com/SscSPs/approval_engine/internal/dto"
	"github.com/SscSPs/approval_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

// respondError writes the JSON error body for err. Curated AppError messages
// and context are passed through; anything else is reported as fallback.
func respondError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	status := apperrors.StatusCode(err)
	body := dto.ErrorResponse{
		Error: fallback,
		Kind:  string(apperrors.Kind(err)),
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && status < http.StatusInternalServerError {
		body.Error = appErr.Message
		body.Context = appErr.Context
	} else if errors.As(err, &appErr) && appErr.Kind == apperrors.KindLedgerWrite {
		body.Context = appErr.Context
	}

	if status >= http.StatusInternalServerError {
		logger.Error(fallback, slog.String("error", err.Error()), slog.String("kind", body.Kind))
	} else {
		logger.Warn(fallback, slog.String("error", err.Error()), slog.String("kind", body.Kind))
	}
	if apperrors.IsRetryable(err) {
		c.Header("Retry-After", "1")
	}
	c.JSON(status, body)
}

// respondBindError reports a malformed body or query string.
func respondBindError(c *gin.Context, logger *slog.Logger, err error) {
	logger.Warn("Failed to bind request", slog.String("error", err.Error()))
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Error: "Invalid request format: " + err.Error(),
		Kind:  string(apperrors.KindValidation),
	})
}

// actorFromContext returns the authenticated user or writes a 401.
func actorFromContext(c *gin.Context, logger *slog.Logger) (string, bool) {
	actorID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Actor ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", false
	}
	return actorID, true
}
