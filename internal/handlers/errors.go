package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sagabat/transaction-manage/internal/apperrors"
	"github.com/sagabat/transaction-manage/internal/middleware"
)

// statusFor maps an error kind to its HTTP status.
func statusFor(kind string) int {
	switch kind {
	case apperrors.KindInvalidToken, apperrors.KindTokenExpired, apperrors.KindValidation:
		return http.StatusBadRequest
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindDuplicate:
		return http.StatusConflict
	case apperrors.KindInvalidTransaction, apperrors.KindInsufficientBalance:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// respondError writes the {"error", "code"} body for err. Internal failures
// are logged and answered with a generic message.
func respondError(c *gin.Context, err error, fallback string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	kind := apperrors.Kind(err)
	status := statusFor(kind)

	if status == http.StatusInternalServerError {
		logger.Error(fallback, slog.String("error", err.Error()))
		msg := fallback
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Message != "" {
			msg = appErr.Message
		}
		c.JSON(status, gin.H{"error": msg, "code": kind})
		return
	}

	logger.Warn("Request rejected", slog.String("code", kind), slog.String("error", err.Error()))
	c.JSON(status, gin.H{"error": err.Error(), "code": kind})
}

// respondBindError answers a request whose body or query failed binding.
func respondBindError(c *gin.Context, err error) {
	middleware.GetLoggerFromCtx(c.Request.Context()).Warn("Failed to bind request", slog.String("error", err.Error()))
	c.JSON(http.StatusBadRequest, gin.H{
		"error": "Invalid request format: " + err.Error(),
		"code":  apperrors.KindValidation,
	})
}
