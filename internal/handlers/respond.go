package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/birukt/bank_ledger_app/internal/apperrors"
	"github.com/gin-gonic/gin"
)

// statusFromError maps the application error taxonomy to HTTP status codes.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrValidation), errors.Is(err, apperrors.ErrSelfTransfer):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrDuplicate),
		errors.Is(err, apperrors.ErrConflict),
		errors.Is(err, apperrors.ErrNonZeroBalance):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// respondWithError writes the error as JSON. Internal errors are logged at
// error level and the detail is withheld from the client.
func respondWithError(c *gin.Context, logger *slog.Logger, err error) {
	status := statusFromError(err)
	if status == http.StatusInternalServerError {
		logger.Error("Internal error handling request", slog.String("error", err.Error()))
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	logger.Warn("Request failed", slog.Int("status", status), slog.String("error", err.Error()))
	c.JSON(status, gin.H{"error": err.Error()})
}
