package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"meetingtracker-be/internal/attendance"
	"meetingtracker-be/internal/models"
	"meetingtracker-be/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const defaultTimeout = 5 * time.Second

func respondError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, models.ErrorResponse{Error: code, Message: message})
}

// respondStoreError maps repository errors onto HTTP responses.
func respondStoreError(c *gin.Context, err error, what string) {
	var dateErr *attendance.InvalidDateError
	switch {
	case errors.Is(err, repository.ErrNotFound):
		respondError(c, http.StatusNotFound, "not_found", what+" not found")
	case errors.Is(err, repository.ErrInvalidID):
		respondError(c, http.StatusBadRequest, "invalid_id", "Invalid "+what+" id")
	case errors.Is(err, repository.ErrDuplicate):
		respondError(c, http.StatusConflict, "duplicate", what+" already exists")
	case errors.As(err, &dateErr):
		respondError(c, http.StatusBadRequest, "invalid_date", dateErr.Error())
	default:
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Str("entity", what).Msg("store error")
		respondError(c, http.StatusInternalServerError, "server_error", "Failed to process "+what)
	}
}

func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
		return false
	}
	return true
}

func withTimeout(c *gin.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return context.WithTimeout(c.Request.Context(), timeout)
}
