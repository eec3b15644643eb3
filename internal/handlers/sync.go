package handlers

import (
	"errors"
	"net/http"

	"meetingtracker-be/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type SyncHandler struct {
	syncer services.Syncer
}

// NewSyncHandler accepts a nil syncer when no spreadsheet is configured.
func NewSyncHandler(syncer services.Syncer) *SyncHandler {
	return &SyncHandler{syncer: syncer}
}

// SyncSheets imports the legacy attendance spreadsheet.
// @Summary Import the legacy attendance sheet
// @Tags sync
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.SyncResult
// @Failure 502 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /sync/sheets [post]
func (h *SyncHandler) SyncSheets(c *gin.Context) {
	if h.syncer == nil {
		respondError(c, http.StatusServiceUnavailable, "sheets_disabled", services.ErrSheetsDisabled.Error())
		return
	}
	// Imports can outlast the per-request store timeout.
	result, err := h.syncer.Sync(c.Request.Context())
	if errors.Is(err, services.ErrSheetsDisabled) {
		respondError(c, http.StatusServiceUnavailable, "sheets_disabled", err.Error())
		return
	}
	if err != nil {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("sheets import failed")
		respondError(c, http.StatusBadGateway, "sync_failed", "Failed to import the attendance sheet")
		return
	}
	c.JSON(http.StatusOK, result)
}
