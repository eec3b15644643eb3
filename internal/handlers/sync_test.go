package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"meetingtracker-be/internal/models"
	"meetingtracker-be/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSyncer struct {
	result *models.SyncResult
	err    error
}

func (f *fakeSyncer) Sync(context.Context) (*models.SyncResult, error) {
	return f.result, f.err
}

func syncRouter(syncer services.Syncer) *gin.Engine {
	h := NewSyncHandler(syncer)
	r := newRouter(admin())
	r.POST("/sync/sheets", h.SyncSheets)
	return r
}

func TestSyncSheets(t *testing.T) {
	r := syncRouter(&fakeSyncer{result: &models.SyncResult{RowsRead: 4, RowsSkipped: 1, MeetingsUpdated: 2}})

	w := perform(r, http.MethodPost, "/sync/sheets", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var res models.SyncResult
	decode(t, w, &res)
	assert.Equal(t, 4, res.RowsRead)
	assert.Equal(t, 2, res.MeetingsUpdated)
}

func TestSyncSheetsErrors(t *testing.T) {
	assert.Equal(t, http.StatusServiceUnavailable, perform(syncRouter(nil), http.MethodPost, "/sync/sheets", nil).Code)

	disabled := syncRouter(&fakeSyncer{err: services.ErrSheetsDisabled})
	assert.Equal(t, http.StatusServiceUnavailable, perform(disabled, http.MethodPost, "/sync/sheets", nil).Code)

	failing := syncRouter(&fakeSyncer{err: errors.New("quota exceeded")})
	assert.Equal(t, http.StatusBadGateway, perform(failing, http.MethodPost, "/sync/sheets", nil).Code)
}
