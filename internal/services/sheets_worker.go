package services

import (
	"context"
	"time"

	"meetingtracker-be/internal/models"

	"github.com/rs/zerolog/log"
)

// Syncer runs one import.
type Syncer interface {
	Sync(ctx context.Context) (*models.SyncResult, error)
}

// StartSheetsSyncWorker starts a background goroutine that re-imports the
// legacy sheet every interval. The worker stops when ctx is done.
func StartSheetsSyncWorker(ctx context.Context, interval time.Duration, syncer Syncer) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("sheets sync worker: shutting down")
				return
			case <-ticker.C:
				runCtx, cancel := context.WithTimeout(ctx, interval)
				if _, err := syncer.Sync(runCtx); err != nil {
					log.Error().Err(err).Msg("sheets sync worker: import failed")
				}
				cancel()
			}
		}
	}()
}
