// Command admin is the operator CLI. It works against the database directly.
package main

import (
	"context"
	"fmt"
	"os"

	"meetingtracker-be/config"
	"meetingtracker-be/internal/database"
	"meetingtracker-be/internal/logger"
	"meetingtracker-be/internal/repository"
	"meetingtracker-be/internal/services"

	"github.com/rs/zerolog/log"
	"golang.org/x/term"
)

func main() {
	cmd := newRootCommand(openDeps)
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openDeps connects to MongoDB and builds the production dependencies.
func openDeps(ctx context.Context) (*adminDeps, func(), error) {
	cfg := config.Load()
	appLog := logger.Setup(cfg.LogLevel, cfg.LogFormat, "meetingtracker-admin")

	mongodb, err := database.NewMongoDB(cfg.MongoDBURI, cfg.MongoDBDatabase)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to MongoDB: %w", err)
	}
	closeFn := func() {
		if err := mongodb.Disconnect(); err != nil {
			log.Warn().Err(err).Msg("disconnect from MongoDB")
		}
	}
	if err := mongodb.EnsureIndexes(ctx); err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("create indexes: %w", err)
	}

	meetingRepo := repository.NewMeetingRepository(mongodb.Database)
	deps := &adminDeps{
		users:        repository.NewUserRepository(mongodb.Database),
		meetings:     meetingRepo,
		readPassword: term.ReadPassword,
		out:          os.Stdout,
	}
	if cfg.SheetsEnabled() {
		deps.syncer = services.NewSheetsSyncService(services.NewGoogleSheetsSource(cfg), meetingRepo, appLog)
	}
	return deps, closeFn, nil
}
