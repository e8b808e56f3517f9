package main

import (
	"log/slog"

	"github.com/google/uuid"

	"tidy/internal/archive"
	"tidy/internal/config"
	"tidy/internal/daemon"
	"tidy/internal/logging"
	"tidy/internal/organizer"
	"tidy/internal/pathlock"
	"tidy/internal/queue"
	"tidy/internal/workflow"
)

// buildLogger writes to stdout and the rotating session log file. Each daemon
// run gets a session id so interleaved runs can be separated in the file.
func buildLogger(cfg *config.Config) (*slog.Logger, error) {
	logger, err := logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stdout", cfg.LogFilePath()},
	})
	if err != nil {
		return nil, err
	}
	return logger.With(logging.String("session_id", uuid.NewString())), nil
}

// buildDaemon wires the processing pipeline: a shared path-lock table keeps
// the organizer and the archival sweeper from touching the same directory
// at once.
func buildDaemon(cfg *config.Config, store *queue.Store, logger *slog.Logger) (*daemon.Daemon, error) {
	locks := pathlock.NewTable()
	org := organizer.New(cfg, logger, locks)
	sweeper := archive.NewSweeper(cfg, logger, locks)
	manager := workflow.NewManager(cfg, store, org, sweeper, logger)
	return daemon.New(cfg, store, manager, logger)
}
