// Package main is the entry point for the task manager API server.
//
// main stays minimal: read configuration, create the logger, make sure the
// data directory exists, start the server. Everything else lives in
// internal/ so it can be tested without a process boundary.
package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/matthewzdanevich/task-manager-app/internal/config"
	"github.com/matthewzdanevich/task-manager-app/internal/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	// Config comes entirely from the environment. A missing JWT_SECRET_KEY
	// is fatal here — the token service must never run with an empty secret.
	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Ensure the database directory exists (like `mkdir -p`).
	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", dir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until the server is shut down (Ctrl+C or SIGTERM).
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
