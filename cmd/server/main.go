// Package main implements the entry point for the Tasko API server,
// a task-management backend that tracks personal tasks through their
// lifecycle and serves aggregate statistics about them.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/tasko-app/tasko-api/internal/config"
	"github.com/tasko-app/tasko-api/internal/platform/logger"
)

func main() {
	app, err := initializeApp()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := app.Run(context.Background()); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// initializeApp loads configuration, sets up logging and the database
// connection, runs pending migrations, and wires the application
// dependencies. Returns the ready-to-run application or an error.
func initializeApp() (*application, error) {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// Set up structured logging using the configured log level
	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	// Log configuration details using structured logging
	slog.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	if cfg.Database.URL != "" {
		slog.Debug("Database configuration", "url_present", true)
	}
	if cfg.Auth.JWTSecret != "" {
		slog.Debug("Auth configuration", "jwt_secret_present", true)
	}

	// Establish the database connection
	db, err := setupAppDatabase(cfg, appLogger)
	if err != nil {
		return nil, err
	}

	// Apply pending schema migrations before serving traffic
	if err := runMigrations(db, appLogger); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Wire services and handlers
	app, err := newApplication(cfg, appLogger, db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize application components: %w", err)
	}

	return app, nil
}
