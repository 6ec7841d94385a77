package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/tasko-app/tasko-api/internal/config"
	"github.com/tasko-app/tasko-api/internal/platform/postgres"
	"github.com/tasko-app/tasko-api/internal/service"
	"github.com/tasko-app/tasko-api/internal/service/auth"
	"github.com/tasko-app/tasko-api/internal/store"
	"golang.org/x/crypto/bcrypt"
)

// application holds all the application-wide dependencies and services.
// It acts as a composition root so handlers and services receive their
// collaborators through a single, explicit wiring step.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores
	userStore store.UserStore
	taskStore store.TaskStore

	// Services
	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier
	lifecycle        service.TaskLifecycle
	aggregator       service.TaskAggregator
}

// newApplication creates the application dependency graph from the loaded
// configuration, logger, and database connection. Initialization is
// sequential so a failure reports exactly which component could not be
// constructed.
func newApplication(
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
) (*application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	userStore := postgres.NewPostgresUserStore(db, bcrypt.DefaultCost, logger)
	taskStore := postgres.NewPostgresTaskStore(db, logger)
	logger.Info("Data stores initialized")

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}

	lifecycle, err := service.NewTaskLifecycle(taskStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create task lifecycle service: %w", err)
	}

	aggregator, err := service.NewTaskAggregator(taskStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create task aggregator service: %w", err)
	}
	logger.Info("Services initialized")

	return &application{
		config:           cfg,
		logger:           logger,
		db:               db,
		userStore:        userStore,
		taskStore:        taskStore,
		jwtService:       jwtService,
		passwordVerifier: auth.NewBcryptVerifier(),
		lifecycle:        lifecycle,
		aggregator:       aggregator,
	}, nil
}

// Run starts the HTTP server and blocks until shutdown completes.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()
	return app.startHTTPServer(ctx, router)
}

// cleanup releases resources held by the application, such as the
// database connection. Called during graceful shutdown.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}
}
