package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/tasko-app/tasko-api/internal/api"
	apiMiddleware "github.com/tasko-app/tasko-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all
// routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware) // Add trace IDs for improved error handling

	// Create API handlers using the application's services
	authHandler := api.NewAuthHandler(app.userStore, app.jwtService, app.passwordVerifier)
	taskHandler := api.NewTaskHandler(app.lifecycle, app.aggregator)
	statsHandler := api.NewStatsHandler(app.aggregator)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	// Authentication endpoints (public)
	r.Post("/auth/register", authHandler.Register)
	r.Post("/auth/login", authHandler.Login)
	r.Post("/auth/refresh", authHandler.RefreshToken)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		// Task endpoints
		r.Get("/tasks/today", taskHandler.TodayCount)
		r.Get("/tasks", taskHandler.ListToday)
		r.Get("/tasks-by-status", taskHandler.ByStatus)
		r.Get("/tasks-by-category", taskHandler.ByCategory)
		r.Post("/tasks-add", taskHandler.Create)
		r.Put("/tasks/complete/{id}", taskHandler.Complete)
		r.Put("/tasks/cancel/{id}", taskHandler.Cancel)
		r.Put("/tasks/{id}", taskHandler.Update)
		r.Delete("/tasks/{id}", taskHandler.Delete)
		r.Put("/restore/{id}", taskHandler.Restore)
		r.Get("/history", taskHandler.History)
		r.Get("/deleted", taskHandler.Deleted)
		r.Get("/notifications", taskHandler.Notifications)

		// Statistics endpoints
		r.Get("/statistiques", statsHandler.Breakdown)
		r.Get("/statistiques/completed-per-week", statsHandler.CompletedPerWeek)
		r.Get("/statistiques/weekly-completed", statsHandler.WeeklyCompleted)
		r.Get("/statistiques/categories", statsHandler.Categories)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
