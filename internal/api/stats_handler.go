package api

import (
	"net/http"
	"time"

	"github.com/tasko-app/tasko-api/internal/api/middleware"
	"github.com/tasko-app/tasko-api/internal/api/shared"
	"github.com/tasko-app/tasko-api/internal/service"
)

// StatsHandler handles the statistics API requests.
type StatsHandler struct {
	aggregator service.TaskAggregator
	timeFunc   func() time.Time // Injectable for testing
}

// NewStatsHandler creates a new StatsHandler with the given dependencies.
func NewStatsHandler(aggregator service.TaskAggregator) *StatsHandler {
	// ALLOW-PANIC: Constructor enforcing required dependency
	if aggregator == nil {
		panic("aggregator service cannot be nil")
	}
	return &StatsHandler{
		aggregator: aggregator,
		timeFunc:   time.Now,
	}
}

// Breakdown handles GET /statistiques: per-status counts and percentages.
func (h *StatsHandler) Breakdown(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	stats, err := h.aggregator.StatusBreakdown(r.Context(), userID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, stats)
}

// CompletedPerWeek handles GET /statistiques/completed-per-week.
func (h *StatsHandler) CompletedPerWeek(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	weeks, err := h.aggregator.CompletedPerWeek(r.Context(), userID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, weeks)
}

// WeeklyCompleted handles GET /statistiques/weekly-completed: completions
// per weekday over the trailing seven days.
func (h *StatsHandler) WeeklyCompleted(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	days, err := h.aggregator.CompletedByWeekday(r.Context(), userID, h.timeFunc())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, days)
}

// Categories handles GET /statistiques/categories: task counts per category,
// zero-filled.
func (h *StatsHandler) Categories(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	counts, err := h.aggregator.CategoryCounts(r.Context(), userID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, counts)
}
