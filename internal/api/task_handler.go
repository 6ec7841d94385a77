package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/tasko-app/tasko-api/internal/api/middleware"
	"github.com/tasko-app/tasko-api/internal/api/shared"
	"github.com/tasko-app/tasko-api/internal/service"
)

// TaskHandler handles task lifecycle and grouping API requests.
type TaskHandler struct {
	lifecycle  service.TaskLifecycle
	aggregator service.TaskAggregator
	validator  *validator.Validate
	timeFunc   func() time.Time // Injectable for testing
}

// NewTaskHandler creates a new TaskHandler with the given dependencies.
func NewTaskHandler(lifecycle service.TaskLifecycle, aggregator service.TaskAggregator) *TaskHandler {
	// ALLOW-PANIC: Constructor enforcing required dependency
	if lifecycle == nil {
		panic("lifecycle service cannot be nil")
	}
	// ALLOW-PANIC: Constructor enforcing required dependency
	if aggregator == nil {
		panic("aggregator service cannot be nil")
	}
	return &TaskHandler{
		lifecycle:  lifecycle,
		aggregator: aggregator,
		validator:  validator.New(),
		timeFunc:   time.Now,
	}
}

// TodayCount handles GET /tasks/today: the number of open tasks due today.
func (h *TaskHandler) TodayCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	count, err := h.aggregator.CountDueToday(r.Context(), userID, h.timeFunc())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TaskCountResponse{TaskCount: count})
}

// ListToday handles GET /tasks: the open tasks due today, ordered by
// priority.
func (h *TaskHandler) ListToday(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	tasks, err := h.aggregator.ListDueToday(r.Context(), userID, h.timeFunc())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, tasks)
}

// ByStatus handles GET /tasks-by-status: every task grouped into the three
// working states.
func (h *TaskHandler) ByStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	grouped, err := h.aggregator.GroupByStatus(r.Context(), userID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, grouped)
}

// ByCategory handles GET /tasks-by-category: open tasks grouped into the six
// known categories.
func (h *TaskHandler) ByCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	grouped, err := h.aggregator.GroupByCategory(r.Context(), userID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, grouped)
}

// Create handles POST /tasks-add.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	params, err := req.ToParams()
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid due date")
		return
	}

	task, err := h.lifecycle.CreateTask(r.Context(), userID, params)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, MessageResponse{
		Message: "Task created successfully",
		TaskID:  &task.ID,
	})
}

// Update handles PUT /tasks/{id}.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	taskID, ok := h.taskIDParam(w, r)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	update, err := req.ToUpdate()
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid due date")
		return
	}

	task, err := h.lifecycle.UpdateTask(r.Context(), userID, taskID, update)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// Complete handles PUT /tasks/complete/{id}.
func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "Task marked as complete", h.lifecycle.CompleteTask)
}

// Cancel handles PUT /tasks/cancel/{id}: moves a task to the trash.
func (h *TaskHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "Task status updated to \"annule\"", h.lifecycle.CancelTask)
}

// Restore handles PUT /restore/{id}: returns a trashed task to its initial
// state.
func (h *TaskHandler) Restore(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "Task restored successfully", h.lifecycle.RestoreTask)
}

// Delete handles DELETE /tasks/{id}.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	taskID, ok := h.taskIDParam(w, r)
	if !ok {
		return
	}

	if err := h.lifecycle.DeleteTask(r.Context(), userID, taskID); err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{
		Message: "Task deleted successfully",
	})
}

// History handles GET /history: completed tasks grouped by completion date.
func (h *TaskHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	grouped, err := h.aggregator.History(r.Context(), userID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, grouped)
}

// Deleted handles GET /deleted: the user's trashed tasks.
func (h *TaskHandler) Deleted(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	tasks, err := h.aggregator.ListDeleted(r.Context(), userID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, tasks)
}

// Notifications handles GET /notifications: open tasks due within the next
// hour.
func (h *TaskHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	tasks, err := h.aggregator.DueWithinHour(r.Context(), userID, h.timeFunc())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NotificationsResponse{Notifications: tasks})
}

// transition runs one of the status-transition operations and acknowledges
// with a message.
func (h *TaskHandler) transition(
	w http.ResponseWriter,
	r *http.Request,
	message string,
	op func(ctx context.Context, userID, taskID uuid.UUID) error,
) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	taskID, ok := h.taskIDParam(w, r)
	if !ok {
		return
	}

	if err := op(r.Context(), userID, taskID); err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{
		Message: message,
		TaskID:  &taskID,
	})
}

// taskIDParam parses the {id} URL parameter, responding with 400 on failure.
func (h *TaskHandler) taskIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	taskID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID")
		return uuid.Nil, false
	}
	return taskID, true
}

// respondServiceError maps a service error to a sanitized HTTP response.
func (h *TaskHandler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
}
