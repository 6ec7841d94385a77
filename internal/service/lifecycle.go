package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/tasko-app/tasko-api/internal/domain"
	"github.com/tasko-app/tasko-api/internal/store"
)

// TaskLifecycle provides task creation and state-transition operations.
// Every operation is scoped to the calling user; acting on a task that does
// not exist under that user returns ErrTaskNotOwned, regardless of whether
// the task exists under someone else.
type TaskLifecycle interface {
	// CreateTask validates the parameters and persists a new task for the user.
	CreateTask(ctx context.Context, userID uuid.UUID, params domain.NewTaskParams) (*domain.Task, error)

	// GetTask retrieves a single task owned by the user.
	GetTask(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error)

	// UpdateTask applies a sparse field update to a task owned by the user
	// and returns the updated task. A status change to "termine" stamps the
	// completion timestamp; a change to any other status clears it.
	UpdateTask(ctx context.Context, userID, taskID uuid.UUID, update domain.TaskUpdate) (*domain.Task, error)

	// CompleteTask transitions a task to "termine" and stamps its completion
	// timestamp.
	CompleteTask(ctx context.Context, userID, taskID uuid.UUID) error

	// CancelTask moves a task to the cancelled ("trash") state and clears any
	// completion timestamp.
	CancelTask(ctx context.Context, userID, taskID uuid.UUID) error

	// RestoreTask returns a cancelled task to the initial "pas commence"
	// state.
	RestoreTask(ctx context.Context, userID, taskID uuid.UUID) error

	// DeleteTask permanently removes a task owned by the user.
	DeleteTask(ctx context.Context, userID, taskID uuid.UUID) error
}

// taskLifecycleImpl implements the TaskLifecycle interface.
type taskLifecycleImpl struct {
	taskStore store.TaskStore
	timeFunc  func() time.Time // Injectable for testing
	logger    *slog.Logger
}

var _ TaskLifecycle = (*taskLifecycleImpl)(nil)

// NewTaskLifecycle creates a new TaskLifecycle service.
// It returns an error if the task store is nil.
func NewTaskLifecycle(taskStore store.TaskStore, logger *slog.Logger) (TaskLifecycle, error) {
	if taskStore == nil {
		return nil, &TaskServiceError{
			Operation: "create_service",
			Message:   "taskStore cannot be nil",
		}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &taskLifecycleImpl{
		taskStore: taskStore,
		timeFunc:  time.Now,
		logger:    logger.With("component", "task_lifecycle"),
	}, nil
}

// CreateTask validates the parameters and persists a new task.
func (s *taskLifecycleImpl) CreateTask(
	ctx context.Context,
	userID uuid.UUID,
	params domain.NewTaskParams,
) (*domain.Task, error) {
	task, err := domain.NewTask(userID, params, s.timeFunc())
	if err != nil {
		s.logger.Debug("task creation rejected by validation",
			"error", err,
			"user_id", userID)
		return nil, err
	}

	if err := s.taskStore.Create(ctx, task); err != nil {
		s.logger.Error("failed to persist new task",
			"error", err,
			"user_id", userID,
			"task_id", task.ID)
		return nil, &TaskServiceError{
			Operation: "create_task",
			Message:   "failed to save task",
			Err:       err,
		}
	}

	s.logger.Info("task created",
		"task_id", task.ID,
		"user_id", userID,
		"status", task.Status)
	return task, nil
}

// GetTask retrieves a single task owned by the user.
func (s *taskLifecycleImpl) GetTask(
	ctx context.Context,
	userID, taskID uuid.UUID,
) (*domain.Task, error) {
	return s.ownedTask(ctx, userID, taskID, "get_task")
}

// UpdateTask applies a sparse field update to a task owned by the user.
//
// The completion timestamp follows the status: transitioning to "termine"
// stamps it with the current time, transitioning to any other status clears
// it, and an update that does not touch the status leaves it alone.
func (s *taskLifecycleImpl) UpdateTask(
	ctx context.Context,
	userID, taskID uuid.UUID,
	update domain.TaskUpdate,
) (*domain.Task, error) {
	if err := update.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.ownedTask(ctx, userID, taskID, "update_task"); err != nil {
		return nil, err
	}

	if update.Status != nil {
		if *update.Status == domain.TaskStatusCompleted {
			now := s.timeFunc().UTC()
			update.CompletedAt = &now
		} else {
			update.ClearCompletedAt = true
		}
	}

	rows, err := s.taskStore.UpdateFields(ctx, taskID, userID, update)
	if err != nil {
		s.logger.Error("failed to update task",
			"error", err,
			"user_id", userID,
			"task_id", taskID)
		return nil, &TaskServiceError{
			Operation: "update_task",
			Message:   "failed to update task",
			Err:       err,
		}
	}
	if rows == 0 {
		// The task vanished between the ownership check and the update.
		return nil, store.ErrTaskNotFound
	}

	// Re-fetch directly; ownership was already established, so a miss here
	// is the same vanished-row race as rows == 0 above, not a 403.
	task, err := s.taskStore.GetForUser(ctx, taskID, userID)
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			return nil, store.ErrTaskNotFound
		}
		s.logger.Error("failed to retrieve task",
			"error", err,
			"user_id", userID,
			"task_id", taskID,
			"operation", "update_task")
		return nil, &TaskServiceError{
			Operation: "update_task",
			Message:   "failed to retrieve task",
			Err:       err,
		}
	}

	s.logger.Info("task updated",
		"task_id", taskID,
		"user_id", userID,
		"status", task.Status)
	return task, nil
}

// CompleteTask transitions a task to "termine" and stamps its completion
// timestamp.
func (s *taskLifecycleImpl) CompleteTask(ctx context.Context, userID, taskID uuid.UUID) error {
	now := s.timeFunc().UTC()
	return s.transition(ctx, userID, taskID, "complete_task", domain.TaskStatusCompleted, &now)
}

// CancelTask moves a task to the cancelled state, clearing any completion
// timestamp so a later restore starts from a clean slate.
func (s *taskLifecycleImpl) CancelTask(ctx context.Context, userID, taskID uuid.UUID) error {
	return s.transition(ctx, userID, taskID, "cancel_task", domain.TaskStatusCancelled, nil)
}

// RestoreTask returns a cancelled task to the initial "pas commence" state.
func (s *taskLifecycleImpl) RestoreTask(ctx context.Context, userID, taskID uuid.UUID) error {
	return s.transition(ctx, userID, taskID, "restore_task", domain.TaskStatusNotStarted, nil)
}

// DeleteTask permanently removes a task owned by the user.
func (s *taskLifecycleImpl) DeleteTask(ctx context.Context, userID, taskID uuid.UUID) error {
	if _, err := s.ownedTask(ctx, userID, taskID, "delete_task"); err != nil {
		return err
	}

	rows, err := s.taskStore.Delete(ctx, taskID, userID)
	if err != nil {
		s.logger.Error("failed to delete task",
			"error", err,
			"user_id", userID,
			"task_id", taskID)
		return &TaskServiceError{
			Operation: "delete_task",
			Message:   "failed to delete task",
			Err:       err,
		}
	}
	if rows == 0 {
		return store.ErrTaskNotFound
	}

	s.logger.Info("task deleted",
		"task_id", taskID,
		"user_id", userID)
	return nil
}

// transition applies a status change to a task after verifying ownership.
func (s *taskLifecycleImpl) transition(
	ctx context.Context,
	userID, taskID uuid.UUID,
	operation string,
	status domain.TaskStatus,
	completedAt *time.Time,
) error {
	if _, err := s.ownedTask(ctx, userID, taskID, operation); err != nil {
		return err
	}

	rows, err := s.taskStore.SetStatus(ctx, taskID, userID, status, completedAt)
	if err != nil {
		s.logger.Error("failed to transition task status",
			"error", err,
			"user_id", userID,
			"task_id", taskID,
			"target_status", status)
		return &TaskServiceError{
			Operation: operation,
			Message:   "failed to update task status",
			Err:       err,
		}
	}
	if rows == 0 {
		return store.ErrTaskNotFound
	}

	s.logger.Info("task status changed",
		"task_id", taskID,
		"user_id", userID,
		"status", status)
	return nil
}

// ownedTask fetches the task scoped to userID, mapping a miss to
// ErrTaskNotOwned. A task not visible under the caller's ownership is
// indistinguishable from one owned by someone else, and is reported the
// same way.
func (s *taskLifecycleImpl) ownedTask(
	ctx context.Context,
	userID, taskID uuid.UUID,
	operation string,
) (*domain.Task, error) {
	task, err := s.taskStore.GetForUser(ctx, taskID, userID)
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			s.logger.Debug("ownership check failed",
				"user_id", userID,
				"task_id", taskID,
				"operation", operation)
			return nil, ErrTaskNotOwned
		}
		s.logger.Error("failed to retrieve task",
			"error", err,
			"user_id", userID,
			"task_id", taskID,
			"operation", operation)
		return nil, &TaskServiceError{
			Operation: operation,
			Message:   "failed to retrieve task",
			Err:       err,
		}
	}
	return task, nil
}
