package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tasko-app/tasko-api/internal/domain"
)

// TaskStore defines the interface for task data persistence.
// Every query operation is scoped to a caller-supplied owner; a mutation or
// lookup that matches zero rows for that owner reports ErrTaskNotFound, and
// it is the caller's job to decide whether that means "not found" or "not
// yours". Mutating operations return the number of rows affected so the
// service layer can distinguish a no-op from a hit.
//
// Each operation is a single statement; no operation opens a transaction.
type TaskStore interface {
	// Create persists a new task.
	Create(ctx context.Context, task *domain.Task) error

	// GetForUser retrieves a task by ID and owner. This is the ownership
	// check: zero rows means the task does not exist under this owner,
	// whether or not it exists at all.
	GetForUser(ctx context.Context, id, userID uuid.UUID) (*domain.Task, error)

	// ListAll retrieves every task owned by the user.
	ListAll(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error)

	// ListCompleted retrieves the user's completed tasks ordered by
	// completion timestamp, most recent first.
	ListCompleted(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error)

	// ListCancelled retrieves the user's cancelled ("trash") tasks.
	ListCancelled(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error)

	// CountDueToday counts the user's open tasks (pas commence, en cours)
	// whose due date equals the calendar date of day.
	CountDueToday(ctx context.Context, userID uuid.UUID, day time.Time) (int, error)

	// ListDueToday retrieves the same set as CountDueToday, ordered by
	// priority rank (urgent, important, moins important).
	ListDueToday(ctx context.Context, userID uuid.UUID, day time.Time) ([]*domain.Task, error)

	// UpdateFields applies a sparse field update to the task identified by
	// id and owned by userID, issuing a single UPDATE covering only the
	// present fields. Returns the number of rows affected.
	UpdateFields(ctx context.Context, id, userID uuid.UUID, update domain.TaskUpdate) (int64, error)

	// SetStatus transitions the task to the given status. completedAt, when
	// non-nil, is written to the completion timestamp; when nil the
	// completion timestamp is cleared. Returns the number of rows affected.
	SetStatus(ctx context.Context, id, userID uuid.UUID, status domain.TaskStatus, completedAt *time.Time) (int64, error)

	// Delete permanently removes the task. Returns the number of rows affected.
	Delete(ctx context.Context, id, userID uuid.UUID) (int64, error)
}
