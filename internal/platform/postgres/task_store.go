package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tasko-app/tasko-api/internal/domain"
	"github.com/tasko-app/tasko-api/internal/platform/logger"
	"github.com/tasko-app/tasko-api/internal/store"
)

// taskColumns is the canonical column list for SELECTs over the tasks
// relation, matching the scan order in scanTask.
const taskColumns = `id, user_id, task_name, category, due_date, due_time, priority, status, completed_date, created_at, updated_at`

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the
// TaskStore interface. It accepts a database connection or transaction that
// should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// Create implements store.TaskStore.Create
// It saves a new task to the database, handling domain validation.
// Returns store.ErrInvalidEntity if the owner does not exist.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		task.ID,
		task.UserID,
		task.Name,
		task.Category,
		nullTime(task.DueDate),
		nullString(task.DueTime),
		task.Priority,
		task.Status,
		nullTime(task.CompletedAt),
		task.CreatedAt,
		task.UpdatedAt,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			log.Warn("foreign key violation during task creation",
				slog.String("error", err.Error()),
				slog.String("task_id", task.ID.String()),
				slog.String("user_id", task.UserID.String()))
			return fmt.Errorf("%w: user with ID %s not found",
				store.ErrInvalidEntity, task.UserID)
		}

		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()),
			slog.String("user_id", task.UserID.String()))
		return err
	}

	log.Info("task created successfully",
		slog.String("task_id", task.ID.String()),
		slog.String("user_id", task.UserID.String()),
		slog.String("status", string(task.Status)))
	return nil
}

// GetForUser implements store.TaskStore.GetForUser
// It retrieves a task by its ID and owner. Zero matching rows yield
// store.ErrTaskNotFound whether the task is missing or owned by someone else.
func (s *PostgresTaskStore) GetForUser(ctx context.Context, id, userID uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE id = $1 AND user_id = $2
	`

	task, err := scanTask(s.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found for user",
				slog.String("task_id", id.String()),
				slog.String("user_id", userID.String()))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, err
	}

	return task, nil
}

// ListAll implements store.TaskStore.ListAll
func (s *PostgresTaskStore) ListAll(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	return s.queryTasks(ctx, query, userID)
}

// ListCompleted implements store.TaskStore.ListCompleted
// Results are ordered by completion timestamp, most recent first.
func (s *PostgresTaskStore) ListCompleted(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE user_id = $1 AND status = $2
		ORDER BY completed_date DESC NULLS LAST
	`
	return s.queryTasks(ctx, query, userID, domain.TaskStatusCompleted)
}

// ListCancelled implements store.TaskStore.ListCancelled
func (s *PostgresTaskStore) ListCancelled(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE user_id = $1 AND status = $2
		ORDER BY updated_at DESC
	`
	return s.queryTasks(ctx, query, userID, domain.TaskStatusCancelled)
}

// CountDueToday implements store.TaskStore.CountDueToday
func (s *PostgresTaskStore) CountDueToday(ctx context.Context, userID uuid.UUID, day time.Time) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT COUNT(*)
		FROM tasks
		WHERE user_id = $1
		  AND due_date = $2::date
		  AND status IN ($3, $4)
	`

	var count int
	err := s.db.QueryRowContext(ctx, query,
		userID,
		domain.DateOnly(day.UTC()),
		domain.TaskStatusNotStarted,
		domain.TaskStatusInProgress,
	).Scan(&count)
	if err != nil {
		log.Error("failed to count tasks due today",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return 0, err
	}

	return count, nil
}

// ListDueToday implements store.TaskStore.ListDueToday
// Results are ordered by priority rank: urgent, important, moins important.
func (s *PostgresTaskStore) ListDueToday(ctx context.Context, userID uuid.UUID, day time.Time) ([]*domain.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE user_id = $1
		  AND due_date = $2::date
		  AND status IN ($3, $4)
		ORDER BY CASE priority
			WHEN 'urgent' THEN 0
			WHEN 'important' THEN 1
			WHEN 'moins important' THEN 2
			ELSE 3
		END
	`
	return s.queryTasks(ctx, query,
		userID,
		domain.DateOnly(day.UTC()),
		domain.TaskStatusNotStarted,
		domain.TaskStatusInProgress,
	)
}

// UpdateFields implements store.TaskStore.UpdateFields
// It builds one UPDATE statement covering only the fields present in the
// update. The caller is responsible for rejecting empty updates before this
// point; an update with no present fields still touches updated_at only.
func (s *PostgresTaskStore) UpdateFields(ctx context.Context, id, userID uuid.UUID, update domain.TaskUpdate) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	assignments, args := buildTaskUpdate(update, time.Now().UTC())

	// id and user_id occupy the two placeholders after the SET arguments.
	query := fmt.Sprintf(
		`UPDATE tasks SET %s WHERE id = $%d AND user_id = $%d`,
		strings.Join(assignments, ", "),
		len(args)+1,
		len(args)+2,
	)
	args = append(args, id, userID)

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()),
			slog.String("user_id", userID.String()))
		return 0, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return 0, err
	}

	log.Info("task updated",
		slog.String("task_id", id.String()),
		slog.Int64("rows_affected", affected))
	return affected, nil
}

// buildTaskUpdate translates a sparse TaskUpdate into SQL SET assignments
// and their positional arguments. updated_at is always touched.
func buildTaskUpdate(update domain.TaskUpdate, now time.Time) ([]string, []any) {
	var assignments []string
	var args []any

	add := func(column string, value any) {
		args = append(args, value)
		assignments = append(assignments, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.Name != nil {
		add("task_name", *update.Name)
	}
	if update.Category != nil {
		add("category", *update.Category)
	}
	if update.DueDate != nil {
		add("due_date", domain.DateOnly(*update.DueDate))
	}
	if update.DueTime != nil {
		add("due_time", *update.DueTime)
	}
	if update.Priority != nil {
		add("priority", *update.Priority)
	}
	if update.Status != nil {
		add("status", *update.Status)
	}
	if update.CompletedAt != nil {
		add("completed_date", *update.CompletedAt)
	} else if update.ClearCompletedAt {
		assignments = append(assignments, "completed_date = NULL")
	}

	add("updated_at", now)
	return assignments, args
}

// SetStatus implements store.TaskStore.SetStatus
// A nil completedAt clears the completion timestamp, keeping the
// "completed_date iff termine" invariant in one statement.
func (s *PostgresTaskStore) SetStatus(ctx context.Context, id, userID uuid.UUID, status domain.TaskStatus, completedAt *time.Time) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE tasks
		SET status = $1, completed_date = $2, updated_at = $3
		WHERE id = $4 AND user_id = $5
	`

	result, err := s.db.ExecContext(ctx, query,
		status,
		nullTime(completedAt),
		time.Now().UTC(),
		id,
		userID,
	)
	if err != nil {
		log.Error("failed to set task status",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()),
			slog.String("status", string(status)))
		return 0, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return 0, err
	}

	log.Info("task status set",
		slog.String("task_id", id.String()),
		slog.String("status", string(status)),
		slog.Int64("rows_affected", affected))
	return affected, nil
}

// Delete implements store.TaskStore.Delete
func (s *PostgresTaskStore) Delete(ctx context.Context, id, userID uuid.UUID) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return 0, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return 0, err
	}

	log.Info("task deleted",
		slog.String("task_id", id.String()),
		slog.Int64("rows_affected", affected))
	return affected, nil
}

// queryTasks runs a SELECT over taskColumns and scans every row.
// Returns an empty slice, never nil, when no rows match.
func (s *PostgresTaskStore) queryTasks(ctx context.Context, query string, args ...any) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query tasks", slog.String("error", err.Error()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	tasks := []*domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			log.Error("failed to scan task row", slog.String("error", err.Error()))
			return nil, err
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	return tasks, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanTask reads one row in taskColumns order into a domain.Task.
func scanTask(row rowScanner) (*domain.Task, error) {
	var task domain.Task
	var category, priority, status string
	var dueDate, completedAt sql.NullTime
	var dueTime sql.NullString

	err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.Name,
		&category,
		&dueDate,
		&dueTime,
		&priority,
		&status,
		&completedAt,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.Category = domain.TaskCategory(category)
	task.Priority = domain.TaskPriority(priority)
	task.Status = domain.TaskStatus(status)
	if dueDate.Valid {
		d := dueDate.Time
		task.DueDate = &d
	}
	if dueTime.Valid {
		t := dueTime.String
		task.DueTime = &t
	}
	if completedAt.Valid {
		c := completedAt.Time
		task.CompletedAt = &c
	}

	return &task, nil
}

// nullTime converts an optional timestamp into its SQL representation.
func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// nullString converts an optional string into its SQL representation.
func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
