package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Task-specific validation errors
var (
	// ErrTaskIDEmpty is returned when a task ID is empty or nil.
	ErrTaskIDEmpty = errors.New("task ID cannot be empty")

	// ErrTaskUserIDEmpty is returned when a task's user ID is empty or nil.
	ErrTaskUserIDEmpty = errors.New("task user ID cannot be empty")

	// ErrInvalidPriority is returned when a priority is missing or not one
	// of the closed set of priority values.
	ErrInvalidPriority = errors.New("invalid task priority")

	// ErrInvalidStatus is returned when a status is not one of the closed
	// set of status values.
	ErrInvalidStatus = errors.New("invalid task status")

	// ErrDueDateInPast is returned when a task is created with a due date
	// whose calendar date is before the current calendar date.
	ErrDueDateInPast = errors.New("due date cannot be in the past")

	// ErrNoFieldsToUpdate is returned when an update carries no fields.
	ErrNoFieldsToUpdate = errors.New("no fields to update")
)

// TaskStatus represents the lifecycle state of a task.
// The values are the literal strings stored in the database and exchanged
// with clients; they are kept in the original French of the product.
type TaskStatus string

const (
	// TaskStatusNotStarted is the initial state of every task.
	TaskStatusNotStarted TaskStatus = "pas commence"

	// TaskStatusInProgress marks a task the user is actively working on.
	TaskStatusInProgress TaskStatus = "en cours"

	// TaskStatusCompleted marks a finished task. A task carries a non-nil
	// CompletedAt exactly while it is in this state.
	TaskStatusCompleted TaskStatus = "termine"

	// TaskStatusCancelled is the soft-deleted ("trash") state. Cancelled
	// tasks are recoverable via restore.
	TaskStatusCancelled TaskStatus = "annule"
)

// IsValid reports whether the status is one of the closed set of values.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusNotStarted, TaskStatusInProgress, TaskStatusCompleted, TaskStatusCancelled:
		return true
	}
	return false
}

// IsOpen reports whether a task in this status still needs attention,
// i.e. it is neither completed nor cancelled.
func (s TaskStatus) IsOpen() bool {
	return s == TaskStatusNotStarted || s == TaskStatusInProgress
}

// TaskPriority represents the urgency of a task.
type TaskPriority string

const (
	TaskPriorityUrgent    TaskPriority = "urgent"
	TaskPriorityImportant TaskPriority = "important"
	TaskPriorityLow       TaskPriority = "moins important"
)

// IsValid reports whether the priority is one of the closed set of values.
func (p TaskPriority) IsValid() bool {
	switch p {
	case TaskPriorityUrgent, TaskPriorityImportant, TaskPriorityLow:
		return true
	}
	return false
}

// Rank returns the sort rank of the priority: urgent sorts first, then
// important, then moins important. Unknown priorities sort last.
func (p TaskPriority) Rank() int {
	switch p {
	case TaskPriorityUrgent:
		return 0
	case TaskPriorityImportant:
		return 1
	case TaskPriorityLow:
		return 2
	}
	return 3
}

// TaskCategory classifies a task. The set is closed for grouping purposes
// but not enforced at the write boundary: unknown categories are stored
// as-is and silently excluded from category groupings.
type TaskCategory string

const (
	TaskCategoryStudy    TaskCategory = "etude"
	TaskCategoryWork     TaskCategory = "travail"
	TaskCategoryHome     TaskCategory = "maison"
	TaskCategoryPersonal TaskCategory = "personnel"
	TaskCategoryLeisure  TaskCategory = "loisirs"
	TaskCategoryOther    TaskCategory = "autre"
)

// TaskCategories returns the closed set of categories in the order used by
// the category statistics endpoint.
func TaskCategories() []TaskCategory {
	return []TaskCategory{
		TaskCategoryWork,
		TaskCategoryStudy,
		TaskCategoryHome,
		TaskCategoryPersonal,
		TaskCategoryLeisure,
		TaskCategoryOther,
	}
}

// IsKnown reports whether the category belongs to the closed set.
func (c TaskCategory) IsKnown() bool {
	switch c {
	case TaskCategoryStudy, TaskCategoryWork, TaskCategoryHome,
		TaskCategoryPersonal, TaskCategoryLeisure, TaskCategoryOther:
		return true
	}
	return false
}

// Label returns the category with its first letter capitalized, the form
// used in statistics responses.
func (c TaskCategory) Label() string {
	s := string(c)
	if s == "" {
		return s
	}
	// Categories are plain ASCII, so byte-level capitalization is safe.
	if s[0] >= 'a' && s[0] <= 'z' {
		return string(s[0]-('a'-'A')) + s[1:]
	}
	return s
}

// Task represents a unit of work owned by exactly one user.
//
// DueDate carries only the calendar date; DueTime, when present, is a
// "HH:MM:SS" wall-clock string. DueTime has no meaning without DueDate but
// the pair is deliberately not cross-validated.
type Task struct {
	ID          uuid.UUID    `json:"id"`
	UserID      uuid.UUID    `json:"user_id"`
	Name        string       `json:"task_name"`
	Category    TaskCategory `json:"category"`
	DueDate     *time.Time   `json:"due_date,omitempty"`
	DueTime     *string      `json:"due_time,omitempty"`
	Priority    TaskPriority `json:"priority"`
	Status      TaskStatus   `json:"status"`
	CompletedAt *time.Time   `json:"completed_date,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// NewTaskParams carries the caller-supplied fields for task creation.
// Optional fields are pointers so absence is explicit rather than inferred
// from zero values.
type NewTaskParams struct {
	Name     string
	Category TaskCategory
	DueDate  *time.Time
	DueTime  *string
	Priority TaskPriority
	Status   TaskStatus
}

// NewTask creates a new Task owned by userID from the given parameters.
// It generates a new UUID for the task and sets the creation/update
// timestamps from now. Returns an error if validation fails:
// the priority is required and closed, the status (when present) is closed,
// and the due date must not resolve to a calendar date before now's date.
// An absent status defaults to "pas commence".
func NewTask(userID uuid.UUID, params NewTaskParams, now time.Time) (*Task, error) {
	if userID == uuid.Nil {
		return nil, ErrTaskUserIDEmpty
	}

	if !params.Priority.IsValid() {
		return nil, ErrInvalidPriority
	}

	status := params.Status
	if status == "" {
		status = TaskStatusNotStarted
	}
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}

	// Both operands are normalized to UTC so the calendar dates compare in a
	// single location: due dates arrive as UTC midnight while now carries the
	// server clock's location.
	if params.DueDate != nil && DateOnly(params.DueDate.UTC()).Before(DateOnly(now.UTC())) {
		return nil, ErrDueDateInPast
	}

	return &Task{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      params.Name,
		Category:  params.Category,
		DueDate:   params.DueDate,
		DueTime:   params.DueTime,
		Priority:  params.Priority,
		Status:    status,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrTaskIDEmpty
	}
	if t.UserID == uuid.Nil {
		return ErrTaskUserIDEmpty
	}
	if !t.Priority.IsValid() {
		return ErrInvalidPriority
	}
	if !t.Status.IsValid() {
		return ErrInvalidStatus
	}
	return nil
}

// DueAt resolves the task's full due timestamp by combining DueDate and
// DueTime. The time-of-day defaults to midnight when DueTime is absent or
// unparseable. Returns nil when the task has no due date.
func (t *Task) DueAt() *time.Time {
	if t.DueDate == nil {
		return nil
	}

	due := DateOnly(*t.DueDate)
	if t.DueTime != nil {
		if clock, err := time.Parse("15:04:05", *t.DueTime); err == nil {
			due = due.Add(time.Duration(clock.Hour())*time.Hour +
				time.Duration(clock.Minute())*time.Minute +
				time.Duration(clock.Second())*time.Second)
		}
	}
	return &due
}

// TaskUpdate is a sparse set of task field changes. A nil field means
// "leave unchanged"; a non-nil pointer to a zero value is a real update
// (e.g. clearing the task name with an empty string).
//
// CompletedAt and ClearCompletedAt are derived by the lifecycle service
// from the status transition, never supplied by callers directly.
type TaskUpdate struct {
	Name     *string
	Category *TaskCategory
	DueDate  *time.Time
	DueTime  *string
	Priority *TaskPriority
	Status   *TaskStatus

	CompletedAt      *time.Time
	ClearCompletedAt bool
}

// IsEmpty reports whether the update carries no caller-visible fields.
func (u *TaskUpdate) IsEmpty() bool {
	return u.Name == nil &&
		u.Category == nil &&
		u.DueDate == nil &&
		u.DueTime == nil &&
		u.Priority == nil &&
		u.Status == nil
}

// Validate checks the enum-valued fields of the update.
// Returns ErrNoFieldsToUpdate when the update is empty.
func (u *TaskUpdate) Validate() error {
	if u.IsEmpty() {
		return ErrNoFieldsToUpdate
	}
	if u.Priority != nil && !u.Priority.IsValid() {
		return ErrInvalidPriority
	}
	if u.Status != nil && !u.Status.IsValid() {
		return ErrInvalidStatus
	}
	return nil
}

// DateOnly truncates a timestamp to its calendar date, preserving location.
// Callers comparing dates from different sources must normalize both
// operands to a single location (UTC) before truncating.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
