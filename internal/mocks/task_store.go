package mocks

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/tasko-app/tasko-api/internal/domain"
	"github.com/tasko-app/tasko-api/internal/store"
)

// MockTaskStore implements store.TaskStore for testing. The default
// implementation keeps tasks in insertion order and mirrors the real store's
// ownership scoping and ordering rules.
type MockTaskStore struct {
	// Function fields for customizable behavior
	CreateFn       func(ctx context.Context, task *domain.Task) error
	GetForUserFn   func(ctx context.Context, id, userID uuid.UUID) (*domain.Task, error)
	ListAllFn      func(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error)
	UpdateFieldsFn func(ctx context.Context, id, userID uuid.UUID, update domain.TaskUpdate) (int64, error)
	SetStatusFn    func(ctx context.Context, id, userID uuid.UUID, status domain.TaskStatus, completedAt *time.Time) (int64, error)
	DeleteFn       func(ctx context.Context, id, userID uuid.UUID) (int64, error)

	// Tasks backs the default implementation, in insertion order.
	Tasks []*domain.Task
}

var _ store.TaskStore = (*MockTaskStore)(nil)

// NewMockTaskStore creates a new mock store with initialized defaults.
func NewMockTaskStore() *MockTaskStore {
	return &MockTaskStore{}
}

// Create implements the TaskStore interface.
func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, task)
	}
	m.Tasks = append(m.Tasks, task)
	return nil
}

// GetForUser implements the TaskStore interface.
func (m *MockTaskStore) GetForUser(ctx context.Context, id, userID uuid.UUID) (*domain.Task, error) {
	if m.GetForUserFn != nil {
		return m.GetForUserFn(ctx, id, userID)
	}
	if t := m.find(id, userID); t != nil {
		return t, nil
	}
	return nil, store.ErrTaskNotFound
}

// ListAll implements the TaskStore interface.
func (m *MockTaskStore) ListAll(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	if m.ListAllFn != nil {
		return m.ListAllFn(ctx, userID)
	}
	return m.filter(userID, func(t *domain.Task) bool { return true }), nil
}

// ListCompleted implements the TaskStore interface.
func (m *MockTaskStore) ListCompleted(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	tasks := m.filter(userID, func(t *domain.Task) bool {
		return t.Status == domain.TaskStatusCompleted
	})
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i].CompletedAt, tasks[j].CompletedAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
	return tasks, nil
}

// ListCancelled implements the TaskStore interface.
func (m *MockTaskStore) ListCancelled(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	return m.filter(userID, func(t *domain.Task) bool {
		return t.Status == domain.TaskStatusCancelled
	}), nil
}

// CountDueToday implements the TaskStore interface.
func (m *MockTaskStore) CountDueToday(ctx context.Context, userID uuid.UUID, day time.Time) (int, error) {
	tasks, err := m.ListDueToday(ctx, userID, day)
	if err != nil {
		return 0, err
	}
	return len(tasks), nil
}

// ListDueToday implements the TaskStore interface.
func (m *MockTaskStore) ListDueToday(ctx context.Context, userID uuid.UUID, day time.Time) ([]*domain.Task, error) {
	target := domain.DateOnly(day.UTC())
	tasks := m.filter(userID, func(t *domain.Task) bool {
		return t.Status.IsOpen() && t.DueDate != nil && domain.DateOnly(*t.DueDate).Equal(target)
	})
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].Priority.Rank() < tasks[j].Priority.Rank()
	})
	return tasks, nil
}

// UpdateFields implements the TaskStore interface.
func (m *MockTaskStore) UpdateFields(
	ctx context.Context,
	id, userID uuid.UUID,
	update domain.TaskUpdate,
) (int64, error) {
	if m.UpdateFieldsFn != nil {
		return m.UpdateFieldsFn(ctx, id, userID, update)
	}

	t := m.find(id, userID)
	if t == nil {
		return 0, nil
	}

	if update.Name != nil {
		t.Name = *update.Name
	}
	if update.Category != nil {
		t.Category = *update.Category
	}
	if update.DueDate != nil {
		t.DueDate = update.DueDate
	}
	if update.DueTime != nil {
		t.DueTime = update.DueTime
	}
	if update.Priority != nil {
		t.Priority = *update.Priority
	}
	if update.Status != nil {
		t.Status = *update.Status
	}
	if update.CompletedAt != nil {
		t.CompletedAt = update.CompletedAt
	} else if update.ClearCompletedAt {
		t.CompletedAt = nil
	}
	t.UpdatedAt = time.Now().UTC()
	return 1, nil
}

// SetStatus implements the TaskStore interface.
func (m *MockTaskStore) SetStatus(
	ctx context.Context,
	id, userID uuid.UUID,
	status domain.TaskStatus,
	completedAt *time.Time,
) (int64, error) {
	if m.SetStatusFn != nil {
		return m.SetStatusFn(ctx, id, userID, status, completedAt)
	}

	t := m.find(id, userID)
	if t == nil {
		return 0, nil
	}
	t.Status = status
	t.CompletedAt = completedAt
	t.UpdatedAt = time.Now().UTC()
	return 1, nil
}

// Delete implements the TaskStore interface.
func (m *MockTaskStore) Delete(ctx context.Context, id, userID uuid.UUID) (int64, error) {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id, userID)
	}

	for i, t := range m.Tasks {
		if t.ID == id && t.UserID == userID {
			m.Tasks = append(m.Tasks[:i], m.Tasks[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (m *MockTaskStore) find(id, userID uuid.UUID) *domain.Task {
	for _, t := range m.Tasks {
		if t.ID == id && t.UserID == userID {
			return t
		}
	}
	return nil
}

func (m *MockTaskStore) filter(userID uuid.UUID, keep func(*domain.Task) bool) []*domain.Task {
	tasks := []*domain.Task{}
	for _, t := range m.Tasks {
		if t.UserID == userID && keep(t) {
			tasks = append(tasks, t)
		}
	}
	return tasks
}
