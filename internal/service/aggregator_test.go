package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasko-app/tasko-api/internal/domain"
	"github.com/tasko-app/tasko-api/internal/mocks"
	"github.com/tasko-app/tasko-api/internal/service"
)

func newAggregator(t *testing.T, taskStore *mocks.MockTaskStore) service.TaskAggregator {
	t.Helper()
	svc, err := service.NewTaskAggregator(taskStore, nil)
	require.NoError(t, err)
	return svc
}

// addTask inserts a task directly into the mock store, bypassing creation
// validation so tests can shape historical data freely.
func addTask(
	taskStore *mocks.MockTaskStore,
	userID uuid.UUID,
	name string,
	category domain.TaskCategory,
	status domain.TaskStatus,
	completedAt *time.Time,
) *domain.Task {
	task := &domain.Task{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        name,
		Category:    category,
		Priority:    domain.TaskPriorityImportant,
		Status:      status,
		CompletedAt: completedAt,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	taskStore.Tasks = append(taskStore.Tasks, task)
	return task
}

func timePtr(t time.Time) *time.Time { return &t }

func TestGroupByStatus(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	taskStore := mocks.NewMockTaskStore()
	svc := newAggregator(t, taskStore)

	addTask(taskStore, userID, "a", domain.TaskCategoryWork, domain.TaskStatusNotStarted, nil)
	addTask(taskStore, userID, "b", domain.TaskCategoryWork, domain.TaskStatusInProgress, nil)
	addTask(taskStore, userID, "c", domain.TaskCategoryWork, domain.TaskStatusCompleted, timePtr(time.Now()))
	addTask(taskStore, userID, "d", domain.TaskCategoryWork, domain.TaskStatusCancelled, nil)
	addTask(taskStore, uuid.New(), "someone else's", domain.TaskCategoryWork, domain.TaskStatusNotStarted, nil)

	grouped, err := svc.GroupByStatus(context.Background(), userID)
	require.NoError(t, err)

	require.Len(t, grouped, 3)
	assert.Len(t, grouped[domain.TaskStatusNotStarted], 1)
	assert.Len(t, grouped[domain.TaskStatusInProgress], 1)
	assert.Len(t, grouped[domain.TaskStatusCompleted], 1)
	// Cancelled tasks never appear in the status view
	_, hasCancelled := grouped[domain.TaskStatusCancelled]
	assert.False(t, hasCancelled)
}

func TestGroupByCategory(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	taskStore := mocks.NewMockTaskStore()
	svc := newAggregator(t, taskStore)

	addTask(taskStore, userID, "reviser", domain.TaskCategoryStudy, domain.TaskStatusNotStarted, nil)
	addTask(taskStore, userID, "rapport", domain.TaskCategoryWork, domain.TaskStatusInProgress, nil)
	addTask(taskStore, userID, "fini", domain.TaskCategoryWork, domain.TaskStatusCompleted, timePtr(time.Now()))
	addTask(taskStore, userID, "bizarre", domain.TaskCategory("inconnu"), domain.TaskStatusNotStarted, nil)

	grouped, err := svc.GroupByCategory(context.Background(), userID)
	require.NoError(t, err)

	require.Len(t, grouped, 6)
	assert.Len(t, grouped[domain.TaskCategoryStudy], 1)
	assert.Len(t, grouped[domain.TaskCategoryWork], 1)
	assert.Empty(t, grouped[domain.TaskCategoryHome])
	// Unknown category and completed tasks are both dropped
	_, hasUnknown := grouped[domain.TaskCategory("inconnu")]
	assert.False(t, hasUnknown)
}

func TestHistory(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	taskStore := mocks.NewMockTaskStore()
	svc := newAggregator(t, taskStore)

	day1 := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	day2 := time.Date(2025, 3, 11, 18, 0, 0, 0, time.UTC)
	addTask(taskStore, userID, "a", domain.TaskCategoryWork, domain.TaskStatusCompleted, &day1)
	addTask(taskStore, userID, "b", domain.TaskCategoryWork, domain.TaskStatusCompleted, &day1)
	addTask(taskStore, userID, "c", domain.TaskCategoryWork, domain.TaskStatusCompleted, &day2)
	addTask(taskStore, userID, "no timestamp", domain.TaskCategoryWork, domain.TaskStatusCompleted, nil)
	addTask(taskStore, userID, "open", domain.TaskCategoryWork, domain.TaskStatusInProgress, nil)

	grouped, err := svc.History(context.Background(), userID)
	require.NoError(t, err)

	require.Len(t, grouped, 3)
	assert.Len(t, grouped["2025-03-10"], 2)
	assert.Len(t, grouped["2025-03-11"], 1)
	assert.Len(t, grouped[service.HistoryUnknownDateKey], 1)
}

func TestCompletedPerWeek(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	taskStore := mocks.NewMockTaskStore()
	svc := newAggregator(t, taskStore)

	// ISO week 11 and 12 of 2025
	week11 := time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)
	week12 := time.Date(2025, 3, 19, 10, 0, 0, 0, time.UTC)
	addTask(taskStore, userID, "a", domain.TaskCategoryWork, domain.TaskStatusCompleted, &week11)
	addTask(taskStore, userID, "b", domain.TaskCategoryWork, domain.TaskStatusCompleted, &week11)
	addTask(taskStore, userID, "c", domain.TaskCategoryWork, domain.TaskStatusCompleted, &week12)

	weeks, err := svc.CompletedPerWeek(context.Background(), userID)
	require.NoError(t, err)

	require.Len(t, weeks, 2)
	// Newest week first
	assert.Equal(t, service.WeekCount{Year: 2025, Week: 12, TaskCount: 1}, weeks[0])
	assert.Equal(t, service.WeekCount{Year: 2025, Week: 11, TaskCount: 2}, weeks[1])
}

func TestCompletedByWeekday(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	taskStore := mocks.NewMockTaskStore()
	svc := newAggregator(t, taskStore)

	// Friday 2025-03-14; window reaches back to Friday 2025-03-07
	now := time.Date(2025, 3, 14, 15, 0, 0, 0, time.UTC)
	monday := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	wednesday := time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)
	tooOld := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	addTask(taskStore, userID, "a", domain.TaskCategoryWork, domain.TaskStatusCompleted, &monday)
	addTask(taskStore, userID, "b", domain.TaskCategoryWork, domain.TaskStatusCompleted, &monday)
	addTask(taskStore, userID, "c", domain.TaskCategoryWork, domain.TaskStatusCompleted, &wednesday)
	addTask(taskStore, userID, "old", domain.TaskCategoryWork, domain.TaskStatusCompleted, &tooOld)

	days, err := svc.CompletedByWeekday(context.Background(), userID, now)
	require.NoError(t, err)

	require.Len(t, days, 2)
	assert.Equal(t, service.WeekdayCount{DayOfWeek: "Monday", CompletedTasks: 2}, days[0])
	assert.Equal(t, service.WeekdayCount{DayOfWeek: "Wednesday", CompletedTasks: 1}, days[1])
}

func TestStatusBreakdown(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	taskStore := mocks.NewMockTaskStore()
	svc := newAggregator(t, taskStore)

	addTask(taskStore, userID, "a", domain.TaskCategoryWork, domain.TaskStatusNotStarted, nil)
	addTask(taskStore, userID, "b", domain.TaskCategoryWork, domain.TaskStatusNotStarted, nil)
	addTask(taskStore, userID, "c", domain.TaskCategoryWork, domain.TaskStatusCompleted, timePtr(time.Now()))

	stats, err := svc.StatusBreakdown(context.Background(), userID)
	require.NoError(t, err)

	require.Len(t, stats, 2)
	assert.Equal(t, domain.TaskStatusNotStarted, stats[0].Status)
	assert.Equal(t, 2, stats[0].Count)
	assert.InDelta(t, 66.67, stats[0].Percentage, 0.001)
	assert.Equal(t, domain.TaskStatusCompleted, stats[1].Status)
	assert.InDelta(t, 33.33, stats[1].Percentage, 0.001)
}

func TestCategoryCounts(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	taskStore := mocks.NewMockTaskStore()
	svc := newAggregator(t, taskStore)

	addTask(taskStore, userID, "a", domain.TaskCategoryWork, domain.TaskStatusNotStarted, nil)
	addTask(taskStore, userID, "b", domain.TaskCategoryWork, domain.TaskStatusCompleted, timePtr(time.Now()))
	addTask(taskStore, userID, "c", domain.TaskCategoryLeisure, domain.TaskStatusCancelled, nil)

	counts, err := svc.CategoryCounts(context.Background(), userID)
	require.NoError(t, err)

	// All six categories, zero-filled, capitalized, in fixed order
	require.Len(t, counts, 6)
	assert.Equal(t, service.CategoryCount{Category: "Travail", TaskCount: 2}, counts[0])
	assert.Equal(t, service.CategoryCount{Category: "Etude", TaskCount: 0}, counts[1])
	assert.Equal(t, service.CategoryCount{Category: "Loisirs", TaskCount: 1}, counts[4])
}

func TestDueWithinHour(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	taskStore := mocks.NewMockTaskStore()
	svc := newAggregator(t, taskStore)

	now := time.Date(2025, 3, 14, 15, 0, 0, 0, time.UTC)
	today := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

	soon := addTask(taskStore, userID, "bientot", domain.TaskCategoryWork, domain.TaskStatusNotStarted, nil)
	soon.DueDate = &today
	soonClock := "15:30:00"
	soon.DueTime = &soonClock

	later := addTask(taskStore, userID, "plus tard", domain.TaskCategoryWork, domain.TaskStatusNotStarted, nil)
	later.DueDate = &today
	laterClock := "18:00:00"
	later.DueTime = &laterClock

	done := addTask(taskStore, userID, "deja fait", domain.TaskCategoryWork, domain.TaskStatusCompleted, timePtr(now))
	done.DueDate = &today
	done.DueTime = &soonClock

	addTask(taskStore, userID, "sans echeance", domain.TaskCategoryWork, domain.TaskStatusNotStarted, nil)

	due, err := svc.DueWithinHour(context.Background(), userID, now)
	require.NoError(t, err)

	require.Len(t, due, 1)
	assert.Equal(t, "bientot", due[0].Name)
}

func TestDueTodayPassThroughs(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	taskStore := mocks.NewMockTaskStore()
	svc := newAggregator(t, taskStore)

	now := time.Date(2025, 3, 14, 8, 0, 0, 0, time.UTC)
	today := domain.DateOnly(now)

	urgent := addTask(taskStore, userID, "urgent du jour", domain.TaskCategoryWork, domain.TaskStatusNotStarted, nil)
	urgent.DueDate = &today
	urgent.Priority = domain.TaskPriorityUrgent

	low := addTask(taskStore, userID, "moins presse", domain.TaskCategoryWork, domain.TaskStatusInProgress, nil)
	low.DueDate = &today
	low.Priority = domain.TaskPriorityLow

	count, err := svc.CountDueToday(context.Background(), userID, now)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	tasks, err := svc.ListDueToday(context.Background(), userID, now)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "urgent du jour", tasks[0].Name)
	assert.Equal(t, "moins presse", tasks[1].Name)
}
