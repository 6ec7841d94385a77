package service

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/tasko-app/tasko-api/internal/domain"
	"github.com/tasko-app/tasko-api/internal/store"
)

// HistoryUnknownDateKey is the bucket key used in completion history for
// completed tasks whose completion timestamp is missing.
const HistoryUnknownDateKey = "Date inconnue"

// historyDateLayout is the key format for completion history buckets.
const historyDateLayout = "2006-01-02"

// WeekCount is the number of tasks completed in one ISO week.
type WeekCount struct {
	Year      int `json:"year"`
	Week      int `json:"week"`
	TaskCount int `json:"taskCount"`
}

// WeekdayCount is the number of tasks completed on one weekday within the
// trailing seven-day window.
type WeekdayCount struct {
	DayOfWeek      string `json:"day_of_week"`
	CompletedTasks int    `json:"completed_tasks"`
}

// StatusStat is the count and share of tasks in one status.
type StatusStat struct {
	Status     domain.TaskStatus `json:"status"`
	Count      int               `json:"count"`
	Percentage float64           `json:"percentage"`
}

// CategoryCount is the number of tasks in one category. The category label
// is capitalized for display.
type CategoryCount struct {
	Category  string `json:"category"`
	TaskCount int    `json:"task_count"`
}

// TaskAggregator computes groupings and statistics over a user's tasks.
// Every result is computed per call from the store; nothing is cached.
type TaskAggregator interface {
	// ListTasks retrieves every task owned by the user.
	ListTasks(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error)

	// GroupByStatus buckets the user's tasks into the three working states
	// (pas commence, en cours, termine). Cancelled tasks are dropped.
	GroupByStatus(ctx context.Context, userID uuid.UUID) (map[domain.TaskStatus][]*domain.Task, error)

	// GroupByCategory buckets the user's open tasks (pas commence, en cours)
	// into the six known categories. Tasks with an unknown category are
	// dropped.
	GroupByCategory(ctx context.Context, userID uuid.UUID) (map[domain.TaskCategory][]*domain.Task, error)

	// History groups the user's completed tasks by the calendar date of
	// their completion timestamp. Completed tasks without a timestamp land
	// in the HistoryUnknownDateKey bucket.
	History(ctx context.Context, userID uuid.UUID) (map[string][]*domain.Task, error)

	// ListDeleted retrieves the user's cancelled tasks.
	ListDeleted(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error)

	// CompletedPerWeek counts the user's completed tasks per ISO week,
	// ordered by year descending then week descending.
	CompletedPerWeek(ctx context.Context, userID uuid.UUID) ([]WeekCount, error)

	// CompletedByWeekday counts tasks completed in the trailing seven days
	// per weekday, ordered Monday through Sunday. Only weekdays with at
	// least one completion are present.
	CompletedByWeekday(ctx context.Context, userID uuid.UUID, now time.Time) ([]WeekdayCount, error)

	// StatusBreakdown returns, for each status present among the user's
	// tasks, its count and its percentage of the total rounded to two
	// decimal places.
	StatusBreakdown(ctx context.Context, userID uuid.UUID) ([]StatusStat, error)

	// CategoryCounts counts the user's tasks per category. All six known
	// categories are always present, zero-filled, with capitalized labels.
	CategoryCounts(ctx context.Context, userID uuid.UUID) ([]CategoryCount, error)

	// DueWithinHour retrieves the user's open tasks whose due timestamp
	// falls within [now, now+1h].
	DueWithinHour(ctx context.Context, userID uuid.UUID, now time.Time) ([]*domain.Task, error)

	// CountDueToday counts the user's open tasks due on the calendar date
	// of now.
	CountDueToday(ctx context.Context, userID uuid.UUID, now time.Time) (int, error)

	// ListDueToday retrieves the user's open tasks due on the calendar date
	// of now, ordered by priority.
	ListDueToday(ctx context.Context, userID uuid.UUID, now time.Time) ([]*domain.Task, error)
}

// taskAggregatorImpl implements the TaskAggregator interface.
type taskAggregatorImpl struct {
	taskStore store.TaskStore
	logger    *slog.Logger
}

var _ TaskAggregator = (*taskAggregatorImpl)(nil)

// NewTaskAggregator creates a new TaskAggregator service.
// It returns an error if the task store is nil.
func NewTaskAggregator(taskStore store.TaskStore, logger *slog.Logger) (TaskAggregator, error) {
	if taskStore == nil {
		return nil, &TaskServiceError{
			Operation: "create_service",
			Message:   "taskStore cannot be nil",
		}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &taskAggregatorImpl{
		taskStore: taskStore,
		logger:    logger.With("component", "task_aggregator"),
	}, nil
}

// ListTasks retrieves every task owned by the user.
func (s *taskAggregatorImpl) ListTasks(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	tasks, err := s.taskStore.ListAll(ctx, userID)
	if err != nil {
		return nil, s.storeError("list_tasks", err, userID)
	}
	return tasks, nil
}

// GroupByStatus buckets the user's tasks into the three working states.
// All three buckets are always present so clients can iterate a fixed shape;
// cancelled tasks belong to the trash view and are dropped here.
func (s *taskAggregatorImpl) GroupByStatus(
	ctx context.Context,
	userID uuid.UUID,
) (map[domain.TaskStatus][]*domain.Task, error) {
	tasks, err := s.taskStore.ListAll(ctx, userID)
	if err != nil {
		return nil, s.storeError("group_by_status", err, userID)
	}

	grouped := map[domain.TaskStatus][]*domain.Task{
		domain.TaskStatusNotStarted: {},
		domain.TaskStatusInProgress: {},
		domain.TaskStatusCompleted:  {},
	}
	for _, t := range tasks {
		if _, ok := grouped[t.Status]; ok {
			grouped[t.Status] = append(grouped[t.Status], t)
		}
	}
	return grouped, nil
}

// GroupByCategory buckets the user's open tasks into the six known
// categories. All six buckets are always present.
func (s *taskAggregatorImpl) GroupByCategory(
	ctx context.Context,
	userID uuid.UUID,
) (map[domain.TaskCategory][]*domain.Task, error) {
	tasks, err := s.taskStore.ListAll(ctx, userID)
	if err != nil {
		return nil, s.storeError("group_by_category", err, userID)
	}

	grouped := make(map[domain.TaskCategory][]*domain.Task, 6)
	for _, c := range domain.TaskCategories() {
		grouped[c] = []*domain.Task{}
	}
	for _, t := range tasks {
		if !t.Status.IsOpen() {
			continue
		}
		if _, ok := grouped[t.Category]; ok {
			grouped[t.Category] = append(grouped[t.Category], t)
		}
	}
	return grouped, nil
}

// History groups the user's completed tasks by completion date.
func (s *taskAggregatorImpl) History(
	ctx context.Context,
	userID uuid.UUID,
) (map[string][]*domain.Task, error) {
	tasks, err := s.taskStore.ListCompleted(ctx, userID)
	if err != nil {
		return nil, s.storeError("history", err, userID)
	}

	grouped := make(map[string][]*domain.Task)
	for _, t := range tasks {
		key := HistoryUnknownDateKey
		if t.CompletedAt != nil {
			key = t.CompletedAt.Format(historyDateLayout)
		}
		grouped[key] = append(grouped[key], t)
	}
	return grouped, nil
}

// ListDeleted retrieves the user's cancelled tasks.
func (s *taskAggregatorImpl) ListDeleted(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	tasks, err := s.taskStore.ListCancelled(ctx, userID)
	if err != nil {
		return nil, s.storeError("list_deleted", err, userID)
	}
	return tasks, nil
}

// CompletedPerWeek counts completed tasks per ISO week, newest week first.
// Completed tasks without a completion timestamp are skipped.
func (s *taskAggregatorImpl) CompletedPerWeek(
	ctx context.Context,
	userID uuid.UUID,
) ([]WeekCount, error) {
	tasks, err := s.taskStore.ListCompleted(ctx, userID)
	if err != nil {
		return nil, s.storeError("completed_per_week", err, userID)
	}

	type yearWeek struct{ year, week int }
	counts := make(map[yearWeek]int)
	for _, t := range tasks {
		if t.CompletedAt == nil {
			continue
		}
		y, w := t.CompletedAt.ISOWeek()
		counts[yearWeek{y, w}]++
	}

	result := make([]WeekCount, 0, len(counts))
	for yw, n := range counts {
		result = append(result, WeekCount{Year: yw.year, Week: yw.week, TaskCount: n})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Year != result[j].Year {
			return result[i].Year > result[j].Year
		}
		return result[i].Week > result[j].Week
	})
	return result, nil
}

// CompletedByWeekday counts tasks completed since the start of the day seven
// days ago, bucketed by weekday name and ordered Monday through Sunday.
func (s *taskAggregatorImpl) CompletedByWeekday(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
) ([]WeekdayCount, error) {
	tasks, err := s.taskStore.ListCompleted(ctx, userID)
	if err != nil {
		return nil, s.storeError("completed_by_weekday", err, userID)
	}

	// Completed timestamps are stored in UTC; anchor the window there too.
	windowStart := domain.DateOnly(now.UTC()).AddDate(0, 0, -7)
	counts := make(map[time.Weekday]int)
	for _, t := range tasks {
		if t.CompletedAt == nil || t.CompletedAt.Before(windowStart) {
			continue
		}
		counts[t.CompletedAt.Weekday()]++
	}

	// Emit Monday through Sunday, skipping absent days.
	result := make([]WeekdayCount, 0, len(counts))
	for offset := 0; offset < 7; offset++ {
		day := time.Weekday((int(time.Monday) + offset) % 7)
		if n, ok := counts[day]; ok {
			result = append(result, WeekdayCount{DayOfWeek: day.String(), CompletedTasks: n})
		}
	}
	return result, nil
}

// StatusBreakdown returns per-status counts with each status's share of the
// total, rounded to two decimal places. Only statuses present among the
// user's tasks are emitted.
func (s *taskAggregatorImpl) StatusBreakdown(
	ctx context.Context,
	userID uuid.UUID,
) ([]StatusStat, error) {
	tasks, err := s.taskStore.ListAll(ctx, userID)
	if err != nil {
		return nil, s.storeError("status_breakdown", err, userID)
	}

	counts := make(map[domain.TaskStatus]int)
	for _, t := range tasks {
		counts[t.Status]++
	}

	total := len(tasks)
	result := make([]StatusStat, 0, len(counts))
	// Fixed emission order keeps the response stable across calls.
	for _, status := range []domain.TaskStatus{
		domain.TaskStatusNotStarted,
		domain.TaskStatusInProgress,
		domain.TaskStatusCompleted,
		domain.TaskStatusCancelled,
	} {
		n, ok := counts[status]
		if !ok {
			continue
		}
		pct := math.Round(float64(n)*100/float64(total)*100) / 100
		result = append(result, StatusStat{Status: status, Count: n, Percentage: pct})
	}
	return result, nil
}

// CategoryCounts counts the user's tasks per category, all statuses included.
// Every known category is emitted, zero-filled, with its label capitalized.
func (s *taskAggregatorImpl) CategoryCounts(
	ctx context.Context,
	userID uuid.UUID,
) ([]CategoryCount, error) {
	tasks, err := s.taskStore.ListAll(ctx, userID)
	if err != nil {
		return nil, s.storeError("category_counts", err, userID)
	}

	counts := make(map[domain.TaskCategory]int)
	for _, t := range tasks {
		counts[t.Category]++
	}

	result := make([]CategoryCount, 0, 6)
	for _, c := range domain.TaskCategories() {
		result = append(result, CategoryCount{Category: c.Label(), TaskCount: counts[c]})
	}
	return result, nil
}

// DueWithinHour retrieves open tasks whose resolved due timestamp falls
// within [now, now+1h]. Tasks without a due date never match.
func (s *taskAggregatorImpl) DueWithinHour(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
) ([]*domain.Task, error) {
	tasks, err := s.taskStore.ListAll(ctx, userID)
	if err != nil {
		return nil, s.storeError("due_within_hour", err, userID)
	}

	horizon := now.Add(time.Hour)
	due := []*domain.Task{}
	for _, t := range tasks {
		if !t.Status.IsOpen() {
			continue
		}
		at := t.DueAt()
		if at == nil {
			continue
		}
		if !at.Before(now) && !at.After(horizon) {
			due = append(due, t)
		}
	}
	return due, nil
}

// CountDueToday counts the user's open tasks due on now's calendar date.
func (s *taskAggregatorImpl) CountDueToday(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
) (int, error) {
	count, err := s.taskStore.CountDueToday(ctx, userID, now)
	if err != nil {
		return 0, s.storeError("count_due_today", err, userID)
	}
	return count, nil
}

// ListDueToday retrieves the user's open tasks due on now's calendar date,
// ordered by priority.
func (s *taskAggregatorImpl) ListDueToday(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
) ([]*domain.Task, error) {
	tasks, err := s.taskStore.ListDueToday(ctx, userID, now)
	if err != nil {
		return nil, s.storeError("list_due_today", err, userID)
	}
	return tasks, nil
}

// storeError logs a store failure and wraps it for the caller.
func (s *taskAggregatorImpl) storeError(operation string, err error, userID uuid.UUID) error {
	s.logger.Error("store read failed",
		"error", err,
		"operation", operation,
		"user_id", userID)
	return &TaskServiceError{
		Operation: operation,
		Message:   "failed to read tasks",
		Err:       err,
	}
}
