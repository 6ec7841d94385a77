package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasko-app/tasko-api/internal/api"
	"github.com/tasko-app/tasko-api/internal/api/middleware"
	"github.com/tasko-app/tasko-api/internal/domain"
	"github.com/tasko-app/tasko-api/internal/mocks"
	"github.com/tasko-app/tasko-api/internal/service"
)

// testEnv bundles the mocks and router for handler tests.
type testEnv struct {
	taskStore  *mocks.MockTaskStore
	jwtService *mocks.MockJWTService
	router     chi.Router
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	taskStore := mocks.NewMockTaskStore()
	jwtService := mocks.NewMockJWTService()

	lifecycle, err := service.NewTaskLifecycle(taskStore, nil)
	require.NoError(t, err)
	aggregator, err := service.NewTaskAggregator(taskStore, nil)
	require.NoError(t, err)

	taskHandler := api.NewTaskHandler(lifecycle, aggregator)
	statsHandler := api.NewStatsHandler(aggregator)
	authMiddleware := middleware.NewAuthMiddleware(jwtService)

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)
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
		r.Get("/statistiques", statsHandler.Breakdown)
		r.Get("/statistiques/completed-per-week", statsHandler.CompletedPerWeek)
		r.Get("/statistiques/weekly-completed", statsHandler.WeeklyCompleted)
		r.Get("/statistiques/categories", statsHandler.Categories)
	})

	return &testEnv{
		taskStore:  taskStore,
		jwtService: jwtService,
		router:     r,
	}
}

// do performs a request as the given user, or unauthenticated when userID is
// uuid.Nil.
func (e *testEnv) do(t *testing.T, method, path string, userID uuid.UUID, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reqBody *bytes.Buffer = bytes.NewBuffer(nil)
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewBuffer(raw)
	}

	r := httptest.NewRequest(method, path, reqBody)
	if userID != uuid.Nil {
		token, err := e.jwtService.GenerateToken(context.Background(), userID)
		require.NoError(t, err)
		r.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, r)
	return w
}

func (e *testEnv) seed(t *testing.T, userID uuid.UUID, name string, status domain.TaskStatus) *domain.Task {
	t.Helper()
	task := &domain.Task{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      name,
		Category:  domain.TaskCategoryWork,
		Priority:  domain.TaskPriorityImportant,
		Status:    status,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	e.taskStore.Tasks = append(e.taskStore.Tasks, task)
	return task
}

func TestCreateTaskEndpoint(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("creates task", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		w := env.do(t, http.MethodPost, "/tasks-add", userID, map[string]interface{}{
			"task_name": "arroser les plantes",
			"category":  "maison",
			"priority":  "moins important",
		})

		require.Equal(t, http.StatusCreated, w.Code)
		var resp api.MessageResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.TaskID)
		assert.Len(t, env.taskStore.Tasks, 1)
		assert.Equal(t, domain.TaskStatusNotStarted, env.taskStore.Tasks[0].Status)
	})

	t.Run("rejects missing priority", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		w := env.do(t, http.MethodPost, "/tasks-add", userID, map[string]interface{}{
			"task_name": "sans priorite",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects invalid priority value", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		w := env.do(t, http.MethodPost, "/tasks-add", userID, map[string]interface{}{
			"task_name": "priorite inconnue",
			"priority":  "tres urgent",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects past due date", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		w := env.do(t, http.MethodPost, "/tasks-add", userID, map[string]interface{}{
			"task_name": "hier",
			"priority":  "urgent",
			"due_date":  "2020-01-01",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("requires authentication", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		w := env.do(t, http.MethodPost, "/tasks-add", uuid.Nil, map[string]interface{}{
			"task_name": "anonyme",
			"priority":  "urgent",
		})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestUpdateTaskEndpoint(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("updates own task", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		task := env.seed(t, userID, "ancien nom", domain.TaskStatusNotStarted)

		w := env.do(t, http.MethodPut, "/tasks/"+task.ID.String(), userID, map[string]interface{}{
			"task_name": "nouveau nom",
			"status":    "en cours",
		})

		require.Equal(t, http.StatusOK, w.Code)
		var updated domain.Task
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
		assert.Equal(t, "nouveau nom", updated.Name)
		assert.Equal(t, domain.TaskStatusInProgress, updated.Status)
	})

	t.Run("completing via update stamps completed_date", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		task := env.seed(t, userID, "a finir", domain.TaskStatusInProgress)

		w := env.do(t, http.MethodPut, "/tasks/"+task.ID.String(), userID, map[string]interface{}{
			"status": "termine",
		})

		require.Equal(t, http.StatusOK, w.Code)
		var updated domain.Task
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
		assert.NotNil(t, updated.CompletedAt)
	})

	t.Run("forbids updating another user's task", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		task := env.seed(t, uuid.New(), "pas a moi", domain.TaskStatusNotStarted)

		w := env.do(t, http.MethodPut, "/tasks/"+task.ID.String(), userID, map[string]interface{}{
			"task_name": "vole",
		})

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("rejects empty update", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		task := env.seed(t, userID, "rien a changer", domain.TaskStatusNotStarted)

		w := env.do(t, http.MethodPut, "/tasks/"+task.ID.String(), userID, map[string]interface{}{})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects malformed task ID", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		w := env.do(t, http.MethodPut, "/tasks/not-a-uuid", userID, map[string]interface{}{
			"task_name": "x",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestTransitionEndpoints(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("complete", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		task := env.seed(t, userID, "a terminer", domain.TaskStatusInProgress)

		w := env.do(t, http.MethodPut, "/tasks/complete/"+task.ID.String(), userID, nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, domain.TaskStatusCompleted, task.Status)
		assert.NotNil(t, task.CompletedAt)
	})

	t.Run("cancel", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		task := env.seed(t, userID, "a annuler", domain.TaskStatusNotStarted)

		w := env.do(t, http.MethodPut, "/tasks/cancel/"+task.ID.String(), userID, nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, domain.TaskStatusCancelled, task.Status)
	})

	t.Run("restore", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		task := env.seed(t, userID, "a restaurer", domain.TaskStatusCancelled)

		w := env.do(t, http.MethodPut, "/restore/"+task.ID.String(), userID, nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, domain.TaskStatusNotStarted, task.Status)
	})

	t.Run("transition on foreign task is forbidden", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		task := env.seed(t, uuid.New(), "pas a moi", domain.TaskStatusInProgress)

		w := env.do(t, http.MethodPut, "/tasks/complete/"+task.ID.String(), userID, nil)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, domain.TaskStatusInProgress, task.Status)
	})
}

func TestDeleteTaskEndpoint(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("deletes own task", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		task := env.seed(t, userID, "a supprimer", domain.TaskStatusNotStarted)

		w := env.do(t, http.MethodDelete, "/tasks/"+task.ID.String(), userID, nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, env.taskStore.Tasks)
	})

	t.Run("forbids deleting another user's task", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		env.seed(t, uuid.New(), "pas a moi", domain.TaskStatusNotStarted)

		w := env.do(t, http.MethodDelete, "/tasks/"+env.taskStore.Tasks[0].ID.String(), userID, nil)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Len(t, env.taskStore.Tasks, 1)
	})
}

func TestGroupingEndpoints(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("tasks-by-status", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		env.seed(t, userID, "ouverte", domain.TaskStatusNotStarted)
		env.seed(t, userID, "annulee", domain.TaskStatusCancelled)

		w := env.do(t, http.MethodGet, "/tasks-by-status", userID, nil)

		require.Equal(t, http.StatusOK, w.Code)
		var grouped map[string][]*domain.Task
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &grouped))
		require.Len(t, grouped, 3)
		assert.Len(t, grouped["pas commence"], 1)
		assert.NotContains(t, grouped, "annule")
	})

	t.Run("history groups by completion date", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		task := env.seed(t, userID, "fini", domain.TaskStatusCompleted)
		completedAt := time.Date(2025, 4, 2, 10, 0, 0, 0, time.UTC)
		task.CompletedAt = &completedAt

		w := env.do(t, http.MethodGet, "/history", userID, nil)

		require.Equal(t, http.StatusOK, w.Code)
		var grouped map[string][]*domain.Task
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &grouped))
		assert.Len(t, grouped["2025-04-02"], 1)
	})

	t.Run("deleted lists only own trash", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		env.seed(t, userID, "ma corbeille", domain.TaskStatusCancelled)
		env.seed(t, uuid.New(), "autre corbeille", domain.TaskStatusCancelled)

		w := env.do(t, http.MethodGet, "/deleted", userID, nil)

		require.Equal(t, http.StatusOK, w.Code)
		var tasks []*domain.Task
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tasks))
		require.Len(t, tasks, 1)
		assert.Equal(t, "ma corbeille", tasks[0].Name)
	})

	t.Run("today count", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		task := env.seed(t, userID, "pour aujourd'hui", domain.TaskStatusNotStarted)
		today := domain.DateOnly(time.Now())
		task.DueDate = &today

		w := env.do(t, http.MethodGet, "/tasks/today", userID, nil)

		require.Equal(t, http.StatusOK, w.Code)
		var resp api.TaskCountResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.TaskCount)
	})
}

func TestStatsEndpoints(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("statistiques", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		env.seed(t, userID, "a", domain.TaskStatusNotStarted)
		env.seed(t, userID, "b", domain.TaskStatusCompleted)

		w := env.do(t, http.MethodGet, "/statistiques", userID, nil)

		require.Equal(t, http.StatusOK, w.Code)
		var stats []service.StatusStat
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
		require.Len(t, stats, 2)
		assert.InDelta(t, 50.0, stats[0].Percentage, 0.001)
	})

	t.Run("categories are zero-filled", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		env.seed(t, userID, "a", domain.TaskStatusNotStarted)

		w := env.do(t, http.MethodGet, "/statistiques/categories", userID, nil)

		require.Equal(t, http.StatusOK, w.Code)
		var counts []service.CategoryCount
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &counts))
		require.Len(t, counts, 6)
		assert.Equal(t, "Travail", counts[0].Category)
		assert.Equal(t, 1, counts[0].TaskCount)
	})

	t.Run("stats require authentication", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		w := env.do(t, http.MethodGet, "/statistiques", uuid.Nil, nil)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
