package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tasko-app/tasko-api/internal/config"
	"github.com/tasko-app/tasko-api/internal/mocks"
	"github.com/tasko-app/tasko-api/internal/service"
	"github.com/tasko-app/tasko-api/internal/service/auth"
)

// newTestApplication builds an application wired against mocks so router
// behavior can be exercised without a database.
func newTestApplication(t *testing.T) (*application, *mocks.MockJWTService) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	taskStore := mocks.NewMockTaskStore()
	userStore := mocks.NewMockUserStore()
	jwtService := mocks.NewMockJWTService()

	lifecycle, err := service.NewTaskLifecycle(taskStore, logger)
	require.NoError(t, err)
	aggregator, err := service.NewTaskAggregator(taskStore, logger)
	require.NoError(t, err)

	app := &application{
		config: &config.Config{
			Server: config.ServerConfig{Port: 8080, LogLevel: "error"},
		},
		logger:           logger,
		userStore:        userStore,
		taskStore:        taskStore,
		jwtService:       jwtService,
		passwordVerifier: auth.NewBcryptVerifier(),
		lifecycle:        lifecycle,
		aggregator:       aggregator,
	}
	return app, jwtService
}

func TestRouterHealthCheck(t *testing.T) {
	t.Parallel()

	app, _ := newTestApplication(t)
	router := app.setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestRouterRequiresAuthentication(t *testing.T) {
	t.Parallel()

	app, _ := newTestApplication(t)
	router := app.setupRouter()

	protected := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/tasks"},
		{http.MethodGet, "/tasks/today"},
		{http.MethodGet, "/tasks-by-status"},
		{http.MethodPost, "/tasks-add"},
		{http.MethodGet, "/statistiques"},
		{http.MethodGet, "/notifications"},
	}

	for _, route := range protected {
		req := httptest.NewRequest(route.method, route.path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code,
			"%s %s should require authentication", route.method, route.path)
	}
}

func TestRouterAuthenticatedRequest(t *testing.T) {
	t.Parallel()

	app, jwtService := newTestApplication(t)
	router := app.setupRouter()

	token, err := jwtService.GenerateToken(context.Background(), uuid.New())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/tasks/today", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]int
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 0, body["taskCount"])
}

func TestNewApplicationRequiresDependencies(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, err := newApplication(nil, logger, nil)
	assert.Error(t, err)

	_, err = newApplication(&config.Config{}, nil, nil)
	assert.Error(t, err)
}
