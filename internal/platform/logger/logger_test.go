package logger_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/tasko-app/tasko-api/internal/config"
	"github.com/tasko-app/tasko-api/internal/platform/logger"
)

func TestSetup(t *testing.T) {
	tests := []struct {
		name     string
		logLevel string
	}{
		{name: "debug level", logLevel: "debug"},
		{name: "info level", logLevel: "info"},
		{name: "warn level", logLevel: "warn"},
		{name: "error level", logLevel: "error"},
		{name: "mixed case", logLevel: "INFO"},
		{name: "invalid level falls back to info", logLevel: "verbose"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := logger.Setup(config.ServerConfig{Port: 8080, LogLevel: tt.logLevel})
			if err != nil {
				t.Fatalf("Setup returned unexpected error: %v", err)
			}
			if log == nil {
				t.Fatal("Setup returned nil logger")
			}
			if slog.Default() != log {
				t.Error("Setup did not install the logger as default")
			}
		})
	}
}

func TestFromContext(t *testing.T) {
	custom := slog.New(slog.NewTextHandler(os.Stderr, nil))
	ctx := logger.WithLogger(context.Background(), custom)

	if got := logger.FromContext(ctx); got != custom {
		t.Error("FromContext did not return the logger stored in the context")
	}

	if got := logger.FromContext(context.Background()); got != slog.Default() {
		t.Error("FromContext without stored logger should return the default")
	}
}

func TestFromContextOrDefault(t *testing.T) {
	custom := slog.New(slog.NewTextHandler(os.Stderr, nil))
	def := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if got := logger.FromContextOrDefault(logger.WithLogger(context.Background(), custom), def); got != custom {
		t.Error("context logger should take precedence over the provided default")
	}

	if got := logger.FromContextOrDefault(context.Background(), def); got != def {
		t.Error("provided default should be returned when no context logger is set")
	}

	if got := logger.FromContextOrDefault(context.Background(), nil); got != slog.Default() {
		t.Error("global default should be returned when both are absent")
	}
}

func TestWithLoggerNilPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("WithLogger(nil) should panic")
		}
	}()
	logger.WithLogger(context.Background(), nil)
}
