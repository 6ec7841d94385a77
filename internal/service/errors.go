// Package service provides application-level services for task lifecycle
// management and aggregation.
package service

import (
	"errors"
	"fmt"
)

// Common service errors - sentinel errors used across service implementations.
// Callers check for these with errors.Is(); the API layer maps them to HTTP
// status codes.
var (
	// ErrTaskNotOwned indicates a task is owned by a different user than the
	// one making the request. The API layer maps this to HTTP 403 Forbidden.
	ErrTaskNotOwned = errors.New("task is owned by another user")

	// ErrInvalidCredentials indicates a login attempt with a wrong email or
	// password. The API layer maps this to HTTP 401 Unauthorized.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// TaskServiceError wraps unexpected errors from the task services with the
// operation that failed.
type TaskServiceError struct {
	// Operation is the operation that failed (e.g., "create_task", "complete_task")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for TaskServiceError.
func (e *TaskServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("task service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("task service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *TaskServiceError) Unwrap() error {
	return e.Err
}
