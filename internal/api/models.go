package api

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tasko-app/tasko-api/internal/domain"
)

// dueDateLayout is the wire format for due dates.
const dueDateLayout = "2006-01-02"

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	// UserID is the unique identifier for the authenticated user
	UserID uuid.UUID `json:"user_id"`

	// AccessToken is the JWT token used for API authorization
	AccessToken string `json:"token"`

	// RefreshToken is the JWT token used to obtain new access tokens
	RefreshToken string `json:"refresh_token,omitempty"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse defines the successful response for the token refresh
// endpoint.
type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// CreateTaskRequest defines the payload for the task creation endpoint.
// Only the priority is required; the rest mirrors the task's optional fields.
// DueDate is a "2006-01-02" date string, DueTime a "15:04:05" clock string.
type CreateTaskRequest struct {
	Name     string  `json:"task_name"`
	Category string  `json:"category"`
	DueDate  *string `json:"due_date"`
	DueTime  *string `json:"due_time"  validate:"omitempty,datetime=15:04:05"`
	Priority string  `json:"priority"  validate:"required"`
	Status   string  `json:"status"`
}

// ToParams converts the request into domain task creation parameters.
// Returns an error when the due date is not a valid calendar date.
func (req *CreateTaskRequest) ToParams() (domain.NewTaskParams, error) {
	params := domain.NewTaskParams{
		Name:     req.Name,
		Category: domain.TaskCategory(req.Category),
		DueTime:  req.DueTime,
		Priority: domain.TaskPriority(req.Priority),
		Status:   domain.TaskStatus(req.Status),
	}

	if req.DueDate != nil && *req.DueDate != "" {
		due, err := time.Parse(dueDateLayout, *req.DueDate)
		if err != nil {
			return domain.NewTaskParams{}, fmt.Errorf("invalid due_date %q: %w", *req.DueDate, err)
		}
		params.DueDate = &due
	}
	return params, nil
}

// UpdateTaskRequest defines the payload for the task update endpoint.
// Absent fields are left unchanged; present fields are applied, including
// present-but-empty strings.
type UpdateTaskRequest struct {
	Name     *string `json:"task_name"`
	Category *string `json:"category"`
	DueDate  *string `json:"due_date"`
	DueTime  *string `json:"due_time"  validate:"omitempty,datetime=15:04:05"`
	Priority *string `json:"priority"`
	Status   *string `json:"status"`
}

// ToUpdate converts the request into a domain task update.
// Returns an error when the due date is not a valid calendar date.
func (req *UpdateTaskRequest) ToUpdate() (domain.TaskUpdate, error) {
	update := domain.TaskUpdate{
		Name:    req.Name,
		DueTime: req.DueTime,
	}

	if req.Category != nil {
		category := domain.TaskCategory(*req.Category)
		update.Category = &category
	}
	if req.Priority != nil {
		priority := domain.TaskPriority(*req.Priority)
		update.Priority = &priority
	}
	if req.Status != nil {
		status := domain.TaskStatus(*req.Status)
		update.Status = &status
	}
	if req.DueDate != nil && *req.DueDate != "" {
		due, err := time.Parse(dueDateLayout, *req.DueDate)
		if err != nil {
			return domain.TaskUpdate{}, fmt.Errorf("invalid due_date %q: %w", *req.DueDate, err)
		}
		update.DueDate = &due
	}
	return update, nil
}

// MessageResponse is the envelope for operations that acknowledge with a
// message and the affected task ID.
type MessageResponse struct {
	Message string     `json:"message"`
	TaskID  *uuid.UUID `json:"taskId,omitempty"`
	Status  string     `json:"status,omitempty"`
}

// TaskCountResponse is the response for the daily task count endpoint.
type TaskCountResponse struct {
	TaskCount int `json:"taskCount"`
}

// NotificationsResponse is the response for the due-soon notifications
// endpoint.
type NotificationsResponse struct {
	Notifications []*domain.Task `json:"notifications"`
}
