package api

import (
	domain "github.com/example/task-manager/domain/task"
)

const (
	MessageCreated          = "Task created successfully"
	MessageUpdated          = "Task updated successfully"
	MessageDeleted          = "Task deleted successfully"
	MessageNotFound         = "Task not found"
	MessageValidationFailed = "Validation failed"
	MessageUnauthenticated  = "Unauthenticated."
	MessageInvalidBody      = "Invalid request body"
	MessageServerError      = "Server Error"
)

// Envelope is the JSON wrapper of every API response.
type Envelope struct {
	Success bool               `json:"success"`
	Message string             `json:"message,omitempty"`
	Data    any                `json:"data,omitempty"`
	Errors  domain.FieldErrors `json:"errors,omitempty"`
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status  string         `json:"status"`
	Details map[string]any `json:"details,omitempty"`
}
