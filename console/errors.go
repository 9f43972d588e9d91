package console

import (
	"errors"
	"fmt"

	"github.com/example/task-manager/domain/task"
)

// General messages shown by the console.
const (
	MessageFetchFailed     = "Failed to fetch tasks"
	MessageCreateFailed    = "Failed to create task"
	MessageUpdateFailed    = "Failed to update task"
	MessageDeleteFailed    = "Failed to delete task"
	MessageNetworkError    = "Network error. Please try again."
	MessageNotFound        = "Task not found"
	MessageUnauthenticated = "Unauthenticated."
)

var (
	// ErrNotFound is returned when the task does not exist or belongs to someone else.
	ErrNotFound = errors.New("task not found")
	// ErrUnauthenticated is returned when the gateway rejects the session token.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrNoSelection is returned by SubmitUpdate when no task is being edited.
	ErrNoSelection = errors.New("no task selected")
)

// ValidationError is a 422 response from the gateway.
type ValidationError struct {
	Message string
	Fields  task.FieldErrors
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %d field(s)", len(e.Fields))
}

// APIError is any other non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("http %d: %s", e.StatusCode, e.Message)
}

// NetworkError wraps a transport failure or an unreadable response.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return "network error: " + e.Err.Error()
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
