package task

import (
	domain "github.com/example/task-manager/domain/task"
)

// ListTasksRequest is the request for listing the caller's tasks.
type ListTasksRequest struct {
	UserID string `json:"user_id"`
}

// ListTasksResponse is the response for listing tasks.
type ListTasksResponse struct {
	Tasks []domain.Task `json:"tasks"`
}

// CreateTaskRequest is the request for creating a task.
type CreateTaskRequest struct {
	UserID string       `json:"user_id"`
	Input  domain.Input `json:"input"`
}

// GetTaskRequest is the request for getting a task.
type GetTaskRequest struct {
	UserID string `json:"user_id"`
	TaskID string `json:"task_id"`
}

// UpdateTaskRequest is the request for a partial update.
type UpdateTaskRequest struct {
	UserID string       `json:"user_id"`
	TaskID string       `json:"task_id"`
	Input  domain.Input `json:"input"`
}

// DeleteTaskRequest is the request for deleting a task.
type DeleteTaskRequest struct {
	UserID string `json:"user_id"`
	TaskID string `json:"task_id"`
}

// TaskReply carries the outcome of a single-task operation.
// Domain failures travel as fields so that only infrastructure failures become service errors.
type TaskReply struct {
	Task     *domain.Task       `json:"task,omitempty"`
	NotFound bool               `json:"not_found,omitempty"`
	Errors   domain.FieldErrors `json:"errors,omitempty"`
}
