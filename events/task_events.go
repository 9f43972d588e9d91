package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// TaskCreatedEvent is emitted when a new task is created.
type TaskCreatedEvent struct {
	TaskID    string    `json:"task_id"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	Deadline  time.Time `json:"deadline"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TaskCreatedV1 is the typed event definition for task creation.
// Subject: events.task.v1.task-created
var TaskCreatedV1 = helper.EventDefinition[TaskCreatedEvent](
	"task", "TaskCreated", "v1",
)

// TaskUpdatedEvent is emitted after a partial update has been applied.
type TaskUpdatedEvent struct {
	TaskID    string    `json:"task_id"`
	UserID    string    `json:"user_id"`
	Fields    []string  `json:"fields"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TaskUpdatedV1 is the typed event definition for task updates.
// Subject: events.task.v1.task-updated
var TaskUpdatedV1 = helper.EventDefinition[TaskUpdatedEvent](
	"task", "TaskUpdated", "v1",
)

// TaskDeletedEvent is emitted when a task is deleted.
type TaskDeletedEvent struct {
	TaskID    string    `json:"task_id"`
	UserID    string    `json:"user_id"`
	DeletedAt time.Time `json:"deleted_at"`
}

// TaskDeletedV1 is the typed event definition for task deletion.
// Subject: events.task.v1.task-deleted
var TaskDeletedV1 = helper.EventDefinition[TaskDeletedEvent](
	"task", "TaskDeleted", "v1",
)
