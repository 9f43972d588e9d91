package task

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a task does not exist or belongs to another user.
var ErrNotFound = errors.New("task not found")

// TaskStatus represents the state of a task.
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
)

// Statuses lists every valid status in display order.
var Statuses = []TaskStatus{StatusPending, StatusInProgress, StatusCompleted}

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Task is a personal to-do item owned by exactly one user.
type Task struct {
	ID          string     `gorm:"primaryKey;size:36" json:"id"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description *string    `gorm:"size:1000" json:"description"`
	Deadline    time.Time  `gorm:"not null" json:"deadline"`
	Status      TaskStatus `gorm:"size:20;not null;default:pending" json:"status"`
	UserID      string     `gorm:"size:64;not null;index" json:"user_id"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName returns the table name for the Task entity.
func (Task) TableName() string {
	return "tasks"
}

// DescriptionText returns the description or an empty string when unset.
func (t Task) DescriptionText() string {
	if t.Description == nil {
		return ""
	}
	return *t.Description
}
