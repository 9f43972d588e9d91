package activity

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/example/task-manager/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
)

// DefaultCapacity is the number of entries kept in memory.
const DefaultCapacity = 500

// Entry is one recorded task lifecycle event.
type Entry struct {
	TaskID    string    `json:"task_id"`
	UserID    string    `json:"user_id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// ActivityModule keeps an audit trail of task events.
// It subscribes to domain events using the EventConsumerModule interface.
type ActivityModule struct {
	entries  []Entry
	capacity int
	mu       sync.RWMutex
	logger   types.Logger
}

var _ mono.Module = (*ActivityModule)(nil)
var _ mono.EventConsumerModule = (*ActivityModule)(nil)

// NewModule creates a new ActivityModule keeping at most capacity entries.
func NewModule(capacity int, logger types.Logger) *ActivityModule {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &ActivityModule{
		entries:  make([]Entry, 0),
		capacity: capacity,
		logger:   logger.WithModule("activity"),
	}
}

func (m *ActivityModule) Name() string {
	return "activity"
}

func (m *ActivityModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskCreatedV1, m.handleTaskCreated, m); err != nil {
		return fmt.Errorf("failed to register TaskCreated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskUpdatedV1, m.handleTaskUpdated, m); err != nil {
		return fmt.Errorf("failed to register TaskUpdated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskDeletedV1, m.handleTaskDeleted, m); err != nil {
		return fmt.Errorf("failed to register TaskDeleted consumer: %w", err)
	}

	m.logger.Info("Registered event consumers", "events", "TaskCreated, TaskUpdated, TaskDeleted")
	return nil
}

func (m *ActivityModule) handleTaskCreated(_ context.Context, event events.TaskCreatedEvent, _ *mono.Msg) error {
	m.logger.Info("Task created", "task_id", event.TaskID, "user_id", event.UserID, "status", event.Status)
	m.record(Entry{
		TaskID:    event.TaskID,
		UserID:    event.UserID,
		Type:      "task_created",
		Message:   fmt.Sprintf("Task '%s' created, due %s", event.Title, event.Deadline.Format(time.RFC3339)),
		Timestamp: event.CreatedAt,
	})
	return nil
}

func (m *ActivityModule) handleTaskUpdated(_ context.Context, event events.TaskUpdatedEvent, _ *mono.Msg) error {
	m.logger.Info("Task updated", "task_id", event.TaskID, "user_id", event.UserID, "fields", event.Fields)
	message := fmt.Sprintf("Task %s updated", event.TaskID)
	if len(event.Fields) > 0 {
		message = fmt.Sprintf("Task %s updated: %s", event.TaskID, strings.Join(event.Fields, ", "))
	}
	m.record(Entry{
		TaskID:    event.TaskID,
		UserID:    event.UserID,
		Type:      "task_updated",
		Message:   message,
		Timestamp: event.UpdatedAt,
	})
	return nil
}

func (m *ActivityModule) handleTaskDeleted(_ context.Context, event events.TaskDeletedEvent, _ *mono.Msg) error {
	m.logger.Info("Task deleted", "task_id", event.TaskID, "user_id", event.UserID)
	m.record(Entry{
		TaskID:    event.TaskID,
		UserID:    event.UserID,
		Type:      "task_deleted",
		Message:   fmt.Sprintf("Task %s deleted", event.TaskID),
		Timestamp: event.DeletedAt,
	})
	return nil
}

func (m *ActivityModule) record(entry Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = append(m.entries, entry)
	if over := len(m.entries) - m.capacity; over > 0 {
		m.entries = append(m.entries[:0:0], m.entries[over:]...)
	}
}

// Entries returns the recorded entries of userID, oldest first.
func (m *ActivityModule) Entries(userID string) []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Entry, 0)
	for _, entry := range m.entries {
		if entry.UserID == userID {
			result = append(result, entry)
		}
	}
	return result
}

func (m *ActivityModule) Start(_ context.Context) error {
	m.logger.Info("Module started - listening for task events")
	return nil
}

func (m *ActivityModule) Stop(_ context.Context) error {
	m.logger.Info("Module stopped")
	return nil
}
