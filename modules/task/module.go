package task

import (
	"context"
	"encoding/json"
	"fmt"

	domain "github.com/example/task-manager/domain/task"
	"github.com/example/task-manager/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
	"gorm.io/gorm"
)

// TaskModule owns task storage and serves the task operations over request-reply.
type TaskModule struct {
	db       *gorm.DB
	dbConfig DatabaseConfig
	service  *Service
	eventBus mono.EventBus
	logger   types.Logger
}

// Compile-time interface checks.
var _ mono.Module = (*TaskModule)(nil)
var _ mono.ServiceProviderModule = (*TaskModule)(nil)
var _ mono.EventEmitterModule = (*TaskModule)(nil)
var _ mono.HealthCheckableModule = (*TaskModule)(nil)

// NewModule creates a new TaskModule.
func NewModule(dbConfig DatabaseConfig, logger types.Logger) *TaskModule {
	return &TaskModule{
		dbConfig: dbConfig,
		logger:   logger.WithModule("task"),
	}
}

// Name returns the module name.
func (m *TaskModule) Name() string {
	return "task"
}

// SetEventBus receives the event bus from the framework.
func (m *TaskModule) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events published by this module.
func (m *TaskModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.TaskCreatedV1.ToBase(),
		events.TaskUpdatedV1.ToBase(),
		events.TaskDeletedV1.ToBase(),
	}
}

// RegisterServices registers request-reply services in the service container.
// The framework prefixes service names with "services.task.".
func (m *TaskModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "list-tasks", json.Unmarshal, json.Marshal, m.listTasks,
	); err != nil {
		return fmt.Errorf("failed to register list-tasks service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "create-task", json.Unmarshal, json.Marshal, m.createTask,
	); err != nil {
		return fmt.Errorf("failed to register create-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "get-task", json.Unmarshal, json.Marshal, m.getTask,
	); err != nil {
		return fmt.Errorf("failed to register get-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "update-task", json.Unmarshal, json.Marshal, m.updateTask,
	); err != nil {
		return fmt.Errorf("failed to register update-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "delete-task", json.Unmarshal, json.Marshal, m.deleteTask,
	); err != nil {
		return fmt.Errorf("failed to register delete-task service: %w", err)
	}

	m.logger.Info("Registered services", "services", "list-tasks, create-task, get-task, update-task, delete-task")
	return nil
}

// Start opens the database connection and runs migrations.
func (m *TaskModule) Start(_ context.Context) error {
	m.logger.Info("Connecting to database", "driver", m.dbConfig.Driver)

	db, err := OpenDatabase(m.dbConfig)
	if err != nil {
		return err
	}
	m.db = db

	opts := []ServiceOption{}
	if m.eventBus != nil {
		opts = append(opts, WithEventBus(m.eventBus))
	} else {
		m.logger.Warn("Event bus not set, events will not be published")
	}
	m.service = NewService(NewRepository(db), m.logger, opts...)

	m.logger.Info("Module started")
	return nil
}

// Stop closes the database connection.
func (m *TaskModule) Stop(_ context.Context) error {
	if m.db == nil {
		return nil
	}

	sqlDB, err := m.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	m.logger.Info("Database connection closed")
	return nil
}

// Health pings the database.
func (m *TaskModule) Health(ctx context.Context) mono.HealthStatus {
	if m.db == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "database not initialized",
		}
	}

	sqlDB, err := m.db.DB()
	if err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("failed to get sql.DB: %v", err),
		}
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database ping failed: %v", err),
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"driver": m.dbConfig.Driver,
		},
	}
}

// listTasks handles the list-tasks service request.
func (m *TaskModule) listTasks(ctx context.Context, req ListTasksRequest, _ *mono.Msg) (ListTasksResponse, error) {
	tasks, err := m.service.ListTasks(ctx, req.UserID)
	if err != nil {
		m.logger.Error("Failed to list tasks", "user_id", req.UserID, "error", err)
		return ListTasksResponse{}, err
	}
	return ListTasksResponse{Tasks: tasks}, nil
}

// createTask handles the create-task service request.
func (m *TaskModule) createTask(ctx context.Context, req CreateTaskRequest, _ *mono.Msg) (TaskReply, error) {
	task, err := m.service.CreateTask(ctx, req.UserID, req.Input)
	return m.reply("create", req.UserID, task, err)
}

// getTask handles the get-task service request.
func (m *TaskModule) getTask(ctx context.Context, req GetTaskRequest, _ *mono.Msg) (TaskReply, error) {
	task, err := m.service.GetTask(ctx, req.UserID, req.TaskID)
	return m.reply("get", req.UserID, task, err)
}

// updateTask handles the update-task service request.
func (m *TaskModule) updateTask(ctx context.Context, req UpdateTaskRequest, _ *mono.Msg) (TaskReply, error) {
	task, err := m.service.UpdateTask(ctx, req.UserID, req.TaskID, req.Input)
	return m.reply("update", req.UserID, task, err)
}

// deleteTask handles the delete-task service request.
func (m *TaskModule) deleteTask(ctx context.Context, req DeleteTaskRequest, _ *mono.Msg) (TaskReply, error) {
	err := m.service.DeleteTask(ctx, req.UserID, req.TaskID)
	return m.reply("delete", req.UserID, nil, err)
}

func (m *TaskModule) reply(op, userID string, task *domain.Task, err error) (TaskReply, error) {
	reply, err := toReply(task, err)
	if err != nil {
		m.logger.Error("Task operation failed", "op", op, "user_id", userID, "error", err)
	}
	return reply, err
}
