package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	domain "github.com/example/task-manager/domain/task"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// TaskPort defines the task operations available to other modules.
type TaskPort interface {
	ListTasks(ctx context.Context, userID string) ([]domain.Task, error)
	CreateTask(ctx context.Context, userID string, in domain.Input) (*domain.Task, error)
	GetTask(ctx context.Context, userID, taskID string) (*domain.Task, error)
	UpdateTask(ctx context.Context, userID, taskID string, in domain.Input) (*domain.Task, error)
	DeleteTask(ctx context.Context, userID, taskID string) error
}

// taskAdapter wraps ServiceContainer for type-safe cross-module communication.
type taskAdapter struct {
	container mono.ServiceContainer
}

// NewTaskAdapter creates a new adapter for task services.
// container is the ServiceContainer from the task module received via SetDependencyServiceContainer.
func NewTaskAdapter(container mono.ServiceContainer) TaskPort {
	if container == nil {
		panic("task adapter requires non-nil ServiceContainer")
	}
	return &taskAdapter{container: container}
}

// ListTasks lists the caller's tasks via the list-tasks service.
func (a *taskAdapter) ListTasks(ctx context.Context, userID string) ([]domain.Task, error) {
	req := ListTasksRequest{UserID: userID}
	var resp ListTasksResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"list-tasks",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("list-tasks service call failed: %w", err)
	}
	if resp.Tasks == nil {
		resp.Tasks = []domain.Task{}
	}
	return resp.Tasks, nil
}

// CreateTask creates a task via the create-task service.
func (a *taskAdapter) CreateTask(ctx context.Context, userID string, in domain.Input) (*domain.Task, error) {
	req := CreateTaskRequest{UserID: userID, Input: in}
	var resp TaskReply
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"create-task",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("create-task service call failed: %w", err)
	}
	return fromReply(resp)
}

// GetTask retrieves a task via the get-task service.
func (a *taskAdapter) GetTask(ctx context.Context, userID, taskID string) (*domain.Task, error) {
	req := GetTaskRequest{UserID: userID, TaskID: taskID}
	var resp TaskReply
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"get-task",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("get-task service call failed: %w", err)
	}
	return fromReply(resp)
}

// UpdateTask updates a task via the update-task service.
func (a *taskAdapter) UpdateTask(ctx context.Context, userID, taskID string, in domain.Input) (*domain.Task, error) {
	req := UpdateTaskRequest{UserID: userID, TaskID: taskID, Input: in}
	var resp TaskReply
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"update-task",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("update-task service call failed: %w", err)
	}
	return fromReply(resp)
}

// DeleteTask deletes a task via the delete-task service.
func (a *taskAdapter) DeleteTask(ctx context.Context, userID, taskID string) error {
	req := DeleteTaskRequest{UserID: userID, TaskID: taskID}
	var resp TaskReply
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"delete-task",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return fmt.Errorf("delete-task service call failed: %w", err)
	}
	_, err := fromReply(resp)
	return err
}

// toReply folds domain failures into the reply; other errors stay errors.
func toReply(task *domain.Task, err error) (TaskReply, error) {
	var verr *domain.ValidationError
	switch {
	case err == nil:
		return TaskReply{Task: task}, nil
	case errors.Is(err, domain.ErrNotFound):
		return TaskReply{NotFound: true}, nil
	case errors.As(err, &verr):
		return TaskReply{Errors: verr.Fields}, nil
	default:
		return TaskReply{}, err
	}
}

// fromReply is the inverse of toReply.
func fromReply(resp TaskReply) (*domain.Task, error) {
	switch {
	case resp.NotFound:
		return nil, domain.ErrNotFound
	case len(resp.Errors) > 0:
		return nil, &domain.ValidationError{Fields: resp.Errors}
	default:
		return resp.Task, nil
	}
}
