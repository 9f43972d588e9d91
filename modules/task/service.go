package task

import (
	"context"

	domain "github.com/example/task-manager/domain/task"
	"github.com/example/task-manager/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/google/uuid"
)

// Service implements the task operations on top of the repository.
// Validation failures are returned as *domain.ValidationError and
// missing or foreign tasks as domain.ErrNotFound.
type Service struct {
	repo      *Repository
	validator *domain.Validator
	eventBus  mono.EventBus
	logger    types.Logger
}

var _ TaskPort = (*Service)(nil)

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithValidator replaces the default validator, typically to pin its clock in tests.
func WithValidator(v *domain.Validator) ServiceOption {
	return func(s *Service) {
		s.validator = v
	}
}

// WithEventBus enables publishing of task lifecycle events.
func WithEventBus(bus mono.EventBus) ServiceOption {
	return func(s *Service) {
		s.eventBus = bus
	}
}

// NewService creates a new task service.
func NewService(repo *Repository, logger types.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		repo:      repo,
		validator: domain.NewValidator(),
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListTasks returns every task owned by userID, newest first.
func (s *Service) ListTasks(ctx context.Context, userID string) ([]domain.Task, error) {
	return s.repo.ListOwned(ctx, userID)
}

// CreateTask validates the payload and stores a new task owned by userID.
func (s *Service) CreateTask(ctx context.Context, userID string, in domain.Input) (*domain.Task, error) {
	changes, err := s.validator.ValidateCreate(in)
	if err != nil {
		return nil, err
	}

	now := s.validator.Now().UTC()
	task := &domain.Task{
		ID:        uuid.New().String(),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	changes.Apply(task)

	if err := s.repo.Create(ctx, task); err != nil {
		return nil, err
	}

	if s.eventBus != nil {
		event := events.TaskCreatedEvent{
			TaskID:    task.ID,
			Title:     task.Title,
			Status:    string(task.Status),
			Deadline:  task.Deadline,
			UserID:    task.UserID,
			CreatedAt: task.CreatedAt,
		}
		if err := events.TaskCreatedV1.Publish(s.eventBus, event, nil); err != nil {
			// Event publishing is best-effort; log but don't fail the operation
			s.logger.Warn("Failed to publish TaskCreated event", "task_id", task.ID, "error", err)
		}
	}

	return task, nil
}

// GetTask returns a single task owned by userID.
func (s *Service) GetTask(ctx context.Context, userID, id string) (*domain.Task, error) {
	return s.repo.FindOwned(ctx, userID, id)
}

// UpdateTask applies a partial update. Ownership is checked before validation,
// and a supplied deadline is checked against the current time.
func (s *Service) UpdateTask(ctx context.Context, userID, id string, in domain.Input) (*domain.Task, error) {
	task, err := s.repo.FindOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	changes, err := s.validator.ValidateUpdate(in)
	if err != nil {
		return nil, err
	}

	now := s.validator.Now().UTC()
	columns := changes.Columns()
	columns["updated_at"] = now
	if err := s.repo.UpdateOwned(ctx, userID, id, columns); err != nil {
		return nil, err
	}
	changes.Apply(task)
	task.UpdatedAt = now

	if s.eventBus != nil {
		event := events.TaskUpdatedEvent{
			TaskID:    task.ID,
			UserID:    task.UserID,
			Fields:    changes.Fields(),
			Status:    string(task.Status),
			UpdatedAt: now,
		}
		if err := events.TaskUpdatedV1.Publish(s.eventBus, event, nil); err != nil {
			s.logger.Warn("Failed to publish TaskUpdated event", "task_id", task.ID, "error", err)
		}
	}

	return task, nil
}

// DeleteTask permanently removes a task owned by userID.
func (s *Service) DeleteTask(ctx context.Context, userID, id string) error {
	if err := s.repo.DeleteOwned(ctx, userID, id); err != nil {
		return err
	}

	if s.eventBus != nil {
		event := events.TaskDeletedEvent{
			TaskID:    id,
			UserID:    userID,
			DeletedAt: s.validator.Now().UTC(),
		}
		if err := events.TaskDeletedV1.Publish(s.eventBus, event, nil); err != nil {
			s.logger.Warn("Failed to publish TaskDeleted event", "task_id", id, "error", err)
		}
	}

	return nil
}
