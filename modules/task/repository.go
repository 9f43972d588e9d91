package task

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/example/task-manager/domain/task"
	"gorm.io/gorm"
)

// Repository provides ownership-scoped access to task storage.
// Every query filters on user_id, so another user's task looks exactly like a missing one.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new task repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create saves a new task to the database.
func (r *Repository) Create(ctx context.Context, task *domain.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// FindOwned retrieves a task by ID if it belongs to userID.
func (r *Repository) FindOwned(ctx context.Context, userID, id string) (*domain.Task, error) {
	var task domain.Task
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return &task, nil
}

// ListOwned retrieves all tasks of userID, newest first.
func (r *Repository) ListOwned(ctx context.Context, userID string) ([]domain.Task, error) {
	tasks := make([]domain.Task, 0)
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// UpdateOwned writes the given columns to a task owned by userID.
func (r *Repository) UpdateOwned(ctx context.Context, userID, id string, columns map[string]any) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Task{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(columns)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteOwned permanently removes a task owned by userID.
func (r *Repository) DeleteOwned(ctx context.Context, userID, id string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&domain.Task{})
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
