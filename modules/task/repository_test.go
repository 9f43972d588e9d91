package task

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/example/task-manager/domain/task"
	"github.com/google/uuid"
)

func newTestTask(userID, title string, createdAt time.Time) *domain.Task {
	return &domain.Task{
		ID:        uuid.New().String(),
		Title:     title,
		Deadline:  createdAt.Add(24 * time.Hour),
		Status:    domain.StatusPending,
		UserID:    userID,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestRepository_Create(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	task := newTestTask("user-a", "Test Task", time.Now())

	if err := repo.Create(ctx, task); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Verify task was created
	var found domain.Task
	if err := db.First(&found, "id = ?", task.ID).Error; err != nil {
		t.Fatalf("failed to find created task: %v", err)
	}

	if found.Title != task.Title {
		t.Errorf("expected title %q, got %q", task.Title, found.Title)
	}
	if found.UserID != "user-a" {
		t.Errorf("expected user_id %q, got %q", "user-a", found.UserID)
	}
	if found.Description != nil {
		t.Errorf("expected nil description, got %q", *found.Description)
	}
}

func TestRepository_FindOwned(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	task := newTestTask("user-a", "FindOwned Test", time.Now())
	if err := repo.Create(ctx, task); err != nil {
		t.Fatalf("failed to create test task: %v", err)
	}

	t.Run("owner finds task", func(t *testing.T) {
		found, err := repo.FindOwned(ctx, "user-a", task.ID)
		if err != nil {
			t.Fatalf("FindOwned() error = %v", err)
		}
		if found.ID != task.ID {
			t.Errorf("expected ID %q, got %q", task.ID, found.ID)
		}
	})

	t.Run("other user gets not found", func(t *testing.T) {
		_, err := repo.FindOwned(ctx, "user-b", task.ID)
		if !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("unknown id gets not found", func(t *testing.T) {
		_, err := repo.FindOwned(ctx, "user-a", "9999")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestRepository_ListOwned(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	for i, title := range []string{"first", "second", "third"} {
		if err := repo.Create(ctx, newTestTask("user-a", title, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("failed to create task: %v", err)
		}
	}
	if err := repo.Create(ctx, newTestTask("user-b", "foreign", base.Add(time.Hour))); err != nil {
		t.Fatalf("failed to create task: %v", err)
	}

	tasks, err := repo.ListOwned(ctx, "user-a")
	if err != nil {
		t.Fatalf("ListOwned() error = %v", err)
	}

	if len(tasks) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(tasks))
	}
	want := []string{"third", "second", "first"}
	for i, task := range tasks {
		if task.Title != want[i] {
			t.Errorf("tasks[%d].Title = %q, want %q", i, task.Title, want[i])
		}
	}

	empty, err := repo.ListOwned(ctx, "user-c")
	if err != nil {
		t.Fatalf("ListOwned() error = %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", empty)
	}
}

func TestRepository_UpdateOwned(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	desc := "to be cleared"
	task := newTestTask("user-a", "Original", time.Now())
	task.Description = &desc
	if err := repo.Create(ctx, task); err != nil {
		t.Fatalf("failed to create test task: %v", err)
	}

	err := repo.UpdateOwned(ctx, "user-a", task.ID, map[string]any{
		"title":       "Updated",
		"description": nil,
	})
	if err != nil {
		t.Fatalf("UpdateOwned() error = %v", err)
	}

	found, err := repo.FindOwned(ctx, "user-a", task.ID)
	if err != nil {
		t.Fatalf("FindOwned() error = %v", err)
	}
	if found.Title != "Updated" {
		t.Errorf("expected title %q, got %q", "Updated", found.Title)
	}
	if found.Description != nil {
		t.Errorf("expected description to be cleared, got %q", *found.Description)
	}
	if found.Status != domain.StatusPending {
		t.Errorf("expected status to stay %q, got %q", domain.StatusPending, found.Status)
	}

	if err := repo.UpdateOwned(ctx, "user-b", task.ID, map[string]any{"title": "Hijacked"}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound for other user, got %v", err)
	}
}

func TestRepository_DeleteOwned(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	task := newTestTask("user-a", "Delete Me", time.Now())
	if err := repo.Create(ctx, task); err != nil {
		t.Fatalf("failed to create test task: %v", err)
	}

	if err := repo.DeleteOwned(ctx, "user-b", task.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound for other user, got %v", err)
	}

	if err := repo.DeleteOwned(ctx, "user-a", task.ID); err != nil {
		t.Fatalf("DeleteOwned() error = %v", err)
	}

	// Hard delete: the row is gone, not just hidden.
	var count int64
	db.Model(&domain.Task{}).Where("id = ?", task.ID).Count(&count)
	if count != 0 {
		t.Errorf("expected row to be removed, found %d", count)
	}

	if err := repo.DeleteOwned(ctx, "user-a", task.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}
