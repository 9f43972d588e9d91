package task

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	domain "github.com/example/task-manager/domain/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func deadlineIn(clock *testClock, d time.Duration) json.RawMessage {
	return domain.RawString(clock.Now().Add(d).Format(time.RFC3339))
}

func validationFields(t *testing.T, err error) domain.FieldErrors {
	t.Helper()
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr), "expected *ValidationError, got %v", err)
	return verr.Fields
}

func TestService_CreateTask(t *testing.T) {
	svc, clock := setupTestService(t)
	ctx := context.Background()

	created, err := svc.CreateTask(ctx, "user-a", domain.Input{
		Title:       domain.RawString("Write report"),
		Description: domain.RawString("Q1 numbers"),
		Deadline:    deadlineIn(clock, 48*time.Hour),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "user-a", created.UserID)
	assert.Equal(t, domain.StatusPending, created.Status)

	// create then read returns the same client-supplied fields
	found, err := svc.GetTask(ctx, "user-a", created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Title, found.Title)
	assert.Equal(t, created.DescriptionText(), found.DescriptionText())
	assert.True(t, created.Deadline.Equal(found.Deadline))
	assert.Equal(t, created.Status, found.Status)
}

func TestService_CreateTask_KeepsGivenStatus(t *testing.T) {
	svc, clock := setupTestService(t)

	for _, status := range domain.Statuses {
		created, err := svc.CreateTask(context.Background(), "user-a", domain.Input{
			Title:    domain.RawString("Task " + string(status)),
			Deadline: deadlineIn(clock, time.Hour),
			Status:   domain.RawString(string(status)),
		})
		require.NoError(t, err)
		assert.Equal(t, status, created.Status)
	}
}

func TestService_CreateTask_EmptyTitleIsRejected(t *testing.T) {
	svc, clock := setupTestService(t)
	ctx := context.Background()

	_, err := svc.CreateTask(ctx, "user-a", domain.Input{
		Title:    domain.RawString(""),
		Deadline: deadlineIn(clock, 2*24*time.Hour),
	})
	assert.Contains(t, validationFields(t, err), domain.FieldTitle)

	tasks, err := svc.ListTasks(ctx, "user-a")
	require.NoError(t, err)
	assert.Empty(t, tasks, "nothing must be persisted")
}

func TestService_CreateTask_DeadlineTwoYearsOut(t *testing.T) {
	svc, clock := setupTestService(t)

	_, err := svc.CreateTask(context.Background(), "user-a", domain.Input{
		Title:    domain.RawString("Later"),
		Deadline: domain.RawString(clock.Now().AddDate(2, 0, 0).Format(time.RFC3339)),
	})
	assert.Contains(t, validationFields(t, err), domain.FieldDeadline)
}

func TestService_ListTasks_NewestFirstAndScoped(t *testing.T) {
	svc, clock := setupTestService(t)
	ctx := context.Background()

	for _, title := range []string{"one", "two", "three"} {
		_, err := svc.CreateTask(ctx, "user-a", domain.Input{Title: domain.RawString(title), Deadline: deadlineIn(clock, 24*time.Hour)})
		require.NoError(t, err)
		clock.Advance(time.Second)
	}
	_, err := svc.CreateTask(ctx, "user-b", domain.Input{Title: domain.RawString("other"), Deadline: deadlineIn(clock, 24*time.Hour)})
	require.NoError(t, err)

	tasks, err := svc.ListTasks(ctx, "user-a")
	require.NoError(t, err)

	titles := make([]string, 0, len(tasks))
	for _, task := range tasks {
		titles = append(titles, task.Title)
	}
	assert.Equal(t, []string{"three", "two", "one"}, titles)

	empty, err := svc.ListTasks(ctx, "user-c")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestService_OwnershipIsolation(t *testing.T) {
	svc, clock := setupTestService(t)
	ctx := context.Background()

	owned, err := svc.CreateTask(ctx, "user-a", domain.Input{Title: domain.RawString("mine"), Deadline: deadlineIn(clock, time.Hour)})
	require.NoError(t, err)

	_, err = svc.GetTask(ctx, "user-b", owned.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.UpdateTask(ctx, "user-b", owned.ID, domain.Input{Title: domain.RawString("stolen")})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = svc.DeleteTask(ctx, "user-b", owned.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := svc.ListTasks(ctx, "user-b")
	require.NoError(t, err)
	assert.Empty(t, list)

	// the owner's task is untouched
	found, err := svc.GetTask(ctx, "user-a", owned.ID)
	require.NoError(t, err)
	assert.Equal(t, "mine", found.Title)
}

func TestService_UpdateTask_StatusOnly(t *testing.T) {
	svc, clock := setupTestService(t)
	ctx := context.Background()

	created, err := svc.CreateTask(ctx, "user-a", domain.Input{
		Title:       domain.RawString("Keep me"),
		Description: domain.RawString("details"),
		Deadline:    deadlineIn(clock, 72*time.Hour),
	})
	require.NoError(t, err)

	clock.Advance(time.Minute)
	updated, err := svc.UpdateTask(ctx, "user-a", created.ID, domain.Input{Status: domain.RawString("completed")})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, updated.Status)

	found, err := svc.GetTask(ctx, "user-a", created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, found.Status)
	assert.Equal(t, "Keep me", found.Title)
	assert.Equal(t, "details", found.DescriptionText())
	assert.True(t, created.Deadline.Equal(found.Deadline))
	assert.True(t, found.UpdatedAt.After(created.UpdatedAt))
}

func TestService_UpdateTask_ClearsDescription(t *testing.T) {
	svc, clock := setupTestService(t)
	ctx := context.Background()

	created, err := svc.CreateTask(ctx, "user-a", domain.Input{
		Title:       domain.RawString("Has notes"),
		Description: domain.RawString("notes"),
		Deadline:    deadlineIn(clock, time.Hour),
	})
	require.NoError(t, err)

	_, err = svc.UpdateTask(ctx, "user-a", created.ID, domain.Input{Description: json.RawMessage("null")})
	require.NoError(t, err)

	found, err := svc.GetTask(ctx, "user-a", created.ID)
	require.NoError(t, err)
	assert.Nil(t, found.Description)
}

func TestService_UpdateTask_UnknownIDIsNotFoundBeforeValidation(t *testing.T) {
	svc, _ := setupTestService(t)

	// The payload is invalid, but the missing task wins.
	_, err := svc.UpdateTask(context.Background(), "user-a", "9999", domain.Input{Title: domain.RawString("")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_UpdateTask_InvalidLeavesTaskUnchanged(t *testing.T) {
	svc, clock := setupTestService(t)
	ctx := context.Background()

	created, err := svc.CreateTask(ctx, "user-a", domain.Input{Title: domain.RawString("Stable"), Deadline: deadlineIn(clock, time.Hour)})
	require.NoError(t, err)

	_, err = svc.UpdateTask(ctx, "user-a", created.ID, domain.Input{
		Title:  domain.RawString(strings.Repeat("x", 300)),
		Status: domain.RawString("completed"),
	})
	assert.Contains(t, validationFields(t, err), domain.FieldTitle)

	found, err := svc.GetTask(ctx, "user-a", created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Stable", found.Title)
	assert.Equal(t, domain.StatusPending, found.Status)
}

// Updating an overdue task's deadline to its current value fails, because a supplied
// deadline is validated against the time of the update rather than the time of creation.
func TestService_UpdateTask_RevalidatesDeadlineAgainstCurrentTime(t *testing.T) {
	svc, clock := setupTestService(t)
	ctx := context.Background()

	deadline := deadlineIn(clock, time.Hour)
	created, err := svc.CreateTask(ctx, "user-a", domain.Input{Title: domain.RawString("Soon"), Deadline: deadline})
	require.NoError(t, err)

	clock.Advance(2 * time.Hour)

	// Untouched deadlines may be overdue.
	_, err = svc.UpdateTask(ctx, "user-a", created.ID, domain.Input{Status: domain.RawString("in_progress")})
	require.NoError(t, err)

	_, err = svc.UpdateTask(ctx, "user-a", created.ID, domain.Input{Deadline: deadline})
	assert.Contains(t, validationFields(t, err), domain.FieldDeadline)
}

func TestService_DeleteTask_Twice(t *testing.T) {
	svc, clock := setupTestService(t)
	ctx := context.Background()

	created, err := svc.CreateTask(ctx, "user-a", domain.Input{Title: domain.RawString("Gone"), Deadline: deadlineIn(clock, time.Hour)})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTask(ctx, "user-a", created.ID))
	assert.ErrorIs(t, svc.DeleteTask(ctx, "user-a", created.ID), domain.ErrNotFound)

	_, err = svc.GetTask(ctx, "user-a", created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReplyRoundTrip(t *testing.T) {
	task := &domain.Task{ID: "t-1", Title: "x"}
	infra := errors.New("disk on fire")

	tests := []struct {
		name     string
		task     *domain.Task
		err      error
		wantErr  error
		wantTask bool
	}{
		{name: "success", task: task, wantTask: true},
		{name: "not found", err: domain.ErrNotFound, wantErr: domain.ErrNotFound},
		{name: "validation", err: &domain.ValidationError{Fields: domain.FieldErrors{"title": {"bad"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply, err := toReply(tt.task, tt.err)
			require.NoError(t, err)

			// the reply crosses the bus as JSON
			encoded, err := json.Marshal(reply)
			require.NoError(t, err)
			var decoded TaskReply
			require.NoError(t, json.Unmarshal(encoded, &decoded))

			got, err := fromReply(decoded)
			switch {
			case tt.wantTask:
				require.NoError(t, err)
				assert.Equal(t, task.ID, got.ID)
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			default:
				assert.Equal(t, []string{"bad"}, validationFields(t, err)["title"])
			}
		})
	}

	_, err := toReply(nil, infra)
	assert.ErrorIs(t, err, infra)
}
