package console

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/example/task-manager/domain/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleTask = task.Task{
	ID:       "7b0d2c52-5a55-4d43-9f0e-3cf3f1a6c001",
	Title:    "Buy milk",
	Deadline: time.Date(2026, 3, 12, 9, 0, 0, 0, time.UTC),
	Status:   task.StatusPending,
	UserID:   "user-1",
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func TestClient_ListTasks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/tasks", r.URL.Path)
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": []task.Task{sampleTask}})
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/api", Session{Token: "secret-token"})
	tasks, err := client.ListTasks(context.Background())

	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, sampleTask.ID, tasks[0].ID)
	assert.True(t, tasks[0].Deadline.Equal(sampleTask.Deadline))
}

func TestClient_ListTasksEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": []task.Task{}})
	}))
	defer srv.Close()

	tasks, err := NewClient(srv.URL, Session{}).ListTasks(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
}

func TestClient_CreateTaskSendsInput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"title":"Buy milk","description":null}`, string(body))
		writeJSON(w, http.StatusCreated, map[string]any{"success": true, "message": "Task created successfully", "data": sampleTask})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, Session{Token: "t"})
	created, err := client.CreateTask(context.Background(), task.Input{
		Title:       task.RawString("Buy milk"),
		Description: json.RawMessage("null"),
	})

	require.NoError(t, err)
	assert.Equal(t, sampleTask.Title, created.Title)
}

func TestClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "unauthenticated",
			status: http.StatusUnauthorized,
			body:   `{"success":false,"message":"Unauthenticated."}`,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrUnauthenticated)
			},
		},
		{
			name:   "not found",
			status: http.StatusNotFound,
			body:   `{"success":false,"message":"Task not found"}`,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrNotFound)
			},
		},
		{
			name:   "validation",
			status: http.StatusUnprocessableEntity,
			body:   `{"success":false,"message":"Validation failed","errors":{"title":["The title field is required."]}}`,
			check: func(t *testing.T, err error) {
				var verr *ValidationError
				require.True(t, errors.As(err, &verr))
				assert.Equal(t, "Validation failed", verr.Message)
				assert.Equal(t, []string{"The title field is required."}, verr.Fields["title"])
			},
		},
		{
			name:   "server error",
			status: http.StatusInternalServerError,
			body:   `{"success":false,"message":"Server Error"}`,
			check: func(t *testing.T, err error) {
				var aerr *APIError
				require.True(t, errors.As(err, &aerr))
				assert.Equal(t, http.StatusInternalServerError, aerr.StatusCode)
				assert.Equal(t, "Server Error", aerr.Message)
			},
		},
		{
			name:   "error without json body",
			status: http.StatusBadGateway,
			body:   `<html>bad gateway</html>`,
			check: func(t *testing.T, err error) {
				var aerr *APIError
				require.True(t, errors.As(err, &aerr))
				assert.Equal(t, "Bad Gateway", aerr.Message)
			},
		},
		{
			name:   "malformed success body",
			status: http.StatusOK,
			body:   `not json`,
			check: func(t *testing.T, err error) {
				assert.True(t, IsNetworkError(err))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL, Session{Token: "t"}).GetTask(context.Background(), "42")
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestClient_TransportFailureIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	err := NewClient(url, Session{Token: "t"}).DeleteTask(context.Background(), "42")
	assert.True(t, IsNetworkError(err))
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewClient(srv.URL, Session{}, WithTimeout(50*time.Millisecond)).ListTasks(context.Background())
	assert.True(t, IsNetworkError(err))
}

func TestClient_UpdateAndDeletePaths(t *testing.T) {
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Method+" "+r.URL.Path)
		if r.Method == http.MethodDelete {
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Task deleted successfully"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": sampleTask})
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/api/", Session{Token: "t"})
	_, err := client.UpdateTask(context.Background(), sampleTask.ID, task.Input{Status: task.RawString("completed")})
	require.NoError(t, err)
	require.NoError(t, client.DeleteTask(context.Background(), sampleTask.ID))

	assert.Equal(t, []string{
		"PUT /api/tasks/" + sampleTask.ID,
		"DELETE /api/tasks/" + sampleTask.ID,
	}, seen)
}
