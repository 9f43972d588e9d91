package console

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/example/task-manager/domain/task"
)

// DefaultTimeout bounds every gateway request.
const DefaultTimeout = 30 * time.Second

// Gateway is the task API as seen from the console.
type Gateway interface {
	ListTasks(ctx context.Context) ([]task.Task, error)
	CreateTask(ctx context.Context, in task.Input) (*task.Task, error)
	GetTask(ctx context.Context, id string) (*task.Task, error)
	UpdateTask(ctx context.Context, id string, in task.Input) (*task.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// Client talks to the task API over HTTP.
type Client struct {
	baseURL string
	session Session
	http    *http.Client
}

var _ Gateway = (*Client)(nil)

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.http = hc
	}
}

// NewClient constructs a client for the API rooted at baseURL,
// e.g. http://localhost:3000/api.
func NewClient(baseURL string, session Session, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		session: session,
		http:    &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope mirrors the API response wrapper.
type envelope struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Data    json.RawMessage  `json:"data"`
	Errors  task.FieldErrors `json:"errors"`
}

// ListTasks calls GET /tasks.
func (c *Client) ListTasks(ctx context.Context) ([]task.Task, error) {
	var tasks []task.Task
	if err := c.do(ctx, http.MethodGet, nil, &tasks, "tasks"); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []task.Task{}
	}
	return tasks, nil
}

// CreateTask calls POST /tasks.
func (c *Client) CreateTask(ctx context.Context, in task.Input) (*task.Task, error) {
	var created task.Task
	if err := c.do(ctx, http.MethodPost, in, &created, "tasks"); err != nil {
		return nil, err
	}
	return &created, nil
}

// GetTask calls GET /tasks/{id}.
func (c *Client) GetTask(ctx context.Context, id string) (*task.Task, error) {
	var found task.Task
	if err := c.do(ctx, http.MethodGet, nil, &found, "tasks", url.PathEscape(id)); err != nil {
		return nil, err
	}
	return &found, nil
}

// UpdateTask calls PUT /tasks/{id}.
func (c *Client) UpdateTask(ctx context.Context, id string, in task.Input) (*task.Task, error) {
	var updated task.Task
	if err := c.do(ctx, http.MethodPut, in, &updated, "tasks", url.PathEscape(id)); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteTask calls DELETE /tasks/{id}.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, nil, nil, "tasks", url.PathEscape(id))
}

// do sends one request and decodes the envelope's data into out.
func (c *Client) do(ctx context.Context, method string, body any, out any, path ...string) error {
	endpoint, err := url.JoinPath(c.baseURL, path...)
	if err != nil {
		return fmt.Errorf("invalid API URL %q: %w", c.baseURL, err)
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	c.applyHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Err: err}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		// Error statuses still map to their sentinel even without a JSON body.
		if resp.StatusCode < 300 {
			return &NetworkError{Err: fmt.Errorf("malformed response: %w", err)}
		}
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if out == nil || len(env.Data) == 0 {
			return nil
		}
		if err := json.Unmarshal(env.Data, out); err != nil {
			return &NetworkError{Err: fmt.Errorf("malformed response data: %w", err)}
		}
		return nil
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthenticated
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusUnprocessableEntity:
		return &ValidationError{Message: env.Message, Fields: env.Errors}
	default:
		message := env.Message
		if message == "" {
			message = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: message}
	}
}

func (c *Client) applyHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	if req.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.session.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.session.Token)
	}
}

// IsNetworkError reports whether err is a transport failure.
func IsNetworkError(err error) bool {
	var nerr *NetworkError
	return errors.As(err, &nerr)
}
