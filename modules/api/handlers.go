package api

import (
	"bytes"
	"encoding/json"
	"errors"

	taskdomain "github.com/example/task-manager/domain/task"
	"github.com/example/task-manager/modules/activity"
	"github.com/example/task-manager/modules/task"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
)

// ActivityLog exposes the recorded task events of a user.
type ActivityLog interface {
	Entries(userID string) []activity.Entry
}

// Handlers holds the HTTP handlers for task routes.
type Handlers struct {
	tasks    task.TaskPort
	activity ActivityLog
	logger   types.Logger
}

// NewHandlers creates a new Handlers instance. activityLog may be nil.
func NewHandlers(tasks task.TaskPort, activityLog ActivityLog, logger types.Logger) *Handlers {
	return &Handlers{
		tasks:    tasks,
		activity: activityLog,
		logger:   logger,
	}
}

// ListTasks handles GET /tasks.
func (h *Handlers) ListTasks(c *fiber.Ctx) error {
	claims, ok := claimsFrom(c)
	if !ok {
		return unauthenticated(c)
	}

	tasks, err := h.tasks.ListTasks(c.UserContext(), claims.UserID)
	if err != nil {
		return h.fail(c, "list", err)
	}

	return c.JSON(Envelope{Success: true, Data: tasks})
}

// CreateTask handles POST /tasks.
func (h *Handlers) CreateTask(c *fiber.Ctx) error {
	claims, ok := claimsFrom(c)
	if !ok {
		return unauthenticated(c)
	}

	in, err := parseInput(c)
	if err != nil {
		return invalidBody(c)
	}

	created, err := h.tasks.CreateTask(c.UserContext(), claims.UserID, in)
	if err != nil {
		return h.fail(c, "create", err)
	}

	return c.Status(fiber.StatusCreated).JSON(Envelope{
		Success: true,
		Message: MessageCreated,
		Data:    created,
	})
}

// GetTask handles GET /tasks/:id.
func (h *Handlers) GetTask(c *fiber.Ctx) error {
	claims, ok := claimsFrom(c)
	if !ok {
		return unauthenticated(c)
	}

	found, err := h.tasks.GetTask(c.UserContext(), claims.UserID, c.Params("id"))
	if err != nil {
		return h.fail(c, "get", err)
	}

	return c.JSON(Envelope{Success: true, Data: found})
}

// UpdateTask handles PUT and PATCH /tasks/:id.
func (h *Handlers) UpdateTask(c *fiber.Ctx) error {
	claims, ok := claimsFrom(c)
	if !ok {
		return unauthenticated(c)
	}

	in, err := parseInput(c)
	if err != nil {
		return invalidBody(c)
	}

	updated, err := h.tasks.UpdateTask(c.UserContext(), claims.UserID, c.Params("id"), in)
	if err != nil {
		return h.fail(c, "update", err)
	}

	return c.JSON(Envelope{
		Success: true,
		Message: MessageUpdated,
		Data:    updated,
	})
}

// DeleteTask handles DELETE /tasks/:id.
func (h *Handlers) DeleteTask(c *fiber.Ctx) error {
	claims, ok := claimsFrom(c)
	if !ok {
		return unauthenticated(c)
	}

	if err := h.tasks.DeleteTask(c.UserContext(), claims.UserID, c.Params("id")); err != nil {
		return h.fail(c, "delete", err)
	}

	return c.JSON(Envelope{Success: true, Message: MessageDeleted})
}

// ListActivity handles GET /activity.
func (h *Handlers) ListActivity(c *fiber.Ctx) error {
	claims, ok := claimsFrom(c)
	if !ok {
		return unauthenticated(c)
	}

	var entries []activity.Entry
	if h.activity != nil {
		entries = h.activity.Entries(claims.UserID)
	}
	if entries == nil {
		entries = []activity.Entry{}
	}

	return c.JSON(Envelope{Success: true, Data: entries})
}

// fail maps task errors onto HTTP responses.
func (h *Handlers) fail(c *fiber.Ctx, op string, err error) error {
	var verr *taskdomain.ValidationError
	switch {
	case errors.Is(err, taskdomain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(Envelope{
			Success: false,
			Message: MessageNotFound,
		})
	case errors.As(err, &verr):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(Envelope{
			Success: false,
			Message: MessageValidationFailed,
			Errors:  verr.Fields,
		})
	default:
		h.logger.Error("Task request failed", "op", op, "path", c.Path(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(Envelope{
			Success: false,
			Message: MessageServerError,
		})
	}
}

// parseInput decodes the request body. An empty body is an empty payload.
func parseInput(c *fiber.Ctx) (taskdomain.Input, error) {
	var in taskdomain.Input
	body := bytes.TrimSpace(c.Body())
	if len(body) == 0 {
		return in, nil
	}
	if err := json.Unmarshal(body, &in); err != nil {
		return taskdomain.Input{}, err
	}
	return in, nil
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(Envelope{
		Success: false,
		Message: MessageInvalidBody,
	})
}
