package console

import (
	"context"
	"errors"
	"time"

	"github.com/example/task-manager/domain/task"
)

// Draft is the form being filled in for a create or an edit.
// Deadline uses task.DeadlineInputLayout in the console's zone.
type Draft struct {
	Title       string
	Description string
	Deadline    string
	Status      task.TaskStatus
}

// EmptyDraft returns a blank form with the default status.
func EmptyDraft() Draft {
	return Draft{Status: task.StatusPending}
}

func (d Draft) input() task.Input {
	in := task.Input{
		Title:       task.RawString(d.Title),
		Description: task.RawString(d.Description),
		Deadline:    task.RawString(d.Deadline),
	}
	if d.Status != "" {
		in.Status = task.RawString(string(d.Status))
	}
	return in
}

// Console holds the client-side task state and drives the gateway.
// The task list only ever reflects what the gateway last confirmed.
type Console struct {
	gateway   Gateway
	validator *task.Validator
	now       func() time.Time
	location  *time.Location

	tasks       []task.Task
	draft       Draft
	fieldErrors task.FieldErrors
	message     string
	editingID   string
	viewingID   string
	loading     bool
	submitting  bool
}

// Option configures a Console.
type Option func(*Console)

// WithClock sets the time source used for local deadline checks.
func WithClock(now func() time.Time) Option {
	return func(c *Console) {
		c.now = now
	}
}

// WithLocation sets the zone the draft deadline is entered in.
func WithLocation(loc *time.Location) Option {
	return func(c *Console) {
		c.location = loc
	}
}

// New creates a Console over gateway.
func New(gateway Gateway, opts ...Option) *Console {
	c := &Console{
		gateway:  gateway,
		now:      time.Now,
		location: time.Local,
		tasks:    []task.Task{},
		draft:    EmptyDraft(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.validator = task.NewValidator(task.WithClock(c.now), task.WithLocation(c.location))
	return c
}

// Tasks returns a copy of the task list, newest first.
func (c *Console) Tasks() []task.Task {
	out := make([]task.Task, len(c.tasks))
	copy(out, c.tasks)
	return out
}

// Draft returns the current form.
func (c *Console) Draft() Draft { return c.draft }

// SetDraft replaces the form.
func (c *Console) SetDraft(d Draft) { c.draft = d }

// FieldErrors returns the per-field errors of the last submit.
func (c *Console) FieldErrors() task.FieldErrors { return c.fieldErrors }

// Message returns the general error message, if any.
func (c *Console) Message() string { return c.message }

// Editing returns the id of the task being edited, or "".
func (c *Console) Editing() string { return c.editingID }

// Loading reports whether a list fetch is in flight.
func (c *Console) Loading() bool { return c.loading }

// Submitting reports whether a create or update is in flight.
func (c *Console) Submitting() bool { return c.submitting }

// Viewing returns the task selected for display.
func (c *Console) Viewing() (task.Task, bool) {
	if c.viewingID == "" {
		return task.Task{}, false
	}
	i := c.indexOf(c.viewingID)
	if i < 0 {
		return task.Task{}, false
	}
	return c.tasks[i], true
}

// Load fetches the task list once.
func (c *Console) Load(ctx context.Context) error {
	c.loading = true
	defer func() { c.loading = false }()

	tasks, err := c.gateway.ListTasks(ctx)
	if err != nil {
		c.fail(err, MessageFetchFailed)
		return err
	}
	c.tasks = tasks
	c.message = ""
	return nil
}

// SubmitCreate validates the draft locally and creates the task.
// No request is sent when local validation fails.
func (c *Console) SubmitCreate(ctx context.Context) error {
	c.clearErrors()

	changes, err := c.validator.ValidateCreate(c.draft.input())
	if err != nil {
		c.localFail(err)
		return err
	}

	c.submitting = true
	defer func() { c.submitting = false }()

	created, err := c.gateway.CreateTask(ctx, changes.Input())
	if err != nil {
		c.fail(err, MessageCreateFailed)
		return err
	}

	c.tasks = append([]task.Task{*created}, c.tasks...)
	c.draft = EmptyDraft()
	return nil
}

// BeginEdit copies the task into the draft and marks it as being edited.
func (c *Console) BeginEdit(id string) error {
	i := c.indexOf(id)
	if i < 0 {
		c.message = MessageNotFound
		return ErrNotFound
	}
	t := c.tasks[i]

	c.clearErrors()
	c.draft = Draft{
		Title:       t.Title,
		Description: t.DescriptionText(),
		Deadline:    t.Deadline.In(c.location).Format(task.DeadlineInputLayout),
		Status:      t.Status,
	}
	c.editingID = id
	c.viewingID = ""
	return nil
}

// SubmitUpdate validates the draft locally and updates the task being edited.
func (c *Console) SubmitUpdate(ctx context.Context) error {
	if c.editingID == "" {
		return ErrNoSelection
	}
	c.clearErrors()

	changes, err := c.validator.ValidateUpdate(c.draft.input())
	if err != nil {
		c.localFail(err)
		return err
	}

	c.submitting = true
	defer func() { c.submitting = false }()

	updated, err := c.gateway.UpdateTask(ctx, c.editingID, changes.Input())
	if err != nil {
		c.fail(err, MessageUpdateFailed)
		return err
	}

	if i := c.indexOf(updated.ID); i >= 0 {
		c.tasks[i] = *updated
	}
	c.draft = EmptyDraft()
	c.editingID = ""
	return nil
}

// SetStatus changes only the status of a task, leaving its deadline unchecked.
func (c *Console) SetStatus(ctx context.Context, id string, status task.TaskStatus) error {
	if c.indexOf(id) < 0 {
		c.message = MessageNotFound
		return ErrNotFound
	}
	c.clearErrors()

	changes, err := c.validator.ValidateUpdate(task.Input{Status: task.RawString(string(status))})
	if err != nil {
		c.localFail(err)
		return err
	}

	c.submitting = true
	defer func() { c.submitting = false }()

	updated, err := c.gateway.UpdateTask(ctx, id, changes.Input())
	if err != nil {
		c.fail(err, MessageUpdateFailed)
		return err
	}
	if i := c.indexOf(updated.ID); i >= 0 {
		c.tasks[i] = *updated
	}
	return nil
}

// Delete removes a task after confirm approves it. It reports whether the
// task was deleted; a declined confirmation is not an error.
func (c *Console) Delete(ctx context.Context, id string, confirm func(task.Task) bool) (bool, error) {
	i := c.indexOf(id)
	if i < 0 {
		c.message = MessageNotFound
		return false, ErrNotFound
	}
	if confirm == nil || !confirm(c.tasks[i]) {
		return false, nil
	}

	c.message = ""
	if err := c.gateway.DeleteTask(ctx, id); err != nil {
		c.fail(err, MessageDeleteFailed)
		return false, err
	}

	// The list may have changed while the request was in flight.
	if i := c.indexOf(id); i >= 0 {
		c.tasks = append(c.tasks[:i:i], c.tasks[i+1:]...)
	}
	if c.viewingID == id {
		c.viewingID = ""
	}
	if c.editingID == id {
		c.editingID = ""
		c.draft = EmptyDraft()
	}
	return true, nil
}

// View selects a task for detail display.
func (c *Console) View(id string) error {
	if c.indexOf(id) < 0 {
		c.message = MessageNotFound
		return ErrNotFound
	}
	c.viewingID = id
	return nil
}

// Cancel discards the draft, errors and selection.
func (c *Console) Cancel() {
	c.draft = EmptyDraft()
	c.clearErrors()
	c.editingID = ""
	c.viewingID = ""
}

func (c *Console) indexOf(id string) int {
	for i, t := range c.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (c *Console) clearErrors() {
	c.fieldErrors = nil
	c.message = ""
}

func (c *Console) localFail(err error) {
	var verr *task.ValidationError
	if errors.As(err, &verr) {
		c.fieldErrors = verr.Fields
	}
}

// fail records a gateway error without touching the task list.
func (c *Console) fail(err error, fallback string) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		c.fieldErrors = verr.Fields
		if len(verr.Fields) == 0 {
			c.message = fallback
		}
	case errors.Is(err, ErrNotFound):
		c.message = MessageNotFound
	case errors.Is(err, ErrUnauthenticated):
		c.message = MessageUnauthenticated
	case IsNetworkError(err):
		c.message = MessageNetworkError
	default:
		c.message = fallback
	}
}
