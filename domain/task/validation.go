package task

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Field names, as they appear in JSON payloads and in FieldErrors.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldDeadline    = "deadline"
	FieldStatus      = "status"
)

const (
	MaxTitleLength       = 255
	MaxDescriptionLength = 1000
)

var (
	titleRules       = fmt.Sprintf("required,max=%d", MaxTitleLength)
	descriptionRules = fmt.Sprintf("omitempty,max=%d", MaxDescriptionLength)
	statusRules      = "oneof=pending in_progress completed"
)

// FieldErrors maps a field name to its validation messages.
type FieldErrors map[string][]string

// Add appends a message for field.
func (e FieldErrors) Add(field, message string) {
	e[field] = append(e[field], message)
}

// ValidationError is returned when a create or update payload is rejected.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return "validation failed: " + strings.Join(fields, ", ")
}

// Input is a create or update payload. A nil field was not supplied at all,
// while the literal null means the client sent an explicit null.
type Input struct {
	Title       json.RawMessage `json:"title,omitempty"`
	Description json.RawMessage `json:"description,omitempty"`
	Deadline    json.RawMessage `json:"deadline,omitempty"`
	Status      json.RawMessage `json:"status,omitempty"`
}

// RawString encodes s as a JSON string for use in an Input.
func RawString(s string) json.RawMessage {
	b, _ := json.Marshal(s)
	return b
}

// Changes holds the validated values of an Input. Nil fields were not supplied.
type Changes struct {
	Title *string
	// Description is nil with DescriptionSet true when the description is being cleared.
	Description    *string
	DescriptionSet bool
	Deadline       *time.Time
	Status         *TaskStatus
}

// Apply copies the supplied values onto t.
func (c Changes) Apply(t *Task) {
	if c.Title != nil {
		t.Title = *c.Title
	}
	if c.DescriptionSet {
		t.Description = c.Description
	}
	if c.Deadline != nil {
		t.Deadline = *c.Deadline
	}
	if c.Status != nil {
		t.Status = *c.Status
	}
}

// Columns returns the supplied values keyed by column name.
func (c Changes) Columns() map[string]any {
	cols := make(map[string]any, 4)
	if c.Title != nil {
		cols["title"] = *c.Title
	}
	if c.DescriptionSet {
		if c.Description == nil {
			cols["description"] = nil
		} else {
			cols["description"] = *c.Description
		}
	}
	if c.Deadline != nil {
		cols["deadline"] = *c.Deadline
	}
	if c.Status != nil {
		cols["status"] = string(*c.Status)
	}
	return cols
}

// Fields lists the supplied field names.
func (c Changes) Fields() []string {
	var fields []string
	if c.Title != nil {
		fields = append(fields, FieldTitle)
	}
	if c.DescriptionSet {
		fields = append(fields, FieldDescription)
	}
	if c.Deadline != nil {
		fields = append(fields, FieldDeadline)
	}
	if c.Status != nil {
		fields = append(fields, FieldStatus)
	}
	return fields
}

// Input encodes the normalized values back into a payload.
// Deadlines are written as RFC 3339 so the receiver does not depend on the sender's time zone.
func (c Changes) Input() Input {
	var in Input
	if c.Title != nil {
		in.Title = RawString(*c.Title)
	}
	if c.DescriptionSet {
		if c.Description == nil {
			in.Description = json.RawMessage("null")
		} else {
			in.Description = RawString(*c.Description)
		}
	}
	if c.Deadline != nil {
		in.Deadline = RawString(c.Deadline.Format(time.RFC3339))
	}
	if c.Status != nil {
		in.Status = RawString(string(*c.Status))
	}
	return in
}

// Validator checks task payloads against the field rules.
type Validator struct {
	validate *validator.Validate
	now      func() time.Time
	location *time.Location
}

// ValidatorOption configures a Validator.
type ValidatorOption func(*Validator)

// WithClock sets the time source used for the deadline window.
func WithClock(now func() time.Time) ValidatorOption {
	return func(v *Validator) {
		v.now = now
	}
}

// WithLocation sets the zone used for deadlines that carry no offset.
func WithLocation(loc *time.Location) ValidatorOption {
	return func(v *Validator) {
		v.location = loc
	}
}

// NewValidator creates a Validator using the wall clock and the local zone.
func NewValidator(opts ...ValidatorOption) *Validator {
	v := &Validator{
		validate: validator.New(),
		now:      time.Now,
		location: time.Local,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Now returns the current time of the validator's clock.
func (v *Validator) Now() time.Time {
	return v.now()
}

// ValidateCreate validates a full payload. Title and deadline are required,
// and the status defaults to pending.
func (v *Validator) ValidateCreate(in Input) (Changes, error) {
	changes, err := v.check(in, false)
	if err != nil {
		return Changes{}, err
	}
	if changes.Status == nil {
		status := StatusPending
		changes.Status = &status
	}
	return changes, nil
}

// ValidateUpdate validates only the fields present in a partial payload.
func (v *Validator) ValidateUpdate(in Input) (Changes, error) {
	return v.check(in, true)
}

func (v *Validator) check(in Input, partial bool) (Changes, error) {
	var changes Changes
	errs := FieldErrors{}

	if in.Title != nil || !partial {
		changes.Title = v.checkTitle(in.Title, errs)
	}
	if in.Description != nil {
		changes.Description = v.checkDescription(in.Description, errs)
		changes.DescriptionSet = true
	}
	if in.Deadline != nil || !partial {
		changes.Deadline = v.checkDeadline(in.Deadline, errs)
	}
	if in.Status != nil {
		changes.Status = v.checkStatus(in.Status, errs)
	}

	if len(errs) > 0 {
		return Changes{}, &ValidationError{Fields: errs}
	}
	return changes, nil
}

func (v *Validator) checkTitle(raw json.RawMessage, errs FieldErrors) *string {
	title, ok := decodeString(raw)
	if !ok {
		errs.Add(FieldTitle, mustBeString(FieldTitle))
		return nil
	}
	title = strings.TrimSpace(title)
	if err := v.validate.Var(title, titleRules); err != nil {
		collect(FieldTitle, err, errs)
		return nil
	}
	return &title
}

// checkDescription returns nil when the description is null or blank.
func (v *Validator) checkDescription(raw json.RawMessage, errs FieldErrors) *string {
	description, ok := decodeString(raw)
	if !ok {
		errs.Add(FieldDescription, mustBeString(FieldDescription))
		return nil
	}
	description = strings.TrimSpace(description)
	if err := v.validate.Var(description, descriptionRules); err != nil {
		collect(FieldDescription, err, errs)
		return nil
	}
	if description == "" {
		return nil
	}
	return &description
}

func (v *Validator) checkDeadline(raw json.RawMessage, errs FieldErrors) *time.Time {
	value, ok := decodeString(raw)
	if !ok {
		errs.Add(FieldDeadline, "The deadline field must be a valid date.")
		return nil
	}
	value = strings.TrimSpace(value)
	if err := v.validate.Var(value, "required"); err != nil {
		collect(FieldDeadline, err, errs)
		return nil
	}

	deadline, err := ParseDeadline(value, v.location)
	if err != nil {
		errs.Add(FieldDeadline, "The deadline field must be a valid date.")
		return nil
	}

	// Both bounds are exclusive.
	now := v.now()
	switch {
	case !deadline.After(now):
		errs.Add(FieldDeadline, "The deadline field must be a date after now.")
		return nil
	case !deadline.Before(now.AddDate(1, 0, 0)):
		errs.Add(FieldDeadline, "The deadline field must be a date before +1 year.")
		return nil
	}

	deadline = deadline.UTC().Truncate(time.Second)
	return &deadline
}

func (v *Validator) checkStatus(raw json.RawMessage, errs FieldErrors) *TaskStatus {
	value, ok := decodeString(raw)
	if !ok {
		errs.Add(FieldStatus, mustBeString(FieldStatus))
		return nil
	}
	if err := v.validate.Var(value, statusRules); err != nil {
		collect(FieldStatus, err, errs)
		return nil
	}
	status := TaskStatus(value)
	return &status
}

// decodeString reads a JSON string. A missing value or null decodes to "".
func decodeString(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func collect(field string, err error, errs FieldErrors) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs.Add(field, fmt.Sprintf("The %s field is invalid.", field))
		return
	}
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			errs.Add(field, fmt.Sprintf("The %s field is required.", field))
		case "max":
			errs.Add(field, fmt.Sprintf("The %s field must not be greater than %s characters.", field, fe.Param()))
		case "oneof":
			errs.Add(field, fmt.Sprintf("The selected %s is invalid.", field))
		default:
			errs.Add(field, fmt.Sprintf("The %s field is invalid.", field))
		}
	}
}

func mustBeString(field string) string {
	return fmt.Sprintf("The %s field must be a string.", field)
}
