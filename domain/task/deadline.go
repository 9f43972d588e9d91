package task

import (
	"fmt"
	"time"

	"github.com/jinzhu/now"
)

// DeadlineInputLayout is the layout of an HTML datetime-local value.
const DeadlineInputLayout = "2006-01-02T15:04"

var deadlineLayouts = []string{
	"2006-01-02T15:04:05",
	DeadlineInputLayout,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDeadline parses an RFC 3339 timestamp or one of the offset-less layouts
// above. Offset-less values are interpreted in loc.
func ParseDeadline(value string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	if loc == nil {
		loc = time.Local
	}

	cfg := &now.Config{
		TimeLocation: loc,
		TimeFormats:  deadlineLayouts,
	}
	t, err := cfg.Parse(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid deadline %q: %w", value, err)
	}
	return t, nil
}
