package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/example/task-manager/console"
	"github.com/example/task-manager/domain/task"
)

const displayLayout = "2006-01-02 15:04"

// Banner shows startup info.
func Banner(out io.Writer, session console.Session) {
	fmt.Fprintln(out, "Task Manager Console")
	if session.Authenticated() {
		fmt.Fprintf(out, "Signed in as %s\n", sessionLabel(session))
	}
	fmt.Fprintln(out, "Type help for commands.")
}

// Help prints command list.
func Help(out io.Writer) {
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  list                  List tasks")
	fmt.Fprintln(out, "  reload                Fetch tasks again")
	fmt.Fprintln(out, "  show <n>              Show task details")
	fmt.Fprintln(out, "  new                   Create a task")
	fmt.Fprintln(out, "  edit <n>              Edit a task")
	fmt.Fprintln(out, "  status <n> <status>   Set status: pending, in_progress, completed")
	fmt.Fprintln(out, "  delete <n>            Delete a task")
	fmt.Fprintln(out, "  token <jwt> [name]    Store an access token")
	fmt.Fprintln(out, "  logout                Forget the stored token")
	fmt.Fprintln(out, "  quit | exit           Exit")
	fmt.Fprintln(out, "<n> is a list position or a task id.")
}

// Tasks prints the task list.
func Tasks(out io.Writer, tasks []task.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(out, "no tasks")
		return
	}
	for i, t := range tasks {
		fmt.Fprintf(out, "%2d. [%s] %s (due %s)\n", i+1, statusLabel(t.Status), t.Title, t.Deadline.Local().Format(displayLayout))
	}
}

// Detail prints a single task.
func Detail(out io.Writer, t task.Task) {
	fmt.Fprintf(out, "%s\n", t.Title)
	fmt.Fprintf(out, "  id:          %s\n", t.ID)
	fmt.Fprintf(out, "  status:      %s\n", statusLabel(t.Status))
	fmt.Fprintf(out, "  deadline:    %s\n", t.Deadline.Local().Format(displayLayout))
	if t.Description != nil {
		fmt.Fprintf(out, "  description: %s\n", *t.Description)
	}
	fmt.Fprintf(out, "  created:     %s\n", t.CreatedAt.Local().Format(displayLayout))
	fmt.Fprintf(out, "  updated:     %s\n", t.UpdatedAt.Local().Format(displayLayout))
}

// Failure prints the console's field errors and general message.
func Failure(out io.Writer, c *console.Console, err error) {
	fieldErrors := c.FieldErrors()
	if len(fieldErrors) == 0 && c.Message() == "" {
		Error(out, err)
		return
	}

	fields := make([]string, 0, len(fieldErrors))
	for field := range fieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		for _, msg := range fieldErrors[field] {
			fmt.Fprintf(out, "  %s: %s\n", field, msg)
		}
	}
	if c.Message() != "" {
		fmt.Fprintf(out, "error: %s\n", c.Message())
	}
}

// Info prints a status line.
func Info(out io.Writer, msg string) {
	fmt.Fprintln(out, msg)
}

// Error prints an error line.
func Error(out io.Writer, err error) {
	fmt.Fprintf(out, "error: %v\n", err)
}

func statusLabel(s task.TaskStatus) string {
	return strings.ReplaceAll(string(s), "_", " ")
}

func sessionLabel(s console.Session) string {
	switch {
	case s.User.Name != "":
		return s.User.Name
	case s.User.Email != "":
		return s.User.Email
	case s.User.ID != "":
		return s.User.ID
	}
	return "unknown user"
}
