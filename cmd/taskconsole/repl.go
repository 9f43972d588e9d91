package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/example/task-manager/console"
	"github.com/example/task-manager/domain/task"
	"github.com/example/task-manager/modules/auth"
	"github.com/golang-jwt/jwt/v5"
)

// Connector builds a gateway for a session.
type Connector func(console.Session) console.Gateway

// REPL provides an interactive command loop over a Console.
type REPL struct {
	store   *console.CredentialStore
	connect Connector
	session console.Session
	console *console.Console
	scanner *bufio.Scanner
	out     io.Writer
}

// NewREPL constructs a REPL instance.
func NewREPL(store *console.CredentialStore, connect Connector, in io.Reader, out io.Writer) *REPL {
	return &REPL{
		store:   store,
		connect: connect,
		scanner: bufio.NewScanner(in),
		out:     out,
	}
}

// Run loads the stored session and starts the interactive loop.
func (r *REPL) Run(ctx context.Context) error {
	session, err := r.store.Load()
	if err != nil {
		return err
	}
	r.useSession(session)

	Banner(r.out, r.session)
	if r.session.Authenticated() {
		r.load(ctx)
	} else {
		Info(r.out, "Not signed in. Use: token <jwt> [name]")
	}

	for ctx.Err() == nil {
		fmt.Fprint(r.out, "> ")
		line, ok := r.readLine()
		if !ok {
			break
		}
		if line == "" {
			continue
		}
		if r.handleCommand(ctx, line) {
			break
		}
	}
	return r.scanner.Err()
}

func (r *REPL) handleCommand(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	cmd := strings.ToLower(fields[0])
	args := fields[1:]

	switch cmd {
	case "exit", "quit":
		return true
	case "help":
		Help(r.out)
	case "token":
		r.setToken(ctx, args)
	case "logout":
		r.logout()
	case "list", "reload", "show", "new", "edit", "status", "delete":
		if !r.session.Authenticated() {
			Info(r.out, "Not signed in. Use: token <jwt> [name]")
			return false
		}
		r.taskCommand(ctx, cmd, args)
	default:
		Info(r.out, "unknown command, type help")
	}
	return false
}

func (r *REPL) taskCommand(ctx context.Context, cmd string, args []string) {
	switch cmd {
	case "list":
		Tasks(r.out, r.console.Tasks())
	case "reload":
		r.load(ctx)
	case "new":
		r.create(ctx)
	case "show", "edit", "delete":
		if len(args) != 1 {
			Info(r.out, fmt.Sprintf("usage: %s <n>", cmd))
			return
		}
		id := r.resolve(args[0])
		switch cmd {
		case "show":
			r.show(id)
		case "edit":
			r.edit(ctx, id)
		case "delete":
			r.delete(ctx, id)
		}
	case "status":
		if len(args) != 2 {
			Info(r.out, "usage: status <n> <pending|in_progress|completed>")
			return
		}
		id := r.resolve(args[0])
		if err := r.console.SetStatus(ctx, id, task.TaskStatus(strings.ToLower(args[1]))); err != nil {
			Failure(r.out, r.console, err)
			return
		}
		Info(r.out, "Task updated successfully")
	}
}

func (r *REPL) load(ctx context.Context) {
	if err := r.console.Load(ctx); err != nil {
		Failure(r.out, r.console, err)
		return
	}
	Tasks(r.out, r.console.Tasks())
}

func (r *REPL) show(id string) {
	if err := r.console.View(id); err != nil {
		Failure(r.out, r.console, err)
		return
	}
	if t, ok := r.console.Viewing(); ok {
		Detail(r.out, t)
	}
}

func (r *REPL) create(ctx context.Context) {
	draft, ok := r.promptDraft(console.EmptyDraft())
	if !ok {
		return
	}
	r.console.SetDraft(draft)

	if err := r.console.SubmitCreate(ctx); err != nil {
		Failure(r.out, r.console, err)
		r.console.Cancel()
		return
	}
	Info(r.out, "Task created successfully")
}

func (r *REPL) edit(ctx context.Context, id string) {
	if err := r.console.BeginEdit(id); err != nil {
		Failure(r.out, r.console, err)
		return
	}

	draft, ok := r.promptDraft(r.console.Draft())
	if !ok {
		r.console.Cancel()
		return
	}
	r.console.SetDraft(draft)

	if err := r.console.SubmitUpdate(ctx); err != nil {
		Failure(r.out, r.console, err)
		r.console.Cancel()
		return
	}
	Info(r.out, "Task updated successfully")
}

func (r *REPL) delete(ctx context.Context, id string) {
	deleted, err := r.console.Delete(ctx, id, func(t task.Task) bool {
		answer, ok := r.prompt(fmt.Sprintf("Delete %q? [y/N]", t.Title), "")
		return ok && (strings.EqualFold(answer, "y") || strings.EqualFold(answer, "yes"))
	})
	if err != nil {
		Failure(r.out, r.console, err)
		return
	}
	if deleted {
		Info(r.out, "Task deleted successfully")
	}
}

func (r *REPL) setToken(ctx context.Context, args []string) {
	if len(args) == 0 {
		Info(r.out, "usage: token <jwt> [name]")
		return
	}

	session, err := sessionFromToken(args[0], strings.Join(args[1:], " "))
	if err != nil {
		Error(r.out, err)
		return
	}
	if err := r.store.Save(session); err != nil {
		Error(r.out, err)
		return
	}

	r.useSession(session)
	Info(r.out, fmt.Sprintf("Signed in as %s", sessionLabel(session)))
	r.load(ctx)
}

func (r *REPL) logout() {
	if err := r.store.Clear(); err != nil {
		Error(r.out, err)
		return
	}
	r.useSession(console.Session{})
	Info(r.out, "Signed out")
}

func (r *REPL) useSession(session console.Session) {
	r.session = session
	r.console = console.New(r.connect(session))
}

// promptDraft asks for every field, keeping the current value on empty input.
func (r *REPL) promptDraft(current console.Draft) (console.Draft, bool) {
	title, ok := r.prompt("Title", current.Title)
	if !ok {
		return current, false
	}
	description, ok := r.prompt("Description (- to clear)", current.Description)
	if !ok {
		return current, false
	}
	if description == "-" {
		description = ""
	}
	deadline, ok := r.prompt("Deadline (YYYY-MM-DDTHH:MM)", current.Deadline)
	if !ok {
		return current, false
	}
	status, ok := r.prompt("Status", string(current.Status))
	if !ok {
		return current, false
	}

	return console.Draft{
		Title:       title,
		Description: description,
		Deadline:    deadline,
		Status:      task.TaskStatus(status),
	}, true
}

func (r *REPL) prompt(label, current string) (string, bool) {
	if current != "" {
		fmt.Fprintf(r.out, "%s [%s]: ", label, current)
	} else {
		fmt.Fprintf(r.out, "%s: ", label)
	}
	line, ok := r.readLine()
	if !ok {
		return "", false
	}
	if line == "" {
		return current, true
	}
	return line, true
}

func (r *REPL) readLine() (string, bool) {
	if !r.scanner.Scan() {
		return "", false
	}
	return strings.TrimSpace(r.scanner.Text()), true
}

// resolve maps a 1-based list position to a task id. Anything else is taken as an id.
func (r *REPL) resolve(arg string) string {
	tasks := r.console.Tasks()
	if n, err := strconv.Atoi(arg); err == nil && n >= 1 && n <= len(tasks) {
		return tasks[n-1].ID
	}
	return arg
}

// sessionFromToken reads the identity claims of an access token. The signature
// is checked by the API, not here.
func sessionFromToken(token, name string) (console.Session, error) {
	claims := &auth.JWTClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return console.Session{}, errors.New("not a valid access token")
	}
	if claims.TokenType != "access" || claims.UserID == "" {
		return console.Session{}, errors.New("not a valid access token")
	}

	return console.Session{
		Token: token,
		User: console.User{
			ID:    claims.UserID,
			Name:  name,
			Email: claims.Email,
		},
	}, nil
}
