// Command taskconsole is an interactive client for the task API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/task-manager/console"
)

func main() {
	cfg, err := ParseConfig(os.Args[1:], os.Stdout, os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := console.NewCredentialStore(cfg.CredentialsFile)
	repl := NewREPL(store, func(session console.Session) console.Gateway {
		return console.NewClient(cfg.APIURL, session, console.WithTimeout(cfg.Timeout))
	}, os.Stdin, os.Stdout)

	if err := repl.Run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
