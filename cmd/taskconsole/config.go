package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/example/task-manager/console"
)

const (
	envAPIURL      = "TASKS_API_URL"
	envCredentials = "TASKS_CREDENTIALS_FILE"
	envTimeout     = "TASKS_CLIENT_TIMEOUT"
	defaultAPIURL  = "http://localhost:3000/api"
)

// Config holds the console settings.
type Config struct {
	APIURL          string
	CredentialsFile string
	Timeout         time.Duration
}

// ParseConfig parses CLI flags and environment variables into a config.
func ParseConfig(args []string, stdout, stderr io.Writer) (Config, error) {
	cfg := Config{
		APIURL:          envOr(envAPIURL, defaultAPIURL),
		CredentialsFile: envOr(envCredentials, ""),
		Timeout:         envDuration(envTimeout, console.DefaultTimeout),
	}

	fs := flag.NewFlagSet("taskconsole", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.APIURL, "api", cfg.APIURL, "Task API root URL")
	fs.StringVar(&cfg.CredentialsFile, "credentials", cfg.CredentialsFile, "Credentials file")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Request timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			usage(stdout)
			return cfg, err
		}
		usage(stderr)
		return cfg, err
	}

	if cfg.CredentialsFile == "" {
		path, err := console.DefaultCredentialsPath()
		if err != nil {
			return cfg, err
		}
		cfg.CredentialsFile = path
	}

	return cfg, nil
}

func usage(out io.Writer) {
	fmt.Fprintln(out, "taskconsole flags:")
	fmt.Fprintln(out, "  -api URL           Task API root URL (default http://localhost:3000/api)")
	fmt.Fprintln(out, "  -credentials PATH  Credentials file (default <config dir>/task-manager/credentials.json)")
	fmt.Fprintln(out, "  -timeout DURATION  Request timeout (default 30s)")
}

func envOr(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	val, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return val
}
