package main

import (
	"context"
	"log"
	"os"
	"strings"

	"github.com/example/task-manager/config"
	"github.com/example/task-manager/domain/ratelimit"
	"github.com/example/task-manager/modules/activity"
	"github.com/example/task-manager/modules/api"
	"github.com/example/task-manager/modules/auth"
	ratelimitmod "github.com/example/task-manager/modules/ratelimit"
	"github.com/example/task-manager/modules/task"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
)

func main() {
	log.Println("=== Task Manager ===")

	cfg := config.Load()

	logLevel := mono.LogLevelInfo
	if cfg.LogLevel == "error" {
		logLevel = mono.LogLevelError
	}

	// Create mono application
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(cfg.ShutdownTimeout),
		mono.WithLogLevel(logLevel),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	logger := app.Logger()

	if cfg.JWTSecret == config.DefaultJWTSecret {
		logger.Warn("Using the default JWT secret, set TASKS_JWT_SECRET in production")
	}

	authModule := auth.NewModule(auth.JWTConfig{
		SecretKey: cfg.JWTSecret,
		Issuer:    cfg.JWTIssuer,
	}, logger)
	taskModule := task.NewModule(task.DatabaseConfig{
		Driver: cfg.DBDriver,
		DSN:    cfg.DBDSN,
		Debug:  cfg.DBDebug,
	}, logger)
	activityModule := activity.NewModule(activity.DefaultCapacity, logger)
	apiModule := api.NewModule(api.Config{
		Port:        cfg.HTTPPort,
		Prefix:      cfg.APIPrefix,
		CORSOrigins: cfg.CORSOrigins,
	}, logger)
	apiModule.SetActivityLog(activityModule)

	// Register modules with the framework
	// Order: independent modules first, then dependent modules
	if err := app.Register(authModule); err != nil { // Provides validate-token
		log.Fatalf("Failed to register auth module: %v", err)
	}
	if err := app.Register(taskModule); err != nil { // Provides task services, emits task events
		log.Fatalf("Failed to register task module: %v", err)
	}
	if err := app.Register(activityModule); err != nil { // Consumes task events
		log.Fatalf("Failed to register activity module: %v", err)
	}

	if cfg.RateLimitEnabled() {
		rateLimitModule := ratelimitmod.NewModule(
			ratelimitmod.RedisConfig{
				Addr:     cfg.RedisAddr,
				Password: cfg.RedisPassword,
				DB:       cfg.RedisDB,
			},
			ratelimit.DefaultMiddlewareConfig(cfg.RateLimit, cfg.RateWindow),
			logger,
		)
		if err := app.Register(rateLimitModule); err != nil {
			log.Fatalf("Failed to register rate limiter: %v", err)
		}
		apiModule.SetRateLimitModule(rateLimitModule)
	}

	if err := app.Register(apiModule); err != nil { // Depends on auth and task
		log.Fatalf("Failed to register API module: %v", err)
	}

	// Start application
	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo(cfg)

	// Graceful shutdown
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo(cfg config.Config) {
	prefix := strings.TrimSuffix(cfg.APIPrefix, "/")

	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Printf("Storage: %s (%s)", cfg.DBDriver, cfg.DBDSN)
	if cfg.RateLimitEnabled() {
		log.Printf("Rate limit: %d requests per %s (redis %s)", cfg.RateLimit, cfg.RateWindow, cfg.RedisAddr)
	} else {
		log.Println("Rate limit: disabled (TASKS_REDIS_ADDR not set)")
	}
	log.Println("")
	log.Printf("REST API Endpoints (http://localhost:%d):", cfg.HTTPPort)
	log.Println("")
	log.Println("  GET    /health                - Health check")
	log.Println("")
	log.Println("  Protected Endpoints (require Bearer token):")
	log.Printf("  GET    %s/tasks            - List your tasks", prefix)
	log.Printf("  POST   %s/tasks            - Create a task", prefix)
	log.Printf("  GET    %s/tasks/:id        - Get a task", prefix)
	log.Printf("  PUT    %s/tasks/:id        - Update a task (PATCH also accepted)", prefix)
	log.Printf("  DELETE %s/tasks/:id        - Delete a task", prefix)
	log.Printf("  GET    %s/activity         - Recent task activity", prefix)
	log.Println("")
	log.Println("Issue a development token with: go run ./cmd/issuetoken -user <id>")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
