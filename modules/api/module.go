package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/task-manager/modules/auth"
	ratelimitmod "github.com/example/task-manager/modules/ratelimit"
	"github.com/example/task-manager/modules/task"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// Config holds the HTTP server settings.
type Config struct {
	Port        int
	Prefix      string
	CORSOrigins string
}

// APIModule is the HTTP API module.
type APIModule struct {
	app             *fiber.App
	config          Config
	authAdapter     auth.AuthPort
	taskPort        task.TaskPort
	rateLimitModule *ratelimitmod.Module
	activityLog     ActivityLog
	logger          types.Logger
}

// Compile-time interface checks.
var _ mono.Module = (*APIModule)(nil)
var _ mono.DependentModule = (*APIModule)(nil)
var _ mono.HealthCheckableModule = (*APIModule)(nil)

// NewModule creates a new APIModule.
func NewModule(config Config, logger types.Logger) *APIModule {
	return &APIModule{
		config: config,
		logger: logger.WithModule("api"),
	}
}

// Name returns the module name.
func (m *APIModule) Name() string {
	return "api"
}

// Dependencies returns the list of module dependencies.
func (m *APIModule) Dependencies() []string {
	return []string{"auth", "task"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *APIModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "auth":
		m.authAdapter = auth.NewAuthAdapter(container)
	case "task":
		m.taskPort = task.NewTaskAdapter(container)
	}
}

// SetRateLimitModule enables per-user rate limiting on task routes.
func (m *APIModule) SetRateLimitModule(rlm *ratelimitmod.Module) {
	m.rateLimitModule = rlm
}

// SetActivityLog exposes recorded task events on GET /activity.
func (m *APIModule) SetActivityLog(log ActivityLog) {
	m.activityLog = log
}

// Start initializes the Fiber HTTP server.
func (m *APIModule) Start(_ context.Context) error {
	if m.authAdapter == nil {
		return fmt.Errorf("auth dependency not set")
	}
	if m.taskPort == nil {
		return fmt.Errorf("task dependency not set")
	}

	m.app = m.newApp()

	// Start server in goroutine
	addr := fmt.Sprintf(":%d", m.config.Port)
	go func() {
		if err := m.app.Listen(addr); err != nil {
			m.logger.Error("HTTP server error", "error", err)
		}
	}()

	m.logger.Info("HTTP server started", "addr", addr, "prefix", m.config.Prefix)
	return nil
}

// Stop shuts down the Fiber HTTP server.
func (m *APIModule) Stop(_ context.Context) error {
	if m.app == nil {
		return nil
	}
	m.logger.Info("Shutting down HTTP server...")
	return m.app.Shutdown()
}

// Health returns the health status of the module.
func (m *APIModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"port":         m.config.Port,
			"rate_limited": m.rateLimitModule != nil,
		},
	}
}

// newApp builds the Fiber application with middleware and routes.
func (m *APIModule) newApp() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          customErrorHandler,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: m.config.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	m.setupRoutes(app)
	return app
}

// setupRoutes configures all API routes.
func (m *APIModule) setupRoutes(app *fiber.App) {
	handlers := NewHandlers(m.taskPort, m.activityLog, m.logger)

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(HealthResponse{
			Status: "healthy",
			Details: map[string]any{
				"module": "api",
			},
		})
	})

	// Protected routes (require authentication)
	protected := app.Group(m.config.Prefix, AuthMiddleware(m.authAdapter))
	if m.rateLimitModule != nil {
		protected.Use(m.rateLimitModule.Middleware().UserRateLimit())
	}

	protected.Get("/tasks", handlers.ListTasks)
	protected.Post("/tasks", handlers.CreateTask)
	protected.Get("/tasks/:id", handlers.GetTask)
	protected.Put("/tasks/:id", handlers.UpdateTask)
	protected.Patch("/tasks/:id", handlers.UpdateTask)
	protected.Delete("/tasks/:id", handlers.DeleteTask)
	protected.Get("/activity", handlers.ListActivity)
}

// customErrorHandler renders Fiber errors in the API envelope.
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := MessageServerError

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(Envelope{
		Success: false,
		Message: message,
	})
}
