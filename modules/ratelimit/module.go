package ratelimit

import (
	"context"
	"fmt"

	"github.com/example/task-manager/domain/ratelimit"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/redis/go-redis/v9"
)

// RedisConfig holds the Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Module owns the Redis connection used by the rate limiting middleware.
type Module struct {
	client     *redis.Client
	middleware *Middleware
	addr       string
	logger     types.Logger
}

var _ mono.Module = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates a new rate limiting module. The Redis client connects lazily,
// so the middleware is usable as soon as the module exists.
func NewModule(redisConfig RedisConfig, config ratelimit.MiddlewareConfig, logger types.Logger) *Module {
	logger = logger.WithModule("rate-limiter")
	client := redis.NewClient(&redis.Options{
		Addr:     redisConfig.Addr,
		Password: redisConfig.Password,
		DB:       redisConfig.DB,
	})
	return &Module{
		client:     client,
		middleware: NewMiddleware(client, config, logger),
		addr:       redisConfig.Addr,
		logger:     logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "rate-limiter"
}

// Start verifies the Redis connection.
func (m *Module) Start(ctx context.Context) error {
	if err := m.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	m.logger.Info("Connected to Redis", "addr", m.addr)
	return nil
}

// Stop closes the Redis connection.
func (m *Module) Stop(_ context.Context) error {
	if err := m.client.Close(); err != nil {
		m.logger.Error("Error closing Redis connection", "error", err)
	}
	m.logger.Info("Module stopped")
	return nil
}

// Health pings Redis.
func (m *Module) Health(ctx context.Context) mono.HealthStatus {
	if err := m.client.Ping(ctx).Err(); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("redis ping failed: %v", err),
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"redis": m.addr,
		},
	}
}

// Middleware returns the rate limiting middleware.
func (m *Module) Middleware() *Middleware {
	return m.middleware
}
