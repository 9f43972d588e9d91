package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
)

// AuthModule verifies access tokens issued by the identity service.
type AuthModule struct {
	jwtManager *JWTManager
	issuer     string
	logger     types.Logger
}

// Compile-time interface checks.
var _ mono.Module = (*AuthModule)(nil)
var _ mono.ServiceProviderModule = (*AuthModule)(nil)
var _ mono.HealthCheckableModule = (*AuthModule)(nil)

// NewModule creates a new AuthModule.
func NewModule(config JWTConfig, logger types.Logger) *AuthModule {
	return &AuthModule{
		jwtManager: NewJWTManager(config),
		issuer:     config.Issuer,
		logger:     logger.WithModule("auth"),
	}
}

// Name returns the module name.
func (m *AuthModule) Name() string {
	return "auth"
}

// Start initializes the auth module.
func (m *AuthModule) Start(_ context.Context) error {
	m.logger.Info("Module started", "issuer", m.issuer)
	return nil
}

// Stop shuts down the module.
func (m *AuthModule) Stop(_ context.Context) error {
	m.logger.Info("Module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *AuthModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.jwtManager != nil,
		Message: "operational",
		Details: map[string]any{
			"issuer": m.issuer,
		},
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *AuthModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container,
		"validate-token",
		json.Unmarshal,
		json.Marshal,
		m.handleValidateToken,
	); err != nil {
		return fmt.Errorf("failed to register validate-token service: %w", err)
	}

	m.logger.Info("Registered services", "services", "validate-token")
	return nil
}

// handleValidateToken handles token validation.
func (m *AuthModule) handleValidateToken(_ context.Context, req ValidateTokenRequest, _ *mono.Msg) (ValidateTokenResponse, error) {
	claims, err := m.jwtManager.ValidateAccessToken(req.Token)
	if err != nil {
		errMsg := "invalid token"
		if errors.Is(err, ErrExpiredToken) {
			errMsg = "token expired"
		}
		return ValidateTokenResponse{
			Valid: false,
			Error: errMsg,
		}, nil // Return response, not error, for validation failures
	}

	return ValidateTokenResponse{
		Valid:  true,
		UserID: claims.UserID,
		Email:  claims.Email,
	}, nil
}
