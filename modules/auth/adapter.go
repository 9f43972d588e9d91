package auth

import (
	"context"
	"encoding/json"
	"fmt"

	domain "github.com/example/task-manager/domain/user"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// AuthPort defines the interface for authentication operations.
// This is the port that other modules use to access auth functionality.
type AuthPort interface {
	ValidateToken(ctx context.Context, token string) (*domain.Claims, error)
}

// AuthAdapter implements AuthPort using the service container.
type AuthAdapter struct {
	container mono.ServiceContainer
}

// NewAuthAdapter creates a new AuthAdapter.
func NewAuthAdapter(container mono.ServiceContainer) *AuthAdapter {
	return &AuthAdapter{
		container: container,
	}
}

// ValidateToken validates an access token and returns claims.
func (a *AuthAdapter) ValidateToken(ctx context.Context, token string) (*domain.Claims, error) {
	req := ValidateTokenRequest{Token: token}
	var resp ValidateTokenResponse

	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"validate-token",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("validate-token request failed: %w", err)
	}

	if !resp.Valid {
		if resp.Error == "token expired" {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	return &domain.Claims{
		UserID: resp.UserID,
		Email:  resp.Email,
	}, nil
}

// LocalVerifier implements AuthPort directly on a JWTManager, without the service bus.
type LocalVerifier struct {
	manager *JWTManager
}

// NewLocalVerifier creates a LocalVerifier.
func NewLocalVerifier(manager *JWTManager) *LocalVerifier {
	return &LocalVerifier{manager: manager}
}

// ValidateToken validates an access token and returns claims.
func (v *LocalVerifier) ValidateToken(_ context.Context, token string) (*domain.Claims, error) {
	claims, err := v.manager.ValidateAccessToken(token)
	if err != nil {
		return nil, err
	}
	return &domain.Claims{UserID: claims.UserID, Email: claims.Email}, nil
}
