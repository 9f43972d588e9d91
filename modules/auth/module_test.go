package auth

import (
	"context"
	"testing"
	"time"

	"github.com/go-monolith/mono/pkg/types"
)

// mockLogger implements types.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(_ string, _ ...any) {}
func (m *mockLogger) Info(_ string, _ ...any)  {}
func (m *mockLogger) Warn(_ string, _ ...any)  {}
func (m *mockLogger) Error(_ string, _ ...any) {}
func (m *mockLogger) With(_ ...any) types.Logger {
	return m
}
func (m *mockLogger) WithModule(_ string) types.Logger {
	return m
}
func (m *mockLogger) WithError(_ error) types.Logger {
	return m
}

func TestAuthModule_HandleValidateToken(t *testing.T) {
	config := testJWTConfig()
	m := NewModule(config, &mockLogger{})

	token, err := NewJWTManager(config).GenerateAccessToken("user-1", "one@example.com")
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	resp, err := m.handleValidateToken(context.Background(), ValidateTokenRequest{Token: token}, nil)
	if err != nil {
		t.Fatalf("handleValidateToken() error = %v", err)
	}
	if !resp.Valid {
		t.Fatalf("resp.Valid = false, error %q", resp.Error)
	}
	if resp.UserID != "user-1" || resp.Email != "one@example.com" {
		t.Errorf("resp = %+v, want user-1/one@example.com", resp)
	}
}

func TestAuthModule_HandleValidateToken_Failures(t *testing.T) {
	config := testJWTConfig()
	expiredConfig := config
	expiredConfig.AccessTokenDuration = -time.Minute

	expired, err := NewJWTManager(expiredConfig).GenerateAccessToken("user-1", "one@example.com")
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	tests := []struct {
		name    string
		token   string
		wantErr string
	}{
		{name: "garbage", token: "garbage", wantErr: "invalid token"},
		{name: "expired", token: expired, wantErr: "token expired"},
	}

	m := NewModule(config, &mockLogger{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := m.handleValidateToken(context.Background(), ValidateTokenRequest{Token: tt.token}, nil)
			if err != nil {
				t.Fatalf("handleValidateToken() error = %v", err)
			}
			if resp.Valid {
				t.Error("resp.Valid = true, want false")
			}
			if resp.Error != tt.wantErr {
				t.Errorf("resp.Error = %q, want %q", resp.Error, tt.wantErr)
			}
		})
	}
}

func TestLocalVerifier(t *testing.T) {
	manager := NewJWTManager(testJWTConfig())
	verifier := NewLocalVerifier(manager)

	token, err := manager.GenerateAccessToken("user-9", "nine@example.com")
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	claims, err := verifier.ValidateToken(context.Background(), token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if claims.UserID != "user-9" {
		t.Errorf("claims.UserID = %v, want user-9", claims.UserID)
	}

	if _, err := verifier.ValidateToken(context.Background(), "nope"); err != ErrInvalidToken {
		t.Errorf("ValidateToken() error = %v, want %v", err, ErrInvalidToken)
	}
}

func TestAuthModule_Health(t *testing.T) {
	m := NewModule(testJWTConfig(), &mockLogger{})

	status := m.Health(context.Background())
	if !status.Healthy {
		t.Errorf("Health().Healthy = false, want true")
	}
	if m.Name() != "auth" {
		t.Errorf("Name() = %q, want auth", m.Name())
	}
}
