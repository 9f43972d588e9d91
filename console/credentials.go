package console

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// User identifies the account a token was issued for.
type User struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// Session is the persisted credential pair.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Authenticated reports whether the session carries a token.
func (s Session) Authenticated() bool {
	return s.Token != ""
}

// CredentialStore keeps a Session in a JSON file readable only by its owner.
type CredentialStore struct {
	path string
}

// NewCredentialStore creates a store backed by path.
func NewCredentialStore(path string) *CredentialStore {
	return &CredentialStore{path: path}
}

// DefaultCredentialsPath returns credentials.json under the user config directory.
func DefaultCredentialsPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}
	return filepath.Join(dir, "task-manager", "credentials.json"), nil
}

// Path returns the backing file.
func (s *CredentialStore) Path() string {
	return s.path
}

// Load reads the stored session. A missing file yields an empty session.
func (s *CredentialStore) Load() (Session, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Session{}, nil
	}
	if err != nil {
		return Session{}, fmt.Errorf("failed to read credentials: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return Session{}, fmt.Errorf("failed to parse credentials %s: %w", s.path, err)
	}
	return session, nil
}

// Save writes the session, replacing any previous one.
func (s *CredentialStore) Save(session Session) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create credentials directory: %w", err)
	}

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}

	// Written to a sibling file, then renamed into place.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	return nil
}

// Clear removes the stored session.
func (s *CredentialStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	return nil
}
