package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/istun/mezunlar-backend/internal/model"
)

// Session is the operator's authenticated context. It is passed explicitly
// to New and persisted by the caller.
type Session struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	User         *model.User `json:"user,omitempty"`
	Permissions  []string    `json:"permissions,omitempty"`
}

// LoggedIn reports whether the session carries an access token.
func (s *Session) LoggedIn() bool {
	return s != nil && s.AccessToken != ""
}

// Can reports whether the logged-in role grants permission p.
func (s *Session) Can(p model.Permission) bool {
	if s == nil {
		return false
	}
	for _, have := range s.Permissions {
		if have == string(p) {
			return true
		}
	}
	return false
}

// LoadSession reads a session file. A missing file yields an empty session.
func LoadSession(path string) (*Session, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Session{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &s, nil
}

// Save writes the session with owner-only permissions.
func (s *Session) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	raw, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return os.Rename(tmp, path)
}

// ClearSession removes the session file. Missing files are not an error.
func ClearSession(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}
