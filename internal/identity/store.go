// Package identity keeps the free-text identifier a user chose on this
// device. It is not authentication: it only selects whose tasks are shown.
package identity

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ai_todo/internal/domain"

	"gopkg.in/yaml.v3"
)

const (
	// EnvOverride short-circuits Load when set.
	EnvOverride = "AI_TODO_IDENTIFIER"
	stateFile   = "state.yaml"
)

type state struct {
	Identifier string `yaml:"identifier"`
}

// Store persists the active identifier in a YAML file.
type Store struct {
	path string
}

// DefaultDir returns ~/.ai-todo.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".ai-todo"), nil
}

func NewStore(dir string) *Store {
	return &Store{path: filepath.Join(dir, stateFile)}
}

func (s *Store) Path() string { return s.path }

// Load returns the persisted identifier, or "" when none was saved.
func (s *Store) Load() (string, error) {
	if v := strings.TrimSpace(os.Getenv(EnvOverride)); v != "" {
		return v, nil
	}

	b, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read identifier: %w", err)
	}

	var st state
	if err := yaml.Unmarshal(b, &st); err != nil {
		return "", fmt.Errorf("failed to parse %s: %w", s.path, err)
	}
	return strings.TrimSpace(st.Identifier), nil
}

// Set trims value and persists it. Blank values are rejected.
func (s *Store) Set(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("%w: identifier cannot be empty", domain.ErrValidation)
	}

	b, err := yaml.Marshal(&state{Identifier: value})
	if err != nil {
		return "", fmt.Errorf("failed to encode identifier: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create state directory: %w", err)
	}

	// write-then-rename so a crash never leaves half a file
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return "", fmt.Errorf("failed to write identifier: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("failed to write identifier: %w", err)
	}
	return value, nil
}

// Clear forgets the identifier. Clearing twice is fine.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to clear identifier: %w", err)
	}
	return nil
}
