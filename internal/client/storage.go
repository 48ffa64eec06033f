package client

import (
	"errors"
	"os"
	"path/filepath"
)

// TokenStorage persists the session token across runs, standing in for the
// browser's local storage.
type TokenStorage interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// FileTokenStorage keeps the token in a file under the user's home directory.
type FileTokenStorage struct {
	path string
}

// NewFileTokenStorage creates a storage at the given path; an empty path
// defaults to ~/.invento/token.
func NewFileTokenStorage(path string) (*FileTokenStorage, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(home, ".invento", "token")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	return &FileTokenStorage{path: path}, nil
}

// Load returns the saved token, or "" when none is stored.
func (s *FileTokenStorage) Load() (string, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Save writes the token with owner-only permissions.
func (s *FileTokenStorage) Save(token string) error {
	return os.WriteFile(s.path, []byte(token), 0o600)
}

// Clear removes the stored token.
func (s *FileTokenStorage) Clear() error {
	err := os.Remove(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// MemoryTokenStorage is a TokenStorage for tests and throwaway sessions.
type MemoryTokenStorage struct {
	token string
}

func (s *MemoryTokenStorage) Load() (string, error) { return s.token, nil }

func (s *MemoryTokenStorage) Save(token string) error {
	s.token = token
	return nil
}

func (s *MemoryTokenStorage) Clear() error {
	s.token = ""
	return nil
}
