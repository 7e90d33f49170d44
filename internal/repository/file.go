package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"twin-agent/internal/domain"
)

const fileExt = ".json"

// FileStore keeps one JSON record per session under a base directory. Writes
// go through a temp file and an atomic rename so a crash mid-write never
// leaves a truncated record behind.
type FileStore struct {
	dir string
}

// NewFileStore creates the base directory if needed and returns a FileStore
// rooted there.
func NewFileStore(dir string) (*FileStore, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("repository: data directory must not be empty")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("repository: create data directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(sessionID string) string {
	return filepath.Join(s.dir, sessionID+fileExt)
}

func (s *FileStore) Load(_ context.Context, sessionID string) ([]domain.Message, error) {
	data, err := os.ReadFile(s.path(sessionID))
	if errors.Is(err, os.ErrNotExist) {
		return []domain.Message{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("repository: read session %q: %w: %w", sessionID, ErrUnavailable, err)
	}
	history, err := decodeHistory(data)
	if err != nil {
		return nil, fmt.Errorf("repository: session %q: %w", sessionID, err)
	}
	return history, nil
}

func (s *FileStore) Append(_ context.Context, sessionID string, history []domain.Message) error {
	data, err := encodeHistory(history)
	if err != nil {
		return fmt.Errorf("repository: session %q: %w", sessionID, err)
	}
	path := s.path(sessionID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("repository: write session %q: %w: %w", sessionID, ErrUnavailable, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("repository: commit session %q: %w: %w", sessionID, ErrUnavailable, err)
	}
	return nil
}

func (s *FileStore) Sessions(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("repository: list sessions: %w: %w", ErrUnavailable, err)
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, fileExt) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, fileExt))
	}
	return ids, nil
}
