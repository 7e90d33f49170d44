package repository

import (
	"context"
	"sync"

	"twin-agent/internal/domain"
)

// MemoryStore is an in-process Store for tests and throwaway environments.
// Histories are copied on the way in and out so callers never share slices
// with the store.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]domain.Message
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string][]domain.Message)}
}

func (s *MemoryStore) Load(_ context.Context, sessionID string) ([]domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history, ok := s.sessions[sessionID]
	if !ok {
		return []domain.Message{}, nil
	}
	out := make([]domain.Message, len(history))
	copy(out, history)
	return out, nil
}

func (s *MemoryStore) Append(_ context.Context, sessionID string, history []domain.Message) error {
	stored := make([]domain.Message, len(history))
	copy(stored, history)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = stored
	return nil
}

func (s *MemoryStore) Sessions(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	return ids, nil
}
