package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"twin-agent/internal/domain"
)

// Store persists per-session conversation history.
//
// Load returns an empty history when no record exists for the session; that
// signals a new conversation, not an error. Append atomically replaces the
// stored record with the full updated history, preserving exact order.
// Concurrent writers to the same session are not coordinated: the last write
// wins. Sessions enumerates known session ids in backend-native order.
type Store interface {
	Load(ctx context.Context, sessionID string) ([]domain.Message, error)
	Append(ctx context.Context, sessionID string, history []domain.Message) error
	Sessions(ctx context.Context) ([]string, error)
}

// Sentinel errors wrapped by Store implementations. Callers classify
// failures with errors.Is.
var (
	ErrUnavailable = errors.New("storage unavailable")
	ErrCorrupt     = errors.New("stored record corrupt")
)

// encodeHistory serializes a history into the stored record format: a JSON
// array of role/content/timestamp objects in chronological order.
func encodeHistory(history []domain.Message) ([]byte, error) {
	if history == nil {
		history = []domain.Message{}
	}
	data, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("repository: encode history: %w", err)
	}
	return data, nil
}

// decodeHistory parses a stored record and validates every message against
// the domain invariants.
func decodeHistory(data []byte) ([]domain.Message, error) {
	var history []domain.Message
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("repository: decode history: %w: %w", ErrCorrupt, err)
	}
	for i, m := range history {
		if err := m.Validate(); err != nil {
			return nil, fmt.Errorf("repository: decode history message %d: %w: %w", i, ErrCorrupt, err)
		}
	}
	if history == nil {
		history = []domain.Message{}
	}
	return history, nil
}
