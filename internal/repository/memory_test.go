package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"twin-agent/internal/domain"
)

func TestMemoryStore_RoundTrip(t *testing.T) {
	s := NewMemoryStore()
	history := sampleHistory()

	require.NoError(t, s.Append(context.Background(), "abc", history))

	loaded, err := s.Load(context.Background(), "abc")
	require.NoError(t, err)
	require.Equal(t, history, loaded)
}

func TestMemoryStore_Load_MissingSession(t *testing.T) {
	s := NewMemoryStore()

	history, err := s.Load(context.Background(), "missing")
	require.NoError(t, err)
	require.NotNil(t, history)
	require.Empty(t, history)
}

func TestMemoryStore_CopiesHistoryBothWays(t *testing.T) {
	s := NewMemoryStore()
	history := sampleHistory()
	require.NoError(t, s.Append(context.Background(), "abc", history))

	// Mutating the caller's slice must not change the stored record.
	history[0].Content = "tampered"
	loaded, err := s.Load(context.Background(), "abc")
	require.NoError(t, err)
	require.Equal(t, "Hi! My name is Alex and I love testing", loaded[0].Content)

	// Mutating a loaded slice must not change the stored record either.
	loaded[1].Content = "tampered"
	again, err := s.Load(context.Background(), "abc")
	require.NoError(t, err)
	require.Equal(t, "Nice to meet you, Alex.", again[1].Content)
}

func TestMemoryStore_Sessions(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Append(context.Background(), "one", sampleHistory()))
	require.NoError(t, s.Append(context.Background(), "two", sampleHistory()))

	ids, err := s.Sessions(context.Background())
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"one", "two"}, ids)
}
