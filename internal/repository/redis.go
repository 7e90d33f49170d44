package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"twin-agent/internal/domain"
)

const redisKeyPrefix = "session:"

// redisAPI is the minimal go-redis surface required by RedisStore.
// *redis.Client satisfies this interface.
type redisAPI interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd
}

// RedisStore keeps one serialized record per session key. A non-zero TTL
// turns it into the ephemeral variant: sessions silently expire and read back
// as new conversations. A zero TTL keeps records until deleted externally.
type RedisStore struct {
	client redisAPI
	ttl    time.Duration
}

func NewRedisStore(client redisAPI, ttl time.Duration) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("repository: redis client must not be nil")
	}
	return &RedisStore{client: client, ttl: ttl}, nil
}

func redisKey(sessionID string) string {
	return redisKeyPrefix + sessionID
}

func (s *RedisStore) Load(ctx context.Context, sessionID string) ([]domain.Message, error) {
	data, err := s.client.Get(ctx, redisKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return []domain.Message{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("repository: get session %q: %w: %w", sessionID, ErrUnavailable, err)
	}
	history, err := decodeHistory([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("repository: session %q: %w", sessionID, err)
	}
	return history, nil
}

func (s *RedisStore) Append(ctx context.Context, sessionID string, history []domain.Message) error {
	data, err := encodeHistory(history)
	if err != nil {
		return fmt.Errorf("repository: session %q: %w", sessionID, err)
	}
	if err := s.client.Set(ctx, redisKey(sessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("repository: set session %q: %w: %w", sessionID, ErrUnavailable, err)
	}
	return nil
}

func (s *RedisStore) Sessions(ctx context.Context) ([]string, error) {
	var (
		ids    []string
		cursor uint64
	)
	for {
		keys, next, err := s.client.Scan(ctx, cursor, redisKeyPrefix+"*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("repository: scan sessions: %w: %w", ErrUnavailable, err)
		}
		for _, k := range keys {
			ids = append(ids, strings.TrimPrefix(k, redisKeyPrefix))
		}
		if next == 0 {
			break
		}
		cursor = next
	}
	return ids, nil
}
