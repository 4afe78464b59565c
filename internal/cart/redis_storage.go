package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
)

const shellKeyPrefix = "cartshell:"

// RedisStorage persists the cart shell under a fixed per-session key.
type RedisStorage struct {
	client  *redis.Client
	key     string
	baseTTL time.Duration
}

func NewRedisStorage(client *redis.Client, sessionKey string) *RedisStorage {
	return &RedisStorage{
		client:  client,
		key:     shellKeyPrefix + sessionKey,
		baseTTL: 30 * 24 * time.Hour,
	}
}

func (s *RedisStorage) Load(ctx context.Context) (*Shell, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrShellNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var shell Shell
	if err := json.Unmarshal(data, &shell); err != nil {
		return nil, fmt.Errorf("unmarshal shell failed: %w", err)
	}
	return &shell, nil
}

func (s *RedisStorage) Save(ctx context.Context, shell *Shell) error {
	data, err := json.Marshal(shell)
	if err != nil {
		return fmt.Errorf("marshal shell failed: %w", err)
	}

	jitter := time.Duration(rand.Intn(60)) * time.Minute
	ttl := s.baseTTL + jitter
	if err := s.client.Set(ctx, s.key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (s *RedisStorage) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}
