package redisstorage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jrsteele09/fogeapi-client/credentials"
	"github.com/redis/go-redis/v9"
)

var _ credentials.Storage = (*Store)(nil)

// Store keeps the credential entries as plain Redis strings under a key prefix,
// so several headless clients can share one session.
type Store struct {
	client *redis.Client
	prefix string
}

// New wraps an existing client.
func New(client *redis.Client, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

// NewFromURL parses a redis:// URL, connects and pings.
func NewFromURL(ctx context.Context, redisURL, prefix string) (*Store, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return New(client, prefix), nil
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *Store) SetAll(ctx context.Context, entries map[string]string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for k, v := range entries {
			pipe.Set(ctx, s.prefix+k, v, 0)
		}
		return nil
	})
	return err
}

func (s *Store) RemoveAll(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, 0, len(keys))
	for _, k := range keys {
		prefixed = append(prefixed, s.prefix+k)
	}
	return s.client.Del(ctx, prefixed...).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}
