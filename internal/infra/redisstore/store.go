// Package redisstore provides a Redis-backed progress key-value store.
// Selected with [store] backend = "redis" so several app shells on one
// machine can share progress through a single server.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/talkmaster-app/talkmaster/internal/domain"
)

// Compile-time check to ensure Store implements domain.KVStore.
var _ domain.KVStore = (*Store)(nil)

// Options configures the connection.
type Options struct {
	Addr     string
	Password string
	DB       int
	Prefix   string // namespace for every key, e.g. "talkmaster:"
}

// Store keeps progress records as plain string keys under a prefix.
type Store struct {
	client *redis.Client
	prefix string
	logger zerolog.Logger
}

// Open connects to Redis and verifies the connection with a ping.
func Open(ctx context.Context, opts Options, logger zerolog.Logger) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", opts.Addr, err)
	}

	logger.Info().Str("addr", opts.Addr).Int("db", opts.DB).Msg("connected to redis")
	return New(client, opts.Prefix, logger), nil
}

// New wraps an existing client.
func New(client *redis.Client, prefix string, logger zerolog.Logger) *Store {
	return &Store{
		client: client,
		prefix: prefix,
		logger: logger.With().Str("component", "redisstore").Logger(),
	}
}

// Get returns the value stored under key.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, true, nil
}

// Set stores value under key with no expiry.
func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete removes the given keys.
func (s *Store) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.prefix + k
	}
	if err := s.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Clear deletes every key under the prefix. Keys outside it are untouched.
func (s *Store) Clear(ctx context.Context) error {
	var cursor uint64
	deleted := 0
	for {
		keys, next, err := s.client.Scan(ctx, cursor, s.prefix+"*", 100).Result()
		if err != nil {
			return fmt.Errorf("redis scan: %w", err)
		}
		if len(keys) > 0 {
			pipe := s.client.Pipeline()
			pipe.Del(ctx, keys...)
			if _, err := pipe.Exec(ctx); err != nil {
				return fmt.Errorf("redis del: %w", err)
			}
			deleted += len(keys)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	s.logger.Debug().Int("keys", deleted).Msg("cleared progress keys")
	return nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.client.Close()
}
