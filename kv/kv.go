// Package kv provides the keyed byte store with TTL and set primitives that
// backs every cache namespace, session record, and appointment record in the
// service (see SPEC_FULL.md §4.6). It is grounded on the Redis checkpoint
// store in the retrieved langgraphgo pack
// (jemygraw-langgraphgo/store/redis/redis.go), adapted from a graph-checkpoint
// domain to a generic byte store plus a handful of set operations.
package kv

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned by Get when the key does not exist or has expired.
var ErrNotFound = errors.New("kv: key not found")

// Store is the keyed byte store contract every cache namespace, Session
// Memory, and the Schedule Interface depend on.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error

	SAdd(ctx context.Context, key, member string) error
	SRem(ctx context.Context, key, member string) error
	SMembers(ctx context.Context, key string) ([]string, error)

	// FlushNamespace deletes every key with the given prefix, used by
	// /cache/clear. It does not touch keys outside that prefix.
	FlushNamespace(ctx context.Context, prefix string) error

	// Keys lists every key with the given prefix, used by the /debug/sessions
	// and /stats diagnostic endpoints.
	Keys(ctx context.Context, prefix string) ([]string, error)

	// Ping verifies the backing connection is reachable, used by /health.
	Ping(ctx context.Context) error

	Close() error
}

// RedisStore implements Store against a Redis (or Redis-protocol-compatible,
// e.g. miniredis in tests) backend.
type RedisStore struct {
	client *redis.Client
}

// Options configures a RedisStore.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// New opens a RedisStore. It does not ping the server; connection errors
// surface on first use (unlike database.NewPostgresPool, which pings at
// construction).
func New(opts Options) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

func (s *RedisStore) SAdd(ctx context.Context, key, member string) error {
	return s.client.SAdd(ctx, key, member).Err()
}

func (s *RedisStore) SRem(ctx context.Context, key, member string) error {
	return s.client.SRem(ctx, key, member).Err()
}

func (s *RedisStore) SMembers(ctx context.Context, key string) ([]string, error) {
	return s.client.SMembers(ctx, key).Result()
}

// FlushNamespace scans for keys under prefix and deletes them in batches.
// Redis has no native prefix-delete; SCAN+DEL is the idiomatic substitute.
func (s *RedisStore) FlushNamespace(ctx context.Context, prefix string) error {
	iter := s.client.Scan(ctx, 0, prefix+"*", 0).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) >= 500 {
			if err := s.client.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return s.client.Del(ctx, batch...).Err()
	}
	return nil
}

// Keys scans for every key with the given prefix and returns them.
func (s *RedisStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	iter := s.client.Scan(ctx, 0, prefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}

// Ping checks connectivity to the backing Redis instance.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
