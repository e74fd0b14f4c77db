// Package idempotency implements the IdempotencyCache external collaborator
// (spec §6): a Redis-backed store mapping an idempotency key to a
// previously computed execution response, so a retried request with the
// same key returns the prior result instead of re-running the engine.
//
// Grounded on the teacher's go.mod, which already pairs
// github.com/mrz1836/go-cache with github.com/alicebob/miniredis/v2 without
// ever importing either — this adapter is the home that pairing never
// found in the teacher, used for exactly the role its name implies.
package idempotency

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	cache "github.com/mrz1836/go-cache"
)

// Cache is the IdempotencyCache collaborator boundary. Get returns the
// cached response bytes for key, or ok=false if absent or expired. Put
// stores response under key with the given TTL.
type Cache interface {
	Get(ctx context.Context, key string) (response []byte, ok bool, err error)
	Put(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

// RedisCache implements Cache against a Redis server via go-cache's client.
type RedisCache struct {
	client *cache.Client
}

// NewRedisCache dials addr and returns a RedisCache. The client is a single
// shared connection pool, safe for concurrent use across requests.
func NewRedisCache(ctx context.Context, addr string) (*RedisCache, error) {
	client, err := cache.Connect(ctx, cache.WithRedisAddr(addr))
	if err != nil {
		return nil, fmt.Errorf("connect to idempotency cache at %s: %w", addr, err)
	}
	return &RedisCache{client: client}, nil
}

// Get implements Cache.
func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	raw, err := r.client.Get(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("get idempotency key %s: %w", key, err)
	}
	if raw == "" {
		return nil, false, nil
	}

	var envelope responseEnvelope
	if err := json.Unmarshal([]byte(raw), &envelope); err != nil {
		return nil, false, fmt.Errorf("decode cached response for key %s: %w", key, err)
	}
	return envelope.Response, true, nil
}

// Put implements Cache.
func (r *RedisCache) Put(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	envelope := responseEnvelope{Response: response}
	raw, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("encode response for key %s: %w", key, err)
	}
	if err := r.client.Set(ctx, key, string(raw), ttl); err != nil {
		return fmt.Errorf("put idempotency key %s: %w", key, err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (r *RedisCache) Close() error {
	return r.client.Close()
}

type responseEnvelope struct {
	Response []byte `json:"response"`
}

var _ Cache = (*RedisCache)(nil)
