// Package cache stores short-lived read models in Redis.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix      = "bitebalance:"
	connectTimeout = 5 * time.Second
)

type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis connects using a redis:// URL and verifies the server answers.
func NewRedis(ctx context.Context, rawURL string, ttl time.Duration) (*Redis, error) {
	options, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	options.ReadTimeout = 3 * time.Second
	options.WriteTimeout = 3 * time.Second

	client := redis.NewClient(options)
	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return &Redis{client: client, ttl: ttl}, nil
}

func (cache *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := cache.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (cache *Redis) Set(ctx context.Context, key string, value []byte) error {
	return cache.client.Set(ctx, keyPrefix+key, value, cache.ttl).Err()
}

// Incr never expires the counter.
func (cache *Redis) Incr(ctx context.Context, key string) (int64, error) {
	return cache.client.Incr(ctx, keyPrefix+key).Result()
}

func (cache *Redis) Close() error {
	return cache.client.Close()
}
