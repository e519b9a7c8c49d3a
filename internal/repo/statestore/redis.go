package statestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Redis keeps JSON-encoded state under prefix+userID with a key TTL.
type Redis[T any] struct {
	client *goredis.Client
	prefix string
	ttl    time.Duration
}

func NewRedis[T any](client *goredis.Client, prefix string, ttl time.Duration) *Redis[T] {
	return &Redis[T]{client: client, prefix: prefix, ttl: ttl}
}

func (r *Redis[T]) Get(ctx context.Context, userID int64) (T, bool, error) {
	var zero T
	if r.client == nil {
		return zero, false, fmt.Errorf("redis client is nil")
	}

	data, err := r.client.Get(ctx, r.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return zero, false, nil
		}
		return zero, false, fmt.Errorf("get state: %w", err)
	}

	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		return zero, false, fmt.Errorf("decode state: %w", err)
	}
	return value, true, nil
}

func (r *Redis[T]) Create(ctx context.Context, userID int64, value T) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	ok, err := r.client.SetNX(ctx, r.key(userID), data, r.ttl).Result()
	if err != nil {
		return fmt.Errorf("create state: %w", err)
	}
	if !ok {
		return ErrExists
	}
	return nil
}

func (r *Redis[T]) Put(ctx context.Context, userID int64, value T) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	ok, err := r.client.SetXX(ctx, r.key(userID), data, r.ttl).Result()
	if err != nil {
		return fmt.Errorf("put state: %w", err)
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (r *Redis[T]) Delete(ctx context.Context, userID int64) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := r.client.Del(ctx, r.key(userID)).Err(); err != nil {
		return fmt.Errorf("delete state: %w", err)
	}
	return nil
}

// Sweep is a no-op; Redis expires keys itself.
func (r *Redis[T]) Sweep(context.Context) (int, error) {
	return 0, nil
}

func (r *Redis[T]) key(userID int64) string {
	return r.prefix + strconv.FormatInt(userID, 10)
}
