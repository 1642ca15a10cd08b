package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis shares sessions between service instances
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis connects and pings the server
func NewRedis(addr, password string, db int, prefix string) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &Redis{client: client, prefix: prefix}, nil
}

func (r *Redis) Get(ctx context.Context, key string, dst any) error {
	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get session %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode session %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Put(ctx context.Context, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", key, err)
	}
	if err := r.client.Set(ctx, r.prefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("put session %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.prefix+key).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}
