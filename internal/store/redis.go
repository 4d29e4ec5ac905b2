package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/jimmiewester/skippy/internal/config"
)

// RedisStore stores each item as a JSON value under skippy:<collection>:<id>.
// Collections exist implicitly through the key prefix, so addressing a new
// collection needs no provisioning step.
type RedisStore struct {
	client *redis.Client
}

// NewRedisClient creates a Redis client from configuration.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Ping verifies the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func itemKey(collection, id string) string {
	return fmt.Sprintf("skippy:%s:%s", collection, id)
}

func (s *RedisStore) Put(ctx context.Context, collection string, item Item) error {
	id := item.ID()
	if id == "" {
		return fmt.Errorf("item has no id")
	}

	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to marshal item: %w", err)
	}

	if err := s.client.Set(ctx, itemKey(collection, id), data, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, collection, id string) (Item, error) {
	val, err := s.client.Get(ctx, itemKey(collection, id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var item Item
	if err := json.Unmarshal([]byte(val), &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal item %s: %w", id, err)
	}
	return item, nil
}

// Update is a read-merge-write without a concurrency token: two concurrent
// updates to the same id race at last-write-wins granularity.
func (s *RedisStore) Update(ctx context.Context, collection, id string, fields Item) (Item, error) {
	item, err := s.Get(ctx, collection, id)
	if err != nil {
		return nil, err
	}

	merged := merge(item, fields)
	if err := s.Put(ctx, collection, merged); err != nil {
		return nil, err
	}
	return merged, nil
}

func (s *RedisStore) Scan(ctx context.Context, collection string, limit int) ([]Item, error) {
	pattern := fmt.Sprintf("skippy:%s:*", collection)

	items := make([]Item, 0, limit)
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, pattern, int64(limit)).Result()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}

		for _, key := range keys {
			if len(items) >= limit {
				return items, nil
			}
			val, err := s.client.Get(ctx, key).Result()
			if errors.Is(err, redis.Nil) {
				// Deleted between SCAN and GET; skip.
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
			}
			var item Item
			if err := json.Unmarshal([]byte(val), &item); err != nil {
				return nil, fmt.Errorf("failed to unmarshal item at %s: %w", key, err)
			}
			items = append(items, item)
		}

		cursor = next
		if cursor == 0 {
			return items, nil
		}
	}
}

func (s *RedisStore) Delete(ctx context.Context, collection, id string) error {
	if err := s.client.Del(ctx, itemKey(collection, id)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
