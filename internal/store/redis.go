package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps state in redis under a shared key prefix. Commit uses a
// MULTI/EXEC pipeline so a batch is applied atomically.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (r *RedisStore) namespaced(key string) string {
	return r.prefix + ":" + key
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := r.client.Get(ctx, r.namespaced(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read key %q: %w", key, err)
	}
	return raw, nil
}

func (r *RedisStore) Commit(ctx context.Context, ops []Op) error {
	pipe := r.client.TxPipeline()
	for _, op := range ops {
		if op.Delete {
			pipe.Del(ctx, r.namespaced(op.Key))
			continue
		}
		pipe.Set(ctx, r.namespaced(op.Key), op.Value, 0)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	return nil
}
