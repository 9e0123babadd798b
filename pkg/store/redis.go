package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each document under "<prefix><collection>:<key>".
type RedisStore struct {
	client *redis.Client
	prefix string
}

// RedisOptions configures ConnectRedis.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// ConnectRedis establishes a connection to Redis and pings it.
func ConnectRedis(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewRedisStore(client, opts.Prefix), nil
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (r *RedisStore) key(collection, key string) string {
	return r.prefix + collection + ":" + key
}

func (r *RedisStore) Get(ctx context.Context, collection, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, r.key(collection, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error reading %s/%s: %w", collection, key, err)
	}
	return val, nil
}

func (r *RedisStore) Set(ctx context.Context, collection, key string, value []byte) error {
	if err := r.client.Set(ctx, r.key(collection, key), value, 0).Err(); err != nil {
		return fmt.Errorf("error writing %s/%s: %w", collection, key, err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, collection, key string) error {
	if err := r.client.Del(ctx, r.key(collection, key)).Err(); err != nil {
		return fmt.Errorf("error deleting %s/%s: %w", collection, key, err)
	}
	return nil
}

// Commit wraps the batch in MULTI/EXEC.
func (r *RedisStore) Commit(ctx context.Context, ops []Op) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, op := range ops {
			pipe.Set(ctx, r.key(op.Collection, op.Key), op.Value, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis transaction (%d ops): %w", len(ops), err)
	}
	return nil
}

// Close closes the Redis connection
func (r *RedisStore) Close() error {
	return r.client.Close()
}
