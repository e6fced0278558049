package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"docvault/internal/config"
)

const maxUpdateRetries = 16

// redisStorage implements Storage on Redis strings. Update is an optimistic
// WATCH/MULTI transaction, retried when another client modified the key.
type redisStorage struct {
	client *redis.Client
	prefix string
}

// NewRedisClient builds a client from config without contacting the server.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Host + ":" + cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// NewRedis wraps an existing client.
func NewRedis(client *redis.Client, prefix string) Storage {
	return &redisStorage{client: client, prefix: prefix}
}

func (r *redisStorage) buildKey(key string) string {
	if r.prefix == "" {
		return key
	}
	return fmt.Sprintf("%s:%s", r.prefix, key)
}

func (r *redisStorage) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := r.client.Get(ctx, r.buildKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrObjectNotFound
	}
	return b, err
}

func (r *redisStorage) Put(ctx context.Context, key string, data []byte) error {
	return r.client.Set(ctx, r.buildKey(key), data, 0).Err()
}

func (r *redisStorage) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.buildKey(key)).Err()
}

func (r *redisStorage) Update(ctx context.Context, key string, fn UpdateFunc) error {
	k := r.buildKey(key)

	txf := func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, k).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
			cur = nil
		case err != nil:
			return err
		}
		next, err := fn(cur)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, k, next, 0)
			return nil
		})
		return err
	}

	for i := 0; i < maxUpdateRetries; i++ {
		err := r.client.Watch(ctx, txf, k)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return ErrConflict
}

func (r *redisStorage) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
