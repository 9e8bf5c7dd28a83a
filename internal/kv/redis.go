package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const redisMaxRetries = 10

// ErrEmptyRedisPrefix is returned by OpenRedis when no key prefix is given.
// Clear deletes everything under the prefix, so it must not be empty.
var ErrEmptyRedisPrefix = errors.New("redis key prefix must not be empty")

// Redis stores values under a key prefix in a Redis database.
type Redis struct {
	rdb    *redis.Client
	prefix string
}

// OpenRedis connects to the Redis server at url and verifies it with PING.
func OpenRedis(ctx context.Context, url, prefix string, log zerolog.Logger) (*Redis, error) {
	if prefix == "" {
		return nil, ErrEmptyRedisPrefix
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	log.Info().
		Str("addr", opt.Addr).
		Int("db", opt.DB).
		Str("prefix", prefix).
		Msg("Redis connected")

	return &Redis{rdb: rdb, prefix: prefix}, nil
}

func (r *Redis) key(key string) string {
	return r.prefix + key
}

// Get implements Store.
func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.rdb.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// Set implements Store.
func (r *Redis) Set(ctx context.Context, key, value string) error {
	return r.rdb.Set(ctx, r.key(key), value, 0).Err()
}

// Clear implements Store by deleting every key under the prefix.
func (r *Redis) Clear(ctx context.Context) error {
	iter := r.rdb.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 100 {
			if err := r.rdb.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return r.rdb.Del(ctx, batch...).Err()
	}
	return nil
}

// Update implements Updater with WATCH/MULTI, retrying when another client
// changes the key between the read and the write.
func (r *Redis) Update(ctx context.Context, key string, fn UpdateFunc) error {
	full := r.key(key)
	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, full).Result()
		ok := true
		if errors.Is(err, redis.Nil) {
			current, ok = "", false
		} else if err != nil {
			return err
		}
		next, err := fn(current, ok)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, full, next, 0)
			return nil
		})
		return err
	}

	for i := 0; i < redisMaxRetries; i++ {
		err := r.rdb.Watch(ctx, txf, full)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("update %s: too many concurrent writers", key)
}

// Close implements Store.
func (r *Redis) Close() error {
	return r.rdb.Close()
}
