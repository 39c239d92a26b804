package cache

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/sync/singleflight"
)

// ErrMiss is returned by Get when the key does not exist.
var ErrMiss = redis.Nil

const scanBatch = 500

// Set is a namespace of msgpack encoded values of type T stored in Redis.
type Set[T any] struct {
	client *redis.Client
	prefix string

	// group collapses concurrent recomputations of the same key in this process
	group singleflight.Group
}

func NewSet[T any](client *redis.Client, prefix string) *Set[T] {
	return &Set[T]{
		client: client,
		prefix: prefix + ":",
	}
}

func (c *Set[T]) Name() string {
	return c.prefix[:len(c.prefix)-1]
}

func (c *Set[T]) key(key string) string {
	return c.prefix + key
}

func (c *Set[T]) Get(ctx context.Context, key string, dest *T) error {
	key = c.key(key)
	resp, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Error().Err(err).Str("key", key).Msg("failed to get value from redis")
		}
		return err
	}
	if err := msgpack.Unmarshal(resp, dest); err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to unmarshal value from msgpack from redis")
		return err
	}
	return nil
}

func (c *Set[T]) Set(ctx context.Context, key string, value T, expire time.Duration) error {
	key = c.key(key)
	if l := log.Trace(); l.Enabled() {
		l.Str("key", key).Msg("setting value to redis")
	}
	b, err := msgpack.Marshal(value)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to marshal value with msgpack")
		return err
	}
	if err := c.client.Set(ctx, key, b, expire).Err(); err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to set value to redis")
		return err
	}
	return nil
}

// MutexGetSet reads key into dest. On a miss valueFunc is run once per key
// across concurrent callers of this process, its result stored with expire
// and written to dest. The returned bool reports whether the value was
// computed rather than read from Redis.
func (c *Set[T]) MutexGetSet(ctx context.Context, key string, dest *T, valueFunc func() (T, error), expire time.Duration) (bool, error) {
	err := c.Get(ctx, key, dest)
	if err == nil {
		return false, nil
	} else if !errors.Is(err, redis.Nil) {
		return false, err
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		var cached T
		if err := c.Get(ctx, key, &cached); err == nil {
			return cached, nil
		} else if !errors.Is(err, redis.Nil) {
			return nil, err
		}

		value, err := valueFunc()
		if err != nil {
			return nil, err
		}
		if err := c.Set(ctx, key, value, expire); err != nil {
			return nil, err
		}
		return value, nil
	})
	if err != nil {
		return true, err
	}

	*dest = v.(T)
	return true, nil
}

func (c *Set[T]) Delete(ctx context.Context, key string) error {
	key = c.key(key)
	if err := c.client.Del(ctx, key).Err(); err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to delete value from redis")
		return err
	}
	return nil
}

// DeletePrefix removes every key of the set starting with keyPrefix and
// returns how many were removed. Keys are walked with SCAN so a large set
// never blocks Redis.
func (c *Set[T]) DeletePrefix(ctx context.Context, keyPrefix string) (int, error) {
	pattern := c.key(keyPrefix) + "*"
	iter := c.client.Scan(ctx, 0, pattern, scanBatch).Iterator()

	deleted := 0
	batch := make([]string, 0, scanBatch)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := c.client.Unlink(ctx, batch...).Result()
		if err != nil {
			return err
		}
		deleted += int(n)
		batch = batch[:0]
		return nil
	}

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == scanBatch {
			if err := flush(); err != nil {
				log.Error().Err(err).Str("pattern", pattern).Msg("failed to delete keys from redis")
				return deleted, err
			}
		}
	}
	if err := iter.Err(); err != nil {
		log.Error().Err(err).Str("pattern", pattern).Msg("failed to scan keys from redis")
		return deleted, err
	}
	if err := flush(); err != nil {
		log.Error().Err(err).Str("pattern", pattern).Msg("failed to delete keys from redis")
		return deleted, err
	}
	return deleted, nil
}

// Flush removes every key of the set.
func (c *Set[T]) Flush(ctx context.Context) error {
	_, err := c.DeletePrefix(ctx, "")
	return err
}
