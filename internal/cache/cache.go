// Package cache is a read-through Redis cache. Concurrent misses for one
// key share a single load.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

type Cache struct {
	RDB    *redis.Client
	prefix string
	sf     singleflight.Group
}

func New(rdb *redis.Client, prefix string) *Cache {
	return &Cache{RDB: rdb, prefix: prefix}
}

func (c *Cache) key(k string) string {
	return c.prefix + k
}

// genKey holds a counter bumped by every Invalidate. A load only stores its
// result when the counter did not move while it ran.
const genKey = "gen"

func (c *Cache) generation(ctx context.Context) string {
	gen, err := c.RDB.Get(ctx, c.key(genKey)).Result()
	if err != nil {
		return "0"
	}
	return gen
}

// GetOrLoad returns the cached bytes for key, or runs load and stores the
// result for ttl. A Redis outage degrades to calling load.
func (c *Cache) GetOrLoad(ctx context.Context, key string, ttl time.Duration, load func(context.Context) ([]byte, error)) ([]byte, error) {
	full := c.key(key)
	if b, err := c.RDB.Get(ctx, full).Bytes(); err == nil {
		return b, nil
	}
	gen := c.generation(ctx)
	// Callers arriving after an invalidation must not share a load that
	// started before it.
	v, err, _ := c.sf.Do(full+"#"+gen, func() (any, error) {
		b, e := load(ctx)
		if e != nil {
			return nil, e
		}
		c.store(ctx, full, gen, b, ttl)
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// store writes b unless an Invalidate ran since gen was read. WATCH makes
// the check and the write atomic against a concurrent INCR.
func (c *Cache) store(ctx context.Context, full, gen string, b []byte, ttl time.Duration) {
	gk := c.key(genKey)
	_ = c.RDB.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, gk).Result()
		if errors.Is(err, redis.Nil) {
			cur, err = "0", nil
		}
		if err != nil || cur != gen {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, full, b, ttl)
			return nil
		})
		return err
	}, gk)
}

// Invalidate drops every key under the cache prefix matching pattern and
// bumps the generation so in-flight loads discard their results.
func (c *Cache) Invalidate(ctx context.Context, pattern string) error {
	if err := c.RDB.Incr(ctx, c.key(genKey)).Err(); err != nil {
		return err
	}
	iter := c.RDB.Scan(ctx, 0, c.key(pattern), 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		if iter.Val() == c.key(genKey) {
			continue
		}
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.RDB.Del(ctx, keys...).Err()
}

func GetOrLoadJSON[T any](c *Cache, ctx context.Context, key string, ttl time.Duration, load func(ctx context.Context) (T, error)) (T, error) {
	var out T
	b, err := c.GetOrLoad(ctx, key, ttl, func(ctx context.Context) ([]byte, error) {
		v, e := load(ctx)
		if e != nil {
			return nil, e
		}
		return json.Marshal(v)
	})
	if err != nil {
		return out, err
	}
	if e := json.Unmarshal(b, &out); e != nil {
		return out, errors.Join(errors.New("cache: decode"), e)
	}
	return out, nil
}
