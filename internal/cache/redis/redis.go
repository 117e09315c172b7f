package redis

import (
	"context"
	"time"

	"github.com/dropDatabas3/portero/internal/cache"
	rdb "github.com/redis/go-redis/v9"
)

// Cache implementa cache.Client sobre go-redis.
type Cache struct {
	c      *rdb.Client
	prefix string
}

func New(addr string, db int, prefix string) *Cache {
	return &Cache{
		c:      rdb.NewClient(&rdb.Options{Addr: addr, DB: db}),
		prefix: prefix,
	}
}

func (r *Cache) key(k string) string { return r.prefix + k }

func (r *Cache) Get(ctx context.Context, k string) (string, error) {
	v, err := r.c.Get(ctx, r.key(k)).Result()
	if err == rdb.Nil {
		return "", cache.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

func (r *Cache) Set(ctx context.Context, k, v string, ttl time.Duration) error {
	return r.c.Set(ctx, r.key(k), v, ttl).Err()
}

func (r *Cache) Incr(ctx context.Context, k string, ttl time.Duration) (int64, error) {
	key := r.key(k)
	pipe := r.c.TxPipeline()
	incr := pipe.Incr(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	// expiry solo en el primer hit
	if incr.Val() == 1 && ttl > 0 {
		_ = r.c.Expire(ctx, key, ttl).Err()
	}
	return incr.Val(), nil
}

func (r *Cache) Delete(ctx context.Context, k string) error {
	return r.c.Del(ctx, r.key(k)).Err()
}

func (r *Cache) Exists(ctx context.Context, k string) (bool, error) {
	n, err := r.c.Exists(ctx, r.key(k)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *Cache) Ping(ctx context.Context) error { return r.c.Ping(ctx).Err() }
func (r *Cache) Close() error                   { return r.c.Close() }
