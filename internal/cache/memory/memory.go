package memory

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/dropDatabas3/portero/internal/cache"
	gocache "github.com/patrickmn/go-cache"
)

// Mem implementa cache.Client sobre patrickmn/go-cache.
type Mem struct {
	c *gocache.Cache
	// go-cache no tiene INCR atómico con TTL; lo serializamos nosotros.
	mu sync.Mutex
}

func New(defaultTTL time.Duration) *Mem {
	if defaultTTL <= 0 {
		defaultTTL = 2 * time.Minute
	}
	return &Mem{c: gocache.New(defaultTTL, time.Minute)}
}

func (m *Mem) Get(_ context.Context, key string) (string, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return "", cache.ErrNotFound
	}
	s, _ := v.(string)
	return s, nil
}

func (m *Mem) Set(_ context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	m.c.Set(key, value, ttl)
	return nil
}

func (m *Mem) Incr(_ context.Context, key string, ttl time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.c.Get(key); ok {
		n, _ := strconv.ParseInt(v.(string), 10, 64)
		n++
		// conservar el TTL restante: go-cache lo hace si usamos Replace
		_ = m.c.Replace(key, strconv.FormatInt(n, 10), ttl)
		return n, nil
	}
	m.c.Set(key, "1", ttl)
	return 1, nil
}

func (m *Mem) Delete(_ context.Context, key string) error {
	m.c.Delete(key)
	return nil
}

func (m *Mem) Exists(_ context.Context, key string) (bool, error) {
	_, ok := m.c.Get(key)
	return ok, nil
}

func (m *Mem) Ping(context.Context) error { return nil }
func (m *Mem) Close() error               { return nil }
