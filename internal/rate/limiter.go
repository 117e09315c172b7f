package rate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dropDatabas3/portero/internal/cache"
)

type Result struct {
	Allowed     bool
	Remaining   int64
	RetryAfter  time.Duration
	CurrentHits int64
}

type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// WindowLimiter: fixed window sencillo (INCR + EXPIRE) sobre cache.Client,
// así funciona igual con memory en dev y redis en producción.
type WindowLimiter struct {
	Cache  cache.Client
	Prefix string
	Max    int64
	Window time.Duration
}

func NewWindowLimiter(c cache.Client, prefix string, max int, window time.Duration) *WindowLimiter {
	if prefix == "" {
		prefix = "rl:"
	}
	return &WindowLimiter{Cache: c, Prefix: prefix, Max: int64(max), Window: window}
}

func (l *WindowLimiter) Allow(ctx context.Context, key string) (Result, error) {
	now := time.Now().UTC()
	winStart := now.Truncate(l.Window)
	cacheKey := fmt.Sprintf("%s%s:%d", l.Prefix, strings.ReplaceAll(key, " ", "_"), winStart.Unix())

	hits, err := l.Cache.Incr(ctx, cacheKey, l.Window)
	if err != nil {
		return Result{}, err
	}

	allowed := hits <= l.Max
	remaining := l.Max - hits
	if remaining < 0 {
		remaining = 0
	}
	res := Result{Allowed: allowed, Remaining: remaining, CurrentHits: hits}
	if !allowed {
		// retry after: resto de la ventana
		res.RetryAfter = winStart.Add(l.Window).Sub(now)
		if res.RetryAfter < time.Second {
			res.RetryAfter = time.Second
		}
	}
	return res, nil
}

// Noop permite deshabilitar rate limiting por config sin ifs en handlers.
type Noop struct{}

func (Noop) Allow(context.Context, string) (Result, error) {
	return Result{Allowed: true, Remaining: 1}, nil
}
