package app

import (
	"context"
	"fmt"
	"time"

	"github.com/dropDatabas3/portero/internal/cache"
	cachemem "github.com/dropDatabas3/portero/internal/cache/memory"
	cacheredis "github.com/dropDatabas3/portero/internal/cache/redis"
	"github.com/dropDatabas3/portero/internal/config"
	"github.com/dropDatabas3/portero/internal/email"
	"github.com/dropDatabas3/portero/internal/guard"
	"github.com/dropDatabas3/portero/internal/rate"
	"github.com/dropDatabas3/portero/internal/security/password"
	"github.com/dropDatabas3/portero/internal/store/core"
	"github.com/dropDatabas3/portero/internal/store/memory"
	"github.com/dropDatabas3/portero/internal/store/pg"
	"github.com/dropDatabas3/portero/internal/token"
)

// Container agrupa las dependencias ya construidas. Se arma una vez en el
// arranque y se inyecta en handlers; nada se lee de estado global después.
type Container struct {
	Cfg    *config.Config
	Store  core.Repository
	Issuer *token.Issuer
	Auth   *Service
	Guard  *guard.Guard
	Cache  cache.Client

	LoginLimiter  rate.Limiter
	ForgotLimiter rate.Limiter

	closers []func()
}

// Build construye el container completo desde la config.
// Un store inalcanzable acá es fatal: no se reintenta.
func Build(ctx context.Context, cfg *config.Config) (*Container, error) {
	c := &Container{Cfg: cfg}

	// store
	switch cfg.Storage.Driver {
	case "postgres":
		st, err := pg.New(ctx, cfg.Storage.DSN, pg.Tuning{
			MaxOpenConns:    cfg.Storage.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Storage.Postgres.MaxIdleConns,
			ConnMaxLifetime: cfg.Storage.Postgres.ConnMaxLifetime,
		})
		if err != nil {
			return nil, fmt.Errorf("store: %w", err)
		}
		if err := st.Ping(ctx); err != nil {
			st.Close()
			return nil, fmt.Errorf("store unreachable: %w", err)
		}
		c.Store = st
		c.closers = append(c.closers, st.Close)
	case "memory":
		c.Store = memory.New()
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	// cache
	switch cfg.Cache.Kind {
	case "redis":
		rc := cacheredis.New(cfg.Cache.Redis.Addr, cfg.Cache.Redis.DB, cfg.Cache.Redis.Prefix)
		if err := rc.Ping(ctx); err != nil {
			return nil, fmt.Errorf("redis unreachable: %w", err)
		}
		c.Cache = rc
		c.closers = append(c.closers, func() { _ = rc.Close() })
	default:
		ttl, _ := time.ParseDuration(cfg.Cache.Memory.DefaultTTL)
		c.Cache = cachemem.New(ttl)
	}

	c.Issuer = token.NewIssuer(
		[]byte(cfg.JWT.Secret), cfg.JWT.Issuer,
		cfg.AccessTTL(), cfg.RefreshTTL(), cfg.ResetTTL(),
	)
	c.Guard = guard.New(c.Store, c.Issuer)

	var mailer email.Sender = email.LogSender{}
	if cfg.SMTP.Host != "" {
		mailer = email.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.From, cfg.SMTP.Username, cfg.SMTP.Password)
	}

	pol := password.DefaultPolicy(cfg.Auth.Password.RequireSymbol)
	c.Auth = NewService(c.Store, c.Issuer, password.Default, pol, c.Cache, mailer)

	if cfg.Rate.Enabled {
		c.LoginLimiter = rate.NewWindowLimiter(c.Cache, "rl:login:", cfg.Rate.Login.Limit, mustDur(cfg.Rate.Login.Window))
		c.ForgotLimiter = rate.NewWindowLimiter(c.Cache, "rl:forgot:", cfg.Rate.Forgot.Limit, mustDur(cfg.Rate.Forgot.Window))
	} else {
		c.LoginLimiter = rate.Noop{}
		c.ForgotLimiter = rate.Noop{}
	}
	return c, nil
}

// Close libera pools y conexiones en orden inverso.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

func mustDur(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return time.Minute
	}
	return d
}
