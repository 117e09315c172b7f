package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración del proceso. Se construye una sola vez en el
// arranque y se pasa por inyección; ningún paquete del core lee estado
// global.
type Config struct {
	App struct {
		// dev | staging | prod
		Env string `yaml:"env"`
	} `yaml:"app"`

	Server struct {
		Addr        string `yaml:"addr"`
		MetricsAddr string `yaml:"metrics_addr"`
	} `yaml:"server"`

	Storage struct {
		// postgres | memory
		Driver   string `yaml:"driver"`
		DSN      string `yaml:"dsn"`
		Postgres struct {
			MaxOpenConns    int    `yaml:"max_open_conns"`
			MaxIdleConns    int    `yaml:"max_idle_conns"`
			ConnMaxLifetime string `yaml:"conn_max_lifetime"`
		} `yaml:"postgres"`
	} `yaml:"storage"`

	Cache struct {
		// memory | redis
		Kind  string `yaml:"kind"`
		Redis struct {
			Addr   string `yaml:"addr"`
			DB     int    `yaml:"db"`
			Prefix string `yaml:"prefix"`
		} `yaml:"redis"`
		Memory struct {
			DefaultTTL string `yaml:"default_ttl"`
		} `yaml:"memory"`
	} `yaml:"cache"`

	JWT struct {
		// Secret viene de ENV (PORTERO_JWT_SECRET); nunca del YAML en prod.
		Secret     string `yaml:"secret"`
		Issuer     string `yaml:"issuer"`
		AccessTTL  string `yaml:"access_ttl"`
		RefreshTTL string `yaml:"refresh_ttl"`
		ResetTTL   string `yaml:"reset_ttl"`
	} `yaml:"jwt"`

	Auth struct {
		Password struct {
			RequireSymbol bool `yaml:"require_symbol"`
		} `yaml:"password"`
	} `yaml:"auth"`

	Rate struct {
		Enabled bool `yaml:"enabled"`
		Login   struct {
			Limit  int    `yaml:"limit"`
			Window string `yaml:"window"`
		} `yaml:"login"`
		Forgot struct {
			Limit  int    `yaml:"limit"`
			Window string `yaml:"window"`
		} `yaml:"forgot"`
	} `yaml:"rate"`

	SMTP struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		From     string `yaml:"from"`
	} `yaml:"smtp"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Load lee el YAML (path opcional), aplica overrides de ENV y defaults, y
// valida lo fatal: sin secret JWT no hay proceso.
func Load(path string) (*Config, error) {
	// .env si existe (dev); en prod las vars ya vienen del entorno
	_ = godotenv.Load()

	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &c); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// sin YAML: config por ENV + defaults (deploys containerizados)
		default:
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	// ENV overrides
	if v := os.Getenv("PORTERO_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("PORTERO_DSN"); v != "" {
		c.Storage.DSN = v
	}
	if v := os.Getenv("PORTERO_STORAGE_DRIVER"); v != "" {
		c.Storage.Driver = v
	}
	if v := os.Getenv("PORTERO_JWT_SECRET"); v != "" {
		c.JWT.Secret = v
	}
	if v := os.Getenv("PORTERO_REDIS_ADDR"); v != "" {
		c.Cache.Kind = "redis"
		c.Cache.Redis.Addr = v
	}
	if v := os.Getenv("PORTERO_SMTP_HOST"); v != "" {
		c.SMTP.Host = v
	}
	if v := os.Getenv("PORTERO_SMTP_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.SMTP.Port = n
		}
	}
	if v := os.Getenv("PORTERO_SMTP_USERNAME"); v != "" {
		c.SMTP.Username = v
	}
	if v := os.Getenv("PORTERO_SMTP_PASSWORD"); v != "" {
		c.SMTP.Password = v
	}

	// sane defaults
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.MetricsAddr == "" {
		c.Server.MetricsAddr = ":9091"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "postgres"
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.Memory.DefaultTTL == "" {
		c.Cache.Memory.DefaultTTL = "2m"
	}
	if c.JWT.Issuer == "" {
		c.JWT.Issuer = "portero"
	}
	if c.JWT.AccessTTL == "" {
		c.JWT.AccessTTL = "15m"
	}
	if c.JWT.RefreshTTL == "" {
		c.JWT.RefreshTTL = "720h" // 30d
	}
	if c.JWT.ResetTTL == "" {
		c.JWT.ResetTTL = "1h"
	}
	if c.Rate.Login.Limit == 0 {
		c.Rate.Login.Limit = 10
	}
	if c.Rate.Login.Window == "" {
		c.Rate.Login.Window = "1m"
	}
	if c.Rate.Forgot.Limit == 0 {
		c.Rate.Forgot.Limit = 5
	}
	if c.Rate.Forgot.Window == "" {
		c.Rate.Forgot.Window = "10m"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	// fatal en arranque, no se reintenta
	if c.JWT.Secret == "" {
		return nil, fmt.Errorf("config: jwt secret is required (PORTERO_JWT_SECRET)")
	}
	if c.Storage.Driver == "postgres" && c.Storage.DSN == "" {
		return nil, fmt.Errorf("config: storage dsn is required for postgres driver")
	}
	return &c, nil
}

// AccessTTL parsea el TTL de access tokens.
func (c *Config) AccessTTL() time.Duration { return mustDur(c.JWT.AccessTTL, 15*time.Minute) }

// RefreshTTL parsea el TTL de refresh tokens.
func (c *Config) RefreshTTL() time.Duration { return mustDur(c.JWT.RefreshTTL, 720*time.Hour) }

// ResetTTL parsea el TTL de tokens de password reset.
func (c *Config) ResetTTL() time.Duration { return mustDur(c.JWT.ResetTTL, time.Hour) }

func mustDur(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
