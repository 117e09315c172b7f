package main

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dropDatabas3/portero/internal/config"
	"github.com/dropDatabas3/portero/internal/observability/logger"
	migrations "github.com/dropDatabas3/portero/migrations/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate [up|down] [steps]",
		Short: "Aplica o revierte las migraciones de esquema embebidas",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			action := "up"
			steps := 0
			if len(args) >= 1 && args[0] != "" {
				action = strings.ToLower(args[0])
			}
			if len(args) >= 2 {
				if n, err := strconv.Atoi(args[1]); err == nil && n > 0 {
					steps = n
				}
			}

			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, ServiceName: "portero-migrate"})
			defer func() { _ = logger.Sync() }()

			if cfg.Storage.Driver != "postgres" {
				return fmt.Errorf("migrate requiere storage.driver=postgres (actual: %s)", cfg.Storage.Driver)
			}

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()

			pool, err := pgxpool.New(ctx, cfg.Storage.DSN)
			if err != nil {
				return fmt.Errorf("pgxpool: %w", err)
			}
			defer pool.Close()

			switch action {
			case "up":
				return migrateUp(ctx, pool, steps)
			case "down":
				return migrateDown(ctx, pool, steps)
			default:
				return fmt.Errorf("acción desconocida %q (up|down)", action)
			}
		},
	}
}

const versionTable = `
CREATE TABLE IF NOT EXISTS schema_migrations (
    version    TEXT PRIMARY KEY,
    applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

// listSQL devuelve los archivos embebidos con el sufijo dado, ordenados.
func listSQL(suffix string) ([]string, error) {
	entries, err := migrations.FS.ReadDir(".")
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), suffix) {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}

// version extrae el prefijo numérico: "0002_rbac_up.sql" -> "0002".
func version(name string) string {
	if i := strings.IndexByte(name, '_'); i > 0 {
		return name[:i]
	}
	return name
}

func appliedVersions(ctx context.Context, pool *pgxpool.Pool) (map[string]bool, error) {
	if _, err := pool.Exec(ctx, versionTable); err != nil {
		return nil, err
	}
	rows, err := pool.Query(ctx, `SELECT version FROM schema_migrations;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out[v] = true
	}
	return out, rows.Err()
}

func migrateUp(ctx context.Context, pool *pgxpool.Pool, steps int) error {
	files, err := listSQL("_up.sql")
	if err != nil {
		return err
	}
	applied, err := appliedVersions(ctx, pool)
	if err != nil {
		return err
	}

	var ran int
	for _, f := range files {
		v := version(f)
		if applied[v] {
			continue
		}
		if steps > 0 && ran >= steps {
			break
		}
		sql, err := migrations.FS.ReadFile(f)
		if err != nil {
			return err
		}
		if _, err := pool.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("exec %s: %w", f, err)
		}
		if _, err := pool.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1);`, v); err != nil {
			return err
		}
		logger.L().Info("migration applied", zap.String("file", f))
		ran++
	}
	if ran == 0 {
		logger.L().Info("schema up to date")
	}
	return nil
}

// migrateDown revierte las últimas migraciones aplicadas, en orden inverso.
// Sin steps revierte solo la última.
func migrateDown(ctx context.Context, pool *pgxpool.Pool, steps int) error {
	if steps <= 0 {
		steps = 1
	}
	files, err := listSQL("_down.sql")
	if err != nil {
		return err
	}
	applied, err := appliedVersions(ctx, pool)
	if err != nil {
		return err
	}

	var ran int
	for i := len(files) - 1; i >= 0 && ran < steps; i-- {
		f := files[i]
		v := version(f)
		if !applied[v] {
			continue
		}
		sql, err := migrations.FS.ReadFile(f)
		if err != nil {
			return err
		}
		if _, err := pool.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("exec %s: %w", f, err)
		}
		if _, err := pool.Exec(ctx, `DELETE FROM schema_migrations WHERE version = $1;`, v); err != nil {
			return err
		}
		logger.L().Info("migration reverted", zap.String("file", f))
		ran++
	}
	if ran == 0 {
		logger.L().Info("nothing to revert")
	}
	return nil
}
