package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/dropDatabas3/portero/internal/app"
	"github.com/dropDatabas3/portero/internal/config"
	porterohttp "github.com/dropDatabas3/portero/internal/http"
	"github.com/dropDatabas3/portero/internal/observability/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Levanta el servidor de la API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}

			logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, ServiceName: "portero"})
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			c, err := app.Build(ctx, cfg)
			if err != nil {
				return err
			}
			defer c.Close()

			logger.L().Info("starting", zap.String("env", cfg.App.Env), zap.String("storage", cfg.Storage.Driver))
			return porterohttp.Serve(ctx, c)
		},
	}
}
