package main

import (
	"context"
	"fmt"
	"time"

	"github.com/dropDatabas3/portero/internal/app"
	"github.com/dropDatabas3/portero/internal/authz"
	"github.com/dropDatabas3/portero/internal/config"
	"github.com/dropDatabas3/portero/internal/observability/logger"
	"github.com/dropDatabas3/portero/internal/security/password"
	"github.com/dropDatabas3/portero/internal/store/core"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newSeedCmd() *cobra.Command {
	var (
		adminUsername string
		adminEmail    string
		adminPassword string
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Siembra el catálogo RBAC y opcionalmente un superusuario",
		Long: `Siembra el catálogo de permisos y los role templates del sistema.
Es idempotente: lo existente se saltea, nunca se pisa.
Con --admin-email y --admin-password crea además un superusuario inicial.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, ServiceName: "portero-seed"})
			defer func() { _ = logger.Sync() }()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			c, err := app.Build(ctx, cfg)
			if err != nil {
				return err
			}
			defer c.Close()

			if err := authz.Seed(ctx, c.Store); err != nil {
				return fmt.Errorf("seed: %w", err)
			}

			if adminEmail != "" && adminPassword != "" {
				if err := seedSuperuser(ctx, c.Store, adminUsername, adminEmail, adminPassword); err != nil {
					return fmt.Errorf("superuser: %w", err)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&adminUsername, "admin-username", "admin", "username del superusuario inicial")
	cmd.Flags().StringVar(&adminEmail, "admin-email", "", "email del superusuario inicial")
	cmd.Flags().StringVar(&adminPassword, "admin-password", "", "password del superusuario inicial")
	return cmd
}

// seedSuperuser crea el superusuario inicial si el email no existe todavía.
func seedSuperuser(ctx context.Context, repo core.Repository, username, email, plain string) error {
	if _, err := repo.GetUserByEmail(ctx, email); err == nil {
		logger.L().Info("superuser already exists", zap.String("email", email))
		return nil
	}
	hash, err := password.Hash(password.Default, plain)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	u := &core.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
		IsVerified:   true,
		IsSuperuser:  true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := repo.CreateUser(ctx, u); err != nil {
		return err
	}
	logger.L().Info("superuser created", zap.String("email", email), zap.String("id", u.ID))
	return nil
}
