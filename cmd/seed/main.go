package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"krishi/internal/config"
	"krishi/internal/db"
	"krishi/internal/logging"
	"krishi/internal/repository"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:          "krishi-seed",
		Short:        "Create the demo farmer accounts in MySQL",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), configPath)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to a YAML config file (default $KRISHI_CONFIG)")
	return cmd
}

func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		logger.Error("failed to connect to database", zap.Error(err))
		return err
	}
	if err := db.Migrate(gormDB); err != nil {
		logger.Error("failed to run migrations", zap.Error(err))
		return err
	}
	logger.Info("database migrations completed")

	users, err := repository.NewGormUserRepository(gormDB, repository.DefaultBcryptCost)
	if err != nil {
		return fmt.Errorf("create user repository: %w", err)
	}
	return seedUsers(ctx, users, logger)
}

// seedUsers inserts the default accounts and logs how many were new.
func seedUsers(ctx context.Context, users repository.UserRepository, logger *zap.Logger) error {
	seeds := repository.DefaultSeedUsers()
	created, err := repository.Seed(ctx, users, seeds)
	if err != nil {
		logger.Error("seed failed", zap.Int("created", created), zap.Error(err))
		return err
	}
	logger.Info("seed completed",
		zap.Int("created", created),
		zap.Int("skipped", len(seeds)-created),
	)
	return nil
}
