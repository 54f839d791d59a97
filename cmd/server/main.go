package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"krishi/docs"
	"krishi/internal/auth"
	"krishi/internal/cache"
	"krishi/internal/chat"
	"krishi/internal/config"
	"krishi/internal/db"
	"krishi/internal/handler"
	"krishi/internal/logging"
	"krishi/internal/persist"
	"krishi/internal/repository"
	"krishi/internal/router"
	"krishi/internal/service"
	"krishi/internal/session"
)

const shutdownTimeout = 10 * time.Second

// @title Karnataka Krishi API
// @version 1.0
// @description Farmer accounts, session state, protected views and the crop assistant.
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey ScopeToken
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the scope token from X-Scope-Token.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:          "krishi-server",
		Short:        "Serve the Karnataka Krishi API",
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

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore := openSlotStore(ctx, cfg, logger)
	defer closeStore()

	users, err := openUserStore(ctx, cfg, logger)
	if err != nil {
		return err
	}

	slots := persist.NewSlots(store, cfg.SessionTTL, logger)
	registry := session.NewRegistry(func(scope string) *session.Manager {
		return session.NewManager(users, slots.Open(scope),
			session.WithLatency(cfg.AuthLatency),
			session.WithLogger(logger.With(zap.String("scope", scope))),
		)
	}, session.WithIdleTimeout(cfg.SessionIdle))

	var responder chat.Responder = chat.MockResponder{Delay: chat.DefaultMockDelay}
	if cfg.ChatEndpoint != "" {
		responder = chat.NewRemoteResponder(cfg.ChatEndpoint, cfg.ChatTimeout)
	}

	sessions := service.NewSessionService(registry)
	chats := service.NewChatService(service.AdapterTranscripts(slots.Open), responder, cfg.ChatTimeout, logger)

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "http://"), "https://")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	router.Register(e, cfg, logger, auth.NewJWTService(cfg.JWTSecret, cfg.SessionTTL), registry, router.Handlers{
		Auth:    handler.NewAuthHandler(sessions),
		Session: handler.NewSessionHandler(sessions),
		Profile: handler.NewProfileHandler(sessions),
		View:    handler.NewViewHandler(sessions),
		Chat:    handler.NewChatHandler(chats),
	})

	addr := ":" + cfg.ServerPort
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", zap.String("addr", addr), zap.String("store", cfg.StoreDriver))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server start: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return registry.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		return e.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// openSlotStore picks redis when configured and reachable, else process memory.
func openSlotStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (cache.Store, func()) {
	if cfg.RedisAddr == "" {
		return cache.NewMemory(), func() {}
	}
	client := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err := client.Ping(ctx); err != nil {
		logger.Warn("redis unreachable, session slots fall back to misses until it recovers",
			zap.String("addr", cfg.RedisAddr), zap.Error(err))
	}
	return client, func() { _ = client.Close() }
}

func openUserStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.UserRepository, error) {
	if cfg.StoreDriver == config.StoreMemory {
		return repository.NewMemoryUserRepository(repository.DefaultSeedUsers(), repository.DefaultBcryptCost)
	}

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(gormDB); err != nil {
		return nil, err
	}
	users, err := repository.NewGormUserRepository(gormDB, repository.DefaultBcryptCost)
	if err != nil {
		return nil, err
	}
	seeded, err := repository.Seed(ctx, users, repository.DefaultSeedUsers())
	if err != nil {
		return nil, err
	}
	logger.Info("user store ready", zap.Int("seeded", seeded))
	return users, nil
}
