package http

import (
	"context"
	"log/slog"

	"go.uber.org/zap"

	memorycache "taskapp/internal/adapter/cache/memory"
	rediscache "taskapp/internal/adapter/cache/redis"
	"taskapp/internal/adapter/database/postgres"
	postgresrepo "taskapp/internal/adapter/database/postgres/repository"
	"taskapp/internal/adapter/database/sqlite"
	sqliterepo "taskapp/internal/adapter/database/sqlite/repository"
	"taskapp/internal/adapter/http/handler"
	"taskapp/internal/adapter/imaging"
	"taskapp/internal/adapter/notifier"
	"taskapp/internal/core/port"
	"taskapp/internal/core/service"
	"taskapp/pkg/config"
)

// Container wires the storage, cache, notification and service layers
// behind the HTTP handlers.
type Container struct {
	UserRepo port.UserRepository
	TaskRepo port.TaskRepository

	TokenService   port.TokenService
	AccountService port.AccountService

	Cache      port.CacheRepository
	Notifier   port.Notifier
	Transcoder port.AvatarTranscoder

	AuthHandler    *handler.AuthHandler
	AccountHandler *handler.AccountHandler
	AvatarHandler  *handler.AvatarHandler

	probe   port.Telemetry
	closers []func()
}

func NewContainer(ctx context.Context, cfg *config.AppConfig, probe port.Telemetry, logger *zap.Logger) (*Container, error) {
	c := &Container{probe: probe}

	if err := c.setupStorage(ctx, cfg); err != nil {
		return nil, err
	}

	if err := c.setupCache(ctx, cfg); err != nil {
		return nil, err
	}

	c.setupNotifier(cfg, logger)

	c.Transcoder = imaging.NewTranscoder()

	c.TokenService = service.NewTokenService(c.UserRepo, cfg.JWTSecret)
	c.AccountService = service.NewAccountService(
		c.UserRepo,
		c.TaskRepo,
		c.TokenService,
		c.Transcoder,
		c.Notifier,
		c.Cache,
		probe,
	)

	c.AuthHandler = handler.NewAuthHandler(c.AccountService)
	c.AccountHandler = handler.NewAccountHandler(c.AccountService)
	c.AvatarHandler = handler.NewAvatarHandler(c.AccountService, c.Transcoder)

	return c, nil
}

func (c *Container) setupStorage(ctx context.Context, cfg *config.AppConfig) error {
	if cfg.DatabaseURL != "" {
		db, err := postgres.NewDB(ctx)

		if err != nil {
			return err
		}

		c.UserRepo = postgresrepo.NewUserRepository(db)
		c.TaskRepo = postgresrepo.NewTaskRepository(db)
		c.closers = append(c.closers, db.Close)

		slog.Info("Storage configured", "adapter", "postgres")

		return nil
	}

	db, err := sqlite.NewDB()

	if err != nil {
		return err
	}

	c.UserRepo = sqliterepo.NewUserRepository(db, c.probe)
	c.TaskRepo = sqliterepo.NewTaskRepository(db, c.probe)
	c.closers = append(c.closers, func() { db.Close() })

	slog.Info("Storage configured", "adapter", "sqlite", "path", cfg.DatabasePath)

	return nil
}

func (c *Container) setupCache(ctx context.Context, cfg *config.AppConfig) error {
	if cfg.RedisURL != "" {
		cache, err := rediscache.NewCache(ctx, cfg.RedisURL)

		if err != nil {
			return err
		}

		c.Cache = cache
		c.closers = append(c.closers, func() { cache.Close() })

		slog.Info("Cache configured", "adapter", "redis")

		return nil
	}

	c.Cache = memorycache.NewCache()

	slog.Info("Cache configured", "adapter", "memory")

	return nil
}

func (c *Container) setupNotifier(cfg *config.AppConfig, logger *zap.Logger) {
	if cfg.NotifierURL == "" {
		c.Notifier = notifier.NewNoopNotifier()

		slog.Info("Notifications disabled, no delivery endpoint configured")

		return
	}

	mailer := notifier.NewMailer(cfg.NotifierURL, logger)

	c.Notifier = mailer
	c.closers = append(c.closers, mailer.Close)

	slog.Info("Notifications configured", "endpoint", cfg.NotifierURL)
}

// Close releases storage, cache and notifier resources in reverse
// wiring order.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}
