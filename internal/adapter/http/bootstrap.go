package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"taskapp/internal/adapter/http/middleware"
	"taskapp/internal/adapter/http/routes"
	"taskapp/internal/core/port"
	"taskapp/internal/core/telemetry"
	"taskapp/pkg/config"

	"go.uber.org/zap"
)

// StartServer wires the container and serves until ctx is cancelled,
// then drains in-flight requests.
func StartServer(ctx context.Context, cfg *config.AppConfig, metrics *telemetry.AppMetrics, probe port.Telemetry, logger *zap.Logger) error {
	container, err := NewContainer(ctx, cfg, probe, logger)

	if err != nil {
		return err
	}

	defer container.Close()

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitConfigs, logger, metrics)

	router := routes.SetupRouter(routes.HandlersConfig{
		AuthHandler:    container.AuthHandler,
		AccountHandler: container.AccountHandler,
		AvatarHandler:  container.AvatarHandler,
		TokenService:   container.TokenService,
	}, metrics, rateLimiter, cfg, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		slog.Info("Server starting",
			"port", cfg.Port,
			"environment", cfg.Environment,
			"rate_limit_enabled", cfg.RateLimitEnabled)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
