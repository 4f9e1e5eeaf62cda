package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	httpadapter "taskapp/internal/adapter/http"
	"taskapp/internal/adapter/telemetry"
	"taskapp/pkg/config"
)

func main() {
	cfg := config.GetDefaultConfig()

	appLogger, err := telemetry.NewAppLogger("taskapp")

	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}

	defer appLogger.Sync()

	slogger := slog.Default()

	telemetryContainer, err := telemetry.NewContainer(telemetry.Config{
		ServiceName:    "taskapp",
		ServiceVersion: "1.0.0",
		Environment:    cfg.Environment,
		MetricsPort:    cfg.MetricsPort,
		OTLPEndpoint:   cfg.OTLPEndpoint,
	}, slogger)

	if err != nil {
		log.Fatal("Failed to initialize telemetry:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	defer telemetryContainer.Shutdown(context.Background())

	telemetryContainer.AppMetrics.StartSystemMetrics(ctx)

	probe := telemetryContainer.NewTelemetryProbe(slogger)

	if err := httpadapter.StartServer(ctx, cfg, telemetryContainer.AppMetrics, probe, appLogger.Zap()); err != nil {
		slog.Error("Server terminated", "error", err)
		os.Exit(1)
	}

	slog.Info("Shutdown complete")
}
