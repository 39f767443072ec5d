package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/tripsaga/api"
	"github.com/Domenick1991/tripsaga/config"
	"github.com/Domenick1991/tripsaga/internal/bootstrap"
	"github.com/Domenick1991/tripsaga/internal/logger"
	"github.com/Domenick1991/tripsaga/internal/tracing"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log, os.Stdout)
	slog.SetDefault(log)
	gin.SetMode(gin.ReleaseMode)

	shutdownTracing, err := tracing.Setup(cfg.Tracing, os.Stderr)
	if err != nil {
		log.Error("init tracing", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Warn("flush traces", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.NewApp(ctx, cfg, log)
	if err != nil {
		log.Error("init app", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	router := api.NewRouter(log, api.NewTripHandler(app.Saga, app.Trips), api.WithServiceName(cfg.Tracing.ServiceName))
	if err := bootstrap.Run(ctx, cfg, router, log); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
