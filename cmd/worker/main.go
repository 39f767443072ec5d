package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/tripsaga/config"
	"github.com/Domenick1991/tripsaga/internal/bootstrap"
	"github.com/Domenick1991/tripsaga/internal/kafka"
	"github.com/Domenick1991/tripsaga/internal/logger"
	"github.com/Domenick1991/tripsaga/internal/notify"
	"github.com/Domenick1991/tripsaga/internal/tracing"
	"github.com/Domenick1991/tripsaga/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log, os.Stdout)
	slog.SetDefault(log)

	if len(cfg.Kafka.Brokers) == 0 {
		log.Error("worker needs kafka brokers")
		os.Exit(1)
	}

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

	sender := notify.NewSender(app.Producer, cfg.Kafka.NotificationsTopic, log)
	handler := worker.NewTripRequestHandler(app.Saga, sender, log)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.TripRequestsTopic)
	defer consumer.Close()

	log.Info("worker started", "topic", cfg.Kafka.TripRequestsTopic, "group_id", cfg.Kafka.GroupID)
	if err := consumer.Consume(ctx, handler.Handle); err != nil {
		log.Error("consumer stopped", "error", err)
		os.Exit(1)
	}
	log.Info("worker stopped")
}
