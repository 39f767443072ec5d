package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Domenick1991/tripsaga/config"
	"github.com/Domenick1991/tripsaga/internal/cache"
	"github.com/Domenick1991/tripsaga/internal/kafka"
	"github.com/Domenick1991/tripsaga/internal/repository"
	"github.com/Domenick1991/tripsaga/internal/saga"
	"github.com/Domenick1991/tripsaga/internal/service/flights"
	"github.com/Domenick1991/tripsaga/internal/service/hotels"
	"github.com/Domenick1991/tripsaga/internal/service/payments"
	"github.com/Domenick1991/tripsaga/internal/service/trips"
	"github.com/Domenick1991/tripsaga/internal/store"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
)

// App holds the dependency graph shared by the API and the worker.
type App struct {
	Store    store.Store
	Producer *kafka.Producer
	Saga     *saga.Orchestrator
	Trips    *trips.TripService

	closers []func() error
}

// NewApp wires storage, services and the saga from cfg. Redis is connected
// only when the storage driver or the cache needs it; Kafka only when brokers
// are configured.
func NewApp(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	app := &App{}

	var redisClient *redis.Client
	if cfg.Storage.Driver == config.StorageRedis || cfg.Cache.Enabled {
		redisClient = cache.NewClient(cfg.Redis)
		app.closers = append(app.closers, redisClient.Close)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			app.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
	}

	s, err := app.openStore(ctx, cfg, redisClient)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Store = s

	flightSvc := flights.NewFlightService(repository.NewBookingRepository(s), flights.WithLogger(log))
	hotelSvc := hotels.NewHotelService(repository.NewHotelBookingRepository(s), hotels.WithLogger(log))
	paymentSvc := payments.NewPaymentService(repository.NewPaymentRepository(s), payments.WithLogger(log))

	sagaOpts := []saga.Option{
		saga.WithLogger(log),
		saga.WithRetryPolicy(saga.RetryPolicy{
			MaxAttempts: cfg.Saga.MaxAttempts,
			BaseDelay:   cfg.Saga.BaseDelay(),
			MaxDelay:    cfg.Saga.MaxDelay(),
		}),
	}
	tripOpts := []trips.TripServiceOption{trips.WithLogger(log)}

	if cfg.Cache.Enabled {
		tripCache := cache.NewRedisCache(redisClient, cfg.Cache.TripTTL())
		sagaOpts = append(sagaOpts, saga.WithCacheInvalidator(tripCache))
		tripOpts = append(tripOpts, trips.WithCache(tripCache))
	}
	if len(cfg.Kafka.Brokers) > 0 {
		app.Producer = kafka.NewProducer(cfg.Kafka.Brokers, log)
		app.closers = append(app.closers, app.Producer.Close)
		sagaOpts = append(sagaOpts, saga.WithPublisher(kafka.NewSagaEventPublisher(app.Producer, cfg.Kafka.SagaEventsTopic)))
	}

	app.Saga = saga.NewOrchestrator(flightSvc, hotelSvc, paymentSvc, sagaOpts...)
	app.Trips = trips.NewTripService(repository.NewTripRepository(s), tripOpts...)
	return app, nil
}

func (a *App) openStore(ctx context.Context, cfg *config.Config, redisClient *redis.Client) (store.Store, error) {
	switch cfg.Storage.Driver {
	case config.StorageMemory:
		return store.NewMemoryStore(), nil
	case config.StorageRedis:
		return store.NewRedisStore(redisClient, cfg.Storage.RedisPrefix), nil
	case config.StoragePostgres:
		db, err := sql.Open("pgx", cfg.Database.DSN())
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		if err := db.PingContext(ctx); err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if cfg.Storage.InitSchema {
			return store.NewPostgresStoreWithSchema(ctx, db)
		}
		return store.NewPostgresStore(db), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// Close releases connections in reverse order of creation.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
