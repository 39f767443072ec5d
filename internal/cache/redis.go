package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Domenick1991/tripsaga/config"
	"github.com/Domenick1991/tripsaga/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisCache keeps composite trip views and the trip list for a short TTL.
type RedisCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
}

func NewRedisCache(client redis.UniversalClient, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) GetTrip(ctx context.Context, tripID domain.TripID) (*domain.TripView, error) {
	var view domain.TripView
	found, err := c.get(ctx, tripKey(tripID), &view)
	if err != nil || !found {
		return nil, err
	}
	return &view, nil
}

func (c *RedisCache) SetTrip(ctx context.Context, view *domain.TripView) error {
	return c.set(ctx, tripKey(view.TripID), view)
}

func (c *RedisCache) GetTripList(ctx context.Context) ([]domain.TripID, error) {
	var ids []domain.TripID
	found, err := c.get(ctx, tripListKey(), &ids)
	if err != nil || !found {
		return nil, err
	}
	if ids == nil {
		ids = []domain.TripID{}
	}
	return ids, nil
}

func (c *RedisCache) SetTripList(ctx context.Context, ids []domain.TripID) error {
	return c.set(ctx, tripListKey(), ids)
}

// InvalidateTrip drops the trip's view and the trip list, which may be
// missing a newly created trip. The keys are deleted one per command so they
// may live in different cluster slots.
func (c *RedisCache) InvalidateTrip(ctx context.Context, tripID domain.TripID) error {
	_, err := c.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, tripKey(tripID))
		pipe.Del(ctx, tripListKey())
		return nil
	})
	return err
}

func (c *RedisCache) get(ctx context.Context, key string, dst any) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (c *RedisCache) set(ctx context.Context, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, c.ttl).Err()
}

func tripKey(tripID domain.TripID) string {
	return "cache:trip:" + string(tripID)
}

func tripListKey() string {
	return "cache:trips"
}
