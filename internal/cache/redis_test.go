package cache

import (
	"context"
	"testing"
	"time"

	"github.com/Domenick1991/tripsaga/config"
	"github.com/Domenick1991/tripsaga/internal/domain"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := NewClient(config.RedisConfig{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCache(client, time.Minute), mr
}

func TestRedisCache_Trip(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	miss, err := c.GetTrip(ctx, "trip-1")
	require.NoError(t, err)
	assert.Nil(t, miss)

	view := &domain.TripView{
		TripID: "trip-1",
		Payment: &domain.PaymentView{
			PaymentID: "payment_for_trip-1",
			Amount:    "1200.5",
			Currency:  domain.USD,
			Status:    domain.PaymentStatusCompleted,
		},
	}
	require.NoError(t, c.SetTrip(ctx, view))

	got, err := c.GetTrip(ctx, "trip-1")
	require.NoError(t, err)
	assert.Equal(t, view, got)

	mr.FastForward(2 * time.Minute)
	expired, err := c.GetTrip(ctx, "trip-1")
	require.NoError(t, err)
	assert.Nil(t, expired)
}

func TestRedisCache_TripList(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	miss, err := c.GetTripList(ctx)
	require.NoError(t, err)
	assert.Nil(t, miss)

	require.NoError(t, c.SetTripList(ctx, []domain.TripID{}))
	empty, err := c.GetTripList(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	require.NoError(t, c.SetTripList(ctx, []domain.TripID{"a", "b"}))
	ids, err := c.GetTripList(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.TripID{"a", "b"}, ids)
}

func TestRedisCache_InvalidateTrip(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetTrip(ctx, &domain.TripView{TripID: "trip-1"}))
	require.NoError(t, c.SetTrip(ctx, &domain.TripView{TripID: "trip-2"}))
	require.NoError(t, c.SetTripList(ctx, []domain.TripID{"trip-1", "trip-2"}))

	require.NoError(t, c.InvalidateTrip(ctx, "trip-1"))

	assert.False(t, mr.Exists("cache:trip:trip-1"))
	assert.False(t, mr.Exists("cache:trips"))
	assert.True(t, mr.Exists("cache:trip:trip-2"))
}

func TestRedisCache_CorruptEntry(t *testing.T) {
	c, mr := newTestCache(t)
	require.NoError(t, mr.Set("cache:trip:trip-1", "{not json"))

	_, err := c.GetTrip(context.Background(), "trip-1")
	assert.Error(t, err)
}
