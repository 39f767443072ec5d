package saga

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Domenick1991/tripsaga/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryPolicy_RetriesWithBackoff(t *testing.T) {
	var delays []time.Duration
	policy := RetryPolicy{
		MaxAttempts: 4,
		BaseDelay:   10 * time.Millisecond,
		MaxDelay:    30 * time.Millisecond,
		Jitter:      func(d time.Duration) time.Duration { return d },
		Sleep: func(_ context.Context, d time.Duration) error {
			delays = append(delays, d)
			return nil
		},
	}

	calls := 0
	attempts, err := policy.Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 4 {
			return domain.Transient(errors.New("throttled"))
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 4, attempts)
	assert.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 30 * time.Millisecond}, delays)
}

func TestRetryPolicy_RetriesOptimisticLock(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 3, Sleep: noSleep}

	calls := 0
	attempts, err := policy.Do(context.Background(), func(context.Context) error {
		calls++
		if calls == 1 {
			return domain.ErrOptimisticLock
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
}

func TestRetryPolicy_StopsOnDomainErrors(t *testing.T) {
	for _, domainErr := range []error{
		domain.ErrValidation,
		domain.ErrBusinessRule,
		domain.ErrDuplicateResource,
		domain.ErrResourceNotFound,
	} {
		t.Run(domainErr.Error(), func(t *testing.T) {
			policy := RetryPolicy{MaxAttempts: 5, Sleep: noSleep}

			attempts, err := policy.Do(context.Background(), func(context.Context) error {
				return domainErr
			})

			assert.ErrorIs(t, err, domainErr)
			assert.Equal(t, 1, attempts)
		})
	}
}

func TestRetryPolicy_GivesUpAfterMaxAttempts(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 3, Sleep: noSleep}

	attempts, err := policy.Do(context.Background(), func(context.Context) error {
		return domain.Transient(errors.New("unavailable"))
	})

	assert.ErrorIs(t, err, domain.ErrTransient)
	assert.Equal(t, 3, attempts)
}

func TestRetryPolicy_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts, err := RetryPolicy{MaxAttempts: 3}.Do(ctx, func(context.Context) error {
		t.Fatal("fn must not run on a cancelled context")
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, attempts)
}

func TestDefaultJitter(t *testing.T) {
	for i := 0; i < 50; i++ {
		d := defaultJitter(100 * time.Millisecond)
		assert.GreaterOrEqual(t, d, 50*time.Millisecond)
		assert.LessOrEqual(t, d, 100*time.Millisecond)
	}
	assert.Zero(t, defaultJitter(0))
}

func noSleep(context.Context, time.Duration) error { return nil }
