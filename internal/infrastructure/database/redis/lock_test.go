package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ClauseWise/internal/config"
	"github.com/turtacn/ClauseWise/internal/infrastructure/monitoring/logging"
)

func newLockFactory(t *testing.T) (LockFactory, *Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := NewClient(context.Background(), config.RedisConfig{Addr: mr.Addr()}, logging.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return NewLockFactory(client, logging.NewNopLogger()), client, mr
}

func TestMutex_LockUnlock(t *testing.T) {
	factory, client, mr := newLockFactory(t)
	ctx := context.Background()

	lock := factory.NewMutex("report-1", WithLockTTL(time.Second))
	require.NoError(t, lock.Lock(ctx))
	assert.True(t, mr.Exists(client.Key("lock", "report-1")))

	ttl, err := lock.TTL(ctx)
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, lock.Unlock(ctx))
	assert.False(t, mr.Exists(client.Key("lock", "report-1")))
}

func TestMutex_Contention(t *testing.T) {
	factory, _, _ := newLockFactory(t)
	ctx := context.Background()

	lock1 := factory.NewMutex("report-1", WithRetryCount(1), WithRetryDelay(10*time.Millisecond))
	lock2 := factory.NewMutex("report-1", WithRetryCount(2), WithRetryDelay(10*time.Millisecond))

	require.NoError(t, lock1.Lock(ctx))
	assert.Equal(t, ErrLockNotAcquired, lock2.Lock(ctx))

	ok, err := lock2.TryLock(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, ErrLockNotHeld, lock2.Unlock(ctx))

	require.NoError(t, lock1.Unlock(ctx))
	ok, err = lock2.TryLock(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMutex_Extend(t *testing.T) {
	factory, client, mr := newLockFactory(t)
	ctx := context.Background()

	lock := factory.NewMutex("report-2", WithLockTTL(time.Second))
	require.NoError(t, lock.Lock(ctx))

	ok, err := lock.Extend(ctx, 10*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 10*time.Second, mr.TTL(client.Key("lock", "report-2")))

	mr.FastForward(11 * time.Second)
	ok, err = lock.Extend(ctx, time.Second)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMutex_LockCanceledContext(t *testing.T) {
	factory, _, _ := newLockFactory(t)
	holder := factory.NewMutex("busy")
	require.NoError(t, holder.Lock(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	waiter := factory.NewMutex("busy", WithRetryDelay(time.Second))
	assert.ErrorIs(t, waiter.Lock(ctx), context.Canceled)
}

func TestMutex_Watchdog(t *testing.T) {
	factory, _, _ := newLockFactory(t)
	ctx := context.Background()

	lock := factory.NewMutex("watched", WithLockTTL(300*time.Millisecond), WithWatchdog(true))
	require.NoError(t, lock.Lock(ctx))
	assert.NoError(t, lock.Unlock(ctx))
}

//Personal.AI order the ending
