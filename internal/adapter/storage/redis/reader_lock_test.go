package redis

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	t.Cleanup(func() { client.Close() })
	return s, client
}

func TestReaderLock_AcquireRelease(t *testing.T) {
	_, client := newTestClient(t)
	lock := NewReaderLock(client)
	ctx := context.Background()

	token, ok, err := lock.Acquire(ctx, "reader-a", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotEmpty(t, token)

	_, ok, err = lock.Acquire(ctx, "reader-a", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "held lock must not be acquired twice")

	require.NoError(t, lock.Release(ctx, "reader-a", token))

	_, ok, err = lock.Acquire(ctx, "reader-a", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestReaderLock_ReleaseWithStaleToken(t *testing.T) {
	s, client := newTestClient(t)
	lock := NewReaderLock(client)
	ctx := context.Background()

	stale, ok, err := lock.Acquire(ctx, "reader-a", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	s.FastForward(2 * time.Second)

	current, ok, err := lock.Acquire(ctx, "reader-a", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	// The expired holder must not free the new holder's lock.
	require.NoError(t, lock.Release(ctx, "reader-a", stale))
	val, err := s.Get("reader-lock:reader-a")
	require.NoError(t, err)
	assert.Equal(t, current, val)
}

func TestReaderLock_IndependentReaders(t *testing.T) {
	_, client := newTestClient(t)
	lock := NewReaderLock(client)
	ctx := context.Background()

	_, ok1, err := lock.Acquire(ctx, "reader-a", time.Minute)
	require.NoError(t, err)
	_, ok2, err := lock.Acquire(ctx, "reader-b", time.Minute)
	require.NoError(t, err)

	assert.True(t, ok1)
	assert.True(t, ok2)
}

func TestReaderLock_ConcurrentAcquire(t *testing.T) {
	_, client := newTestClient(t)
	lock := NewReaderLock(client)
	ctx := context.Background()

	var winners atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok, err := lock.Acquire(ctx, "reader-a", time.Minute); err == nil && ok {
				winners.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), winners.Load())
}

func TestReaderLock_RedisDown(t *testing.T) {
	s, client := newTestClient(t)
	lock := NewReaderLock(client)
	s.Close()

	_, ok, err := lock.Acquire(context.Background(), "reader-a", time.Minute)
	assert.Error(t, err)
	assert.False(t, ok)
}
