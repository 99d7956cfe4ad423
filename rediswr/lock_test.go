package rediswr_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rise-and-shine/filedepot/rediswr"
)

func newLocker(t *testing.T) (*rediswr.Locker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	cfg := rediswr.Config{
		Addrs:         mr.Addr(),
		KeyPrefix:     "lock:",
		LeaseTTL:      time.Second,
		RetryInterval: 5 * time.Millisecond,
	}
	client := rediswr.New(cfg)
	t.Cleanup(func() { _ = client.Close() })

	return rediswr.NewLocker(client, cfg), mr
}

func TestLockAndRelease(t *testing.T) {
	l, mr := newLocker(t)

	unlock, err := l.Lock(t.Context(), "g1")
	require.NoError(t, err)
	assert.True(t, mr.Exists("lock:g1"))

	unlock()
	assert.False(t, mr.Exists("lock:g1"))
}

func TestLockWaitsForHolder(t *testing.T) {
	l, _ := newLocker(t)

	unlock, err := l.Lock(t.Context(), "g1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(t.Context(), 30*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "g1")
	require.Error(t, err)

	other, err := l.Lock(t.Context(), "g2")
	require.NoError(t, err)
	other()

	unlock()
	again, err := l.Lock(t.Context(), "g1")
	require.NoError(t, err)
	again()
}

func TestReleaseKeepsForeignLease(t *testing.T) {
	l, mr := newLocker(t)

	unlock, err := l.Lock(t.Context(), "g1")
	require.NoError(t, err)

	// the lease expired and someone else took it
	require.NoError(t, mr.Set("lock:g1", "someone-else"))
	unlock()

	got, err := mr.Get("lock:g1")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", got)
}

func TestLockMutualExclusion(t *testing.T) {
	l, _ := newLocker(t)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		holders int
		maxSeen int
	)
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(context.Background(), "g1")
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			holders++
			maxSeen = max(maxSeen, holders)
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			holders--
			mu.Unlock()
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
}

func TestLockerZeroConfigUsesDefaults(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := rediswr.Config{Addrs: mr.Addr()}
	client := rediswr.New(cfg)
	t.Cleanup(func() { _ = client.Close() })

	l := rediswr.NewLocker(client, cfg)

	unlock, err := l.Lock(t.Context(), "g1")
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, mr.TTL("g1"))

	ctx, cancel := context.WithTimeout(t.Context(), 120*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "g1")
	require.Error(t, err)

	unlock()
	assert.False(t, mr.Exists("g1"))
}
