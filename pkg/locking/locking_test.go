package locking_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/pitchcraft/pkg/locking"
)

func newRedisLocker(t *testing.T, ttl time.Duration) (locking.Locker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return locking.NewRedis(client, ttl, logger), mr
}

func TestLockers(t *testing.T) {
	redisLocker, _ := newRedisLocker(t, time.Minute)

	lockers := map[string]locking.Locker{
		"memory": locking.NewMemory(),
		"redis":  redisLocker,
	}

	for name, l := range lockers {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			release, err := l.TryLock(ctx, "project-a")
			require.NoError(t, err)

			_, err = l.TryLock(ctx, "project-a")
			assert.ErrorIs(t, err, locking.ErrLocked)

			other, err := l.TryLock(ctx, "project-b")
			require.NoError(t, err, "different keys must not contend")
			other()

			release()
			release()

			again, err := l.TryLock(ctx, "project-a")
			require.NoError(t, err, "lock should be free after release")
			again()
		})
	}
}

func TestMemoryLockerConcurrent(t *testing.T) {
	l := locking.NewMemory()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		acquired int
		rejected int
	)

	releases := make(chan locking.Release, 16)
	for range 16 {
		wg.Go(func() {
			release, err := l.TryLock(context.Background(), "shared")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				acquired++
				releases <- release
			case errors.Is(err, locking.ErrLocked):
				rejected++
			}
		})
	}
	wg.Wait()
	close(releases)
	for release := range releases {
		release()
	}

	if acquired != 1 {
		t.Errorf("acquired = %d, want 1", acquired)
	}
	if rejected != 15 {
		t.Errorf("rejected = %d, want 15", rejected)
	}
}

func TestMemoryLockerCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := locking.NewMemory().TryLock(ctx, "k"); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestRedisLockerReleasesOnlyOwnToken(t *testing.T) {
	l, mr := newRedisLocker(t, time.Second)
	ctx := context.Background()

	release, err := l.TryLock(ctx, "p")
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)

	second, err := l.TryLock(ctx, "p")
	require.NoError(t, err, "expired lock should be acquirable")

	release()
	assert.True(t, mr.Exists("pitchcraft:lock:p"), "stale release must not delete new holder's key")

	second()
	assert.False(t, mr.Exists("pitchcraft:lock:p"))
}
