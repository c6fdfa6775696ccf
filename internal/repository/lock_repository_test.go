package repository_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"ripple/backend/internal/repository"
	"ripple/backend/internal/repository/testutil"
)

const lockFeedURL = "https://example.com/rss"

func TestLockRepository_AcquireAndRelease(t *testing.T) {
	conn := testutil.NewTestDB(t)
	locks := repository.NewLockRepository(conn)
	ctx := context.Background()

	require.True(t, locks.Acquire(ctx, lockFeedURL, time.Minute))

	lock, err := locks.Get(ctx, lockFeedURL)
	require.NoError(t, err)
	require.NotNil(t, lock)
	require.Equal(t, repository.LockKey(lockFeedURL), lock.Key)
	require.False(t, lock.Expired(time.Now()))

	// Held: a second attempt must fail.
	require.False(t, locks.Acquire(ctx, lockFeedURL, time.Minute))

	locks.Release(ctx, lockFeedURL)
	lock, err = locks.Get(ctx, lockFeedURL)
	require.NoError(t, err)
	require.Nil(t, lock)

	require.True(t, locks.Acquire(ctx, lockFeedURL, time.Minute))
}

func TestLockRepository_IndependentKeys(t *testing.T) {
	conn := testutil.NewTestDB(t)
	locks := repository.NewLockRepository(conn)
	ctx := context.Background()

	require.True(t, locks.Acquire(ctx, "https://a.example.com/rss", time.Minute))
	require.True(t, locks.Acquire(ctx, "https://b.example.com/rss", time.Minute))
}

func TestLockRepository_ReclaimsExpired(t *testing.T) {
	conn := testutil.NewTestDB(t)
	locks := repository.NewLockRepository(conn)
	ctx := context.Background()

	// A crashed holder left a lock row whose expiry has passed.
	testutil.SeedLock(t, conn, repository.LockKey(lockFeedURL), time.Now().Add(-time.Second).UnixMilli())

	lock, err := locks.Get(ctx, lockFeedURL)
	require.NoError(t, err)
	require.NotNil(t, lock)
	require.True(t, lock.Expired(time.Now()))

	require.True(t, locks.Acquire(ctx, lockFeedURL, time.Minute))
}

func TestLockRepository_DoesNotReclaimLive(t *testing.T) {
	conn := testutil.NewTestDB(t)
	locks := repository.NewLockRepository(conn)
	ctx := context.Background()

	testutil.SeedLock(t, conn, repository.LockKey(lockFeedURL), time.Now().Add(time.Minute).UnixMilli())

	require.False(t, locks.Acquire(ctx, lockFeedURL, time.Minute))
}

func TestLockRepository_ReleaseUnheldIsNoop(t *testing.T) {
	conn := testutil.NewTestDB(t)
	locks := repository.NewLockRepository(conn)

	locks.Release(context.Background(), lockFeedURL)
}

func TestLockRepository_SingleWinnerUnderContention(t *testing.T) {
	conn := testutil.NewTestDB(t)
	locks := repository.NewLockRepository(conn)
	ctx := context.Background()

	const attempts = 8
	var wg sync.WaitGroup
	results := make([]bool, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = locks.Acquire(ctx, lockFeedURL, time.Minute)
		}(i)
	}
	wg.Wait()

	won := 0
	for _, ok := range results {
		if ok {
			won++
		}
	}
	require.Equal(t, 1, won)
}

func TestLockKey_Deterministic(t *testing.T) {
	require.Equal(t, repository.LockKey(lockFeedURL), repository.LockKey(lockFeedURL))
	require.NotEqual(t, repository.LockKey(lockFeedURL), repository.LockKey("https://other.example.com/rss"))
}
