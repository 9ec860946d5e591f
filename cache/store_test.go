package cache_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/fantasytools/fpl-agent/cache"
	apperrors "github.com/fantasytools/fpl-agent/internal/errors"
)

const testTTL = 4 * time.Hour

// testFixture holds a store with a controllable clock.
type testFixture struct {
	store *cache.Store
	now   time.Time
	mu    sync.Mutex
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	f := &testFixture{now: time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)}
	f.store = cache.NewStore(zerolog.Nop(), cache.WithNowTime(func() time.Time {
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.now
	}))
	return f
}

func (f *testFixture) advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func fetchValue(v string) (cache.FetchFunc, *atomic.Int32) {
	var calls atomic.Int32
	return func(ctx context.Context) (json.RawMessage, error) {
		calls.Add(1)
		return json.RawMessage(v), nil
	}, &calls
}

func TestGetOrFetchCachesWithinTTL(t *testing.T) {
	f := setupTestFixture(t)
	fetch, calls := fetchValue(`{"v":1}`)

	value, stale, err := f.store.GetOrFetch(context.Background(), "bootstrap", testTTL, fetch)
	require.NoError(t, err)
	require.False(t, stale)
	require.JSONEq(t, `{"v":1}`, string(value))

	f.advance(1 * time.Hour)
	value, stale, err = f.store.GetOrFetch(context.Background(), "bootstrap", testTTL, fetch)
	require.NoError(t, err)
	require.False(t, stale)
	require.JSONEq(t, `{"v":1}`, string(value))
	require.Equal(t, int32(1), calls.Load())
}

func TestGetOrFetchRefetchesAfterTTL(t *testing.T) {
	f := setupTestFixture(t)
	fetch, calls := fetchValue(`{"v":1}`)

	_, _, err := f.store.GetOrFetch(context.Background(), "bootstrap", testTTL, fetch)
	require.NoError(t, err)

	f.advance(5 * time.Hour)
	_, stale, err := f.store.GetOrFetch(context.Background(), "bootstrap", testTTL, fetch)
	require.NoError(t, err)
	require.False(t, stale)
	require.Equal(t, int32(2), calls.Load())
}

func TestGetOrFetchServesStaleOnRefreshFailure(t *testing.T) {
	f := setupTestFixture(t)

	calls := 0
	fetch := func(ctx context.Context) (json.RawMessage, error) {
		calls++
		if calls == 1 {
			return json.RawMessage(`{"v":1}`), nil
		}
		return nil, errors.New("connection refused")
	}

	_, _, err := f.store.GetOrFetch(context.Background(), "bootstrap", testTTL, fetch)
	require.NoError(t, err)

	f.advance(5 * time.Hour)
	value, stale, err := f.store.GetOrFetch(context.Background(), "bootstrap", testTTL, fetch)
	require.NoError(t, err)
	require.True(t, stale)
	require.JSONEq(t, `{"v":1}`, string(value))
}

func TestGetOrFetchFailsWithoutPriorValue(t *testing.T) {
	f := setupTestFixture(t)

	fetch := func(ctx context.Context) (json.RawMessage, error) {
		return nil, errors.New("connection refused")
	}

	_, _, err := f.store.GetOrFetch(context.Background(), "bootstrap", testTTL, fetch)
	require.Error(t, err)
	require.True(t, apperrors.Is(err, apperrors.ErrUpstreamUnavailable))
}

func TestGetOrFetchDoesNotShareFailuresAcrossKeys(t *testing.T) {
	f := setupTestFixture(t)

	failing := func(ctx context.Context) (json.RawMessage, error) {
		return nil, errors.New("connection refused")
	}
	working, _ := fetchValue(`{"v":2}`)

	_, _, err := f.store.GetOrFetch(context.Background(), "fixtures", testTTL, failing)
	require.Error(t, err)

	value, stale, err := f.store.GetOrFetch(context.Background(), "bootstrap", testTTL, working)
	require.NoError(t, err)
	require.False(t, stale)
	require.JSONEq(t, `{"v":2}`, string(value))
}

func TestGetOrFetchCoalescesConcurrentFetches(t *testing.T) {
	f := setupTestFixture(t)

	var calls atomic.Int32
	release := make(chan struct{})
	fetch := func(ctx context.Context) (json.RawMessage, error) {
		calls.Add(1)
		<-release
		return json.RawMessage(`{"v":1}`), nil
	}

	const waiters = 8
	var wg sync.WaitGroup
	results := make([]json.RawMessage, waiters)
	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			value, _, err := f.store.GetOrFetch(context.Background(), "bootstrap", testTTL, fetch)
			require.NoError(t, err)
			results[i] = value
		}(i)
	}

	// Let the goroutines pile up behind the in-flight fetch.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	require.Equal(t, int32(1), calls.Load())
	for _, value := range results {
		require.JSONEq(t, `{"v":1}`, string(value))
	}
}

func TestPeekAndGetInfo(t *testing.T) {
	f := setupTestFixture(t)

	_, _, ok := f.store.Peek("bootstrap")
	require.False(t, ok)
	_, ok = f.store.GetInfo("bootstrap")
	require.False(t, ok)

	fetch, _ := fetchValue(`{"v":1}`)
	_, _, err := f.store.GetOrFetch(context.Background(), "bootstrap", testTTL, fetch)
	require.NoError(t, err)

	value, fresh, ok := f.store.Peek("bootstrap")
	require.True(t, ok)
	require.True(t, fresh)
	require.JSONEq(t, `{"v":1}`, string(value))

	info, ok := f.store.GetInfo("bootstrap")
	require.True(t, ok)
	require.Equal(t, testTTL, info.TTL)
	require.False(t, info.Expired)

	f.advance(5 * time.Hour)
	_, fresh, ok = f.store.Peek("bootstrap")
	require.True(t, ok)
	require.False(t, fresh)

	info, ok = f.store.GetInfo("bootstrap")
	require.True(t, ok)
	require.True(t, info.Expired)
}
