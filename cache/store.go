// Package cache is a process-wide TTL store that shields the
// rate-limited upstream from repeated fetches. It coalesces concurrent
// fetches per key and serves the previous value, marked stale, when a
// refresh fails.
package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	apperrors "github.com/fantasytools/fpl-agent/internal/errors"
)

// FetchFunc produces a fresh value for a cache key from the upstream.
type FetchFunc func(ctx context.Context) (json.RawMessage, error)

// entry is an immutable cached value. Entries are replaced, never
// mutated, so readers can hold one without locking.
type entry struct {
	value     json.RawMessage
	fetchedAt time.Time
	ttl       time.Duration
}

func (e *entry) fresh(now time.Time) bool {
	return now.Before(e.fetchedAt.Add(e.ttl))
}

// Store maps cache keys to TTL-bounded values.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry
	group   singleflight.Group
	nowTime func() time.Time
	log     zerolog.Logger
}

// StoreOption modifies a Store during construction.
type StoreOption func(*Store)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) StoreOption {
	return func(s *Store) {
		s.nowTime = nowFunc
	}
}

// NewStore creates an empty cache store.
func NewStore(logger zerolog.Logger, options ...StoreOption) *Store {
	s := &Store{
		entries: make(map[string]*entry),
		nowTime: time.Now,
		log:     logger,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

type fetchResult struct {
	value json.RawMessage
	stale bool
}

// GetOrFetch returns the cached value for key, fetching from the
// upstream when missing or expired. The returned bool is true when the
// value is stale, i.e. older than ttl and served only because the
// refresh failed. When the fetch fails and no previous value exists the
// error wraps ErrUpstreamUnavailable.
//
// Concurrent calls for the same key share a single upstream fetch; all
// waiters observe that round's result. Unrelated keys never contend.
func (s *Store) GetOrFetch(ctx context.Context, key string, ttl time.Duration, fetch FetchFunc) (json.RawMessage, bool, error) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if ok && e.fresh(s.nowTime()) {
		hitsTotal.WithLabelValues(key).Inc()
		return e.value, false, nil
	}
	missesTotal.WithLabelValues(key).Inc()

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		// A waiter queued behind the winning fetch re-enters here
		// after the entry was replaced; serve it without refetching.
		s.mu.RLock()
		e, ok := s.entries[key]
		s.mu.RUnlock()
		if ok && e.fresh(s.nowTime()) {
			return fetchResult{value: e.value}, nil
		}

		value, fetchErr := fetch(ctx)
		if fetchErr == nil {
			s.mu.Lock()
			s.entries[key] = &entry{value: value, fetchedAt: s.nowTime(), ttl: ttl}
			s.mu.Unlock()
			return fetchResult{value: value}, nil
		}

		fetchFailuresTotal.WithLabelValues(key).Inc()
		if ok {
			// Availability over freshness: keep serving the expired
			// entry until a refresh succeeds.
			s.log.Warn().Err(fetchErr).Str("key", key).
				Time("fetched_at", e.fetchedAt).
				Msg("fetch failed, serving stale cache entry")
			staleServesTotal.WithLabelValues(key).Inc()
			return fetchResult{value: e.value, stale: true}, nil
		}
		return nil, apperrors.Wrapf(apperrors.ErrUpstreamUnavailable, "cache: fetch %q failed (%v)", key, fetchErr)
	})
	if err != nil {
		return nil, false, err
	}
	res := v.(fetchResult)
	return res.value, res.stale, nil
}

// Peek returns the current entry for key regardless of freshness, for
// introspection. The second result reports whether the entry is fresh.
func (s *Store) Peek(key string) (json.RawMessage, bool, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	if !ok {
		return nil, false, false
	}
	return e.value, e.fresh(s.nowTime()), true
}

// Info describes a cache entry's freshness state.
type Info struct {
	Key       string
	FetchedAt time.Time
	TTL       time.Duration
	Expired   bool
}

// GetInfo returns freshness metadata for key, or false when the key has
// never been fetched.
func (s *Store) GetInfo(key string) (Info, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	if !ok {
		return Info{}, false
	}
	return Info{
		Key:       key,
		FetchedAt: e.fetchedAt,
		TTL:       e.ttl,
		Expired:   !e.fresh(s.nowTime()),
	}, true
}
