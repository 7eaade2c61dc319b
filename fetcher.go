package trackcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Hadiiir/trackcache/backend"
)

// DefaultExpiry is how long a fetched payload stays cached.
const DefaultExpiry = 10 * time.Second

// Key prefixes for fetch-cache entries and per-resource access counters.
// Identifiers are hashed, so arbitrary URLs never leak into key space.
// The scheme is fixed: cached:<hex sha256(url)> and count:<hex sha256(url)>.
const (
	cachedPrefix = "cached:"
	countPrefix  = "count:"
)

// safeKey builds a backend key from a prefix and a resource identifier,
// hashing the identifier to keep keys short and free of odd characters.
func safeKey(prefix, url string) string {
	sum := sha256.Sum256([]byte(url))
	return prefix + hex.EncodeToString(sum[:])
}

// FetchFunc retrieves the payload for a resource identifier, typically
// over the network.
type FetchFunc func(ctx context.Context, url string) ([]byte, error)

// Fetcher memoizes a slow fetch operation with a time-bounded cache entry
// per resource and counts every access. Expiry is enforced by the
// backend: once the TTL elapses, the entry simply reads as absent and the
// next fetch goes upstream again.
type Fetcher struct {
	backend backend.Backend
	fetch   FetchFunc
	expiry  time.Duration
	stats   Stats
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithExpiry sets how long fetched payloads stay cached.
func WithExpiry(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		if d > 0 {
			f.expiry = d
		}
	}
}

// NewFetcher wraps fetch with access counting and an expiring cache on
// top of the given backend.
func NewFetcher(b backend.Backend, fetch FetchFunc, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		backend: b,
		fetch:   fetch,
		expiry:  DefaultExpiry,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch returns the payload for url, from cache when a live entry exists
// and from the upstream fetch otherwise. Fresh payloads are written back
// with the configured expiry.
//
// The access counter is incremented on every call, cache hit or not, and
// is not rolled back when the upstream fetch fails: it counts requests,
// not successful retrievals. Concurrent misses for the same url each go
// upstream and the last write wins; redundant work, not a correctness
// problem.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if _, err := f.backend.Incr(ctx, safeKey(countPrefix, url)); err != nil {
		return nil, err
	}

	cacheKey := safeKey(cachedPrefix, url)
	cached, ok, err := f.backend.Get(ctx, cacheKey)
	if err != nil {
		return nil, err
	}
	if ok {
		f.stats.hit()
		return cached, nil
	}
	f.stats.miss()

	fresh, err := f.fetch(ctx, url)
	if err != nil {
		f.stats.failure()
		return nil, err
	}

	if err := f.backend.SetEx(ctx, cacheKey, f.expiry, fresh); err != nil {
		return nil, err
	}
	return fresh, nil
}

// AccessCount returns how many times url has been requested through
// Fetch. A never-requested url reads as zero.
func (f *Fetcher) AccessCount(ctx context.Context, url string) (int64, error) {
	return readCounter(ctx, f.backend, safeKey(countPrefix, url))
}

// CachedTTL returns the remaining lifetime of url's cache entry,
// backend.NoKey when nothing is cached.
func (f *Fetcher) CachedTTL(ctx context.Context, url string) (time.Duration, error) {
	return f.backend.TTL(ctx, safeKey(cachedPrefix, url))
}

// Purge drops every cached payload and returns how many were removed.
// Access counters are left alone.
func (f *Fetcher) Purge(ctx context.Context) (int, error) {
	keys, err := f.backend.Keys(ctx, cachedPrefix+"*")
	if err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}
	if err := f.backend.Del(ctx, keys...); err != nil {
		return 0, err
	}
	return len(keys), nil
}

// Stats returns a snapshot of hit/miss/failure counts for this fetcher
// instance. Unlike access counters these live in memory, not the backend.
func (f *Fetcher) Stats() Snapshot {
	return f.stats.Snapshot()
}

// HTTPFetch returns a FetchFunc that performs an HTTP GET with the given
// client, or http.DefaultClient when client is nil. Transport failures
// and non-2xx statuses are reported as an UpstreamError.
func HTTPFetch(client *http.Client) FetchFunc {
	if client == nil {
		client = http.DefaultClient
	}
	return func(ctx context.Context, url string) ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, &UpstreamError{URL: url, Err: err}
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, &UpstreamError{URL: url, Err: err}
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, &UpstreamError{URL: url, Status: resp.StatusCode}
		}
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, &UpstreamError{URL: url, Err: fmt.Errorf("reading body: %w", err)}
		}
		return body, nil
	}
}
