// Package trackcache provides a key-value object store with call tracking
// and an expiring web-fetch memoizer, backed by a pluggable key-value
// backend such as Redis.
//
// # Overview
//
// Trackcache has two halves. Cache assigns a fresh UUID key to each stored
// payload, retrieves payloads with optional type coercion, and instruments
// every store with an invocation counter and an ordered input/output
// history that Replay can turn back into a readable call trace. Fetcher
// wraps a slow retrieval (typically an HTTP GET) with a per-resource
// access counter and a time-bounded cache entry, so repeated requests
// within the TTL are served without touching the upstream.
//
// All persistent state lives in the backend; the components themselves
// are stateless between calls.
//
// # Storing and Retrieving
//
// Payloads are one of string, bytes, int or float, wrapped in a Value:
//
//	ctx := context.Background()
//	b := backend.NewRedis(client)
//	cache := trackcache.New(b)
//
//	key, err := cache.Store(ctx, trackcache.Bytes([]byte("hello")))
//	if err != nil {
//		return err
//	}
//
//	raw, ok, err := cache.Get(ctx, key) // raw bytes
//	s, ok, err := cache.GetString(ctx, key)
//	n, ok, err := cache.GetInt(ctx, key)
//
// An unknown key reports ok == false without an error. A coercion that
// does not fit the stored bytes returns a ConversionError.
//
// Arbitrary coercions go through the generic GetAs:
//
//	t, ok, err := trackcache.GetAs(ctx, cache, key,
//		func(raw []byte) (time.Time, error) {
//			return time.Parse(time.RFC3339, string(raw))
//		})
//
// # Call Tracking
//
// Store is wrapped by default with CountCalls and CallHistory, keyed by
// an explicit operation name ("Cache.Store" unless overridden):
//
//	cache.Store(ctx, trackcache.String("first"))
//	cache.Store(ctx, trackcache.String("second"))
//
//	n, _ := cache.Calls(ctx)      // 2
//	cache.Replay(ctx, os.Stdout)  // Cache.Store was called 2 times: ...
//
// The wrappers compose explicitly and work on any StoreFunc; options
// disable them individually. The i-th input pairs with the i-th output
// only while stores do not overlap; use WithSerializedCalls when
// concurrent callers need the pairing to hold.
//
// # Fetch Memoization
//
// Fetcher counts every access and caches payloads with a TTL (10 seconds
// unless configured):
//
//	f := trackcache.NewFetcher(b, trackcache.HTTPFetch(nil),
//		trackcache.WithExpiry(30*time.Second))
//
//	body, err := f.Fetch(ctx, "https://example.com") // upstream GET
//	body, err = f.Fetch(ctx, "https://example.com")  // served from cache
//	n, _ := f.AccessCount(ctx, "https://example.com") // 2
//
// Expiry is enforced by the backend; an expired entry just reads as
// absent and the next Fetch goes upstream again. A failed upstream fetch
// propagates to the caller and still counts as an access.
//
// # Backends
//
// The backend sub-package defines the key-value protocol and ships a
// Redis adapter on go-redis plus an in-memory implementation for tests
// and local development. The in-memory backend supports an optional key
// bound with LRU, LFU or FIFO eviction and an injectable clock for
// deterministic TTL tests.
//
// # Thread Safety
//
// All operations are safe for concurrent use as long as the backend is.
// See the CallHistory note above for the one pairing caveat.
package trackcache
