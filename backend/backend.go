// Package backend defines the key-value protocol the cache sits in front of,
// along with two implementations: a Redis adapter and an in-memory store for
// tests and local development.
package backend

import (
	"context"
	"time"
)

const (
	// NoTTL is returned by TTL for a key that exists but has no expiry.
	NoTTL = time.Duration(-1)
	// NoKey is returned by TTL for a key that does not exist.
	NoKey = time.Duration(-2)
)

// Backend is an associative store with atomic increment and list append.
// Absent keys are reported through the bool return, never as an error;
// errors mean the backend itself failed.
//
// All operations are safe for concurrent use.
type Backend interface {
	// Get retrieves the value stored at key.
	// Returns the value and true if found, nil and false otherwise.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with no expiry.
	Set(ctx context.Context, key string, value []byte) error

	// SetEx stores a value that becomes unreadable after ttl elapses.
	SetEx(ctx context.Context, key string, ttl time.Duration, value []byte) error

	// Incr atomically increments the integer at key and returns the new
	// value. An absent key counts from zero, so the first Incr returns 1.
	Incr(ctx context.Context, key string) (int64, error)

	// RPush atomically appends a value to the tail of the list at key,
	// creating the list if absent.
	RPush(ctx context.Context, key string, value []byte) error

	// LRange returns list elements between start and stop inclusive.
	// Indexes follow Redis semantics: negative values count from the tail,
	// so LRange(key, 0, -1) returns the whole list. An absent list yields
	// an empty slice.
	LRange(ctx context.Context, key string, start, stop int64) ([][]byte, error)

	// Exists reports whether the key is present and not expired.
	Exists(ctx context.Context, key string) (bool, error)

	// TTL returns the remaining time-to-live for key. It returns NoTTL for
	// a key without expiry and NoKey for a missing key.
	TTL(ctx context.Context, key string) (time.Duration, error)

	// Del removes the given keys. Missing keys are ignored.
	Del(ctx context.Context, keys ...string) error

	// Keys returns all keys matching a glob pattern. Intended for
	// administrative helpers, not hot paths.
	Keys(ctx context.Context, pattern string) ([]string, error)

	// FlushDB removes every key. Test and harness use only.
	FlushDB(ctx context.Context) error

	// Close releases resources held by the backend.
	Close() error
}
