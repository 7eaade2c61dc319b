package trackcache

import (
	"context"
	"io"
	"strconv"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/Hadiiir/trackcache/backend"
)

// Cache stores arbitrary payloads under freshly generated unique keys and
// retrieves them with optional type coercion. Every store is counted and
// recorded in a call history unless disabled through options.
//
// Cache holds no payload state of its own; the backend owns all persisted
// bytes and every read goes back to it.
type Cache struct {
	backend backend.Backend
	op      string
	store   StoreFunc
}

// New creates a Cache on top of the given backend.
func New(b backend.Backend, opts ...Option) *Cache {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	c := &Cache{backend: b, op: cfg.op}

	fn := c.rawStore
	if cfg.history {
		fn = CallHistory(b, cfg.op, fn)
	}
	if cfg.count {
		fn = CountCalls(b, cfg.op, fn)
	}
	if cfg.serialize {
		var mu sync.Mutex
		inner := fn
		fn = func(ctx context.Context, v Value) (string, error) {
			mu.Lock()
			defer mu.Unlock()
			return inner(ctx, v)
		}
	}
	c.store = fn

	return c
}

// Store writes the payload under a fresh random key and returns the key.
// Keys are version 4 UUIDs, so a returned key has never been issued
// before; collisions are treated as negligible rather than handled.
func (c *Cache) Store(ctx context.Context, v Value) (string, error) {
	return c.store(ctx, v)
}

func (c *Cache) rawStore(ctx context.Context, v Value) (string, error) {
	key := uuid.New().String()
	if err := c.backend.Set(ctx, key, v.Encode()); err != nil {
		return "", err
	}
	return key, nil
}

// Get retrieves the raw payload stored at key.
// Returns the bytes and true if found, nil and false for an unknown key.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return c.backend.Get(ctx, key)
}

// GetString retrieves the payload at key decoded as UTF-8 text.
// Invalid UTF-8 surfaces as a ConversionError.
func (c *Cache) GetString(ctx context.Context, key string) (string, bool, error) {
	return GetAs(ctx, c, key, func(raw []byte) (string, error) {
		if !utf8.Valid(raw) {
			return "", &ConversionError{Key: key, Target: "string", Err: errInvalidUTF8}
		}
		return string(raw), nil
	})
}

// GetInt retrieves the payload at key parsed as a decimal integer.
// Non-numeric payloads surface as a ConversionError.
func (c *Cache) GetInt(ctx context.Context, key string) (int64, bool, error) {
	return GetAs(ctx, c, key, func(raw []byte) (int64, error) {
		n, err := strconv.ParseInt(string(raw), 10, 64)
		if err != nil {
			return 0, &ConversionError{Key: key, Target: "int", Err: err}
		}
		return n, nil
	})
}

// GetFloat retrieves the payload at key parsed as a floating-point
// number. Non-numeric payloads surface as a ConversionError.
func (c *Cache) GetFloat(ctx context.Context, key string) (float64, bool, error) {
	return GetAs(ctx, c, key, func(raw []byte) (float64, error) {
		f, err := strconv.ParseFloat(string(raw), 64)
		if err != nil {
			return 0, &ConversionError{Key: key, Target: "float", Err: err}
		}
		return f, nil
	})
}

// GetAs retrieves the payload at key and applies conv to it. An unknown
// key returns false without invoking conv; a conv failure is returned to
// the caller, never swallowed.
func GetAs[T any](ctx context.Context, c *Cache, key string, conv func([]byte) (T, error)) (T, bool, error) {
	var zero T

	raw, ok, err := c.backend.Get(ctx, key)
	if err != nil || !ok {
		return zero, false, err
	}

	v, err := conv(raw)
	if err != nil {
		return zero, true, err
	}
	return v, true, nil
}

// Calls returns how many times the instrumented store has been invoked.
// An absent counter reads as zero.
func (c *Cache) Calls(ctx context.Context) (int64, error) {
	return readCounter(ctx, c.backend, c.op)
}

// Replay writes the cache's own call trace to w.
func (c *Cache) Replay(ctx context.Context, w io.Writer) error {
	return Replay(ctx, w, c.backend, c.op)
}
