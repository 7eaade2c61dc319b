package backend

import (
	"context"
	"errors"
	"path"
	"strconv"
	"sync"
	"time"
)

var (
	// ErrWrongType is returned when an operation targets a key holding the
	// other kind of value, matching the Redis WRONGTYPE error.
	ErrWrongType = errors.New("backend: operation against a key holding the wrong kind of value")

	// ErrNotInteger is returned by Incr when the key holds a value that
	// does not parse as an integer.
	ErrNotInteger = errors.New("backend: value is not an integer")
)

// memEntry holds either a scalar value or a list, never both.
type memEntry struct {
	value     []byte
	list      [][]byte
	isList    bool
	expiresAt time.Time // zero means no expiry
}

func (e *memEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Memory is an in-process Backend for tests and local development. It
// reproduces the protocol semantics the Redis adapter provides: lazy TTL
// expiry, increment-from-zero, append-only lists and glob key matching.
//
// With WithMaxKeys set, inserting beyond the bound evicts keys according
// to the configured Policy, the way a maxmemory-capped Redis would.
type Memory struct {
	mu      sync.Mutex
	data    map[string]*memEntry
	evictor evictor
	policy  Policy
	clock   Clock
	maxKeys int
}

// Compile-time interface assertion.
var _ Backend = (*Memory)(nil)

// MemoryOption configures a Memory backend.
type MemoryOption func(*Memory)

// WithClock sets a custom clock. Useful for testing TTL behavior.
func WithClock(clk Clock) MemoryOption {
	return func(m *Memory) {
		m.clock = clk
	}
}

// WithMaxKeys bounds the number of keys. Zero means unbounded.
func WithMaxKeys(n int) MemoryOption {
	return func(m *Memory) {
		if n > 0 {
			m.maxKeys = n
		}
	}
}

// WithPolicy sets the eviction policy used when WithMaxKeys is set.
func WithPolicy(p Policy) MemoryOption {
	return func(m *Memory) {
		m.policy = p
		m.evictor = newEvictor(p)
	}
}

// NewMemory creates an empty in-memory backend.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		data:    make(map[string]*memEntry),
		evictor: newRecencyEvictor(true),
		clock:   realClock{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// lookup returns the live entry for key, dropping it first if expired.
// Callers must hold mu.
func (m *Memory) lookup(key string) (*memEntry, bool) {
	ent, ok := m.data[key]
	if !ok {
		return nil, false
	}
	if ent.expired(m.clock.Now()) {
		delete(m.data, key)
		m.evictor.remove(key)
		return nil, false
	}
	return ent, true
}

// insert registers a fresh entry and evicts if the bound is exceeded.
// Callers must hold mu.
func (m *Memory) insert(key string, ent *memEntry) {
	m.data[key] = ent
	m.evictor.onInsert(key)
	if m.maxKeys <= 0 {
		return
	}
	for len(m.data) > m.maxKeys {
		victim := m.evictor.evict()
		if victim == "" {
			return
		}
		delete(m.data, victim)
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ent, ok := m.lookup(key)
	if !ok {
		return nil, false, nil
	}
	if ent.isList {
		return nil, false, ErrWrongType
	}
	m.evictor.onAccess(key)
	v := make([]byte, len(ent.value))
	copy(v, ent.value)
	return v, true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	return m.setValue(key, value, 0)
}

func (m *Memory) SetEx(_ context.Context, key string, ttl time.Duration, value []byte) error {
	return m.setValue(key, value, ttl)
}

func (m *Memory) setValue(key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = m.clock.Now().Add(ttl)
	}

	v := make([]byte, len(value))
	copy(v, value)

	// Set overwrites regardless of the previous kind, as Redis does.
	if _, ok := m.lookup(key); ok {
		m.data[key] = &memEntry{value: v, expiresAt: expiresAt}
		m.evictor.onInsert(key)
		return nil
	}
	m.insert(key, &memEntry{value: v, expiresAt: expiresAt})
	return nil
}

func (m *Memory) Incr(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ent, ok := m.lookup(key)
	if !ok {
		m.insert(key, &memEntry{value: []byte("1")})
		return 1, nil
	}
	if ent.isList {
		return 0, ErrWrongType
	}
	n, err := strconv.ParseInt(string(ent.value), 10, 64)
	if err != nil {
		return 0, ErrNotInteger
	}
	n++
	ent.value = strconv.AppendInt(ent.value[:0], n, 10)
	m.evictor.onAccess(key)
	return n, nil
}

func (m *Memory) RPush(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	v := make([]byte, len(value))
	copy(v, value)

	ent, ok := m.lookup(key)
	if !ok {
		m.insert(key, &memEntry{list: [][]byte{v}, isList: true})
		return nil
	}
	if !ent.isList {
		return ErrWrongType
	}
	ent.list = append(ent.list, v)
	m.evictor.onAccess(key)
	return nil
}

func (m *Memory) LRange(_ context.Context, key string, start, stop int64) ([][]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ent, ok := m.lookup(key)
	if !ok {
		return [][]byte{}, nil
	}
	if !ent.isList {
		return nil, ErrWrongType
	}

	n := int64(len(ent.list))
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if start > stop || start >= n {
		return [][]byte{}, nil
	}

	m.evictor.onAccess(key)
	out := make([][]byte, 0, stop-start+1)
	for _, v := range ent.list[start : stop+1] {
		c := make([]byte, len(v))
		copy(c, v)
		out = append(out, c)
	}
	return out, nil
}

func (m *Memory) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.lookup(key)
	return ok, nil
}

func (m *Memory) TTL(_ context.Context, key string) (time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ent, ok := m.lookup(key)
	if !ok {
		return NoKey, nil
	}
	if ent.expiresAt.IsZero() {
		return NoTTL, nil
	}
	return ent.expiresAt.Sub(m.clock.Now()), nil
}

func (m *Memory) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, key := range keys {
		delete(m.data, key)
		m.evictor.remove(key)
	}
	return nil
}

func (m *Memory) Keys(_ context.Context, pattern string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	out := []string{}
	for key, ent := range m.data {
		if ent.expired(now) {
			continue
		}
		ok, err := path.Match(pattern, key)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, key)
		}
	}
	return out, nil
}

func (m *Memory) FlushDB(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data = make(map[string]*memEntry)
	m.evictor = newEvictor(m.policy)
	return nil
}

func (m *Memory) Close() error {
	return nil
}

// Len returns the number of live keys. Expired but uncollected entries
// are not counted.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	now := m.clock.Now()
	for _, ent := range m.data {
		if !ent.expired(now) {
			n++
		}
	}
	return n
}
