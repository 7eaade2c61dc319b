package trackcache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/Hadiiir/trackcache/backend"
)

// failingBackend passes everything through except the operations told to
// fail, so instrumentation can be observed around a failing store.
type failingBackend struct {
	backend.Backend
	failSet   bool
	failRPush bool
}

var errBackendDown = errors.New("backend down")

func (f *failingBackend) Set(ctx context.Context, key string, value []byte) error {
	if f.failSet {
		return errBackendDown
	}
	return f.Backend.Set(ctx, key, value)
}

func (f *failingBackend) RPush(ctx context.Context, key string, value []byte) error {
	if f.failRPush {
		return errBackendDown
	}
	return f.Backend.RPush(ctx, key, value)
}

type CacheSuite struct {
	suite.Suite
	ctx context.Context
	b   *backend.Memory
}

func (s *CacheSuite) SetupTest() {
	s.ctx = context.Background()
	s.b = backend.NewMemory()
}

func TestCacheSuite(t *testing.T) {
	suite.Run(t, new(CacheSuite))
}

func (s *CacheSuite) TestStoreGetRoundTrip() {
	c := New(s.b)

	key, err := c.Store(s.ctx, Bytes([]byte("hello")))
	s.Require().NoError(err)
	s.Len(key, 36)

	raw, ok, err := c.Get(s.ctx, key)
	s.Require().NoError(err)
	s.True(ok)
	s.Equal([]byte("hello"), raw)
}

func (s *CacheSuite) TestStoreKeysAreFreshUUIDs() {
	c := New(s.b)

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		key, err := c.Store(s.ctx, String("x"))
		s.Require().NoError(err)

		_, err = uuid.Parse(key)
		s.Require().NoError(err, "key should be a canonical UUID")
		s.False(seen[key], "key should never repeat")
		seen[key] = true
	}
}

func (s *CacheSuite) TestGetAbsent() {
	c := New(s.b)

	raw, ok, err := c.Get(s.ctx, "no-such-key")
	s.Require().NoError(err)
	s.False(ok)
	s.Nil(raw)

	_, ok, err = c.GetString(s.ctx, "no-such-key")
	s.Require().NoError(err)
	s.False(ok)
}

func (s *CacheSuite) TestCoercions() {
	c := New(s.b)

	strKey, err := c.Store(s.ctx, String("bar"))
	s.Require().NoError(err)
	str, ok, err := c.GetString(s.ctx, strKey)
	s.Require().NoError(err)
	s.True(ok)
	s.Equal("bar", str)

	intKey, err := c.Store(s.ctx, Int(123))
	s.Require().NoError(err)
	n, ok, err := c.GetInt(s.ctx, intKey)
	s.Require().NoError(err)
	s.True(ok)
	s.Equal(int64(123), n)

	floatKey, err := c.Store(s.ctx, Float(3.14))
	s.Require().NoError(err)
	f, ok, err := c.GetFloat(s.ctx, floatKey)
	s.Require().NoError(err)
	s.True(ok)
	s.Equal(3.14, f)
}

func (s *CacheSuite) TestConversionError() {
	c := New(s.b)

	key, err := c.Store(s.ctx, String("foo"))
	s.Require().NoError(err)

	_, ok, err := c.GetInt(s.ctx, key)
	s.True(ok, "the key exists even though coercion fails")

	var convErr *ConversionError
	s.Require().ErrorAs(err, &convErr)
	s.Equal(key, convErr.Key)
	s.Equal("int", convErr.Target)
}

func (s *CacheSuite) TestGetStringRejectsInvalidUTF8() {
	c := New(s.b)

	key, err := c.Store(s.ctx, Bytes([]byte{0xff, 0xfe}))
	s.Require().NoError(err)

	_, ok, err := c.GetString(s.ctx, key)
	s.True(ok)

	var convErr *ConversionError
	s.Require().ErrorAs(err, &convErr)
	s.Equal("string", convErr.Target)
}

func (s *CacheSuite) TestGetAs() {
	c := New(s.b)

	key, err := c.Store(s.ctx, String("a b c"))
	s.Require().NoError(err)

	parts, ok, err := GetAs(s.ctx, c, key, func(raw []byte) ([]string, error) {
		fields := bytes.Fields(raw)
		out := make([]string, len(fields))
		for i, f := range fields {
			out[i] = string(f)
		}
		return out, nil
	})
	s.Require().NoError(err)
	s.True(ok)
	s.Equal([]string{"a", "b", "c"}, parts)
}

func (s *CacheSuite) TestCountCalls() {
	c := New(s.b)

	for i := 0; i < 3; i++ {
		_, err := c.Store(s.ctx, Int(int64(i)))
		s.Require().NoError(err)
	}

	n, err := c.Calls(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(3), n)
}

func (s *CacheSuite) TestCountersAreIndependent() {
	a := New(s.b, WithOperationName("A.Store"))
	b := New(s.b, WithOperationName("B.Store"))

	_, err := a.Store(s.ctx, String("one"))
	s.Require().NoError(err)
	_, err = a.Store(s.ctx, String("two"))
	s.Require().NoError(err)
	_, err = b.Store(s.ctx, String("three"))
	s.Require().NoError(err)

	na, err := a.Calls(s.ctx)
	s.Require().NoError(err)
	nb, err := b.Calls(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(2), na)
	s.Equal(int64(1), nb)
}

func (s *CacheSuite) TestCallHistory() {
	c := New(s.b)

	var keys []string
	for _, text := range []string{"first", "second", "third"} {
		key, err := c.Store(s.ctx, String(text))
		s.Require().NoError(err)
		keys = append(keys, key)
	}

	inputs, err := s.b.LRange(s.ctx, DefaultOperationName+":inputs", 0, -1)
	s.Require().NoError(err)
	outputs, err := s.b.LRange(s.ctx, DefaultOperationName+":outputs", 0, -1)
	s.Require().NoError(err)

	s.Require().Len(inputs, 3)
	s.Require().Len(outputs, 3)
	for i, text := range []string{"first", "second", "third"} {
		s.Equal(text, string(inputs[i]))
		s.Equal(keys[i], string(outputs[i]))
		s.Len(outputs[i], 36)
	}
}

func (s *CacheSuite) TestFailedStoreCountsAndOrphansInput() {
	fb := &failingBackend{Backend: s.b, failSet: true}
	c := New(fb)

	_, err := c.Store(s.ctx, String("doomed"))
	s.Require().ErrorIs(err, errBackendDown)

	n, err := c.Calls(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(1), n, "a failed call still counts as an invocation")

	inputs, err := s.b.LRange(s.ctx, DefaultOperationName+":inputs", 0, -1)
	s.Require().NoError(err)
	outputs, err := s.b.LRange(s.ctx, DefaultOperationName+":outputs", 0, -1)
	s.Require().NoError(err)
	s.Len(inputs, 1, "input is recorded before execution")
	s.Empty(outputs, "no output entry for a failed call")
}

func (s *CacheSuite) TestWrapperCompositionOrder() {
	raw := func(ctx context.Context, v Value) (string, error) {
		return "fixed-key", nil
	}

	countFirst := CountCalls(s.b, "order.A", CallHistory(s.b, "order.A", raw))
	historyFirst := CallHistory(s.b, "order.B", CountCalls(s.b, "order.B", raw))

	for i := 0; i < 2; i++ {
		_, err := countFirst(s.ctx, String("v"))
		s.Require().NoError(err)
		_, err = historyFirst(s.ctx, String("v"))
		s.Require().NoError(err)
	}

	for _, op := range []string{"order.A", "order.B"} {
		n, err := readCounter(s.ctx, s.b, op)
		s.Require().NoError(err)
		s.Equal(int64(2), n, "%s counter", op)

		inputs, err := s.b.LRange(s.ctx, op+":inputs", 0, -1)
		s.Require().NoError(err)
		outputs, err := s.b.LRange(s.ctx, op+":outputs", 0, -1)
		s.Require().NoError(err)
		s.Len(inputs, 2, "%s inputs", op)
		s.Len(outputs, 2, "%s outputs", op)
	}
}

func (s *CacheSuite) TestWithoutInstrumentation() {
	c := New(s.b, WithoutInstrumentation())

	_, err := c.Store(s.ctx, String("quiet"))
	s.Require().NoError(err)

	n, err := c.Calls(s.ctx)
	s.Require().NoError(err)
	s.Zero(n)

	ok, err := s.b.Exists(s.ctx, DefaultOperationName+":inputs")
	s.Require().NoError(err)
	s.False(ok)
}

func (s *CacheSuite) TestSerializedCallsKeepPairing() {
	c := New(s.b, WithSerializedCalls())

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := c.Store(s.ctx, String(fmt.Sprintf("payload-%d", i)))
			s.NoError(err)
		}(i)
	}
	wg.Wait()

	count, err := c.Calls(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(n), count)

	inputs, err := s.b.LRange(s.ctx, DefaultOperationName+":inputs", 0, -1)
	s.Require().NoError(err)
	outputs, err := s.b.LRange(s.ctx, DefaultOperationName+":outputs", 0, -1)
	s.Require().NoError(err)
	s.Require().Len(inputs, n)
	s.Require().Len(outputs, n)

	// the i-th output key must hold the i-th input payload
	for i := 0; i < n; i++ {
		raw, ok, err := s.b.Get(s.ctx, string(outputs[i]))
		s.Require().NoError(err)
		s.Require().True(ok)
		s.Equal(string(inputs[i]), string(raw), "entry %d should pair", i)
	}
}
