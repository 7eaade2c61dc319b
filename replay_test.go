package trackcache

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/Hadiiir/trackcache/backend"
)

type ReplaySuite struct {
	suite.Suite
	ctx context.Context
	b   *backend.Memory
}

func (s *ReplaySuite) SetupTest() {
	s.ctx = context.Background()
	s.b = backend.NewMemory()
}

func TestReplaySuite(t *testing.T) {
	suite.Run(t, new(ReplaySuite))
}

func (s *ReplaySuite) TestTrace() {
	c := New(s.b)

	var keys []string
	for _, v := range []Value{String("foo"), String("bar"), Int(42)} {
		key, err := c.Store(s.ctx, v)
		s.Require().NoError(err)
		keys = append(keys, key)
	}

	var buf bytes.Buffer
	s.Require().NoError(c.Replay(s.ctx, &buf))

	want := "Cache.Store was called 3 times:\n" +
		fmt.Sprintf("Cache.Store(*foo) -> %s\n", keys[0]) +
		fmt.Sprintf("Cache.Store(*bar) -> %s\n", keys[1]) +
		fmt.Sprintf("Cache.Store(*42) -> %s\n", keys[2])
	s.Equal(want, buf.String())
}

func (s *ReplaySuite) TestIdempotent() {
	c := New(s.b)

	_, err := c.Store(s.ctx, String("once"))
	s.Require().NoError(err)
	_, err = c.Store(s.ctx, String("twice"))
	s.Require().NoError(err)

	var first, second bytes.Buffer
	s.Require().NoError(c.Replay(s.ctx, &first))
	s.Require().NoError(c.Replay(s.ctx, &second))

	s.Equal(first.String(), second.String())
}

func (s *ReplaySuite) TestAbsentOperation() {
	var buf bytes.Buffer
	s.Require().NoError(Replay(s.ctx, &buf, s.b, "Nobody.Called"))

	s.Equal("Nobody.Called was called 0 times:\n", buf.String())
}

func (s *ReplaySuite) TestPairsUpToShorterSequence() {
	c := New(s.b)

	key, err := c.Store(s.ctx, String("paired"))
	s.Require().NoError(err)

	// an orphaned input with no matching output must not break the trace
	s.Require().NoError(s.b.RPush(s.ctx, DefaultOperationName+inputsSuffix, []byte("orphan")))

	var buf bytes.Buffer
	s.Require().NoError(c.Replay(s.ctx, &buf))

	want := "Cache.Store was called 1 times:\n" +
		fmt.Sprintf("Cache.Store(*paired) -> %s\n", key)
	s.Equal(want, buf.String())
}
