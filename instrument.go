package trackcache

import (
	"context"

	"github.com/Hadiiir/trackcache/backend"
)

// Key suffixes for the call-history lists. The counter lives at the bare
// operation name. This naming must stay fixed: persisted counters and
// histories are only reachable under the names they were written with.
const (
	inputsSuffix  = ":inputs"
	outputsSuffix = ":outputs"
)

// StoreFunc is the shape of an instrumentable store operation.
type StoreFunc func(ctx context.Context, v Value) (string, error)

// CountCalls wraps fn so every invocation atomically increments the
// counter at op before delegating. The counter tracks invocations, not
// successes: a call that goes on to fail is still counted.
//
// CountCalls and CallHistory compose in either nesting order with the
// same observable effect.
func CountCalls(b backend.Backend, op string, fn StoreFunc) StoreFunc {
	return func(ctx context.Context, v Value) (string, error) {
		if _, err := b.Incr(ctx, op); err != nil {
			return "", err
		}
		return fn(ctx, v)
	}
}

// CallHistory wraps fn so each call appends its argument to the op's
// input list before delegating, and its result to the output list after.
// A failed call leaves its input entry behind with no matching output:
// recording before execution keeps the argument available for debugging
// even when the call never completes.
//
// The i-th input pairs with the i-th output only while calls do not
// overlap. Callers that invoke the wrapped operation concurrently must
// serialize it themselves, or construct the cache with
// WithSerializedCalls.
func CallHistory(b backend.Backend, op string, fn StoreFunc) StoreFunc {
	return func(ctx context.Context, v Value) (string, error) {
		if err := b.RPush(ctx, op+inputsSuffix, v.Encode()); err != nil {
			return "", err
		}
		key, err := fn(ctx, v)
		if err != nil {
			return "", err
		}
		if err := b.RPush(ctx, op+outputsSuffix, []byte(key)); err != nil {
			return "", err
		}
		return key, nil
	}
}
