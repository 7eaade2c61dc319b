package trackcache

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/Hadiiir/trackcache/backend"
)

// readCounter reads the invocation counter at op, treating an absent key
// as zero.
func readCounter(ctx context.Context, b backend.Backend, op string) (int64, error) {
	raw, ok, err := b.Get(ctx, op)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	n, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, &ConversionError{Key: op, Target: "int", Err: err}
	}
	return n, nil
}

// Replay writes a human-readable trace of the calls recorded for op: one
// summary line with the total invocation count, then one line per call
// pairing the i-th recorded input with the i-th recorded output, in call
// order.
//
// Replay is a pure read and is idempotent. If the input and output lists
// disagree in length, it pairs up to the shorter one and drops the rest
// rather than failing.
func Replay(ctx context.Context, w io.Writer, b backend.Backend, op string) error {
	count, err := readCounter(ctx, b, op)
	if err != nil {
		return err
	}

	inputs, err := b.LRange(ctx, op+inputsSuffix, 0, -1)
	if err != nil {
		return err
	}
	outputs, err := b.LRange(ctx, op+outputsSuffix, 0, -1)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "%s was called %d times:\n", op, count); err != nil {
		return err
	}

	n := len(inputs)
	if len(outputs) < n {
		n = len(outputs)
	}
	for i := 0; i < n; i++ {
		if _, err := fmt.Fprintf(w, "%s(*%s) -> %s\n", op, inputs[i], outputs[i]); err != nil {
			return err
		}
	}
	return nil
}
