package trackcache

import "strconv"

// Kind identifies which variant a Value holds.
type Kind int

const (
	// KindString is a UTF-8 text payload.
	KindString Kind = iota
	// KindBytes is a raw byte payload.
	KindBytes
	// KindInt is a signed integer payload.
	KindInt
	// KindFloat is a floating-point payload.
	KindFloat
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	default:
		return "unknown"
	}
}

// Value is a storable payload: one of string, bytes, int or float. The
// backend holds every payload as flat bytes, so Value pins down the exact
// encoding each variant uses on the wire.
type Value struct {
	kind Kind
	s    string
	b    []byte
	i    int64
	f    float64
}

// String wraps a text payload.
func String(s string) Value {
	return Value{kind: KindString, s: s}
}

// Bytes wraps a raw byte payload.
func Bytes(b []byte) Value {
	return Value{kind: KindBytes, b: b}
}

// Int wraps an integer payload.
func Int(i int64) Value {
	return Value{kind: KindInt, i: i}
}

// Float wraps a floating-point payload.
func Float(f float64) Value {
	return Value{kind: KindFloat, f: f}
}

// Kind returns which variant the value holds.
func (v Value) Kind() Kind {
	return v.kind
}

// Encode renders the payload as the bytes the backend stores: text as
// UTF-8, bytes verbatim, integers as decimal text and floats in the
// shortest decimal form that round-trips.
func (v Value) Encode() []byte {
	switch v.kind {
	case KindBytes:
		return v.b
	case KindInt:
		return strconv.AppendInt(nil, v.i, 10)
	case KindFloat:
		return strconv.AppendFloat(nil, v.f, 'g', -1, 64)
	default:
		return []byte(v.s)
	}
}
