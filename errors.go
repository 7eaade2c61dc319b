package trackcache

import (
	"errors"
	"fmt"
)

var errInvalidUTF8 = errors.New("payload is not valid UTF-8")

// ConversionError is returned when a retrieved payload cannot be coerced
// to the requested type, such as non-numeric text read as an integer.
type ConversionError struct {
	Key    string // backend key the payload was read from
	Target string // requested type
	Err    error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("trackcache: cannot convert value at %q to %s: %v", e.Key, e.Target, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// UpstreamError is returned when the underlying fetch for a resource
// fails. Status is zero when the failure happened before a response
// arrived.
type UpstreamError struct {
	URL    string
	Status int
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("trackcache: fetch %s: unexpected status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("trackcache: fetch %s: %v", e.URL, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
