package trackcache

const (
	// DefaultOperationName keys the shipped cache's counter and history.
	DefaultOperationName = "Cache.Store"
)

type config struct {
	op        string
	count     bool
	history   bool
	serialize bool
}

func defaultConfig() config {
	return config{
		op:      DefaultOperationName,
		count:   true,
		history: true,
	}
}

// Option configures a Cache.
type Option func(*config)

// WithOperationName sets the identifier under which the cache's store
// operation is counted and recorded. The identifier is a plain string
// constant chosen by the caller; it doubles as the backend key, so
// changing it orphans previously persisted instrumentation.
func WithOperationName(op string) Option {
	return func(c *config) {
		if op != "" {
			c.op = op
		}
	}
}

// WithoutCounting disables the invocation counter.
func WithoutCounting() Option {
	return func(c *config) {
		c.count = false
	}
}

// WithoutHistory disables input/output history recording.
func WithoutHistory() Option {
	return func(c *config) {
		c.history = false
	}
}

// WithoutInstrumentation disables both the counter and the history.
func WithoutInstrumentation() Option {
	return func(c *config) {
		c.count = false
		c.history = false
	}
}

// WithSerializedCalls runs each instrumented store under a mutex, so the
// increment, input append, write and output append of one call finish
// before the next begins. This keeps the history pairing invariant intact
// under concurrent callers, at the cost of serializing stores.
func WithSerializedCalls() Option {
	return func(c *config) {
		c.serialize = true
	}
}
