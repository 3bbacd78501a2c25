// internal/logger/interface.go

package logger

// Sink defines the interface for all log destination implementations.
// Each sink type (console, syslog, file) implements this interface.
type Sink interface {
	// Emit formats and writes a single record. Sinks apply their own
	// minimum severity on top of the facade threshold.
	Emit(rec Record) error

	// Close handles any necessary cleanup, like flushing buffers or closing connections.
	Close() error

	// Name returns a short identifier of the sink ("console", "syslog", "file").
	Name() string
}

// reformattable is implemented by sinks whose formatter follows the
// facade's verbosity derivation.
type reformattable interface {
	SetFormatter(f Formatter)
	Formatter() Formatter
}
