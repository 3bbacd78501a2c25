// internal/logger/errors.go

package logger

import "errors"

// ErrConfiguration is matched by every *ConfigurationError through errors.Is.
var ErrConfiguration = errors.New("logger configuration error")

// ConfigurationError reports a programming error in how the facade is set
// up, such as changing the level before the console sink is attached.
// It is never recovered internally.
type ConfigurationError struct {
	Op     string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "logger: " + e.Op + ": " + e.Reason
}

// Is makes errors.Is(err, ErrConfiguration) true.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// SinkState reports the outcome of a sink property write.
type SinkState int

const (
	// SinkDetached means no sink is attached for the property.
	SinkDetached SinkState = iota
	// SinkAttached means a new sink was built and attached.
	SinkAttached
	// SinkFailed means the sink could not be built; a diagnostic record
	// was emitted and the property value is kept.
	SinkFailed
)

func (s SinkState) String() string {
	switch s {
	case SinkAttached:
		return "attached"
	case SinkFailed:
		return "failed"
	default:
		return "detached"
	}
}
