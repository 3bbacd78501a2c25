// internal/logger/record.go

package logger

import (
	"runtime"
	"strings"
	"time"
)

// Record is a single emitted event. Sinks receive it by value and must not
// modify shared state derived from it.
type Record struct {
	Level   Level
	Message string
	Time    time.Time
	// Context identifies the emitter, usually "package.Function" of the caller.
	Context string
	// Host is only set when hostname prefixing is enabled on the facade.
	Host string
}

// callerContext returns "package.Function" for the frame skip levels above
// the caller of callerContext.
func callerContext(skip int) string {
	pc, _, _, ok := runtime.Caller(skip + 1)
	if !ok {
		return "unknown"
	}
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return "unknown"
	}
	full := fn.Name()
	// Strip the import path, keep package.Function
	if lastSlash := strings.LastIndex(full, "/"); lastSlash >= 0 && lastSlash+1 < len(full) {
		full = full[lastSlash+1:]
	}
	return full
}
