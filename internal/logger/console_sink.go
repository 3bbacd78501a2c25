// internal/logger/console_sink.go

package logger

import (
	"fmt"
	"io"
	"sync"
)

// ConsoleSink writes formatted lines to a stream, stderr by default.
type ConsoleSink struct {
	mu        sync.Mutex
	writer    io.Writer
	formatter Formatter
}

// NewConsoleSink creates a console sink writing to w.
func NewConsoleSink(w io.Writer, f Formatter) *ConsoleSink {
	return &ConsoleSink{writer: w, formatter: f}
}

// Emit writes the record followed by a newline.
func (c *ConsoleSink) Emit(rec Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := fmt.Fprintln(c.writer, c.formatter.Format(rec)); err != nil {
		return fmt.Errorf("failed to write console line: %w", err)
	}
	return nil
}

// SetFormatter replaces the formatter used for subsequent records.
func (c *ConsoleSink) SetFormatter(f Formatter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.formatter = f
}

// Formatter returns the current formatter.
func (c *ConsoleSink) Formatter() Formatter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.formatter
}

// Close is a no-op; the console stream is not owned by the sink.
func (c *ConsoleSink) Close() error {
	return nil
}

// Name returns "console".
func (c *ConsoleSink) Name() string {
	return "console"
}

var (
	_ Sink          = (*ConsoleSink)(nil)
	_ reformattable = (*ConsoleSink)(nil)
)
