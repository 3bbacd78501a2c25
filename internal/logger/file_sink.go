// internal/logger/file_sink.go

package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// DefaultRetention is the number of rotated files kept by default.
const DefaultRetention = 15

// FileOptions configures a RotatingFileSink.
type FileOptions struct {
	Path      string
	Rotation  RotationInterval
	Retention int
	// MaxSizeMB adds a size trigger on top of the time schedule.
	// Zero keeps lumberjack's default of 100 MB.
	MaxSizeMB int
	Compress  bool
}

// RotatingFileSink appends formatted lines to a file and rotates it on a
// time schedule. Rotated files are named by lumberjack
// (name-<timestamp>.ext) and aged out beyond Retention.
type RotatingFileSink struct {
	mu           sync.Mutex
	writer       *lumberjack.Logger
	formatter    Formatter
	rotation     RotationInterval
	nextRotation time.Time
	now          func() time.Time
	closed       bool
}

// NewRotatingFileSink creates the parent directory, opens the file and
// returns the sink. Permission problems surface here rather than on the
// first write.
func NewRotatingFileSink(opts FileOptions, f Formatter) (*RotatingFileSink, error) {
	if opts.Path == "" {
		return nil, fmt.Errorf("file sink requires a path")
	}
	if opts.Retention < 0 {
		return nil, fmt.Errorf("retention cannot be negative: %d", opts.Retention)
	}
	if opts.MaxSizeMB < 0 {
		return nil, fmt.Errorf("max size cannot be negative: %d", opts.MaxSizeMB)
	}

	dir := filepath.Dir(opts.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}

	writer := &lumberjack.Logger{
		Filename:   opts.Path,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.Retention,
		Compress:   opts.Compress,
		LocalTime:  true,
	}
	// An empty write makes lumberjack open (or create) the file now.
	if _, err := writer.Write(nil); err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", opts.Path, err)
	}

	// The interval is counted from the last modification of an existing file.
	openedAt := time.Now()
	if info, err := os.Stat(opts.Path); err == nil && info.Size() > 0 {
		openedAt = info.ModTime()
	}

	return &RotatingFileSink{
		writer:       writer,
		formatter:    f,
		rotation:     opts.Rotation,
		nextRotation: opts.Rotation.next(openedAt),
		now:          time.Now,
	}, nil
}

// Emit writes the record, rotating first when the schedule is due.
func (s *RotatingFileSink) Emit(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// lumberjack reopens a closed file on write.
	if s.closed {
		return fmt.Errorf("file sink %s is closed", s.writer.Filename)
	}
	if now := s.now(); !now.Before(s.nextRotation) {
		if err := s.writer.Rotate(); err != nil {
			return fmt.Errorf("failed to rotate log file %s: %w", s.writer.Filename, err)
		}
		s.nextRotation = s.rotation.next(now)
	}

	line := s.formatter.Format(rec) + "\n"
	if _, err := s.writer.Write([]byte(line)); err != nil {
		return fmt.Errorf("failed to write log line: %w", err)
	}
	return nil
}

// SetFormatter replaces the formatter used for subsequent records.
func (s *RotatingFileSink) SetFormatter(f Formatter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.formatter = f
}

// Formatter returns the current formatter.
func (s *RotatingFileSink) Formatter() Formatter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.formatter
}

// Path returns the file the sink writes to.
func (s *RotatingFileSink) Path() string {
	return s.writer.Filename
}

// Close closes the underlying file. Later records are rejected.
func (s *RotatingFileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return s.writer.Close()
}

// Name returns "file".
func (s *RotatingFileSink) Name() string {
	return "file"
}

var (
	_ Sink          = (*RotatingFileSink)(nil)
	_ reformattable = (*RotatingFileSink)(nil)
)
