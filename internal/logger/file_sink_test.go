package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewRotatingFileSink_ValidationErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		opts FileOptions
	}{
		{name: "Missing path", opts: FileOptions{}},
		{name: "Negative retention", opts: FileOptions{Path: filepath.Join(dir, "a.log"), Retention: -1}},
		{name: "Negative max size", opts: FileOptions{Path: filepath.Join(dir, "b.log"), MaxSizeMB: -5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewRotatingFileSink(tt.opts, NewFormatter(FormatSimple)); err == nil {
				t.Errorf("Expected error for %s, got nil", tt.name)
			}
		})
	}
}

func TestNewRotatingFileSink_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "app.log")

	sink, err := NewRotatingFileSink(FileOptions{Path: path, Rotation: RotateDaily, Retention: 3}, NewFormatter(FormatSimple))
	if err != nil {
		t.Fatalf("NewRotatingFileSink() error = %v", err)
	}
	defer sink.Close()

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("Expected file to exist after construction: %v", err)
	}
	if sink.Path() != path {
		t.Errorf("Path() = %q, want %q", sink.Path(), path)
	}
	if sink.Name() != "file" {
		t.Errorf("Name() = %q, want %q", sink.Name(), "file")
	}
	if sink.writer.MaxBackups != 3 {
		t.Errorf("MaxBackups = %d, want 3", sink.writer.MaxBackups)
	}
}

func TestNewRotatingFileSink_UnwritableDirectory(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("not a directory"), 0644); err != nil {
		t.Fatalf("Failed to create blocker file: %v", err)
	}

	_, err := NewRotatingFileSink(FileOptions{Path: filepath.Join(blocker, "logs", "app.log")}, NewFormatter(FormatSimple))
	if err == nil {
		t.Fatal("Expected error when the parent is a regular file, got nil")
	}
}

func TestRotatingFileSink_EmitAndFormatter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	sink, err := NewRotatingFileSink(FileOptions{Path: path, Rotation: RotateDaily}, NewFormatter(FormatSimple))
	if err != nil {
		t.Fatalf("NewRotatingFileSink() error = %v", err)
	}

	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.Local)
	if err := sink.Emit(Record{Level: WARNING, Message: "first", Context: "main", Time: ts}); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	sink.SetFormatter(NewFormatter(FormatVerbose))
	if sink.Formatter().Kind() != FormatVerbose {
		t.Fatal("Expected verbose formatter after SetFormatter")
	}
	if err := sink.Emit(Record{Level: WARNING, Message: "second", Context: "main", Time: ts}); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d: %q", len(lines), content)
	}
	if lines[0] != ts.Format("2006-01-02 15:04:05 MST")+" : first" {
		t.Errorf("Unexpected simple line: %q", lines[0])
	}
	if !strings.HasSuffix(lines[1], "[ WARNING] main : second") {
		t.Errorf("Unexpected verbose line: %q", lines[1])
	}
}

func TestRotatingFileSink_TimeRotation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	sink, err := NewRotatingFileSink(FileOptions{Path: path, Rotation: RotateHourly, Retention: 5}, NewFormatter(FormatSimple))
	if err != nil {
		t.Fatalf("NewRotatingFileSink() error = %v", err)
	}
	defer sink.Close()

	now := time.Now()
	sink.now = func() time.Time { return now }

	if err := sink.Emit(Record{Level: ERROR, Message: "before rollover"}); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	backups, _ := filepath.Glob(filepath.Join(dir, "app-*.log"))
	if len(backups) != 0 {
		t.Fatalf("Expected no rotation yet, got %v", backups)
	}

	now = now.Add(61 * time.Minute)
	if err := sink.Emit(Record{Level: ERROR, Message: "after rollover"}); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	backups, _ = filepath.Glob(filepath.Join(dir, "app-*.log"))
	if len(backups) != 1 {
		t.Fatalf("Expected exactly one rotated file, got %v", backups)
	}

	rotated, _ := os.ReadFile(backups[0])
	if !strings.Contains(string(rotated), "before rollover") || strings.Contains(string(rotated), "after rollover") {
		t.Errorf("Unexpected rotated content: %q", rotated)
	}
	current, _ := os.ReadFile(path)
	if !strings.Contains(string(current), "after rollover") || strings.Contains(string(current), "before rollover") {
		t.Errorf("Unexpected current content: %q", current)
	}

	// The schedule restarts from the rollover instant.
	if want := RotateHourly.next(now); !sink.nextRotation.Equal(want) {
		t.Errorf("nextRotation = %v, want %v", sink.nextRotation, want)
	}
}
