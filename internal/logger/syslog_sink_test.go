package logger

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"gopkg.in/Graylog2/go-gelf.v2/gelf"
)

// mockSyslogWriter records every line per severity.
type mockSyslogWriter struct {
	mu          sync.Mutex
	lines       []string
	closeCalled bool
}

func (m *mockSyslogWriter) record(prefix, line string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines = append(m.lines, prefix+" "+line)
	return nil
}

func (m *mockSyslogWriter) Warning(line string) error { return m.record("WARNING", line) }
func (m *mockSyslogWriter) Err(line string) error     { return m.record("ERR", line) }
func (m *mockSyslogWriter) Crit(line string) error    { return m.record("CRIT", line) }

func (m *mockSyslogWriter) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeCalled = true
	return nil
}

func (m *mockSyslogWriter) Lines() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.lines...)
}

// installSyslogMock replaces the dial factory for the duration of the test.
// Every successful dial gets a fresh writer, collected in the returned slice
// pointer together with the dialed addresses.
func installSyslogMock(t *testing.T, dialErr error) (*[]*mockSyslogWriter, *[]string) {
	t.Helper()
	orig := syslogDialFactory
	t.Cleanup(func() { syslogDialFactory = orig })

	var mu sync.Mutex
	writers := []*mockSyslogWriter{}
	addrs := []string{}
	syslogDialFactory = func(network, raddr, tag string) (syslogWriter, error) {
		mu.Lock()
		defer mu.Unlock()
		addrs = append(addrs, raddr)
		if dialErr != nil {
			return nil, dialErr
		}
		w := &mockSyslogWriter{}
		writers = append(writers, w)
		return w, nil
	}
	return &writers, &addrs
}

func TestNewSyslogSink_ValidationErrors(t *testing.T) {
	installSyslogMock(t, nil)

	tests := []struct {
		name string
		opts SyslogOptions
	}{
		{name: "Missing host", opts: SyslogOptions{Port: 514}},
		{name: "Negative port", opts: SyslogOptions{Host: "localhost", Port: -1}},
		{name: "Port too high", opts: SyslogOptions{Host: "localhost", Port: 70000}},
		{name: "Invalid network", opts: SyslogOptions{Host: "localhost", Network: "unix"}},
		{name: "Invalid format", opts: SyslogOptions{Host: "localhost", Format: "cef"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewSyslogSink(tt.opts); err == nil {
				t.Errorf("Expected error for %s, got nil", tt.name)
			}
		})
	}
}

func TestNewSyslogSink_Defaults(t *testing.T) {
	_, addrs := installSyslogMock(t, nil)

	sink, err := NewSyslogSink(SyslogOptions{Host: "collector.example", Tag: "app"})
	if err != nil {
		t.Fatalf("NewSyslogSink() error = %v", err)
	}
	defer sink.Close()

	if sink.Address() != "collector.example:514" {
		t.Errorf("Expected address 'collector.example:514', got '%s'", sink.Address())
	}
	if len(*addrs) != 1 || (*addrs)[0] != "collector.example:514" {
		t.Errorf("Expected one dial to collector.example:514, got %v", *addrs)
	}
	if sink.Name() != "syslog" {
		t.Errorf("Expected name 'syslog', got '%s'", sink.Name())
	}
}

func TestNewSyslogSink_DialError(t *testing.T) {
	installSyslogMock(t, errors.New("no route to host"))

	_, err := NewSyslogSink(SyslogOptions{Host: "collector.example"})
	if err == nil {
		t.Fatal("Expected dial error, got nil")
	}
	if !strings.Contains(err.Error(), "no route to host") {
		t.Errorf("Expected wrapped dial error, got %v", err)
	}
}

func TestSyslogSink_FiltersBelowWarning(t *testing.T) {
	writers, _ := installSyslogMock(t, nil)

	sink, err := NewSyslogSink(SyslogOptions{Host: "localhost"})
	if err != nil {
		t.Fatalf("NewSyslogSink() error = %v", err)
	}

	for _, level := range []Level{DEBUG, INFO, WARNING, ERROR, CRITICAL} {
		rec := Record{Level: level, Message: "msg " + level.String(), Context: "main.run", Time: time.Now()}
		if err := sink.Emit(rec); err != nil {
			t.Fatalf("Emit(%s) error = %v", level, err)
		}
	}

	lines := (*writers)[0].Lines()
	expected := []string{
		"WARNING [ WARNING] main.run : msg WARNING",
		"ERR [   ERROR] main.run : msg ERROR",
		"CRIT [CRITICAL] main.run : msg CRITICAL",
	}
	if len(lines) != len(expected) {
		t.Fatalf("Expected %d lines, got %d: %v", len(expected), len(lines), lines)
	}
	for i := range expected {
		if lines[i] != expected[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], expected[i])
		}
	}

	if err := sink.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !(*writers)[0].closeCalled {
		t.Error("Expected writer to be closed")
	}
}

func TestSyslogSink_UDPTruncation(t *testing.T) {
	writers, _ := installSyslogMock(t, nil)

	sink, err := NewSyslogSink(SyslogOptions{Host: "localhost", Network: "udp"})
	if err != nil {
		t.Fatalf("NewSyslogSink() error = %v", err)
	}
	defer sink.Close()

	long := strings.Repeat("x", 2*maxUDPSyslogMessage)
	if err := sink.Emit(Record{Level: ERROR, Message: long, Context: "main"}); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}

	line := strings.TrimPrefix((*writers)[0].Lines()[0], "ERR ")
	if len(line) != maxUDPSyslogMessage {
		t.Errorf("Expected line of %d bytes, got %d", maxUDPSyslogMessage, len(line))
	}
	if !strings.HasSuffix(line, "...truncated") {
		t.Errorf("Expected truncation marker, got suffix %q", line[len(line)-20:])
	}
}

func TestSyslogSink_TCPNotTruncated(t *testing.T) {
	writers, _ := installSyslogMock(t, nil)

	sink, err := NewSyslogSink(SyslogOptions{Host: "localhost", Network: "tcp"})
	if err != nil {
		t.Fatalf("NewSyslogSink() error = %v", err)
	}
	defer sink.Close()

	long := strings.Repeat("x", 2*maxUDPSyslogMessage)
	if err := sink.Emit(Record{Level: CRITICAL, Message: long, Context: "main"}); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	if line := (*writers)[0].Lines()[0]; !strings.HasSuffix(line, long) {
		t.Error("Expected full message over TCP")
	}
}

func TestSyslogSeverity(t *testing.T) {
	tests := []struct {
		level    Level
		expected int32
	}{
		{DEBUG, 7},
		{INFO, 6},
		{WARNING, 4},
		{ERROR, 3},
		{CRITICAL, 2},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			if got := syslogSeverity(tt.level); got != tt.expected {
				t.Errorf("syslogSeverity(%s) = %d, want %d", tt.level, got, tt.expected)
			}
		})
	}
}

// mockGelfWriter is a mock gelf.Writer for testing
type mockGelfWriter struct {
	messages    []*gelf.Message
	closeCalled bool
	returnError error
}

func (m *mockGelfWriter) WriteMessage(msg *gelf.Message) error {
	m.messages = append(m.messages, msg)
	return m.returnError
}

func (m *mockGelfWriter) Write(p []byte) (n int, err error) {
	return len(p), nil
}

func (m *mockGelfWriter) Close() error {
	m.closeCalled = true
	return nil
}

func mockGelfFactories(t *testing.T) *gelf.CompressType {
	t.Helper()
	origNewUDPWriter := gelfUDPWriterFactory
	origNewTCPWriter := gelfTCPWriterFactory
	origSetUDPCompression := setUDPCompression
	t.Cleanup(func() {
		gelfUDPWriterFactory = origNewUDPWriter
		gelfTCPWriterFactory = origNewTCPWriter
		setUDPCompression = origSetUDPCompression
	})

	captured := gelf.CompressType(99)
	setUDPCompression = func(writer *gelf.UDPWriter, compType gelf.CompressType) {
		captured = compType
	}
	gelfUDPWriterFactory = func(addr string) (*gelf.UDPWriter, error) {
		return &gelf.UDPWriter{}, nil
	}
	gelfTCPWriterFactory = func(addr string) (*gelf.TCPWriter, error) {
		return &gelf.TCPWriter{}, nil
	}
	return &captured
}

func TestGelfCompression(t *testing.T) {
	captured := mockGelfFactories(t)

	tests := []struct {
		name         string
		compression  string
		expectedType gelf.CompressType
	}{
		{name: "Gzip compression", compression: "gzip", expectedType: gelf.CompressGzip},
		{name: "Zlib compression", compression: "zlib", expectedType: gelf.CompressZlib},
		{name: "No compression", compression: "none", expectedType: gelf.CompressNone},
		{name: "Default compression (empty)", compression: "", expectedType: gelf.CompressNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			*captured = 99

			_, err := NewSyslogSink(SyslogOptions{
				Host:        "localhost",
				Port:        12201,
				Format:      "gelf",
				Compression: tt.compression,
			})
			if err != nil {
				t.Fatalf("Failed to create GELF sink: %v", err)
			}
			if *captured != tt.expectedType {
				t.Errorf("Expected compression type %v, got %v", tt.expectedType, *captured)
			}
		})
	}
}

func TestGelfCompression_Invalid(t *testing.T) {
	mockGelfFactories(t)

	_, err := NewSyslogSink(SyslogOptions{Host: "localhost", Format: "gelf", Compression: "lz4"})
	if err == nil {
		t.Fatal("Expected error for invalid compression, got nil")
	}
}

func TestGelfTCPSkipsCompression(t *testing.T) {
	captured := mockGelfFactories(t)

	_, err := NewSyslogSink(SyslogOptions{Host: "localhost", Network: "tcp", Format: "gelf", Compression: "gzip"})
	if err != nil {
		t.Fatalf("Failed to create GELF sink: %v", err)
	}
	if *captured != 99 {
		t.Errorf("Expected compression not to be set over TCP, got %v", *captured)
	}
}

func TestGelfTransport_Message(t *testing.T) {
	mockGelfFactories(t)
	mockHostname(t, "gelfhost")

	sink, err := NewSyslogSink(SyslogOptions{Host: "localhost", Format: "gelf", Tag: "my_app"})
	if err != nil {
		t.Fatalf("Failed to create GELF sink: %v", err)
	}
	mockWriter := &mockGelfWriter{}
	sink.transport.(*gelfTransport).writer = mockWriter

	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := sink.Emit(Record{Level: INFO, Message: "dropped", Context: "main", Time: ts}); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	if len(mockWriter.messages) != 0 {
		t.Fatalf("Expected INFO to be filtered, got %d messages", len(mockWriter.messages))
	}

	rec := Record{Level: ERROR, Message: "disk full", Context: "main.run", Time: ts, Host: "web1"}
	if err := sink.Emit(rec); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	if len(mockWriter.messages) != 1 {
		t.Fatalf("Expected 1 message, got %d", len(mockWriter.messages))
	}

	msg := mockWriter.messages[0]
	if msg.Host != "gelfhost" {
		t.Errorf("Host = %q, want %q", msg.Host, "gelfhost")
	}
	if msg.Short != "disk full" {
		t.Errorf("Short = %q, want %q", msg.Short, "disk full")
	}
	if msg.Full != "(web1) [   ERROR] main.run : disk full" {
		t.Errorf("Full = %q", msg.Full)
	}
	if msg.Level != 3 {
		t.Errorf("Level = %d, want 3", msg.Level)
	}
	if msg.Facility != "my_app" {
		t.Errorf("Facility = %q, want %q", msg.Facility, "my_app")
	}
	if msg.TimeUnix != float64(ts.Unix()) {
		t.Errorf("TimeUnix = %v, want %v", msg.TimeUnix, float64(ts.Unix()))
	}
	if msg.Extra["_context"] != "main.run" || msg.Extra["_level_name"] != "ERROR" || msg.Extra["_origin_host"] != "web1" {
		t.Errorf("Unexpected extra fields: %v", msg.Extra)
	}

	if err := sink.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !mockWriter.closeCalled {
		t.Error("Expected GELF writer to be closed")
	}
}

func TestGelfTransport_WriteError(t *testing.T) {
	mockGelfFactories(t)

	sink, err := NewSyslogSink(SyslogOptions{Host: "localhost", Format: "gelf"})
	if err != nil {
		t.Fatalf("Failed to create GELF sink: %v", err)
	}
	sink.transport.(*gelfTransport).writer = &mockGelfWriter{returnError: errors.New("connection refused")}

	if err := sink.Emit(Record{Level: WARNING, Message: "x"}); err == nil {
		t.Error("Expected write error to be returned, got nil")
	}
}
