// internal/logger/facade.go

package logger

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// RetainAll keeps every rotated file.
const RetainAll = -1

const internalContext = "logger"

// Options configures a Facade. Zero values select the defaults.
type Options struct {
	// Application is required and never changes afterwards.
	Application string
	// Level defaults to WARNING.
	Level   Level
	Verbose Verbosity
	// Rotation defaults to daily.
	Rotation RotationInterval
	// Retention is the number of rotated files kept. Zero means
	// DefaultRetention, RetainAll keeps every file.
	Retention int
	// MaxSizeMB and Compress are passed to the file sink.
	MaxSizeMB int
	Compress  bool

	LogFile        string
	HostnamePrefix bool

	SyslogHost string
	// SyslogPort defaults to 514.
	SyslogPort      int
	SyslogNetwork   string
	SyslogFormat    string
	GelfCompression string

	// Output receives console lines, os.Stderr by default.
	Output io.Writer
	// ErrorOutput receives sink write errors, os.Stderr by default.
	ErrorOutput io.Writer
}

// Facade is one logical logger with a console sink and optional syslog and
// rotating file sinks. All methods are safe for concurrent use; sink
// mutation and emission are serialized by the same mutex.
type Facade struct {
	mu       sync.Mutex
	registry *Registry

	application     string
	rotation        RotationInterval
	retention       int
	maxSizeMB       int
	compress        bool
	syslogNetwork   string
	syslogFormat    string
	gelfCompression string
	host            string

	level          Level
	verbose        Verbosity
	hostnamePrefix bool
	logFile        string
	syslogHost     string
	syslogPort     int

	console *ConsoleSink
	syslog  *SyslogSink
	file    *RotatingFileSink
	errOut  io.Writer
}

// New builds a facade, attaches the console sink and then the file and
// syslog sinks requested by opts. Failures of the optional sinks are
// reported through the console and do not fail New.
func New(reg *Registry, opts Options) (*Facade, error) {
	if reg == nil {
		return nil, errors.New("logger: registry cannot be nil")
	}
	if opts.Application == "" {
		return nil, errors.New("logger: application name is required")
	}
	if opts.Level == 0 {
		opts.Level = WARNING
	}
	if opts.Rotation == (RotationInterval{}) {
		opts.Rotation = RotateDaily
	}
	switch {
	case opts.Retention == 0:
		opts.Retention = DefaultRetention
	case opts.Retention < 0:
		opts.Retention = 0
	}
	if opts.SyslogPort == 0 {
		opts.SyslogPort = DefaultSyslogPort
	}
	if opts.Output == nil {
		opts.Output = os.Stderr
	}
	if opts.ErrorOutput == nil {
		opts.ErrorOutput = os.Stderr
	}

	reg.initialize()

	f := &Facade{
		registry:        reg,
		application:     opts.Application,
		rotation:        opts.Rotation,
		retention:       opts.Retention,
		maxSizeMB:       opts.MaxSizeMB,
		compress:        opts.Compress,
		syslogNetwork:   opts.SyslogNetwork,
		syslogFormat:    opts.SyslogFormat,
		gelfCompression: opts.GelfCompression,
		host:            hostIdentifier(),
		level:           WARNING,
		verbose:         opts.Verbose,
		hostnamePrefix:  opts.HostnamePrefix,
		syslogPort:      opts.SyslogPort,
		errOut:          opts.ErrorOutput,
	}
	f.console = NewConsoleSink(opts.Output, NewFormatter(SelectFormat(f.level, f.verbose)))

	if err := f.SetLevel(opts.Level); err != nil {
		return nil, err
	}
	if opts.LogFile != "" {
		f.SetLogFile(opts.LogFile)
	}
	if opts.SyslogHost != "" {
		f.SetSyslogHost(opts.SyslogHost)
	}

	reg.register(f)
	return f, nil
}

// --- Properties --- //

// SetLevel changes the severity threshold and re-derives the console and
// file formats. It fails with a *ConfigurationError when the console sink
// is not attached (zero or closed facade) or the level is unknown.
func (f *Facade) SetLevel(level Level) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.console == nil {
		return &ConfigurationError{Op: "SetLevel", Reason: "console sink is not attached"}
	}
	if !level.Valid() {
		return &ConfigurationError{Op: "SetLevel", Reason: fmt.Sprintf("unknown level %d", int(level))}
	}

	changed := f.level != level
	f.level = level
	f.applyFormatLocked()
	if changed {
		f.debugLocked("Logging with global level %s", level)
	}
	return nil
}

// Level returns the severity threshold.
func (f *Facade) Level() Level {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.level
}

// SetVerbose changes the verbosity flag and re-derives the console and file formats.
func (f *Facade) SetVerbose(v Verbosity) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verbose = v
	f.applyFormatLocked()
}

// Verbose returns the verbosity flag.
func (f *Facade) Verbose() Verbosity {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.verbose
}

// SetLogFile attaches a rotating file sink at path, replacing any current
// one. An empty path detaches the file sink. Construction failures are
// logged, never returned.
func (f *Facade) SetLogFile(path string) SinkState {
	f.mu.Lock()
	defer f.mu.Unlock()

	if path == "" {
		f.detachFileLocked()
		f.logFile = ""
		return SinkDetached
	}
	if f.logFile != "" && f.logFile != path {
		f.debugLocked("Changing log file from %s to %s", f.logFile, path)
	}
	f.logFile = path
	return f.attachFileLocked()
}

// LogFile returns the configured path, without the hostname prefix.
// The path is kept even if the file sink failed to attach.
func (f *Facade) LogFile() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.logFile
}

// ActiveLogFile returns the path the attached file sink writes to, or ""
// when no file sink is attached.
func (f *Facade) ActiveLogFile() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.file == nil {
		return ""
	}
	return f.file.Path()
}

// HasFileSink reports whether a rotating file sink is attached.
func (f *Facade) HasFileSink() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.file != nil
}

// SetSyslogHost attaches a syslog sink bound to host, replacing any current
// one. An empty host detaches the syslog sink. Connection failures are
// logged, never returned.
func (f *Facade) SetSyslogHost(host string) SinkState {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.syslogHost = host
	if host == "" {
		f.detachSyslogLocked()
		return SinkDetached
	}
	return f.attachSyslogLocked()
}

// SyslogHost returns the configured syslog host.
func (f *Facade) SyslogHost() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.syslogHost
}

// SetSyslogPort changes the collector port and re-dials when a host is set.
// Zero selects the default port.
func (f *Facade) SetSyslogPort(port int) SinkState {
	f.mu.Lock()
	defer f.mu.Unlock()

	if port == 0 {
		port = DefaultSyslogPort
	}
	f.syslogPort = port
	if f.syslogHost == "" {
		return SinkDetached
	}
	return f.attachSyslogLocked()
}

// SyslogPort returns the configured syslog port.
func (f *Facade) SyslogPort() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.syslogPort
}

// HasSyslogSink reports whether a syslog sink is attached.
func (f *Facade) HasSyslogSink() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.syslog != nil
}

// SetHostnamePrefix toggles the host segment in verbose lines and the
// "<host>_" prefix of the log file name. An attached file sink is moved to
// the new file. The returned state is the one of the file sink.
func (f *Facade) SetHostnamePrefix(enabled bool) SinkState {
	f.mu.Lock()
	defer f.mu.Unlock()

	if enabled == f.hostnamePrefix {
		return f.fileStateLocked()
	}
	f.hostnamePrefix = enabled
	if f.logFile == "" {
		return SinkDetached
	}
	return f.attachFileLocked()
}

// HostnamePrefix returns the hostname prefix flag.
func (f *Facade) HostnamePrefix() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hostnamePrefix
}

// Application returns the application name given at construction.
func (f *Facade) Application() string {
	return f.application
}

// Rotation returns the rotation interval of the file sink.
func (f *Facade) Rotation() RotationInterval {
	return f.rotation
}

// Retention returns the number of rotated files kept (0 keeps all).
func (f *Facade) Retention() int {
	return f.retention
}

// State is a snapshot of the facade properties.
type State struct {
	Application    string `json:"application"`
	Level          string `json:"level"`
	Verbose        *bool  `json:"verbose"`
	Format         string `json:"format"`
	HostnamePrefix bool   `json:"hostname_prefix"`
	LogFile        string `json:"log_file"`
	ActiveLogFile  string `json:"active_log_file"`
	SyslogHost     string `json:"syslog_host"`
	SyslogPort     int    `json:"syslog_port"`
	SyslogAttached bool   `json:"syslog_attached"`
	Rotation       string `json:"rotation"`
	Retention      int    `json:"retention"`
}

// State returns a consistent snapshot of the facade properties.
func (f *Facade) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	st := State{
		Application:    f.application,
		Level:          f.level.String(),
		Verbose:        f.verbose.Bool(),
		Format:         SelectFormat(f.level, f.verbose).String(),
		HostnamePrefix: f.hostnamePrefix,
		LogFile:        f.logFile,
		SyslogHost:     f.syslogHost,
		SyslogPort:     f.syslogPort,
		SyslogAttached: f.syslog != nil,
		Rotation:       f.rotation.String(),
		Retention:      f.retention,
	}
	if f.file != nil {
		st.ActiveLogFile = f.file.Path()
	}
	return st
}

// Close detaches and closes every sink and removes the facade from its
// registry. Further records are dropped, SetLevel fails and the file and
// syslog setters report SinkFailed.
func (f *Facade) Close() error {
	err := f.closeSinks()
	if f.registry != nil {
		f.registry.unregister(f)
	}
	return err
}

func (f *Facade) closeSinks() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var errs []error
	if f.file != nil {
		errs = append(errs, f.file.Close())
		f.file = nil
	}
	if f.syslog != nil {
		errs = append(errs, f.syslog.Close())
		f.syslog = nil
	}
	if f.console != nil {
		errs = append(errs, f.console.Close())
		f.console = nil
	}
	return errors.Join(errs...)
}

// --- Sink lifecycle (f.mu held) --- //

func (f *Facade) applyFormatLocked() {
	kind := SelectFormat(f.level, f.verbose)
	for _, sink := range f.sinksLocked() {
		r, ok := sink.(reformattable)
		if !ok || r.Formatter().Kind() == kind {
			continue
		}
		r.SetFormatter(NewFormatter(kind))
		f.debugLocked("Changing %s format to %s", sink.Name(), kind)
	}
}

func (f *Facade) effectiveLogFileLocked() string {
	if f.hostnamePrefix {
		return prefixedPath(f.logFile, f.host)
	}
	return f.logFile
}

// No sink is built on a zero or closed facade.
func (f *Facade) attachFileLocked() SinkState {
	if f.console == nil {
		return SinkFailed
	}
	f.detachFileLocked()

	target := f.effectiveLogFileLocked()
	sink, err := NewRotatingFileSink(FileOptions{
		Path:      target,
		Rotation:  f.rotation,
		Retention: f.retention,
		MaxSizeMB: f.maxSizeMB,
		Compress:  f.compress,
	}, NewFormatter(SelectFormat(f.level, f.verbose)))
	if err != nil {
		f.diagnosticLocked("Could not create %s in %s: %v", filepath.Base(target), filepath.Dir(target), err)
		return SinkFailed
	}

	f.file = sink
	f.debugLocked("Added rotating file sink to %s with level %s.", target, f.level)
	f.debugLocked("Log rotates every %s and keeps %d logs.", f.rotation, f.retention)
	return SinkAttached
}

func (f *Facade) detachFileLocked() {
	if f.file == nil {
		return
	}
	f.debugLocked("Removing rotating file sink")
	sink := f.file
	f.file = nil
	if err := sink.Close(); err != nil {
		fmt.Fprintf(f.errWriter(), "[WARN] Error closing file sink %s: %v\n", sink.Path(), err)
	}
}

func (f *Facade) fileStateLocked() SinkState {
	switch {
	case f.file != nil:
		return SinkAttached
	case f.logFile != "":
		return SinkFailed
	default:
		return SinkDetached
	}
}

func (f *Facade) attachSyslogLocked() SinkState {
	if f.console == nil {
		return SinkFailed
	}
	f.detachSyslogLocked()

	opts := SyslogOptions{
		Host:        f.syslogHost,
		Port:        f.syslogPort,
		Network:     f.syslogNetwork,
		Format:      f.syslogFormat,
		Compression: f.gelfCompression,
		Tag:         f.application,
	}
	sink, err := NewSyslogSink(opts)
	if err != nil {
		f.diagnosticLocked("Could not connect to syslog on %s: %v", opts.Address(), err)
		return SinkFailed
	}

	f.syslog = sink
	f.debugLocked("Added syslog sink to %s with level %s.", sink.Address(), SyslogMinLevel)
	return SinkAttached
}

func (f *Facade) detachSyslogLocked() {
	if f.syslog == nil {
		return
	}
	f.debugLocked("Removing syslog sink")
	sink := f.syslog
	f.syslog = nil
	if err := sink.Close(); err != nil {
		fmt.Fprintf(f.errWriter(), "[WARN] Error closing syslog sink %s: %v\n", sink.Address(), err)
	}
}

// --- Emission --- //

// Enabled reports whether a record of the given level passes the threshold.
func (f *Facade) Enabled(level Level) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.console != nil && level >= f.level
}

// Debug logs a message at DEBUG level
func (f *Facade) Debug(format string, args ...interface{}) {
	f.logf(DEBUG, format, args...)
}

// Info logs a message at INFO level
func (f *Facade) Info(format string, args ...interface{}) {
	f.logf(INFO, format, args...)
}

// Warning logs a message at WARNING level
func (f *Facade) Warning(format string, args ...interface{}) {
	f.logf(WARNING, format, args...)
}

// Error logs a message at ERROR level
func (f *Facade) Error(format string, args ...interface{}) {
	f.logf(ERROR, format, args...)
}

// Critical logs a message at CRITICAL level
func (f *Facade) Critical(format string, args ...interface{}) {
	f.logf(CRITICAL, format, args...)
}

// Log logs msg verbatim at the given level.
func (f *Facade) Log(level Level, msg string) {
	f.logf(level, "%s", msg)
}

// logf must be called directly from the exported emitters so that the
// caller frame resolves to application code.
func (f *Facade) logf(level Level, format string, args ...interface{}) {
	if !f.Enabled(level) {
		return
	}
	f.emit(Record{Level: level, Message: fmt.Sprintf(format, args...), Context: callerContext(2)})
}

// Named returns a logger that stamps records with an explicit context
// instead of the caller's function name.
func (f *Facade) Named(context string) *ContextLogger {
	return &ContextLogger{facade: f, context: context}
}

// emit applies the threshold and fans the record out to all sinks.
func (f *Facade) emit(rec Record) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.console == nil || rec.Level < f.level {
		return
	}
	f.fanOutLocked(rec)
}

func (f *Facade) debugLocked(format string, args ...interface{}) {
	if DEBUG < f.level {
		return
	}
	f.fanOutLocked(Record{Level: DEBUG, Message: fmt.Sprintf(format, args...), Context: internalContext})
}

// diagnosticLocked emits an ERROR record regardless of the threshold so
// that a failed sink always leaves a trace on the remaining sinks.
func (f *Facade) diagnosticLocked(format string, args ...interface{}) {
	f.fanOutLocked(Record{Level: ERROR, Message: fmt.Sprintf(format, args...), Context: internalContext})
}

func (f *Facade) fanOutLocked(rec Record) {
	if rec.Time.IsZero() {
		rec.Time = time.Now()
	}
	if f.hostnamePrefix {
		rec.Host = f.host
	}
	for _, sink := range f.sinksLocked() {
		if err := sink.Emit(rec); err != nil {
			fmt.Fprintf(f.errWriter(), "[ERROR] sink '%s': %v\n", sink.Name(), err)
		}
	}
}

func (f *Facade) sinksLocked() []Sink {
	sinks := make([]Sink, 0, 3)
	if f.console != nil {
		sinks = append(sinks, f.console)
	}
	if f.syslog != nil {
		sinks = append(sinks, f.syslog)
	}
	if f.file != nil {
		sinks = append(sinks, f.file)
	}
	return sinks
}

func (f *Facade) errWriter() io.Writer {
	if f.errOut == nil {
		return os.Stderr
	}
	return f.errOut
}

// ContextLogger emits through a facade with a fixed emitting context.
type ContextLogger struct {
	facade  *Facade
	context string
}

// Context returns the emitting context stamped on records.
func (c *ContextLogger) Context() string {
	return c.context
}

// Debug logs a message at DEBUG level
func (c *ContextLogger) Debug(format string, args ...interface{}) {
	c.logf(DEBUG, format, args...)
}

// Info logs a message at INFO level
func (c *ContextLogger) Info(format string, args ...interface{}) {
	c.logf(INFO, format, args...)
}

// Warning logs a message at WARNING level
func (c *ContextLogger) Warning(format string, args ...interface{}) {
	c.logf(WARNING, format, args...)
}

// Error logs a message at ERROR level
func (c *ContextLogger) Error(format string, args ...interface{}) {
	c.logf(ERROR, format, args...)
}

// Critical logs a message at CRITICAL level
func (c *ContextLogger) Critical(format string, args ...interface{}) {
	c.logf(CRITICAL, format, args...)
}

// Log logs msg verbatim at the given level.
func (c *ContextLogger) Log(level Level, msg string) {
	c.logf(level, "%s", msg)
}

func (c *ContextLogger) logf(level Level, format string, args ...interface{}) {
	if !c.facade.Enabled(level) {
		return
	}
	c.facade.emit(Record{Level: level, Message: fmt.Sprintf(format, args...), Context: c.context})
}
