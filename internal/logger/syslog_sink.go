// internal/logger/syslog_sink.go

package logger

import (
	"fmt"
	"net"
	"strconv"
	"sync"
)

const (
	// DefaultSyslogPort is the standard syslog port.
	DefaultSyslogPort = 514

	// SyslogMinLevel is the fixed minimum severity of the syslog sink.
	SyslogMinLevel = WARNING

	// RFC 3164 limits a UDP packet to 1024 bytes.
	maxUDPSyslogMessage = 1024
)

// SyslogOptions describes the remote collector of a SyslogSink.
type SyslogOptions struct {
	Host string
	Port int
	// Network is "udp" (default) or "tcp".
	Network string
	// Format is "rfc3164" (default) or "gelf".
	Format string
	// Compression is only used by GELF over UDP: "none", "gzip" or "zlib".
	Compression string
	// Tag is the syslog tag / GELF facility, usually the application name.
	Tag string
}

// Address returns host:port.
func (o SyslogOptions) Address() string {
	return net.JoinHostPort(o.Host, strconv.Itoa(o.Port))
}

// syslogTransport delivers an already formatted line to the collector.
type syslogTransport interface {
	send(rec Record, line string) error
	Close() error
}

// syslogWriter is the subset of *syslog.Writer used by the sink.
type syslogWriter interface {
	Warning(m string) error
	Err(m string) error
	Crit(m string) error
	Close() error
}

// Factory for the RFC 3164 writer, replaced in tests.
var syslogDialFactory = dialSyslog

// SyslogSink ships WARNING and above to a remote syslog collector.
// Its formatter is always verbose.
type SyslogSink struct {
	mu        sync.Mutex
	opts      SyslogOptions
	transport syslogTransport
	formatter Formatter
}

// NewSyslogSink dials the collector described by opts.
func NewSyslogSink(opts SyslogOptions) (*SyslogSink, error) {
	if opts.Host == "" {
		return nil, fmt.Errorf("host is required for syslog sink")
	}
	if opts.Port == 0 {
		opts.Port = DefaultSyslogPort
	}
	if opts.Port < 0 || opts.Port > 65535 {
		return nil, fmt.Errorf("invalid syslog port: %d", opts.Port)
	}
	if opts.Network == "" {
		opts.Network = "udp"
	}
	if opts.Network != "udp" && opts.Network != "tcp" {
		return nil, fmt.Errorf("invalid syslog network '%s', must be 'udp' or 'tcp'", opts.Network)
	}
	if opts.Format == "" {
		opts.Format = "rfc3164"
	}

	var transport syslogTransport
	var err error
	switch opts.Format {
	case "rfc3164":
		transport, err = newRFC3164Transport(opts)
	case "gelf":
		transport, err = newGelfTransport(opts)
	default:
		err = fmt.Errorf("invalid syslog format '%s', must be 'rfc3164' or 'gelf'", opts.Format)
	}
	if err != nil {
		return nil, err
	}

	return &SyslogSink{
		opts:      opts,
		transport: transport,
		formatter: verboseFormatter{noTimestamp: true},
	}, nil
}

// Emit sends the record unless it is below WARNING.
func (s *SyslogSink) Emit(rec Record) error {
	if rec.Level < SyslogMinLevel {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transport.send(rec, s.formatter.Format(rec))
}

// Close closes the connection to the collector.
func (s *SyslogSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transport.Close()
}

// Name returns "syslog".
func (s *SyslogSink) Name() string {
	return "syslog"
}

// Address returns the collector address the sink is bound to.
func (s *SyslogSink) Address() string {
	return s.opts.Address()
}

// rfc3164Transport writes through the standard library syslog client.
type rfc3164Transport struct {
	writer  syslogWriter
	network string
}

func newRFC3164Transport(opts SyslogOptions) (*rfc3164Transport, error) {
	w, err := syslogDialFactory(opts.Network, opts.Address(), opts.Tag)
	if err != nil {
		return nil, fmt.Errorf("failed to dial syslog %s://%s: %w", opts.Network, opts.Address(), err)
	}
	return &rfc3164Transport{writer: w, network: opts.Network}, nil
}

func (t *rfc3164Transport) send(rec Record, line string) error {
	if t.network == "udp" {
		line = truncateString(line, maxUDPSyslogMessage)
	}
	switch {
	case rec.Level >= CRITICAL:
		return t.writer.Crit(line)
	case rec.Level >= ERROR:
		return t.writer.Err(line)
	default:
		return t.writer.Warning(line)
	}
}

func (t *rfc3164Transport) Close() error {
	return t.writer.Close()
}

// syslogSeverity maps a Level to its RFC 5424 numeric severity.
func syslogSeverity(level Level) int32 {
	switch {
	case level >= CRITICAL:
		return 2
	case level >= ERROR:
		return 3
	case level >= WARNING:
		return 4
	case level >= INFO:
		return 6
	default:
		return 7
	}
}

var _ Sink = (*SyslogSink)(nil)
