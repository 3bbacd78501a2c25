// internal/logger/gelf_transport.go

package logger

import (
	"fmt"

	"gopkg.in/Graylog2/go-gelf.v2/gelf"
)

// Variables for factories to allow mocking in tests
var gelfUDPWriterFactory = gelf.NewUDPWriter
var gelfTCPWriterFactory = gelf.NewTCPWriter

// Function to set compression, can be mocked in tests
var setUDPCompression = func(writer *gelf.UDPWriter, compType gelf.CompressType) {
	writer.CompressionType = compType
}

// gelfTransport ships records as GELF messages to Graylog or any
// GELF-speaking collector.
type gelfTransport struct {
	writer   gelf.Writer
	hostName string
	facility string
}

func newGelfTransport(opts SyslogOptions) (*gelfTransport, error) {
	hostName := hostIdentifier()

	var compType gelf.CompressType
	switch opts.Compression {
	case "gzip":
		compType = gelf.CompressGzip
	case "zlib":
		compType = gelf.CompressZlib
	case "", "none":
		compType = gelf.CompressNone
	default:
		return nil, fmt.Errorf("invalid GELF compression '%s', must be 'gzip', 'zlib' or 'none'", opts.Compression)
	}

	var writer gelf.Writer
	if opts.Network == "tcp" {
		tcpWriter, err := gelfTCPWriterFactory(opts.Address())
		if err != nil {
			return nil, fmt.Errorf("failed to create GELF TCP writer: %w", err)
		}
		writer = tcpWriter
	} else {
		udpWriter, err := gelfUDPWriterFactory(opts.Address())
		if err != nil {
			return nil, fmt.Errorf("failed to create GELF UDP writer: %w", err)
		}
		setUDPCompression(udpWriter, compType)
		writer = udpWriter
	}

	return &gelfTransport{
		writer:   writer,
		hostName: hostName,
		facility: opts.Tag,
	}, nil
}

func (g *gelfTransport) send(rec Record, line string) error {
	msg := &gelf.Message{
		Version:  "1.1",
		Host:     g.hostName,
		Short:    rec.Message,
		Full:     line,
		TimeUnix: float64(rec.Time.UnixNano()) / 1e9,
		Level:    syslogSeverity(rec.Level),
		Facility: g.facility,
		Extra: map[string]interface{}{
			"_context":    rec.Context,
			"_level_name": rec.Level.String(),
		},
	}
	if rec.Host != "" {
		msg.Extra["_origin_host"] = rec.Host
	}
	return g.writer.WriteMessage(msg)
}

func (g *gelfTransport) Close() error {
	return g.writer.Close()
}
