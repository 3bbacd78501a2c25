// internal/logger/format.go

package logger

import (
	"fmt"
	"strings"
	"time"
)

const (
	baseTimestampLayout    = "2006-01-02 15:04:05"
	verboseTimestampLayout = baseTimestampLayout + ".000 MST"
	simpleTimestampLayout  = baseTimestampLayout + " MST"
)

// Verbosity is the tri-state verbose flag of the facade.
type Verbosity int

const (
	// VerbosityUnset derives the format from the severity threshold.
	VerbosityUnset Verbosity = iota
	// VerbosityOn always selects the verbose format.
	VerbosityOn
	// VerbosityOff always selects the simple format.
	VerbosityOff
)

// VerbosityFromBool maps a nil-able bool to a Verbosity (nil means unset).
func VerbosityFromBool(b *bool) Verbosity {
	switch {
	case b == nil:
		return VerbosityUnset
	case *b:
		return VerbosityOn
	default:
		return VerbosityOff
	}
}

// Bool is the inverse of VerbosityFromBool.
func (v Verbosity) Bool() *bool {
	switch v {
	case VerbosityOn:
		b := true
		return &b
	case VerbosityOff:
		b := false
		return &b
	default:
		return nil
	}
}

func (v Verbosity) String() string {
	switch v {
	case VerbosityOn:
		return "on"
	case VerbosityOff:
		return "off"
	default:
		return "unset"
	}
}

// FormatKind selects one of the two line layouts.
type FormatKind int

const (
	FormatSimple FormatKind = iota
	FormatVerbose
)

func (k FormatKind) String() string {
	if k == FormatVerbose {
		return "verbose"
	}
	return "simple"
}

// SelectFormat derives the layout for console and file sinks.
// An explicit verbosity wins; otherwise INFO and DEBUG thresholds are verbose.
func SelectFormat(level Level, v Verbosity) FormatKind {
	switch v {
	case VerbosityOn:
		return FormatVerbose
	case VerbosityOff:
		return FormatSimple
	}
	if level <= INFO {
		return FormatVerbose
	}
	return FormatSimple
}

// Formatter renders a record as a single line, without trailing newline.
type Formatter interface {
	Format(rec Record) string
	Kind() FormatKind
}

// NewFormatter returns the formatter for the given kind.
func NewFormatter(kind FormatKind) Formatter {
	if kind == FormatVerbose {
		return verboseFormatter{}
	}
	return simpleFormatter{}
}

// simpleFormatter: "<timestamp> : <message>"
type simpleFormatter struct{}

func (simpleFormatter) Format(rec Record) string {
	return localTime(rec.Time).Format(simpleTimestampLayout) + " : " + rec.Message
}

func (simpleFormatter) Kind() FormatKind { return FormatSimple }

// verboseFormatter: "<timestamp ms> [(host) ][   LEVEL] <context> : <message>"
type verboseFormatter struct {
	// noTimestamp drops the leading timestamp, used where the transport
	// adds its own header (syslog).
	noTimestamp bool
}

func (f verboseFormatter) Format(rec Record) string {
	var sb strings.Builder
	if !f.noTimestamp {
		sb.WriteString(localTime(rec.Time).Format(verboseTimestampLayout))
		sb.WriteString(" ")
	}
	if rec.Host != "" {
		sb.WriteString("(")
		sb.WriteString(rec.Host)
		sb.WriteString(") ")
	}
	sb.WriteString(fmt.Sprintf("[%8s] ", rec.Level.String()))
	sb.WriteString(rec.Context)
	sb.WriteString(" : ")
	sb.WriteString(rec.Message)
	return sb.String()
}

func (verboseFormatter) Kind() FormatKind { return FormatVerbose }

func localTime(t time.Time) time.Time {
	if t.IsZero() {
		t = time.Now()
	}
	return t.In(time.Local)
}
