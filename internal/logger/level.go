// internal/logger/level.go

package logger

import (
	"fmt"
	"strings"
)

// Level defines the severity of a record. Higher is more severe.
type Level int

const (
	DEBUG    Level = 10
	INFO     Level = 20
	WARNING  Level = 30
	ERROR    Level = 40
	CRITICAL Level = 50
)

var levelNames = map[Level]string{
	DEBUG:    "DEBUG",
	INFO:     "INFO",
	WARNING:  "WARNING",
	ERROR:    "ERROR",
	CRITICAL: "CRITICAL",
}

// LevelNameToLevel maps upper-case level names (and common aliases) to levels.
var LevelNameToLevel = map[string]Level{
	"DEBUG":    DEBUG,
	"INFO":     INFO,
	"WARNING":  WARNING,
	"WARN":     WARNING,
	"ERROR":    ERROR,
	"CRITICAL": CRITICAL,
	"FATAL":    CRITICAL,
}

// String returns the canonical upper-case name of the level.
func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// Valid reports whether l is one of the five defined levels.
func (l Level) Valid() bool {
	_, ok := levelNames[l]
	return ok
}

// ParseLevel converts a level name into a Level. Matching is case-insensitive.
func ParseLevel(name string) (Level, error) {
	level, ok := LevelNameToLevel[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("invalid log level: %s", name)
	}
	return level, nil
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("invalid log level: %d", int(l))
	}
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Level) UnmarshalText(text []byte) error {
	level, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = level
	return nil
}
