//go:build windows || plan9

package logger

import (
	"errors"
	"runtime"
)

func dialSyslog(network, raddr, tag string) (syslogWriter, error) {
	return nil, errors.New("rfc3164 syslog is not supported on " + runtime.GOOS + ", use format 'gelf'")
}
