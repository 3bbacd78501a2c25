//go:build !windows && !plan9

package logger

import "log/syslog"

func dialSyslog(network, raddr, tag string) (syslogWriter, error) {
	w, err := syslog.Dial(network, raddr, syslog.LOG_WARNING|syslog.LOG_USER, tag)
	if err != nil {
		return nil, err
	}
	return w, nil
}
