package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/orgoj/paplogger/internal/logger"
)

var unknownSyslogHost = "this_is_an_unknown_host.invalid"

// runExample walks every level through the sink lifecycle: file and syslog
// attach, hostname prefix on and off, an unreachable syslog host, removal
// of both sinks and finally the forced verbose format.
func runExample(reg *logger.Registry, verbose bool, logPath, syslogHost string) int {
	verbosity := logger.VerbosityUnset
	if verbose {
		verbosity = logger.VerbosityOn
	}

	pap, err := logger.New(reg, logger.Options{Application: exampleName, Verbose: verbosity})
	if err != nil {
		fmt.Printf("[CRITICAL] Failed to initialize logger: %v\n", err)
		return 1
	}
	defer pap.Close()

	if info, err := os.Stat(logPath); err == nil && !info.IsDir() {
		pap.Critical("%s is not a directory", logPath)
		return 1
	}
	if syslogHost == "" {
		syslogHost = "hostname_with_a_syslog_listening"
	}

	logAll := func(msg string) {
		pap.Debug("%s", msg)
		pap.Info("%s", msg)
		pap.Warning("%s", msg)
		pap.Error("%s", msg)
		pap.Critical("%s", msg)
	}

	for _, level := range []logger.Level{logger.DEBUG, logger.INFO, logger.WARNING, logger.ERROR, logger.CRITICAL} {
		if err := pap.SetLevel(level); err != nil {
			fmt.Printf("[CRITICAL] %v\n", err)
			return 1
		}
		pap.SetLogFile(filepath.Join(logPath, exampleName+".log"))
		pap.SetSyslogHost(syslogHost)
		pap.SetVerbose(verbosity)

		logAll("")
		logAll(fmt.Sprintf("LEVEL SET TO %s (%d)", level, int(level)))
		logAll("Hello from " + exampleName)

		pap.SetHostnamePrefix(true)
		logAll("with hostname")
		pap.SetHostnamePrefix(false)
		logAll("without hostname")

		pap.SetSyslogHost(unknownSyslogHost)
		logAll("unknown Syslog")
		pap.SetSyslogHost("")
		logAll("remove Syslog")

		pap.SetLogFile("")
		logAll("remove log file")

		if level >= logger.WARNING {
			pap.SetVerbose(logger.VerbosityOn)
			logAll("verbose")
		}
	}
	return 0
}
