// internal/logger/options.go

package logger

import (
	"fmt"

	"github.com/orgoj/paplogger/internal/config"
)

// OptionsFromConfig converts a validated configuration into facade options.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return Options{}, err
	}
	rotation, err := ParseRotation(cfg.Rotation.When)
	if err != nil {
		return Options{}, err
	}
	maxSizeMB, err := cfg.Rotation.MaxSizeMB()
	if err != nil {
		return Options{}, fmt.Errorf("invalid rotation.max_size '%s': %w", cfg.Rotation.MaxSize, err)
	}

	retention := cfg.Rotation.Backups()
	// Zero in the file keeps all files, like backup_count=0 in most rotators.
	if retention <= 0 {
		retention = RetainAll
	}

	return Options{
		Application:     cfg.Application,
		Level:           level,
		Verbose:         VerbosityFromBool(cfg.Verbose),
		Rotation:        rotation,
		Retention:       retention,
		MaxSizeMB:       maxSizeMB,
		Compress:        cfg.Rotation.Compress,
		LogFile:         cfg.LogFile,
		HostnamePrefix:  cfg.HostnamePrefix,
		SyslogHost:      cfg.Syslog.Host,
		SyslogPort:      cfg.Syslog.Port,
		SyslogNetwork:   cfg.Syslog.Network,
		SyslogFormat:    cfg.Syslog.Format,
		GelfCompression: cfg.Syslog.Compression,
	}, nil
}

// Apply moves the runtime properties of f to the values of cfg. Properties
// fixed at construction (application, rotation, retention and the syslog
// transport) keep their value and each difference is reported as a WARNING.
func (f *Facade) Apply(cfg *config.Config) error {
	opts, err := OptionsFromConfig(cfg)
	if err != nil {
		return err
	}
	log := f.Named("config")
	for _, field := range f.fixedChanges(opts) {
		log.Warning("Ignoring change of %s, restart to apply it", field)
	}

	if err := f.SetLevel(opts.Level); err != nil {
		return err
	}
	f.SetVerbose(opts.Verbose)

	// Detach first so that the file sink is not re-created at the old path
	// when both the path and the hostname prefix change.
	if opts.LogFile != f.LogFile() {
		f.SetLogFile("")
		f.SetHostnamePrefix(opts.HostnamePrefix)
		f.SetLogFile(opts.LogFile)
	} else {
		f.SetHostnamePrefix(opts.HostnamePrefix)
	}

	hostChanged := opts.SyslogHost != f.SyslogHost()
	if opts.SyslogPort != f.SyslogPort() {
		if hostChanged {
			f.SetSyslogHost("")
		}
		f.SetSyslogPort(opts.SyslogPort)
	}
	if hostChanged {
		f.SetSyslogHost(opts.SyslogHost)
	}
	return nil
}

func (f *Facade) fixedChanges(opts Options) []string {
	retention := opts.Retention
	if retention == RetainAll {
		retention = 0
	}

	var changed []string
	if opts.Application != f.application {
		changed = append(changed, "application")
	}
	if opts.Rotation != f.rotation {
		changed = append(changed, "rotation.when")
	}
	if retention != f.retention {
		changed = append(changed, "rotation.backup_count")
	}
	if opts.MaxSizeMB != f.maxSizeMB {
		changed = append(changed, "rotation.max_size")
	}
	if opts.Compress != f.compress {
		changed = append(changed, "rotation.compress")
	}
	if opts.SyslogNetwork != f.syslogNetwork {
		changed = append(changed, "syslog.network")
	}
	if opts.SyslogFormat != f.syslogFormat {
		changed = append(changed, "syslog.format")
	}
	if opts.GelfCompression != f.gelfCompression {
		changed = append(changed, "syslog.compression")
	}
	return changed
}
