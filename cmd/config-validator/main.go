package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/orgoj/paplogger/internal/config"
	"github.com/orgoj/paplogger/internal/logger"
)

func main() {
	// Parse command line flags
	flag.Parse()

	// Get config path from arguments
	if len(flag.Args()) < 1 {
		fmt.Println("Error: Config file path is required")
		fmt.Println("Usage: config-validator <config-file>")
		os.Exit(1)
	}
	configPath := flag.Args()[0]

	// Load and validate configuration
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	// The logger performs its own conversions (level, rotation, size)
	opts, err := logger.OptionsFromConfig(cfg)
	if err != nil {
		fmt.Printf("Validation error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Configuration is valid!")
	fmt.Printf("  application: %s\n", opts.Application)
	fmt.Printf("  level:       %s (format: %s)\n", opts.Level, logger.SelectFormat(opts.Level, opts.Verbose))
	if opts.Retention == logger.RetainAll {
		fmt.Printf("  rotation:    %s, keeps all files\n", opts.Rotation)
	} else {
		fmt.Printf("  rotation:    %s, keeps %d files\n", opts.Rotation, opts.Retention)
	}
	if opts.LogFile != "" {
		fmt.Printf("  log file:    %s\n", opts.LogFile)
	}
	if opts.SyslogHost != "" {
		fmt.Printf("  syslog:      %s://%s:%d (%s)\n", opts.SyslogNetwork, opts.SyslogHost, opts.SyslogPort, opts.SyslogFormat)
	}
	if cfg.Admin.Enabled {
		fmt.Printf("  admin API:   %s:%d\n", cfg.Admin.Host, cfg.Admin.Port)
	}
}
