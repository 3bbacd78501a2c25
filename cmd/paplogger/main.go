package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/orgoj/paplogger/internal/config"
	"github.com/orgoj/paplogger/internal/logger"
	"github.com/orgoj/paplogger/internal/server"
	"github.com/orgoj/paplogger/internal/version"
)

const exampleName = "paplogger_example"

func main() {
	configPath := flag.String("config", "", "Path to the configuration file; without it the example sequence runs")
	testConfigShort := flag.Bool("t", false, "Test configuration and exit (nginx style)")
	testConfigLong := flag.Bool("test", false, "Test configuration and exit (nginx style)")
	showVersion := flag.Bool("version", false, "Show version information and exit")
	verbose := flag.Bool("verbose", false, "Force the verbose format in the example sequence")
	logPath := flag.String("log-path", filepath.Join(os.TempDir(), exampleName), "Log directory of the example sequence")
	syslogHost := flag.String("syslog-host", "", "Syslog host of the example sequence")
	watch := flag.Bool("watch", false, "Reload the configuration file when it changes")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.VersionInfo())
		os.Exit(0)
	}

	if *configPath == "" {
		os.Exit(runExample(logger.DefaultRegistry(), *verbose, *logPath, *syslogHost))
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Printf("[CRITICAL] Failed to load configuration from '%s': %v\n", *configPath, err)
		os.Exit(1)
	}
	if *testConfigShort || *testConfigLong {
		fmt.Printf("Configuration '%s' is valid.\n", *configPath)
		os.Exit(0)
	}

	os.Exit(runDaemon(cfg, *configPath, *watch))
}

// runDaemon builds the facade from cfg and, when enabled, serves the admin
// API until SIGINT or SIGTERM. With watch set, changes of the file at
// configPath are applied to the running facade.
func runDaemon(cfg *config.Config, configPath string, watch bool) int {
	opts, err := logger.OptionsFromConfig(cfg)
	if err != nil {
		fmt.Printf("[CRITICAL] Invalid logger configuration: %v\n", err)
		return 1
	}

	registry := logger.DefaultRegistry()
	defer registry.CloseAll()

	facade, err := logger.New(registry, opts)
	if err != nil {
		fmt.Printf("[CRITICAL] Failed to initialize logger: %v\n", err)
		return 1
	}
	facade.Warning("%s", version.VersionInfo())

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	if watch {
		ctx, stopWatch := context.WithCancel(context.Background())
		defer stopWatch()
		go watchConfig(ctx, configPath, facade)
	}

	if !cfg.Admin.Enabled {
		facade.Info("Admin API disabled, waiting for shutdown signal.")
		<-quit
		return 0
	}

	srv, err := server.NewServer(server.Dependencies{Config: cfg, Facade: facade})
	if err != nil {
		facade.Critical("Failed to initialize admin API: %v", err)
		return 1
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-quit:
		facade.Info("Received shutdown signal.")
	case err := <-errCh:
		facade.Critical("Admin API error: %v", err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		facade.Error("Admin API forced to shutdown: %v", err)
	}
	facade.Info("paplogger shut down gracefully.")
	return 0
}

// watchConfig applies every valid change of the configuration file to facade.
func watchConfig(ctx context.Context, configPath string, facade *logger.Facade) {
	log := facade.Named("config")
	log.Info("Watching %s for changes", configPath)
	err := config.Watch(ctx, configPath,
		func(cfg *config.Config) {
			if err := facade.Apply(cfg); err != nil {
				log.Error("Failed to apply configuration from %s: %v", configPath, err)
				return
			}
			log.Info("Applied configuration from %s", configPath)
		},
		func(err error) {
			log.Error("Keeping the current configuration: %v", err)
		},
	)
	if err != nil {
		log.Error("Configuration watcher stopped: %v", err)
	}
}
