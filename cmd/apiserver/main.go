// API server entry point for KeyIP-Continuity.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/turtacn/KeyIP-Continuity/internal/app"
	"github.com/turtacn/KeyIP-Continuity/internal/config"
	"github.com/turtacn/KeyIP-Continuity/internal/infrastructure/monitoring/logging"
)

const defaultConfigPath = "configs/config.yaml"

// Build-time variables injected via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	httpPort := flag.Int("http-port", 0, "HTTP server port (overrides config)")
	watch := flag.Bool("watch", false, "apply rate limit changes when the config file changes")
	flag.Parse()

	app.Version, app.GitCommit, app.BuildDate = version, commit, buildDate

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *httpPort > 0 {
		cfg.Server.Port = *httpPort
	}

	logger, err := app.NewLogger(cfg.Log, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetDefault(logger)
	logger.Info("starting KeyIP-Continuity API server",
		logging.String("version", version),
		logging.String("commit", commit),
		logging.Int("http_port", cfg.Server.Port))

	a, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("initialization failed", logging.Err(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	defer a.Close()

	if *watch && *configPath != "" {
		config.Watch(*configPath, a.ApplyRuntimeConfig, func(err error) {
			logger.Warn("ignoring invalid configuration change", logging.Err(err))
		})
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.Run(ctx); err != nil {
		logger.Error("HTTP server error", logging.Err(err))
		stop()
		a.Close()
		os.Exit(1)
	}
	logger.Info("server stopped")
}

// loadConfig reads path when it exists and falls back to KEYIPC_*
// environment variables otherwise.
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "warning: config file %s not found, using environment and defaults\n", path)
		return config.LoadFromEnv()
	}
	return config.Load(path)
}

//Personal.AI order the ending
