package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"resumecoach/internal/cli"
	"resumecoach/internal/config"
	"resumecoach/internal/errors"

	"github.com/joho/godotenv"
)

func main() {
	// A missing .env is fine; the real environment still applies
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := errors.New(cfg.App.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	logger.Debug("Starting resumecoach",
		"version", cli.Version,
		"log_level", cfg.App.LogLevel,
		"default_provider", cfg.AI.DefaultProviderName())

	err = cli.Execute(ctx, cfg, logger)
	if err != nil {
		logger.LogError(err, "Command failed")
	}
	stop()
	os.Exit(cli.ExitCode(err))
}

// loadConfig honours RESUMECOACH_CONFIG as an explicit config file path
func loadConfig() (*config.Config, error) {
	if path := os.Getenv("RESUMECOACH_CONFIG"); path != "" {
		return config.LoadConfigFile(path)
	}
	return config.LoadConfig()
}
