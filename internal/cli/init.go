// Package cli provides common CLI initialization utilities shared by
// cmd/findash and cmd/findash-import.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"findash/internal/backend"
	"findash/internal/config"
	"findash/internal/log"
)

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadConfig reads the environment and validates the result.
func LoadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SetupLogger builds the process logger from LOG_LEVEL and LOG_FORMAT and
// installs it as the slog default.
func SetupLogger(cfg *config.Config, component string, out io.Writer) *log.Logger {
	level, format := os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT")
	if cfg != nil {
		level, format = cfg.LogLevel, cfg.LogFormat
	}
	logger := log.New(log.Config{
		Level:     log.ParseLevel(level),
		Format:    format,
		Component: component,
		Output:    out,
	})
	log.SetDefault(logger)
	return logger
}

// OpenBackend creates the configured data backend. Callers must Close the
// result.
func OpenBackend(ctx context.Context, cfg *config.Config, logger *log.Logger) (*backend.Result, backend.Config, error) {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, backendCfg, err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return nil, backendCfg, fmt.Errorf("open %s backend: %w", backendCfg.Type, err)
	}
	return res, backendCfg, nil
}

// SignalContext is cancelled on SIGINT or SIGTERM.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
