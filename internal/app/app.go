package app

import (
	"io"
	"log/slog"

	"github.com/specialistvlad/gpuforge/internal/probe"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	config *Config
	host   probe.Host
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App with its own isolated logger. Logs and the dry-run plan go
// to outW; every external process goes through host.Runner.
func NewApp(outW io.Writer, cfg *Config, host probe.Host) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	logger.Debug("Logger configured successfully.")

	return &App{
		outW:   outW,
		logger: logger,
		config: cfg,
		host:   host,
	}
}

// Logger returns the application's logger. This is primarily for testing.
func (a *App) Logger() *slog.Logger {
	return a.logger
}
