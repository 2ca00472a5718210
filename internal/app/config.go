package app

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/specialistvlad/gpuforge/internal/receipt"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	WorkDir     string // pipelines are cloned below this directory
	Python      string // interpreter used for the version probe and installs
	ReceiptPath string // empty disables the receipt

	// Pins overrides manifest revisions, keyed by pipeline name.
	Pins map[string]string

	LogFormat string
	LogLevel  string

	// DryRun resolves and prints the plan without running anything.
	DryRun bool
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.WorkDir == "" {
		return nil, errors.New("WorkDir is a required configuration field and cannot be empty")
	}
	if cfg.Python == "" {
		return nil, errors.New("Python is a required configuration field and cannot be empty")
	}

	abs, err := filepath.Abs(cfg.WorkDir)
	if err != nil {
		return nil, fmt.Errorf("invalid work directory %q: %w", cfg.WorkDir, err)
	}
	cfg.WorkDir = abs

	switch cfg.LogFormat {
	case "":
		cfg.LogFormat = "text"
	case "text", "json":
	default:
		return nil, fmt.Errorf("invalid log format %q: must be 'text' or 'json'", cfg.LogFormat)
	}

	switch cfg.LogLevel {
	case "":
		cfg.LogLevel = "info"
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}

	return &cfg, nil
}

// DefaultReceiptPath returns the receipt location inside workDir.
func DefaultReceiptPath(workDir string) string {
	return filepath.Join(workDir, receipt.DefaultFileName)
}
