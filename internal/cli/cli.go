package cli

import (
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/specialistvlad/gpuforge/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

const longHelp = `gpuforge clones XGBoost, CatBoost and LightGBM at pinned commits, builds
each with GPU support and installs its Python package for the current user.

Pipelines run strictly one after another. The first failing command aborts
the whole run with that command's exit status.

Preconditions: network access to github.com, nvcc on PATH, and a working
native toolchain (git, cmake, make, a C++ compiler).`

type flags struct {
	workDir   string
	python    string
	receipt   string
	logLevel  string
	logFormat string
	pins      map[string]string
}

// Parse processes command-line arguments. It returns a populated Config, a
// boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")

	var (
		f      flags
		config *app.Config
	)

	build := func(dryRun bool) func(cmd *cobra.Command, _ []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.NewConfig(app.Config{
				WorkDir:     f.workDir,
				Python:      f.python,
				ReceiptPath: f.receipt,
				Pins:        f.pins,
				LogFormat:   strings.ToLower(f.logFormat),
				LogLevel:    strings.ToLower(f.logLevel),
				DryRun:      dryRun,
			})
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("receipt") {
				cfg.ReceiptPath = app.DefaultReceiptPath(cfg.WorkDir)
			}
			config = cfg
			return nil
		}
	}

	root := &cobra.Command{
		Use:           "gpuforge",
		Short:         "Build and install GPU-enabled XGBoost, CatBoost and LightGBM",
		Long:          longHelp,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE:          build(false),
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.PersistentFlags().StringVar(&f.workDir, "workdir", ".", "Directory the pipelines are cloned into.")
	root.PersistentFlags().StringVar(&f.python, "python", "python", "Python interpreter to probe and install with.")
	root.PersistentFlags().StringVar(&f.receipt, "receipt", "", "Receipt file written after a successful run (default <workdir>/gpuforge-receipt.yaml, empty string disables).")
	root.PersistentFlags().StringToStringVar(&f.pins, "pin", nil, "Override a pipeline's pinned commit, e.g. --pin xgboost=<40-hex commit>. Repeatable.")
	root.PersistentFlags().StringVar(&f.logLevel, "log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	root.PersistentFlags().StringVar(&f.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")

	root.AddCommand(&cobra.Command{
		Use:           "plan",
		Short:         "Print the resolved command sequence without running it",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE:          build(true),
	})

	root.SetArgs(args)
	root.SetOut(output)
	root.SetErr(output)

	if err := root.Execute(); err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	// Help and version output leave config unset.
	if config == nil {
		return nil, true, nil
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
