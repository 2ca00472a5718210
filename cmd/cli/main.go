package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/specialistvlad/gpuforge/internal/app"
	"github.com/specialistvlad/gpuforge/internal/cli"
	"github.com/specialistvlad/gpuforge/internal/command"
	"github.com/specialistvlad/gpuforge/internal/probe"
)

// main is the entrypoint for the gpuforge application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	runner := command.NewExecRunner(os.Stdout, os.Stderr)

	// The real main function handles errors and exit codes.
	if err := run(os.Stdout, os.Args[1:], runner); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		// Propagate the failing command's own status when there is one.
		os.Exit(command.ExitCode(err))
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(outW io.Writer, args []string, runner command.Runner) error {
	appConfig, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	gpuforge := app.NewApp(outW, appConfig, probe.DefaultHost(runner))
	return gpuforge.Run(context.Background())
}
