package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/vk/runforge/internal/app"
	"github.com/vk/runforge/internal/cli"
	"github.com/vk/runforge/internal/hclcfg"
)

// main is the entrypoint for the runforge application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	// The real main function handles errors and exit codes.
	if err := run(os.Stdout, os.Args[1:]); err != nil {
		var progExit *app.ProgramExit
		if errors.As(err, &progExit) {
			// Exit code passthrough from the launched program, printed
			// nowhere: the program already owns its stderr.
			os.Exit(progExit.Code)
		}
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error
// handling.
func run(outW io.Writer, args []string) (err error) {
	appConfig, shouldExit, parseErr := cli.Parse(args, outW)
	if parseErr != nil {
		return parseErr
	}
	if shouldExit {
		return nil
	}

	// The app panics on critical startup errors, so we recover here to
	// provide a clean exit message to the user.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("a critical startup error occurred: %v", r)
		}
	}()

	// Instantiate the concrete HCL loader to pass to the app.
	loader := hclcfg.NewLoader()
	forgeApp := app.New(outW, appConfig, loader)

	return forgeApp.Run(context.Background())
}
