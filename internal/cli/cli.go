package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/vk/runforge/internal/app"
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

// envDefaults are the flag defaults overridable through the environment.
type envDefaults struct {
	ImageDir  string `env:"RUNFORGE_IMAGE_DIR"`
	LogFormat string `env:"RUNFORGE_LOG_FORMAT" envDefault:"json"`
	LogLevel  string `env:"RUNFORGE_LOG_LEVEL" envDefault:"info"`
}

// Parse processes command-line arguments. It returns a populated
// app.Config, a boolean indicating if the program should exit cleanly, or
// an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")

	defaults := envDefaults{}
	if err := env.Parse(&defaults); err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	flagSet := flag.NewFlagSet("runforge", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
runforge - build a runnable image from a declarative recipe and launch it.

Usage:
  runforge [options] <command> [RECIPE_PATH]

Commands:
  build   Run the build pipeline and seal the image.
  run     Launch the sealed image's entrypoint.
  up      Build, then launch.

Arguments:
  RECIPE_PATH
    Path to a recipe .hcl file, or a directory containing one.

Options:
`)
		flagSet.PrintDefaults()
	}

	recipeFlag := flagSet.String("recipe", "", "Path to the recipe file or directory.")
	rFlag := flagSet.String("r", "", "Path to the recipe file or directory (shorthand).")
	imageDirFlag := flagSet.String("image-dir", defaults.ImageDir, "Directory the image is assembled into and launched from.")
	logFormatFlag := flagSet.String("log-format", defaults.LogFormat, "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", defaults.LogLevel, "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	if flagSet.NArg() == 0 {
		slog.Debug("No command provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}
	commandName := flagSet.Arg(0)

	recipePath := ""
	if *recipeFlag != "" {
		recipePath = *recipeFlag
	} else if *rFlag != "" {
		recipePath = *rFlag
	} else if flagSet.NArg() > 1 {
		recipePath = flagSet.Arg(1)
	}
	slog.Debug("Recipe path determined.", "path", recipePath)

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		Command:    commandName,
		RecipePath: recipePath,
		ImageDir:   *imageDirFlag,
		LogFormat:  logFormat,
		LogLevel:   logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
