package app

import (
	"errors"
	"fmt"
)

// Commands accepted by the CLI.
const (
	CommandBuild = "build"
	CommandRun   = "run"
	CommandUp    = "up"
)

// Config holds all the necessary configuration for an App instance.
type Config struct {
	Command    string
	RecipePath string
	// ImageDir overrides where the image is assembled and looked up.
	// Empty derives a default next to the recipe.
	ImageDir string

	LogFormat string
	LogLevel  string
}

// NewConfig validates a Config. Field combinations that cannot possibly
// run are rejected here, before any logging or loading happens.
func NewConfig(cfg Config) (*Config, error) {
	switch cfg.Command {
	case CommandBuild, CommandRun, CommandUp:
	default:
		return nil, fmt.Errorf("unknown command %q: expected build, run, or up", cfg.Command)
	}

	if cfg.Command != CommandRun && cfg.RecipePath == "" {
		return nil, errors.New("a recipe path is required to build")
	}
	if cfg.Command == CommandRun && cfg.RecipePath == "" && cfg.ImageDir == "" {
		return nil, errors.New("run needs a recipe path or an explicit -image-dir")
	}

	return &cfg, nil
}
