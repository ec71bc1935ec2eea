package app

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/vk/runforge/internal/config"
	"github.com/vk/runforge/internal/ctxlog"
	"github.com/vk/runforge/internal/fsutil"
)

// stateDirName is the directory next to the recipe that holds the default
// image output. It is never copied into an image as source.
const stateDirName = ".runforge"

// App encapsulates the application's dependencies, configuration, and
// lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	cfg    *Config

	recipe     *config.Recipe
	recipePath string
	digest     string
	imageDir   string
}

// New is the constructor for the main application. Recipe loading and
// validation happen here; a broken recipe is a fatal startup error and
// panics, to be recovered by the caller with a clean exit message.
func New(outW io.Writer, cfg *Config, loader config.Loader) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	a := &App{
		outW:     outW,
		logger:   logger,
		cfg:      cfg,
		imageDir: cfg.ImageDir,
	}

	if cfg.RecipePath != "" {
		recipePath, err := fsutil.ResolveRecipePath(cfg.RecipePath)
		if err != nil {
			panic(err)
		}

		recipe, err := loader.Load(ctx, recipePath)
		if err != nil {
			panic(fmt.Errorf("failed to load recipe: %w", err))
		}
		if err := recipe.Validate(); err != nil {
			panic(fmt.Errorf("invalid recipe: %w", err))
		}

		digest, err := fileDigest(recipePath)
		if err != nil {
			panic(err)
		}

		a.recipe = recipe
		a.recipePath = recipePath
		a.digest = digest
		if a.imageDir == "" {
			a.imageDir = filepath.Join(filepath.Dir(recipePath), stateDirName, "image")
		}
		logger.Debug("Recipe loaded and validated.", "path", recipePath, "digest", digest, "imageDir", a.imageDir)
	}

	return a
}

// Recipe returns the loaded recipe. This is primarily for testing.
func (a *App) Recipe() *config.Recipe {
	return a.recipe
}

// ImageDir returns the resolved image directory.
func (a *App) ImageDir() string {
	return a.imageDir
}

// fileDigest returns the hex SHA-256 of a file's contents. Identical
// recipe inputs produce the same digest in the seal.
func fileDigest(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("digesting %s: %w", path, err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
