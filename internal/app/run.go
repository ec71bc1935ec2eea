package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vk/runforge/internal/command"
	"github.com/vk/runforge/internal/ctxlog"
	"github.com/vk/runforge/internal/launch"
	"github.com/vk/runforge/internal/pipeline"
	"github.com/vk/runforge/internal/toolchain"
)

// ProgramExit carries the launched program's exit code out of the
// application unmodified. It is not a launcher failure.
type ProgramExit struct {
	Code int
}

// Error implements the error interface for ProgramExit.
func (e *ProgramExit) Error() string {
	return fmt.Sprintf("program exited with code %d", e.Code)
}

// Run executes the requested command. For `run` and `up`, a non-zero
// program exit surfaces as *ProgramExit so the process can pass it
// through.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "command", a.cfg.Command)

	switch a.cfg.Command {
	case CommandBuild:
		return a.Build(ctx)
	case CommandRun:
		return a.launch(ctx)
	case CommandUp:
		if err := a.Build(ctx); err != nil {
			return err
		}
		return a.launch(ctx)
	default:
		// NewConfig rejects unknown commands before an App exists.
		return fmt.Errorf("unknown command %q", a.cfg.Command)
	}
}

// Build drives the pipeline into a staging directory and swaps it over the
// image directory only after sealing, so a failed rebuild never destroys a
// previously built image.
func (a *App) Build(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	staging := a.imageDir + ".staging"
	if err := os.RemoveAll(staging); err != nil {
		return fmt.Errorf("clearing staging directory: %w", err)
	}
	defer os.RemoveAll(staging)

	installer := toolchain.NewInstaller()
	defer installer.Fetcher.Close()

	build := &pipeline.Build{
		Recipe:       a.recipe,
		RecipeDigest: a.digest,
		ContextDir:   a.contextDir(),
		ImageDir:     staging,
		Exclude:      []string{a.imageDir, filepath.Join(filepath.Dir(a.recipePath), stateDirName)},
		Runner:       command.ExecRunner{},
		Installer:    installer,
		Output:       a.outW,
	}

	a.logger.Info("Build started.", "recipe", a.recipePath, "image", a.imageDir)
	if err := pipeline.Run(ctx, build); err != nil {
		return fmt.Errorf("build failed in state %s: %w", build.State(), err)
	}

	if err := a.promote(staging); err != nil {
		return err
	}

	a.logger.Info("Build finished.", "state", build.State(), "image", a.imageDir)
	return nil
}

// promote swaps the staged image over the image directory. The previous
// image is moved aside first and removed only after the staged image is in
// place, so a sealed image exists at every point of a successful or failed
// swap.
func (a *App) promote(staging string) error {
	if err := os.MkdirAll(filepath.Dir(a.imageDir), 0o755); err != nil {
		return fmt.Errorf("creating image parent directory: %w", err)
	}

	previous := a.imageDir + ".previous"
	if err := os.RemoveAll(previous); err != nil {
		return fmt.Errorf("clearing retired image: %w", err)
	}

	moved := false
	if _, err := os.Stat(a.imageDir); err == nil {
		if err := os.Rename(a.imageDir, previous); err != nil {
			return fmt.Errorf("retiring previous image: %w", err)
		}
		moved = true
	}

	if err := os.Rename(staging, a.imageDir); err != nil {
		if moved {
			_ = os.Rename(previous, a.imageDir)
		}
		return fmt.Errorf("promoting staged image: %w", err)
	}

	if err := os.RemoveAll(previous); err != nil {
		return fmt.Errorf("removing retired image: %w", err)
	}
	return nil
}

// launch starts the sealed image's entrypoint and blocks until it exits.
func (a *App) launch(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	code, err := launch.New(a.imageDir).Launch(ctx)
	if err != nil {
		return fmt.Errorf("launch failed: %w", err)
	}
	if code != 0 {
		return &ProgramExit{Code: code}
	}
	return nil
}

// contextDir resolves the source context against the recipe's directory.
func (a *App) contextDir() string {
	dir := a.recipe.Source.Context
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(filepath.Dir(a.recipePath), dir)
}
