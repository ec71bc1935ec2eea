package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/vk/runforge/internal/command"
	"github.com/vk/runforge/internal/config"
	"github.com/vk/runforge/internal/ctxlog"
	"github.com/vk/runforge/internal/image"
	"github.com/vk/runforge/internal/toolchain"
)

// Build carries the state of one build through the pipeline.
type Build struct {
	// Recipe is the validated recipe driving the build.
	Recipe *config.Recipe
	// RecipeDigest is the hex SHA-256 of the recipe file, recorded into
	// the seal so identical inputs produce an identical pin.
	RecipeDigest string
	// ContextDir is the resolved source context directory.
	ContextDir string
	// ImageDir is the directory the image is assembled into. Callers
	// stage into a scratch directory and swap after a successful build.
	ImageDir string
	// Exclude lists directories the source copy must never descend into,
	// beyond ImageDir itself. When the context contains the image output
	// (the default context is the recipe directory), this keeps the build
	// from copying its own output into the workdir.
	Exclude []string

	// Runner executes build commands; Installer materializes the
	// toolchain. Both are swappable for tests.
	Runner    command.Runner
	Installer *toolchain.Installer

	// Output receives stdout/stderr of build commands. Nil inherits the
	// parent process streams.
	Output io.Writer

	state   State
	records []image.PhaseRecord
}

// Phase is a single build step. Each phase completes exactly one lifecycle
// state.
type Phase interface {
	Name() string
	Completes() State
	Run(ctx context.Context, b *Build) error
}

// Phases returns the build phases in execution order.
func Phases() []Phase {
	return []Phase{
		selectRuntime{},
		copySource{},
		installToolchain{},
		syncDependencies{},
		seal{},
	}
}

// Run drives the build through all phases in order. The first phase error
// aborts the run; there is no retry and no partially sealed image.
func Run(ctx context.Context, b *Build) error {
	return runPhases(ctx, b, Phases())
}

func runPhases(ctx context.Context, b *Build, phases []Phase) error {
	logger := ctxlog.FromContext(ctx)

	for _, phase := range phases {
		if err := ctx.Err(); err != nil {
			return err
		}

		phaseLogger := logger.With("phase", phase.Name())
		phaseLogger.Info("Build phase started.")
		start := time.Now()

		if err := phase.Run(ctxlog.WithLogger(ctx, phaseLogger), b); err != nil {
			phaseLogger.Error("Build phase failed.", "error", err, "state", b.state)
			return fmt.Errorf("phase %s failed: %w", phase.Name(), err)
		}
		if err := b.advance(phase.Completes()); err != nil {
			return err
		}
		b.records = append(b.records, image.PhaseRecord{
			Name:        phase.Name(),
			CompletedAt: time.Now(),
		})
		phaseLogger.Info("Build phase complete.", "state", b.state, "elapsed", time.Since(start))
	}

	return nil
}

// commandSpec builds a Spec for a build command run inside the image, with
// the image bin directory on PATH.
func (b *Build) commandSpec(argv []string, dir string) command.Spec {
	return command.Spec{
		Argv:   argv,
		Dir:    dir,
		Env:    []string{image.PathEnv(b.ImageDir)},
		Stdout: b.Output,
		Stderr: b.Output,
	}
}
