package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vk/runforge/internal/ctxlog"
	"github.com/vk/runforge/internal/image"
)

// syncDependencies resolves the declared dependency set by running the
// recipe's sync command inside the image workdir. The declared manifest
// must already be in the copied tree; unresolvable constraints surface as
// a non-zero sync exit and abort the build with no partial environment.
type syncDependencies struct{}

func (syncDependencies) Name() string { return "sync-dependencies" }

func (syncDependencies) Completes() State { return DependenciesResolved }

func (syncDependencies) Run(ctx context.Context, b *Build) error {
	logger := ctxlog.FromContext(ctx)
	deps := b.Recipe.Dependencies
	workdir := image.WorkDir(b.ImageDir, b.Recipe.Source.Workdir)

	manifest := filepath.Join(workdir, deps.Manifest)
	if _, err := os.Stat(manifest); err != nil {
		return fmt.Errorf("dependency manifest %q missing from source tree: %w", deps.Manifest, err)
	}

	logger.Info("Resolving dependencies.", "manifest", deps.Manifest, "argv", deps.Sync)
	if err := b.Runner.Run(ctx, b.commandSpec(deps.Sync, workdir)); err != nil {
		return fmt.Errorf("dependency resolution failed: %w", err)
	}
	return nil
}
