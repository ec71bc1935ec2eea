package pipeline

import (
	"context"
)

// installToolchain materializes the dependency manager into the image.
type installToolchain struct{}

func (installToolchain) Name() string { return "install-toolchain" }

func (installToolchain) Completes() State { return ToolInstalled }

func (installToolchain) Run(ctx context.Context, b *Build) error {
	return b.Installer.Ensure(ctx, b.Recipe.Toolchain, b.ImageDir)
}
