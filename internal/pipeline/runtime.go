package pipeline

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/vk/runforge/internal/ctxlog"
)

// selectRuntime verifies the pinned base runtime is resolvable and creates
// the image directory. Without a container runtime the pin is
// record-and-verify: the named binary must exist, and the version tag is
// carried into the seal.
type selectRuntime struct{}

func (selectRuntime) Name() string { return "select-runtime" }

func (selectRuntime) Completes() State { return BaseImageSelected }

func (selectRuntime) Run(ctx context.Context, b *Build) error {
	logger := ctxlog.FromContext(ctx)
	rt := b.Recipe.Runtime

	path, err := exec.LookPath(rt.Name)
	if err != nil {
		return fmt.Errorf("pinned runtime %q not found: %w", rt.Name, err)
	}
	logger.Debug("Runtime resolved.", "name", rt.Name, "version", rt.Version, "path", path)

	if err := os.MkdirAll(b.ImageDir, 0o755); err != nil {
		return fmt.Errorf("creating image directory: %w", err)
	}
	return nil
}
