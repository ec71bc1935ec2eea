package pipeline

import (
	"context"
	"fmt"

	"github.com/vk/runforge/internal/ctxlog"
	"github.com/vk/runforge/internal/fsutil"
	"github.com/vk/runforge/internal/image"
)

// copySource copies the full project tree into the image workdir. A
// missing or unreadable context aborts the build; the running program
// never observes a partial copy.
type copySource struct{}

func (copySource) Name() string { return "copy-source" }

func (copySource) Completes() State { return SourceCopied }

func (copySource) Run(ctx context.Context, b *Build) error {
	logger := ctxlog.FromContext(ctx)
	src := b.Recipe.Source

	dst := image.WorkDir(b.ImageDir, src.Workdir)
	logger.Debug("Copying source tree.", "context", b.ContextDir, "workdir", dst, "ignore", src.Ignore)

	// The image under assembly lives inside the context when the context
	// defaults to the recipe directory; excluding it keeps the walk from
	// recursing into its own output.
	exclude := append([]string{b.ImageDir}, b.Exclude...)
	if err := fsutil.CopyTree(b.ContextDir, dst, src.Ignore, exclude...); err != nil {
		return fmt.Errorf("copying source tree: %w", err)
	}
	return nil
}
