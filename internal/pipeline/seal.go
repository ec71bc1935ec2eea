package pipeline

import (
	"context"
	"slices"
	"time"

	"github.com/vk/runforge/internal/ctxlog"
	"github.com/vk/runforge/internal/image"
)

// seal writes the image state record, the marker that every earlier phase
// completed. An aborted build never reaches this phase, so a failed build
// yields no runnable image.
type seal struct{}

func (seal) Name() string { return "seal" }

func (seal) Completes() State { return ImageReady }

func (seal) Run(ctx context.Context, b *Build) error {
	logger := ctxlog.FromContext(ctx)

	entrypoint := append(slices.Clone(b.Recipe.Entrypoint.Command), b.Recipe.Entrypoint.Args...)
	now := time.Now()
	st := &image.State{
		RecipeDigest: b.RecipeDigest,
		Runtime: image.RuntimePin{
			Name:    b.Recipe.Runtime.Name,
			Version: b.Recipe.Runtime.Version,
		},
		Workdir:    b.Recipe.Source.Workdir,
		Entrypoint: entrypoint,
		Phases: append(slices.Clone(b.records), image.PhaseRecord{
			Name:        seal{}.Name(),
			CompletedAt: now,
		}),
		SealedAt: now,
	}

	if err := image.Seal(b.ImageDir, st); err != nil {
		return err
	}
	logger.Info("Image sealed.", "entrypoint", entrypoint, "digest", b.RecipeDigest)
	return nil
}
