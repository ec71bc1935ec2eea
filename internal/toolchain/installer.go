package toolchain

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vk/runforge/internal/command"
	"github.com/vk/runforge/internal/config"
	"github.com/vk/runforge/internal/ctxlog"
	"github.com/vk/runforge/internal/image"
)

// Installer places the dependency manager into an image directory.
type Installer struct {
	Runner  command.Runner
	Fetcher *Fetcher
}

// NewInstaller creates an Installer using the production runner and
// fetcher.
func NewInstaller() *Installer {
	return &Installer{
		Runner:  command.ExecRunner{},
		Fetcher: NewFetcher(),
	}
}

// Ensure materializes the toolchain into <imageDir>/bin. With a URL the
// release artifact is downloaded and written as an executable named after
// the tool; otherwise the recipe's install command runs with the image bin
// directory on PATH. Any failure aborts the build.
func (i *Installer) Ensure(ctx context.Context, tc *config.Toolchain, imageDir string) error {
	logger := ctxlog.FromContext(ctx)
	binDir := image.BinDir(imageDir)
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating image bin directory: %w", err)
	}

	if tc.URL != "" {
		logger.Info("Downloading toolchain.", "name", tc.Name, "version", tc.Version, "url", tc.URL)
		body, err := i.Fetcher.Fetch(ctx, tc.URL, tc.Checksum)
		if err != nil {
			return fmt.Errorf("installing toolchain %q: %w", tc.Name, err)
		}
		dest := filepath.Join(binDir, tc.Name)
		if err := os.WriteFile(dest, body, 0o755); err != nil {
			return fmt.Errorf("writing toolchain binary: %w", err)
		}
		return nil
	}

	logger.Info("Installing toolchain.", "name", tc.Name, "argv", tc.Install)
	spec := command.Spec{
		Argv: tc.Install,
		Dir:  imageDir,
		Env:  []string{image.PathEnv(imageDir)},
	}
	if err := i.Runner.Run(ctx, spec); err != nil {
		return fmt.Errorf("installing toolchain %q: %w", tc.Name, err)
	}
	return nil
}
