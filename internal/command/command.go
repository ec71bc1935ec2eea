// Package command abstracts the execution of external build commands so the
// pipeline can be exercised in tests without spawning real processes.
package command

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/vk/runforge/internal/ctxlog"
)

// Spec describes a single external command invocation.
type Spec struct {
	// Argv is the command and its arguments. Must not be empty.
	Argv []string
	// Dir is the working directory. Empty means the current directory.
	Dir string
	// Env holds extra KEY=VALUE entries appended to the inherited
	// environment.
	Env []string
	// Stdout and Stderr receive the command's output. Nil writers default
	// to the parent process streams.
	Stdout io.Writer
	Stderr io.Writer
}

// Runner executes external commands on behalf of the build pipeline.
type Runner interface {
	Run(ctx context.Context, spec Spec) error
}

// ExecRunner is the production Runner backed by os/exec.
type ExecRunner struct{}

// Run executes the command described by spec and blocks until it finishes.
// Any non-zero exit is returned as an error; the pipeline treats it as
// fatal.
func (ExecRunner) Run(ctx context.Context, spec Spec) error {
	if len(spec.Argv) == 0 {
		return fmt.Errorf("empty command")
	}

	logger := ctxlog.FromContext(ctx)
	logger.Debug("Running build command.", "argv", spec.Argv, "dir", spec.Dir)

	cmd := exec.CommandContext(ctx, spec.Argv[0], spec.Argv[1:]...)
	cmd.Dir = spec.Dir
	cmd.Env = append(os.Environ(), spec.Env...)
	cmd.Stdout = spec.Stdout
	cmd.Stderr = spec.Stderr
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("command %q: %w", spec.Argv[0], err)
	}
	return nil
}
