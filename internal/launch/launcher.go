// Package launch starts a sealed image's entrypoint. Every launch gets an
// independent instance copy of the image, the way each container instance
// gets its own filesystem: two runs of the same image never observe each
// other's writes. The launcher performs exactly one invocation per call,
// passes the sealed arguments verbatim, forwards termination signals, and
// reports the program's exit code unmodified.
package launch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/vk/runforge/internal/ctxlog"
	"github.com/vk/runforge/internal/fsutil"
	"github.com/vk/runforge/internal/image"
)

// Launcher runs the entrypoint of one sealed image directory.
type Launcher struct {
	ImageDir string

	// Stdin/Stdout/Stderr are the streams handed to the program. Nil
	// defaults to the parent process streams.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// forwardSignals can be disabled in tests that drive the child
	// directly.
	forwardSignals bool
}

// New creates a Launcher for a sealed image with signal forwarding on.
func New(imageDir string) *Launcher {
	return &Launcher{ImageDir: imageDir, forwardSignals: true}
}

// Launch loads the image seal, materializes a fresh instance copy, and
// executes the entrypoint, blocking for the lifetime of the program. The
// returned exit code is the program's own; err is non-nil only when the
// program could not be started at all.
func (l *Launcher) Launch(ctx context.Context) (int, error) {
	st, err := image.Load(l.ImageDir)
	if err != nil {
		return 0, err
	}
	if len(st.Entrypoint) == 0 {
		return 0, fmt.Errorf("image %s has no entrypoint", l.ImageDir)
	}

	logger := ctxlog.FromContext(ctx)

	instanceDir, err := os.MkdirTemp("", "runforge-instance-*")
	if err != nil {
		return 0, fmt.Errorf("creating instance directory: %w", err)
	}
	defer os.RemoveAll(instanceDir)
	if err := fsutil.CopyTree(l.ImageDir, instanceDir, nil); err != nil {
		return 0, fmt.Errorf("materializing instance: %w", err)
	}

	logger.Info("Launching program.", "argv", st.Entrypoint, "image", l.ImageDir, "instance", instanceDir)

	cmd := exec.Command(st.Entrypoint[0], st.Entrypoint[1:]...)
	cmd.Dir = image.WorkDir(instanceDir, st.Workdir)
	cmd.Env = append(os.Environ(), image.PathEnv(instanceDir))
	cmd.Stdin = l.Stdin
	cmd.Stdout = l.Stdout
	cmd.Stderr = l.Stderr
	if cmd.Stdin == nil {
		cmd.Stdin = os.Stdin
	}
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("starting %q: %w", st.Entrypoint[0], err)
	}

	if l.forwardSignals {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		defer func() {
			signal.Stop(sigCh)
			close(sigCh)
		}()
		go func() {
			for sig := range sigCh {
				logger.Debug("Forwarding signal to program.", "signal", sig)
				_ = cmd.Process.Signal(sig)
			}
		}()
	}

	err = cmd.Wait()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// Exit code passthrough: the launcher neither interprets nor
		// rewrites the program's exit status. A signal death has no exit
		// code, so it maps to the shell convention of 128+signal.
		code := exitErr.ExitCode()
		if code == -1 {
			if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
				code = 128 + int(ws.Signal())
			}
		}
		return code, nil
	}
	if err != nil {
		return 0, fmt.Errorf("waiting for %q: %w", st.Entrypoint[0], err)
	}
	return 0, nil
}
