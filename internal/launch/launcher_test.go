package launch

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vk/runforge/internal/image"
)

// sealedImage assembles a runnable image directory by hand: a workdir with
// the given entry script, an empty bin dir, and a seal record whose
// entrypoint runs the script with the literal start argument.
func sealedImage(t *testing.T, script string) string {
	t.Helper()

	imageDir := t.TempDir()
	workdir := image.WorkDir(imageDir, "app")
	require.NoError(t, os.MkdirAll(workdir, 0o755))
	require.NoError(t, os.MkdirAll(image.BinDir(imageDir), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(workdir, "main.sh"), []byte(script), 0o755))

	st := &image.State{
		RecipeDigest: "digest",
		Runtime:      image.RuntimePin{Name: "sh", Version: "posix-1"},
		Workdir:      "app",
		Entrypoint:   []string{"sh", "main.sh", "start"},
		SealedAt:     time.Now(),
	}
	require.NoError(t, image.Seal(imageDir, st))
	return imageDir
}

// testLauncher disables signal forwarding so parallel tests don't compete
// for process signal handlers.
func testLauncher(imageDir string, out *bytes.Buffer) *Launcher {
	return &Launcher{ImageDir: imageDir, Stdout: out, Stderr: out}
}

func TestLaunch_PassesStartArgument(t *testing.T) {
	t.Parallel()

	imageDir := sealedImage(t, "#!/bin/sh\necho \"args:$@\"\nexit 0\n")
	var out bytes.Buffer

	code, err := testLauncher(imageDir, &out).Launch(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, code)

	// Exactly the single literal argument, nothing appended.
	require.Equal(t, "args:start\n", out.String())
}

func TestLaunch_ExitCodePassthrough(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		script   string
		wantCode int
	}{
		{name: "clean exit", script: "#!/bin/sh\nexit 0\n", wantCode: 0},
		{name: "failure exit", script: "#!/bin/sh\nexit 1\n", wantCode: 1},
		{name: "arbitrary exit", script: "#!/bin/sh\nexit 42\n", wantCode: 42},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			imageDir := sealedImage(t, tc.script)
			var out bytes.Buffer

			code, err := testLauncher(imageDir, &out).Launch(context.Background())
			require.NoError(t, err)
			require.Equal(t, tc.wantCode, code)
		})
	}
}

func TestLaunch_SignalDeathMapsToShellConvention(t *testing.T) {
	t.Parallel()

	// A program killed by a signal has no exit code of its own; the
	// launcher reports 128+signal the way a shell would.
	imageDir := sealedImage(t, "#!/bin/sh\nkill -TERM $$\n")
	var out bytes.Buffer

	code, err := testLauncher(imageDir, &out).Launch(context.Background())
	require.NoError(t, err)
	require.Equal(t, 128+int(syscall.SIGTERM), code)
}

func TestLaunch_RunsInInstanceWorkdir(t *testing.T) {
	t.Parallel()

	imageDir := sealedImage(t, "#!/bin/sh\npwd\n")
	var out bytes.Buffer

	code, err := testLauncher(imageDir, &out).Launch(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, code)

	// The program runs inside an instance copy, not the sealed image.
	got := string(bytes.TrimSpace(out.Bytes()))
	require.Equal(t, "app", filepath.Base(got))
	require.NotEqual(t, image.WorkDir(imageDir, "app"), got)
}

func TestLaunch_ImageBinOnPath(t *testing.T) {
	t.Parallel()

	imageDir := sealedImage(t, "#!/bin/sh\nfaketool\n")
	require.NoError(t, os.WriteFile(
		filepath.Join(image.BinDir(imageDir), "faketool"),
		[]byte("#!/bin/sh\necho tool-found\n"), 0o755))
	var out bytes.Buffer

	code, err := testLauncher(imageDir, &out).Launch(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, code)
	require.Equal(t, "tool-found\n", out.String())
}

func TestLaunch_TwoRunsShareNoFilesystemMutation(t *testing.T) {
	t.Parallel()

	// Each run appends to a file in its workdir. Because every launch
	// materializes a fresh instance copy, the second run must not see the
	// first run's write.
	imageDir := sealedImage(t, "#!/bin/sh\necho ran >> runs.txt\nwc -l < runs.txt | tr -d ' '\n")

	var first, second bytes.Buffer
	code, err := testLauncher(imageDir, &first).Launch(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, code)

	code, err = testLauncher(imageDir, &second).Launch(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, code)

	require.Equal(t, "1\n", first.String())
	require.Equal(t, "1\n", second.String())

	// The sealed image itself stays pristine.
	_, statErr := os.Stat(filepath.Join(image.WorkDir(imageDir, "app"), "runs.txt"))
	require.True(t, os.IsNotExist(statErr))
}

func TestLaunch_UnsealedImage(t *testing.T) {
	t.Parallel()

	_, err := New(t.TempDir()).Launch(context.Background())
	require.ErrorIs(t, err, image.ErrNotSealed)
}

func TestLaunch_MissingProgram(t *testing.T) {
	t.Parallel()

	imageDir := t.TempDir()
	require.NoError(t, os.MkdirAll(image.WorkDir(imageDir, "app"), 0o755))
	st := &image.State{
		Workdir:    "app",
		Entrypoint: []string{"no-such-binary-anywhere", "start"},
		SealedAt:   time.Now(),
	}
	require.NoError(t, image.Seal(imageDir, st))

	var out bytes.Buffer
	_, err := testLauncher(imageDir, &out).Launch(context.Background())
	require.ErrorContains(t, err, "starting")
}
