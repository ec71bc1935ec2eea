package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeTree writes relative-path -> content files under root.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func TestCopyTree_CopiesFullTree(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "image", "app")
	writeTree(t, src, map[string]string{
		"main.py":            "print('hi')",
		"pyproject.toml":     "[project]",
		"pkg/util.py":        "x = 1",
		"pkg/deep/leaf.py":   "y = 2",
		"prompts/agent.yaml": "role: interviewer",
	})

	require.NoError(t, CopyTree(src, dst, nil))

	for _, name := range []string{"main.py", "pyproject.toml", "pkg/util.py", "pkg/deep/leaf.py", "prompts/agent.yaml"} {
		got, err := os.ReadFile(filepath.Join(dst, name))
		require.NoError(t, err, "expected %s in the copy", name)
		want, err := os.ReadFile(filepath.Join(src, name))
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestCopyTree_IgnoreGlobs(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "app")
	writeTree(t, src, map[string]string{
		"main.py":                  "print('hi')",
		".git/HEAD":                "ref: refs/heads/main",
		".git/objects/ab/cd":       "blob",
		"pkg/__pycache__/m.pyc":    "bytecode",
		"pkg/util.py":              "x = 1",
		"notes.log":                "scratch",
		"deep/nested/trace.log":    "scratch",
		"deep/nested/keepme.py":    "z = 3",
	})

	ignore := []string{".git", "**/__pycache__", "**/*.log"}
	require.NoError(t, CopyTree(src, dst, ignore))

	for _, name := range []string{"main.py", "pkg/util.py", "deep/nested/keepme.py"} {
		_, err := os.Stat(filepath.Join(dst, name))
		require.NoError(t, err, "expected %s in the copy", name)
	}
	for _, name := range []string{".git/HEAD", ".git/objects/ab/cd", "pkg/__pycache__/m.pyc", "notes.log", "deep/nested/trace.log"} {
		_, err := os.Stat(filepath.Join(dst, name))
		require.True(t, os.IsNotExist(err), "expected %s to be ignored", name)
	}
}

func TestCopyTree_DestinationInsideSourceIsNotCopied(t *testing.T) {
	t.Parallel()

	// A destination nested in the source must not be walked into, or the
	// copy would recurse into its own output until path length runs out.
	src := t.TempDir()
	dst := filepath.Join(src, "out", "app")
	writeTree(t, src, map[string]string{
		"main.py":     "print('hi')",
		"pkg/util.py": "x = 1",
	})

	require.NoError(t, CopyTree(src, dst, nil))

	require.FileExists(t, filepath.Join(dst, "main.py"))
	require.FileExists(t, filepath.Join(dst, "pkg", "util.py"))
	_, err := os.Stat(filepath.Join(dst, "out", "app"))
	require.True(t, os.IsNotExist(err), "the copy must not contain its own destination")
}

func TestCopyTree_ExcludedDirectoriesAreSkipped(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "app")
	writeTree(t, src, map[string]string{
		"main.py":               "print('hi')",
		".runforge/image/state": "sealed",
		"keep/file.py":          "y = 2",
	})

	require.NoError(t, CopyTree(src, dst, nil, filepath.Join(src, ".runforge")))

	require.FileExists(t, filepath.Join(dst, "main.py"))
	require.FileExists(t, filepath.Join(dst, "keep", "file.py"))
	_, err := os.Stat(filepath.Join(dst, ".runforge"))
	require.True(t, os.IsNotExist(err), "excluded directory must not appear in the copy")
}

func TestCopyTree_PreservesExecutableBit(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "app")
	require.NoError(t, os.WriteFile(filepath.Join(src, "run.sh"), []byte("#!/bin/sh\n"), 0o755))

	require.NoError(t, CopyTree(src, dst, nil))

	info, err := os.Stat(filepath.Join(dst, "run.sh"))
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o755), info.Mode().Perm())
}

func TestCopyTree_MissingSourceIsFatal(t *testing.T) {
	t.Parallel()

	err := CopyTree(filepath.Join(t.TempDir(), "nope"), t.TempDir(), nil)
	require.Error(t, err)
}

func TestCopyTree_SourceMustBeDirectory(t *testing.T) {
	t.Parallel()

	src := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0o644))

	err := CopyTree(src, t.TempDir(), nil)
	require.ErrorContains(t, err, "not a directory")
}

func TestCopyTree_InvalidIgnorePattern(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	writeTree(t, src, map[string]string{"main.py": "x"})

	err := CopyTree(src, filepath.Join(t.TempDir(), "app"), []string{"[invalid"})
	require.ErrorContains(t, err, "invalid ignore pattern")
}
