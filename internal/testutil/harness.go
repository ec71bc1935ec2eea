package testutil

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/runforge/internal/app"
	"github.com/vk/runforge/internal/hclcfg"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// Result holds the outcomes of a harness run.
type Result struct {
	LogOutput string
	Err       error
	App       *app.App
	// Root is the fixture directory holding the recipe and project tree.
	Root string
	// ImageDir is where the image was (or would have been) assembled.
	ImageDir string
}

// WriteFixture writes the given relative-path -> content files under a
// fresh temp directory and returns its path. Files ending in .sh are
// written executable.
func WriteFixture(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		mode := os.FileMode(0o644)
		if strings.HasSuffix(name, ".sh") {
			mode = 0o755
		}
		require.NoError(t, os.WriteFile(path, []byte(content), mode))
	}
	return root
}

// Run provides a standardized harness: it writes the recipe and project
// files into a temp directory, then executes the given command through the
// full app wiring. Startup panics are recovered into Result.Err, mirroring
// the process-level behavior.
func Run(t *testing.T, cmd string, recipeHCL string, project map[string]string) *Result {
	t.Helper()

	files := map[string]string{"runforge.hcl": recipeHCL}
	for name, content := range project {
		files[filepath.Join("src", name)] = content
	}
	root := WriteFixture(t, files)

	appConfig, err := app.NewConfig(app.Config{
		Command:    cmd,
		RecipePath: filepath.Join(root, "runforge.hcl"),
		LogLevel:   "debug",
		LogFormat:  "text",
	})
	require.NoError(t, err)

	logBuffer := &SafeBuffer{}
	result := &Result{
		Root:     root,
		ImageDir: filepath.Join(root, ".runforge", "image"),
	}

	var testApp *app.App
	var panicErr any
	func() {
		defer func() {
			if r := recover(); r != nil {
				panicErr = r
			}
		}()
		testApp = app.New(logBuffer, appConfig, hclcfg.NewLoader())
	}()

	if panicErr != nil {
		result.LogOutput = logBuffer.String()
		result.Err = fmt.Errorf("application startup panicked | %v", panicErr)
		return result
	}

	result.App = testApp
	result.Err = testApp.Run(context.Background())
	result.LogOutput = logBuffer.String()
	return result
}

// StubRecipe returns a recipe exercising the whole pipeline with shell
// stand-ins: the "runtime" is sh, the toolchain installs a fake tool into
// the image bin, and sync touches a marker in the workdir. entry is the
// script the entrypoint runs.
func StubRecipe(entry string) string {
	return `
runtime "sh" {
  version = "posix-1"
}

source {
  context = "src"
  workdir = "app"
}

toolchain "faketool" {
  version = "0.0.1"
  install = ["sh", "-c", "printf '#!/bin/sh\nexec \"$@\"\n' > bin/faketool && chmod +x bin/faketool"]
}

dependencies {
  manifest = "deps.txt"
  sync     = ["sh", "-c", "touch .synced"]
}

entrypoint {
  command = ["sh", "` + entry + `"]
}
`
}

// StubRecipeDefaults is StubRecipe without a source block: the context
// defaults to the recipe's own directory and the workdir to "app".
// Project files for this recipe belong next to the recipe, not under src/.
func StubRecipeDefaults(entry string) string {
	return `
runtime "sh" {
  version = "posix-1"
}

toolchain "faketool" {
  version = "0.0.1"
  install = ["sh", "-c", "printf '#!/bin/sh\nexec \"$@\"\n' > bin/faketool && chmod +x bin/faketool"]
}

dependencies {
  manifest = "deps.txt"
  sync     = ["sh", "-c", "touch .synced"]
}

entrypoint {
  command = ["sh", "` + entry + `"]
}
`
}
