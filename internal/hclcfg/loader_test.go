package hclcfg

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/vk/runforge/internal/config"
)

// writeRecipe writes content to a recipe file in a temp dir and returns
// its path.
func writeRecipe(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "runforge.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FullRecipe(t *testing.T) {
	t.Parallel()

	path := writeRecipe(t, `
runtime "python" {
  version = "3.11-slim"
}

source {
  context = "."
  workdir = "app"
  ignore  = [".git/**", "**/__pycache__/**"]
}

toolchain "uv" {
  version  = "0.4.18"
  url      = "https://example.com/uv-0.4.18"
  checksum = "deadbeef"
}

dependencies {
  manifest = "pyproject.toml"
  sync     = ["uv", "sync", "--frozen"]
}

entrypoint {
  command = ["uv", "run", "main.py"]
}
`)

	recipe, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)

	want := &config.Recipe{
		Runtime: &config.Runtime{Name: "python", Version: "3.11-slim"},
		Source: &config.Source{
			Context: ".",
			Workdir: "app",
			Ignore:  []string{".git/**", "**/__pycache__/**"},
		},
		Toolchain: &config.Toolchain{
			Name:     "uv",
			Version:  "0.4.18",
			URL:      "https://example.com/uv-0.4.18",
			Checksum: "deadbeef",
		},
		Dependencies: &config.Dependencies{
			Manifest: "pyproject.toml",
			Sync:     []string{"uv", "sync", "--frozen"},
		},
		Entrypoint: &config.Entrypoint{
			Command: []string{"uv", "run", "main.py"},
			// The launch argument defaults to the literal the original
			// descriptor passes.
			Args: []string{"start"},
		},
	}
	if diff := cmp.Diff(want, recipe); diff != "" {
		t.Errorf("recipe mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_DefaultsApplied(t *testing.T) {
	t.Parallel()

	path := writeRecipe(t, `
runtime "python" {
  version = "3.12"
}

toolchain "uv" {
  install = ["pip", "install", "uv"]
}

dependencies {
  manifest = "requirements.txt"
  sync     = ["uv", "sync"]
}

entrypoint {
  command = ["uv", "run", "main.py"]
}
`)

	recipe, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)
	require.NoError(t, recipe.Validate())

	require.Equal(t, ".", recipe.Source.Context)
	require.Equal(t, "app", recipe.Source.Workdir)
	require.Empty(t, recipe.Source.Ignore)
	require.Equal(t, []string{"start"}, recipe.Entrypoint.Args)
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name: "invalid syntax",
			content: `
runtime "python" {
  version = "3.12"
`,
			wantErr: "failed to parse",
		},
		{
			name: "sync is not a list of strings",
			content: `
runtime "python" {
  version = "3.12"
}
dependencies {
  manifest = "pyproject.toml"
  sync     = 42
}
`,
			wantErr: "dependencies.sync must be a list of strings",
		},
		{
			name: "unknown attribute",
			content: `
runtime "python" {
  version  = "3.12"
  flavour  = "mint"
}
`,
			wantErr: "failed to decode",
		},
		{
			name: "unknown top-level block",
			content: `
runtime "python" {
  version = "3.12"
}

volumes {
  data = "/var/data"
}
`,
			wantErr: "failed to decode",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			path := writeRecipe(t, tc.content)
			_, err := NewLoader().Load(context.Background(), path)
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := NewLoader().Load(context.Background(), filepath.Join(t.TempDir(), "absent.hcl"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "not readable")
}
