package hclcfg

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/runforge/internal/config"
	"github.com/vk/runforge/internal/ctxlog"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL recipe loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses the recipe file at path and translates it into the
// format-agnostic model.
func (l *Loader) Load(ctx context.Context, path string) (*config.Recipe, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL recipe loader started.", "path", path)

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("recipe file not readable: %w", err)
	}

	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse recipe %s: %w", path, diags)
	}

	var root recipeRoot
	diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode recipe %s: %w", path, diags)
	}

	recipe, err := l.translate(ctx, &root)
	if err != nil {
		return nil, fmt.Errorf("invalid recipe %s: %w", path, err)
	}
	recipe.ApplyDefaults()

	logger.Debug("HCL recipe loaded.", "runtime", recipe.Runtime != nil, "toolchain", recipe.Toolchain != nil)
	return recipe, nil
}
