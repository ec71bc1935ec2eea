package hclcfg

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/runforge/internal/config"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// translate converts the decoded HCL schema into the agnostic recipe model.
func (l *Loader) translate(ctx context.Context, root *recipeRoot) (*config.Recipe, error) {
	recipe := &config.Recipe{}

	if root.Runtime != nil {
		recipe.Runtime = &config.Runtime{
			Name:    root.Runtime.Name,
			Version: root.Runtime.Version,
		}
	}

	if root.Source != nil {
		ignore, err := stringSlice(root.Source.Ignore, "source.ignore")
		if err != nil {
			return nil, err
		}
		recipe.Source = &config.Source{
			Context: root.Source.Context,
			Workdir: root.Source.Workdir,
			Ignore:  ignore,
		}
	}

	if root.Toolchain != nil {
		install, err := stringSlice(root.Toolchain.Install, "toolchain.install")
		if err != nil {
			return nil, err
		}
		recipe.Toolchain = &config.Toolchain{
			Name:     root.Toolchain.Name,
			Version:  root.Toolchain.Version,
			URL:      root.Toolchain.URL,
			Checksum: root.Toolchain.Checksum,
			Install:  install,
		}
	}

	if root.Dependencies != nil {
		sync, err := stringSlice(root.Dependencies.Sync, "dependencies.sync")
		if err != nil {
			return nil, err
		}
		recipe.Dependencies = &config.Dependencies{
			Manifest: root.Dependencies.Manifest,
			Sync:     sync,
		}
	}

	if root.Entrypoint != nil {
		command, err := stringSlice(root.Entrypoint.Command, "entrypoint.command")
		if err != nil {
			return nil, err
		}
		args, err := stringSlice(root.Entrypoint.Args, "entrypoint.args")
		if err != nil {
			return nil, err
		}
		recipe.Entrypoint = &config.Entrypoint{
			Command: command,
			Args:    args,
		}
	}

	return recipe, nil
}

// stringSlice evaluates an HCL expression into a list of strings. A nil or
// null expression yields a nil slice so that defaults can apply later.
func stringSlice(expr hcl.Expression, attr string) ([]string, error) {
	if expr == nil {
		return nil, nil
	}

	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to evaluate %s: %w", attr, diags)
	}
	if val.IsNull() {
		return nil, nil
	}

	converted, err := convert.Convert(val, cty.List(cty.String))
	if err != nil {
		return nil, fmt.Errorf("%s must be a list of strings: %w", attr, err)
	}

	var out []string
	for it := converted.ElementIterator(); it.Next(); {
		_, elem := it.Element()
		if elem.IsNull() {
			return nil, fmt.Errorf("%s must not contain null elements", attr)
		}
		out = append(out, elem.AsString())
	}
	return out, nil
}
