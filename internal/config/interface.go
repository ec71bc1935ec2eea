package config

import "context"

// Loader is the interface for a format-specific recipe loader.
type Loader interface {
	// Load reads the recipe at the given path and translates it into the
	// format-agnostic model. Defaults are applied but the recipe is not
	// validated; callers run Recipe.Validate separately.
	Load(ctx context.Context, path string) (*Recipe, error)
}
