package config

import (
	"errors"
	"fmt"
)

// DefaultLaunchArg is the single argument passed to the entrypoint when the
// recipe does not override it.
const DefaultLaunchArg = "start"

// ApplyDefaults fills in the optional parts of a recipe. It is called by
// loaders after translation and is idempotent.
func (r *Recipe) ApplyDefaults() {
	if r.Source == nil {
		r.Source = &Source{}
	}
	if r.Source.Context == "" {
		r.Source.Context = "."
	}
	if r.Source.Workdir == "" {
		r.Source.Workdir = "app"
	}
	if r.Entrypoint != nil && len(r.Entrypoint.Args) == 0 {
		r.Entrypoint.Args = []string{DefaultLaunchArg}
	}
}

// Validate checks the structural integrity of a loaded recipe. Any violation
// is a fatal configuration error; the build never starts on an invalid
// recipe.
func (r *Recipe) Validate() error {
	var errs []error

	if r.Runtime == nil {
		errs = append(errs, errors.New("recipe must declare a runtime block"))
	} else {
		if r.Runtime.Name == "" {
			errs = append(errs, errors.New("runtime.name must not be empty"))
		}
		if r.Runtime.Version == "" {
			errs = append(errs, errors.New("runtime.version must pin a version tag"))
		}
	}

	if r.Toolchain == nil {
		errs = append(errs, errors.New("recipe must declare a toolchain block"))
	} else {
		if r.Toolchain.Name == "" {
			errs = append(errs, errors.New("toolchain.name must not be empty"))
		}
		hasURL := r.Toolchain.URL != ""
		hasInstall := len(r.Toolchain.Install) > 0
		if hasURL == hasInstall {
			errs = append(errs, fmt.Errorf("toolchain %q must declare exactly one of url or install", r.Toolchain.Name))
		}
	}

	if r.Dependencies == nil {
		errs = append(errs, errors.New("recipe must declare a dependencies block"))
	} else {
		if r.Dependencies.Manifest == "" {
			errs = append(errs, errors.New("dependencies.manifest must not be empty"))
		}
		if len(r.Dependencies.Sync) == 0 {
			errs = append(errs, errors.New("dependencies.sync must not be empty"))
		}
	}

	if r.Entrypoint == nil {
		errs = append(errs, errors.New("recipe must declare an entrypoint block"))
	} else if len(r.Entrypoint.Command) == 0 {
		errs = append(errs, errors.New("entrypoint.command must not be empty"))
	}

	return errors.Join(errs...)
}
