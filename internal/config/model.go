package config

// Recipe is the unified, format-agnostic representation of a build-and-launch
// recipe: which runtime the image targets, where the source tree lives, how
// the dependency manager is materialized, how dependencies are resolved, and
// what the image runs on start.
type Recipe struct {
	Runtime      *Runtime
	Source       *Source
	Toolchain    *Toolchain
	Dependencies *Dependencies
	Entrypoint   *Entrypoint
}

// Runtime pins the base runtime the image is built against. The binary named
// here must be resolvable at build time and the version tag is recorded into
// the sealed image.
type Runtime struct {
	Name    string
	Version string
}

// Source describes the project tree copied into the image.
type Source struct {
	// Context is the directory holding the project tree. Relative paths are
	// resolved against the recipe file's directory.
	Context string
	// Workdir is the directory name the tree is copied to inside the image,
	// and the working directory of every build command and the entrypoint.
	Workdir string
	// Ignore lists doublestar globs excluded from the copy.
	Ignore []string
}

// Toolchain describes the dependency manager. Exactly one of URL or Install
// must be set: URL downloads a single-binary release into the image, Install
// runs an arbitrary install command.
type Toolchain struct {
	Name    string
	Version string
	// URL of a release artifact to download into <image>/bin/<Name>.
	URL string
	// Checksum is an optional hex-encoded SHA-256 of the artifact.
	Checksum string
	// Install is an argv run at build time to materialize the tool.
	Install []string
}

// Dependencies describes how the declared dependency set is resolved.
type Dependencies struct {
	// Manifest is the dependency manifest file, relative to the workdir. It
	// must exist in the copied tree before the sync command runs.
	Manifest string
	// Sync is the argv that materializes the dependency set, run inside the
	// image workdir.
	Sync []string
}

// Entrypoint describes the single runtime invocation of the image.
type Entrypoint struct {
	// Command is the argv prefix, e.g. ["uv", "run", "main.py"].
	Command []string
	// Args are appended verbatim on launch. Defaults to ["start"].
	Args []string
}
