package hclcfg

import "github.com/hashicorp/hcl/v2"

// recipeRoot is the top-level structure of a recipe file. There is no
// remain body: a block the schema does not know is a decode error, the
// same way an unknown attribute is.
type recipeRoot struct {
	Runtime      *runtimeBlock      `hcl:"runtime,block"`
	Source       *sourceBlock       `hcl:"source,block"`
	Toolchain    *toolchainBlock    `hcl:"toolchain,block"`
	Dependencies *dependenciesBlock `hcl:"dependencies,block"`
	Entrypoint   *entrypointBlock   `hcl:"entrypoint,block"`
}

// runtimeBlock pins the base runtime, mirroring a FROM line with a version
// tag.
type runtimeBlock struct {
	Name    string `hcl:"name,label"`
	Version string `hcl:"version"`
}

// sourceBlock describes the project tree and how it is copied.
type sourceBlock struct {
	Context string         `hcl:"context,optional"`
	Workdir string         `hcl:"workdir,optional"`
	Ignore  hcl.Expression `hcl:"ignore,optional"`
}

// toolchainBlock describes the dependency manager to materialize.
type toolchainBlock struct {
	Name     string         `hcl:"name,label"`
	Version  string         `hcl:"version,optional"`
	URL      string         `hcl:"url,optional"`
	Checksum string         `hcl:"checksum,optional"`
	Install  hcl.Expression `hcl:"install,optional"`
}

// dependenciesBlock describes manifest and sync command.
type dependenciesBlock struct {
	Manifest string         `hcl:"manifest"`
	Sync     hcl.Expression `hcl:"sync"`
}

// entrypointBlock describes the runtime invocation.
type entrypointBlock struct {
	Command hcl.Expression `hcl:"command"`
	Args    hcl.Expression `hcl:"args,optional"`
}
