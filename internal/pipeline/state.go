package pipeline

import "fmt"

// State is a position in the build/run lifecycle. Build-time transitions
// are one-way and non-retryable; only the final transition to
// ProgramLaunched happens at run time, once per container-style
// invocation.
type State int

const (
	// Pending is the zero state before any phase has run.
	Pending State = iota
	// BaseImageSelected means the pinned runtime resolved and the image
	// directory exists.
	BaseImageSelected
	// SourceCopied means the project tree is inside the image workdir.
	SourceCopied
	// ToolInstalled means the dependency manager is materialized.
	ToolInstalled
	// DependenciesResolved means the declared dependency set synced.
	DependenciesResolved
	// ImageReady means the image is sealed and runnable.
	ImageReady
	// ProgramLaunched is entered by the launcher, never by the build.
	ProgramLaunched
)

// String returns the lifecycle name of the state.
func (s State) String() string {
	switch s {
	case Pending:
		return "PENDING"
	case BaseImageSelected:
		return "BASE_IMAGE_SELECTED"
	case SourceCopied:
		return "SOURCE_COPIED"
	case ToolInstalled:
		return "TOOL_INSTALLED"
	case DependenciesResolved:
		return "DEPENDENCIES_RESOLVED"
	case ImageReady:
		return "IMAGE_READY"
	case ProgramLaunched:
		return "PROGRAM_LAUNCHED"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// CanAdvanceTo reports whether next is the legal successor of s. There is
// no branching in the lifecycle: every state has exactly one successor.
func (s State) CanAdvanceTo(next State) bool {
	return next == s+1 && next <= ProgramLaunched
}

// advance moves the build to next, enforcing transition legality. An
// illegal transition is a programming error surfaced as an error rather
// than silently reordering the pipeline.
func (b *Build) advance(next State) error {
	if !b.state.CanAdvanceTo(next) {
		return fmt.Errorf("illegal lifecycle transition %s -> %s", b.state, next)
	}
	b.state = next
	return nil
}

// State returns the build's current lifecycle state.
func (b *Build) State() State {
	return b.state
}
