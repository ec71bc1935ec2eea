// Package image defines the on-disk layout of a built image directory and
// the seal record that marks it runnable. Only metadata needed at launch
// goes into the seal; everything build-only stays out of it.
package image

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// StateFileName is the seal record written as the final build phase. An
// image directory without it is not runnable.
const StateFileName = "state.json"

// binDirName holds toolchain binaries inside the image; it is prepended to
// PATH for every build command and for the launched program.
const binDirName = "bin"

// ErrNotSealed is returned when loading an image directory that was never
// sealed or whose build aborted before sealing.
var ErrNotSealed = errors.New("image is not sealed")

// RuntimePin records the base runtime the image was built against.
type RuntimePin struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// PhaseRecord marks the completion of one build phase.
type PhaseRecord struct {
	Name        string    `json:"name"`
	CompletedAt time.Time `json:"completed_at"`
}

// State is the seal record of a built image.
type State struct {
	RecipeDigest string        `json:"recipe_digest"`
	Runtime      RuntimePin    `json:"runtime"`
	Workdir      string        `json:"workdir"`
	Entrypoint   []string      `json:"entrypoint"`
	Phases       []PhaseRecord `json:"phases"`
	SealedAt     time.Time     `json:"sealed_at"`
}

// BinDir returns the toolchain binary directory of an image.
func BinDir(imageDir string) string {
	return filepath.Join(imageDir, binDirName)
}

// WorkDir returns the project working directory of an image.
func WorkDir(imageDir, workdir string) string {
	return filepath.Join(imageDir, workdir)
}

// PathEnv returns a PATH entry with the image bin directory prepended to
// the inherited PATH, suitable for command.Spec.Env.
func PathEnv(imageDir string) string {
	return "PATH=" + BinDir(imageDir) + string(os.PathListSeparator) + os.Getenv("PATH")
}

// Seal writes the state record into the image directory. It writes to a
// temporary file first and renames it, so a crash mid-write never leaves a
// half-sealed image behind.
func Seal(imageDir string, st *State) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding image state: %w", err)
	}

	tmp := filepath.Join(imageDir, StateFileName+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing image state: %w", err)
	}
	if err := os.Rename(tmp, filepath.Join(imageDir, StateFileName)); err != nil {
		return fmt.Errorf("sealing image: %w", err)
	}
	return nil
}

// Load reads the seal record of an image directory. ErrNotSealed is
// returned when the record is absent.
func Load(imageDir string) (*State, error) {
	data, err := os.ReadFile(filepath.Join(imageDir, StateFileName))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", imageDir, ErrNotSealed)
	}
	if err != nil {
		return nil, fmt.Errorf("reading image state: %w", err)
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("decoding image state: %w", err)
	}
	return &st, nil
}
