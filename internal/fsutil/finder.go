// Package fsutil provides file system utilities: recipe discovery and
// filtered copying of a project tree.
package fsutil

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultRecipeName is the recipe file looked up when a directory is given
// instead of a file.
const DefaultRecipeName = "runforge.hcl"

// ResolveRecipePath resolves a user-supplied path to a concrete recipe file.
// A file path is returned as-is; for a directory the default recipe name is
// tried first, then a single *.hcl file is accepted. Ambiguity is an error.
func ResolveRecipePath(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("recipe path: %w", err)
	}
	if !info.IsDir() {
		return path, nil
	}

	candidate := filepath.Join(path, DefaultRecipeName)
	if _, err := os.Stat(candidate); err == nil {
		return candidate, nil
	}

	matches, err := findFilesByExtension(path, ".hcl")
	if err != nil {
		return "", err
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no recipe file found in %s", path)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("multiple .hcl files in %s, pass the recipe explicitly", path)
	}
}

// findFilesByExtension searches the given root path, non-recursively, for
// all files ending with the specified extension.
func findFilesByExtension(rootPath string, extension string) ([]string, error) {
	entries, err := os.ReadDir(rootPath)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), extension) {
			files = append(files, filepath.Join(rootPath, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// walkRegular walks root calling fn for every directory and regular file.
// Other entry types (sockets, devices, symlinks) are skipped.
func walkRegular(root string, fn func(path string, d fs.DirEntry) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && !d.Type().IsRegular() {
			return nil
		}
		return fn(path, d)
	})
}
