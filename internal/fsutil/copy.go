package fsutil

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar"
)

// CopyTree copies the directory tree at src into dst, preserving file modes
// and skipping entries whose slash-separated path relative to src matches
// any of the ignore globs. dst is created if needed. The destination and
// any of the exclude directories are never walked into, so a dst (or an
// image directory) that lies inside src cannot be copied into itself. A
// missing or unreadable src is an error; the copy is not resumable and
// callers treat any failure as fatal.
func CopyTree(src, dst string, ignore []string, exclude ...string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("copy source: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("copy source %s is not a directory", src)
	}

	skipRoots, err := absAll(append([]string{dst}, exclude...))
	if err != nil {
		return err
	}

	return walkRegular(src, func(path string, d fs.DirEntry) error {
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return os.MkdirAll(dst, info.Mode().Perm())
		}

		absPath, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		for _, root := range skipRoots {
			if isWithin(root, absPath) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}

		ignored, err := matchesAny(ignore, filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		if ignored {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		target := filepath.Join(dst, rel)
		entryInfo, err := d.Info()
		if err != nil {
			return err
		}
		if d.IsDir() {
			return os.MkdirAll(target, entryInfo.Mode().Perm())
		}
		return copyFile(path, target, entryInfo.Mode().Perm())
	})
}

// absAll resolves every path to its absolute form.
func absAll(paths []string) ([]string, error) {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, err
		}
		out = append(out, abs)
	}
	return out, nil
}

// isWithin reports whether child equals parent or lies beneath it. Both
// paths must be absolute and lexically clean.
func isWithin(parent, child string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// matchesAny reports whether the relative path matches any ignore glob. A
// directory glob also covers everything beneath it through SkipDir in the
// caller.
func matchesAny(patterns []string, rel string) (bool, error) {
	for _, pattern := range patterns {
		ok, err := doublestar.Match(pattern, rel)
		if err != nil {
			return false, fmt.Errorf("invalid ignore pattern %q: %w", pattern, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func copyFile(src, dst string, perm fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying %s: %w", src, err)
	}
	return out.Close()
}
