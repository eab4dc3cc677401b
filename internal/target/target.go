// Package target implements the two-variant target namespace: file targets
// (POSIX-normalized paths) and abstract targets (":"-prefixed labels with no
// filesystem presence).
package target

import (
	"path"
	"path/filepath"
	"strings"
)

// IsAbstract reports whether t names an abstract (phony) target.
func IsAbstract(t string) bool {
	return strings.HasPrefix(t, ":")
}

// Normalize converts a target path to the canonical POSIX form used
// throughout the engine, even on Windows hosts.
func Normalize(t string) string {
	if IsAbstract(t) {
		return t
	}
	return path.Clean(filepath.ToSlash(t))
}

// Resolve turns a (POSIX) target path into a filesystem path rooted at root.
// Abstract targets have no filesystem presence and should never reach this.
func Resolve(root, t string) string {
	return filepath.Join(root, filepath.FromSlash(t))
}

// StripExt removes the final extension from a POSIX target path, e.g.
// "src/Player.cpp" -> "src/Player".
func StripExt(t string) string {
	ext := path.Ext(t)
	return strings.TrimSuffix(t, ext)
}

// Join joins POSIX path segments, mirroring path.Join but documenting that
// target paths are always POSIX, never filepath.
func Join(segments ...string) string {
	return path.Join(segments...)
}
