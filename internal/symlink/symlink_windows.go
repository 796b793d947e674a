//go:build windows

package symlink

import (
	"os"
	"path/filepath"
)

// createSymlink creates a symlink on Windows
// Note: May require elevated privileges or Developer Mode on Windows;
// callers are expected to handle failure by falling back to a copy.
func createSymlink(source, target string) error {
	// Ensure parent directory exists
	if err := os.MkdirAll(filepath.Dir(source), 0755); err != nil {
		return err
	}

	// os.Symlink on Windows creates the appropriate type:
	// for directories, a directory symlink
	return os.Symlink(target, source)
}
