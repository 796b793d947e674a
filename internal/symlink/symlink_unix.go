//go:build !windows

package symlink

import (
	"os"
	"path/filepath"
)

// createSymlink creates a symlink on Unix systems using relative paths
func createSymlink(source, target string) error {
	// Ensure parent directory exists
	sourceDir := filepath.Dir(source)
	if err := os.MkdirAll(sourceDir, 0755); err != nil {
		return err
	}

	// Compute relative path from symlink location to target
	relTarget, err := filepath.Rel(sourceDir, target)
	if err != nil {
		// Fall back to absolute path if relative fails
		relTarget = target
	}

	return os.Symlink(relTarget, source)
}
