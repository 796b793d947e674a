// Package symlink handles symlink operations across platforms.
package symlink

import (
	"os"
	"path/filepath"
)

// Manager handles symlink operations
type Manager struct{}

// New creates a new symlink manager
func New() *Manager {
	return &Manager{}
}

// Create creates a symlink at source pointing to target.
func (m *Manager) Create(source, target string) error {
	return createSymlink(source, target)
}

// IsSymlink checks if a path is a symlink
func (m *Manager) IsSymlink(path string) (bool, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return false, err
	}
	return info.Mode()&os.ModeSymlink != 0, nil
}

// Resolve returns the absolute target of a symlink, following a relative
// link from its own directory.
func (m *Manager) Resolve(path string) (string, error) {
	target, err := os.Readlink(path)
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(path), target)
	}
	return filepath.Clean(target), nil
}

// Remove removes a path whether it is a symlink or a directory tree.
// A missing path is not an error.
func (m *Manager) Remove(path string) error {
	info, err := os.Lstat(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return os.Remove(path)
	}
	return os.RemoveAll(path)
}
