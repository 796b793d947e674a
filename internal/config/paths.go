// Package config resolves filesystem roots and loads the project
// configuration file.
package config

import (
	"os"
	"path/filepath"
)

// Scope selects where skills are rooted: the current project or the user's
// home directory. It is fixed per manager instance, never a process flag.
type Scope int

const (
	ScopeProject Scope = iota
	ScopeGlobal
)

// DefaultLegacyDir is the legacy install directory used when the project
// config does not override it.
const DefaultLegacyDir = ".skills"

// Paths holds all resolved paths for skm operations
type Paths struct {
	Scope    Scope
	Root     string // project root (cwd) or home, depending on scope
	SkmDir   string // ~/.skm (skm data directory)
	CacheDir string // ~/.skm/cache
}

// ResolvePaths resolves all paths based on scope, environment and defaults.
func ResolvePaths(scope Scope) (*Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	skmDir := os.Getenv("SKM_DIR")
	if skmDir == "" {
		skmDir = filepath.Join(home, ".skm")
	}

	cacheDir := os.Getenv("SKM_CACHE_DIR")
	if cacheDir == "" {
		cacheDir = filepath.Join(skmDir, "cache")
	}

	root := home
	if scope == ScopeProject {
		root, err = os.Getwd()
		if err != nil {
			return nil, err
		}
	}

	return &Paths{
		Scope:    scope,
		Root:     root,
		SkmDir:   skmDir,
		CacheDir: cacheDir,
	}, nil
}

// CanonicalDir returns the canonical shared skills store for this scope.
func (p *Paths) CanonicalDir() string {
	return filepath.Join(p.Root, ".agents", "skills")
}

// LegacyDir returns the legacy skills store. configured overrides the
// default directory name when the project config sets one.
func (p *Paths) LegacyDir(configured string) string {
	dir := configured
	if dir == "" {
		dir = DefaultLegacyDir
	}
	return filepath.Join(p.Root, filepath.FromSlash(dir))
}

// ConfigPath returns the project config file path.
func (p *Paths) ConfigPath() string {
	return filepath.Join(p.Root, "skills.toml")
}

// LockPath returns the lock file path.
func (p *Paths) LockPath() string {
	return filepath.Join(p.Root, "skills-lock.toml")
}
