// Package skills is the orchestrator: it composes reference parsing,
// version resolution, the content cache, the lock store and the installer
// into install/update/uninstall/list/outdated operations.
package skills

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/quangdo/skm/internal/cache"
	"github.com/quangdo/skm/internal/config"
	"github.com/quangdo/skm/internal/gitcmd"
	"github.com/quangdo/skm/internal/installer"
	"github.com/quangdo/skm/internal/lockfile"
	"github.com/quangdo/skm/internal/registry"
)

// Sentinel errors
var (
	ErrSkillNotFound = errors.New("skill not found")
	ErrNoSkillsFound = errors.New("no valid skill manifests found in repository")
)

// LocalVersion is reported for linked skills, whose freshness is defined by
// their link target rather than a lock entry.
const LocalVersion = "local"

// Manager owns one scope (project or global) for its whole lifetime.
type Manager struct {
	paths *config.Paths
	cfg   *config.Config
	lock  *lockfile.Lock
	cache *cache.Store
	git   *gitcmd.Client
	inst  *installer.Installer
	reg   *registry.Client

	// mu serializes config/lock read-modify-write during batch installs.
	// Batch tasks write distinct skill names, so this only protects the
	// map and file writes, not any cross-task ordering.
	mu sync.Mutex
}

// NewManager wires a manager for the given scope.
func NewManager(scope config.Scope) (*Manager, error) {
	paths, err := config.ResolvePaths(scope)
	if err != nil {
		return nil, err
	}
	return newManager(paths)
}

func newManager(paths *config.Paths) (*Manager, error) {
	cfg, err := config.Load(paths.Root)
	if err != nil {
		return nil, fmt.Errorf("load skills.toml: %w", err)
	}

	lock, err := lockfile.Load(paths.LockPath())
	if err != nil {
		return nil, fmt.Errorf("load lock file: %w", err)
	}

	git := gitcmd.New()
	return &Manager{
		paths: paths,
		cfg:   cfg,
		lock:  lock,
		cache: cache.New(paths.CacheDir, git),
		git:   git,
		inst:  installer.New(),
		reg:   registry.New(cfg.Registry.BaseURL),
	}, nil
}

// Config returns the loaded project configuration.
func (m *Manager) Config() *config.Config {
	return m.cfg
}

// Cache returns the content cache.
func (m *Manager) Cache() *cache.Store {
	return m.cache
}

// GetSkillPath resolves where a skill lives or should live: the canonical
// store first, then the legacy store; for a name never installed it
// defaults to canonical unless the project explicitly configures a
// non-default skills directory.
func (m *Manager) GetSkillPath(name string) string {
	canonical := filepath.Join(m.paths.CanonicalDir(), name)
	if _, err := os.Lstat(canonical); err == nil {
		return canonical
	}

	legacy := filepath.Join(m.paths.LegacyDir(m.cfg.Install.SkillsDir), name)
	if _, err := os.Lstat(legacy); err == nil {
		return legacy
	}

	if m.cfg.HasCustomSkillsDir() {
		return legacy
	}
	return canonical
}

// CheckNeedsUpdate reports whether a skill should be refetched given the
// current remote commit: true when no lock entry exists, when the entry
// recorded no commit, or when the recorded commit differs.
func (m *Manager) CheckNeedsUpdate(name, remoteCommit string) bool {
	entry, ok := m.lock.Get(name)
	if !ok {
		return true
	}
	if entry.Commit == "" {
		return true
	}
	return entry.Commit != remoteCommit
}

// LockEntry returns the lock record for a skill.
func (m *Manager) LockEntry(name string) (lockfile.Entry, bool) {
	return m.lock.Get(name)
}

// splitFragment separates a declared reference from its #fragment naming a
// skill inside a monorepo.
func splitFragment(reference string) (base, fragment string) {
	if i := strings.LastIndex(reference, "#"); i >= 0 {
		return reference[:i], reference[i+1:]
	}
	return reference, ""
}

func (m *Manager) saveStores() error {
	if err := m.cfg.Save(m.paths.Root); err != nil {
		return err
	}
	return m.lock.Save()
}
