// Package lockfile persists the per-project record of exactly what was
// installed for each skill, used for reproducibility and staleness checks.
package lockfile

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// LockVersion is the current lock file format version
const LockVersion = 1

// Entry records one installed skill. Version is the skill's own declared
// semantic version from its manifest; Ref is the git reference actually
// fetched. The two are deliberately decoupled: installing @latest resolves
// Ref to whatever tag is newest while Version reflects the manifest inside
// that tag.
type Entry struct {
	Source      string    `toml:"source"`
	Version     string    `toml:"version"`
	Ref         string    `toml:"ref"`
	Resolved    string    `toml:"resolved"`
	Commit      string    `toml:"commit,omitempty"`
	InstalledAt time.Time `toml:"installed_at"`
}

// Lock is a keyed store of entries backed by skills-lock.toml.
type Lock struct {
	Version int              `toml:"version"`
	Skills  map[string]Entry `toml:"skills"`

	path string `toml:"-"`
}

// Load reads the lock file at path, returning an empty lock when absent.
func Load(path string) (*Lock, error) {
	l := &Lock{Version: LockVersion, Skills: make(map[string]Entry), path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return l, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, l); err != nil {
		return nil, err
	}
	if l.Skills == nil {
		l.Skills = make(map[string]Entry)
	}
	l.path = path
	return l, nil
}

// Save writes the lock file back to disk.
func (l *Lock) Save() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return err
	}
	data, err := toml.Marshal(l)
	if err != nil {
		return err
	}
	return os.WriteFile(l.path, data, 0644)
}

// Get returns the entry for a skill name.
func (l *Lock) Get(name string) (Entry, bool) {
	e, ok := l.Skills[name]
	return e, ok
}

// LockSkill records an entry, replacing any previous one wholesale.
func (l *Lock) LockSkill(name string, e Entry) {
	if e.InstalledAt.IsZero() {
		e.InstalledAt = time.Now()
	}
	l.Skills[name] = e
}

// Remove deletes the entry for a skill name.
func (l *Lock) Remove(name string) {
	delete(l.Skills, name)
}

// All returns a copy of every entry keyed by skill name.
func (l *Lock) All() map[string]Entry {
	out := make(map[string]Entry, len(l.Skills))
	for k, v := range l.Skills {
		out[k] = v
	}
	return out
}
