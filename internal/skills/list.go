package skills

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/quangdo/skm/internal/manifest"
	"github.com/quangdo/skm/internal/symlink"
)

// InstalledSkill is a view computed on demand by scanning the skill stores;
// it is never persisted.
type InstalledSkill struct {
	Name        string
	Path        string
	Version     string
	Source      string
	Description string
	IsLinked    bool
}

// List enumerates installed skills across the canonical and legacy stores.
// Canonical wins on name collisions, and a legacy entry that is a symlink
// resolving back into the canonical store is skipped entirely, so a skill
// reachable from both roots is reported exactly once.
func (m *Manager) List() ([]InstalledSkill, error) {
	links := symlink.New()
	seen := make(map[string]bool)
	var out []InstalledSkill

	canonicalDir := m.paths.CanonicalDir()
	canonical, err := m.scanStore(canonicalDir, links)
	if err != nil {
		return nil, err
	}
	for _, s := range canonical {
		seen[s.Name] = true
		out = append(out, s)
	}

	legacyDir := m.paths.LegacyDir(m.cfg.Install.SkillsDir)
	legacy, err := m.scanStore(legacyDir, links)
	if err != nil {
		return nil, err
	}
	for _, s := range legacy {
		if seen[s.Name] {
			continue
		}
		if s.IsLinked {
			if target, err := links.Resolve(s.Path); err == nil && within(canonicalDir, target) {
				continue
			}
		}
		seen[s.Name] = true
		out = append(out, s)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Manager) scanStore(dir string, links *symlink.Manager) ([]InstalledSkill, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var out []InstalledSkill
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		path := filepath.Join(dir, name)
		isLinked, err := links.IsSymlink(path)
		if err != nil {
			continue
		}
		if !isLinked && !entry.IsDir() {
			continue
		}

		s := InstalledSkill{Name: name, Path: path, IsLinked: isLinked}
		if isLinked {
			// A linked skill's freshness is its link target's.
			s.Version = LocalVersion
		}
		if mf, err := manifest.Read(path); err == nil {
			s.Description = mf.Description
			if !isLinked {
				s.Version = mf.Version
			}
		}
		if lockEntry, ok := m.lock.Get(name); ok {
			s.Source = lockEntry.Source
			if s.Version == "" {
				s.Version = lockEntry.Version
			}
		}
		out = append(out, s)
	}
	return out, nil
}

// within reports whether path, after cleaning, sits inside root.
func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
