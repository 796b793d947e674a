package skills

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/quangdo/skm/internal/agent"
	"github.com/quangdo/skm/internal/ref"
	"github.com/quangdo/skm/internal/symlink"
)

// UpdateResult describes the outcome of updating one skill.
type UpdateResult struct {
	Name      string
	Updated   bool
	OldCommit string
	NewCommit string
	Err       error
}

// Update refreshes one installed skill. The declared version spec is
// re-resolved, then the remote commit is probed cheaply; content is only
// refetched and reinstalled when the commit moved.
func (m *Manager) Update(ctx context.Context, name string) UpdateResult {
	res := UpdateResult{Name: name}

	m.mu.Lock()
	reference, declared := m.cfg.Skills[name]
	m.mu.Unlock()
	entry, locked := m.lock.Get(name)
	if !declared {
		if !locked {
			res.Err = fmt.Errorf("%w: %s", ErrSkillNotFound, name)
			return res
		}
		reference = entry.Source
	}
	res.OldCommit = entry.Commit

	base, _ := splitFragment(reference)
	r, err := ref.Parse(base)
	if err != nil {
		res.Err = err
		return res
	}
	if r.Kind == ref.KindRegistry || r.Kind == ref.KindArchive {
		// Archives carry no commit identity; reinstall.
		return m.reinstall(ctx, name, reference, res)
	}

	repoURL := r.RepoURL(m.cfg.Registries)
	resolved, err := ref.ResolveVersion(ctx, m.git, repoURL, r.Spec())
	if err != nil {
		res.Err = err
		return res
	}

	remoteCommit := resolved.Commit
	if remoteCommit == "" {
		remoteCommit, err = m.cache.RemoteCommit(ctx, repoURL, resolved.Ref)
		if err != nil {
			res.Err = err
			return res
		}
	}

	if !m.CheckNeedsUpdate(name, remoteCommit) {
		res.NewCommit = remoteCommit
		return res
	}
	res.NewCommit = remoteCommit
	return m.reinstall(ctx, name, reference, res)
}

func (m *Manager) reinstall(ctx context.Context, name, reference string, res UpdateResult) UpdateResult {
	report, err := m.Install(ctx, reference, InstallOptions{Name: name})
	if err != nil {
		res.Err = err
		return res
	}
	res.Updated = true
	if report.Commit != "" {
		res.NewCommit = report.Commit
	}
	return res
}

// UpdateAll updates every declared skill, continuing past failures.
func (m *Manager) UpdateAll(ctx context.Context) []UpdateResult {
	m.mu.Lock()
	names := make([]string, 0, len(m.cfg.Skills))
	for name := range m.cfg.Skills {
		names = append(names, name)
	}
	m.mu.Unlock()

	results := make([]UpdateResult, 0, len(names))
	for _, name := range names {
		results = append(results, m.Update(ctx, name))
	}
	return results
}

// OutdatedSkill is the staleness report for one installed skill.
type OutdatedSkill struct {
	Name         string
	Ref          string
	LocalCommit  string
	RemoteCommit string
	NeedsUpdate  bool
	Err          error
}

// Outdated probes every locked skill for upstream changes without fetching
// any content.
func (m *Manager) Outdated(ctx context.Context) []OutdatedSkill {
	var out []OutdatedSkill
	for name, entry := range m.lock.All() {
		o := OutdatedSkill{Name: name, Ref: entry.Ref, LocalCommit: entry.Commit}

		base, _ := splitFragment(entry.Source)
		r, err := ref.Parse(base)
		if err != nil {
			o.Err = err
			out = append(out, o)
			continue
		}
		if r.Kind == ref.KindRegistry || r.Kind == ref.KindArchive {
			out = append(out, o)
			continue
		}

		repoURL := r.RepoURL(m.cfg.Registries)
		resolved, err := ref.ResolveVersion(ctx, m.git, repoURL, r.Spec())
		if err != nil {
			o.Err = err
			out = append(out, o)
			continue
		}

		remote := resolved.Commit
		if remote == "" {
			remote, err = m.cache.RemoteCommit(ctx, repoURL, resolved.Ref)
			if err != nil {
				o.Err = err
				out = append(out, o)
				continue
			}
		}
		o.RemoteCommit = remote
		o.NeedsUpdate = m.CheckNeedsUpdate(name, remote)
		out = append(out, o)
	}
	return out
}

// Uninstall removes a skill from every agent target, deletes its store
// copy (canonical and legacy), and drops its config and lock entries.
func (m *Manager) Uninstall(name string) (map[string]bool, error) {
	targets, err := agent.Resolve(agent.Names())
	if err != nil {
		return nil, err
	}
	results := m.inst.UninstallFromAgents(name, m.paths.Root, targets)

	links := symlink.New()
	for _, dir := range []string{
		filepath.Join(m.paths.CanonicalDir(), name),
		filepath.Join(m.paths.LegacyDir(m.cfg.Install.SkillsDir), name),
	} {
		if _, err := os.Lstat(dir); err == nil {
			if err := links.Remove(dir); err != nil {
				return results, err
			}
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg.RemoveSkill(name)
	m.lock.Remove(name)
	return results, m.saveStores()
}
