package skills

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/quangdo/skm/internal/agent"
	"github.com/quangdo/skm/internal/installer"
	"github.com/quangdo/skm/internal/lockfile"
	"github.com/quangdo/skm/internal/manifest"
	"github.com/quangdo/skm/internal/ref"
	"github.com/quangdo/skm/internal/symlink"
)

// InstallOptions tune one install operation. Zero values fall back to the
// project config defaults.
type InstallOptions struct {
	Name    string // override the skill name
	Mode    installer.Mode
	Targets []string
	NoSave  bool // skip config/lock persistence
}

// InstallReport is the outcome of one successful skill install.
type InstallReport struct {
	Name    string
	Version string
	Ref     string
	Commit  string
	Path    string
	Targets map[string]installer.Result
}

// FailedTargets counts targets whose result was unsuccessful.
func (r *InstallReport) FailedTargets() int {
	n := 0
	for _, res := range r.Targets {
		if !res.Success {
			n++
		}
	}
	return n
}

// Install runs the full pipeline for one reference:
// parse -> resolve -> cache -> install -> lock -> config save.
func (m *Manager) Install(ctx context.Context, rawRef string, opts InstallOptions) (*InstallReport, error) {
	base, fragment := splitFragment(rawRef)
	if fragment != "" {
		reports, err := m.InstallFromRepo(ctx, base, []string{fragment}, opts)
		if err != nil {
			return nil, err
		}
		return reports[0], nil
	}

	r, err := ref.Parse(base)
	if err != nil {
		return nil, err
	}

	if r.Kind == ref.KindRegistry {
		return m.installFromRegistry(ctx, r, opts)
	}

	repoURL := r.RepoURL(m.cfg.Registries)
	resolved, err := ref.ResolveVersion(ctx, m.git, repoURL, r.Spec())
	if err != nil {
		return nil, err
	}

	if _, err := m.cache.Cache(ctx, repoURL, r, resolved); err != nil {
		return nil, err
	}

	name := opts.Name
	if name == "" {
		name = r.DefaultName()
	}

	return m.materialize(materializeParams{
		reference: r,
		rawRef:    rawRef,
		repoURL:   repoURL,
		resolved:  resolved,
		name:      name,
		relPath:   "",
		opts:      opts,
	})
}

func (m *Manager) installFromRegistry(ctx context.Context, r *ref.Reference, opts InstallOptions) (*InstallReport, error) {
	pkg, err := m.reg.Resolve(ctx, r.Repo)
	if err != nil {
		return nil, err
	}

	archRef, err := ref.Parse(pkg.ArchiveURL)
	if err != nil {
		return nil, fmt.Errorf("registry returned unusable archive URL %q: %w", pkg.ArchiveURL, err)
	}
	// Key the cache by registry identity, not by the archive host.
	archRef.RegistrySource = ref.SourceRegistry
	archRef.Owner, archRef.Repo = splitRegistryName(r.Repo)

	resolved := ref.Resolved{Ref: pkg.Version}
	if resolved.Ref == "" {
		resolved.Ref = "latest"
	}

	if _, err := m.cache.Cache(ctx, pkg.ArchiveURL, archRef, resolved); err != nil {
		return nil, err
	}

	name := opts.Name
	if name == "" {
		name = archRef.Repo
	}

	return m.materialize(materializeParams{
		reference: archRef,
		rawRef:    r.Raw,
		repoURL:   pkg.ArchiveURL,
		resolved:  resolved,
		name:      name,
		opts:      opts,
	})
}

func splitRegistryName(name string) (owner, repo string) {
	if i := strings.Index(name, "/"); i > 0 {
		return name[:i], name[i+1:]
	}
	return "_", name
}

type materializeParams struct {
	reference *ref.Reference
	rawRef    string // recorded in config and lock
	repoURL   string
	resolved  ref.Resolved
	name      string
	relPath   string // subtree within the cache entry, for monorepo subsets
	opts      InstallOptions
}

// materialize copies cached content into the skill store, fans it out to
// agent targets, and records the config and lock entries.
func (m *Manager) materialize(p materializeParams) (*InstallReport, error) {
	mode := p.opts.Mode
	if mode == "" {
		mode = installer.Mode(m.cfg.Install.Mode)
	}
	if mode == "" {
		mode = installer.ModeSymlink
	}

	targetNames := p.opts.Targets
	if len(targetNames) == 0 {
		targetNames = m.cfg.Install.Targets
	}
	targets, err := agent.Resolve(targetNames)
	if err != nil {
		return nil, err
	}

	skillPath := m.GetSkillPath(p.name)
	links := symlink.New()
	if err := links.Remove(skillPath); err != nil {
		return nil, err
	}
	if p.relPath == "" {
		err = m.cache.CopyTo(p.reference, p.resolved.Ref, skillPath)
	} else {
		err = m.cache.CopyPathTo(p.reference, p.resolved.Ref, p.relPath, skillPath)
	}
	if err != nil {
		return nil, err
	}

	version := ""
	if mf, err := manifest.Read(skillPath); err == nil {
		version = mf.Version
	}

	commit := p.resolved.Commit
	if commit == "" {
		commit = m.cache.Commit(p.reference, p.resolved.Ref)
	}

	results := m.inst.InstallToAgents(skillPath, skillPath, p.name, m.paths.Root, targets, mode)

	report := &InstallReport{
		Name:    p.name,
		Version: version,
		Ref:     p.resolved.Ref,
		Commit:  commit,
		Path:    skillPath,
		Targets: results,
	}

	if p.opts.NoSave {
		return report, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg.SetSkill(p.name, p.rawRef)
	m.lock.LockSkill(p.name, lockfile.Entry{
		Source:   p.rawRef,
		Version:  version,
		Ref:      p.resolved.Ref,
		Resolved: p.repoURL,
		Commit:   commit,
	})
	if err := m.saveStores(); err != nil {
		return report, err
	}
	return report, nil
}

// RefResult pairs one reference of a batch with its outcome.
type RefResult struct {
	Raw    string
	Report *InstallReport
	Err    error
}

// InstallRefs installs several references concurrently. Every pipeline
// always settles; one failure never prevents the others from completing.
func (m *Manager) InstallRefs(ctx context.Context, raws []string, opts InstallOptions) []RefResult {
	results := make([]RefResult, len(raws))

	var wg sync.WaitGroup
	for i, raw := range raws {
		wg.Add(1)
		go func(i int, raw string) {
			defer wg.Done()
			perRef := opts
			perRef.Name = "" // batch installs always use the derived name
			report, err := m.Install(ctx, raw, perRef)
			results[i] = RefResult{Raw: raw, Report: report, Err: err}
		}(i, raw)
	}
	wg.Wait()

	return results
}

// InstallDeclared reinstalls everything recorded in skills.toml, including
// monorepo fragments.
func (m *Manager) InstallDeclared(ctx context.Context, opts InstallOptions) []RefResult {
	m.mu.Lock()
	raws := make([]string, 0, len(m.cfg.Skills))
	for _, reference := range m.cfg.Skills {
		raws = append(raws, reference)
	}
	m.mu.Unlock()

	return m.InstallRefs(ctx, raws, opts)
}
