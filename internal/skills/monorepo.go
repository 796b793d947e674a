package skills

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/quangdo/skm/internal/manifest"
	"github.com/quangdo/skm/internal/ref"
)

// Discovered is one valid skill found inside a fetched repository tree.
type Discovered struct {
	Name     string
	RelPath  string // slash-separated path within the cache entry
	Manifest *manifest.Manifest
}

// DiscoverSkills fetches a repository reference and returns every valid
// skill manifest within it, without installing anything. A repository with
// zero valid manifests is an error.
func (m *Manager) DiscoverSkills(ctx context.Context, rawRef string) ([]Discovered, error) {
	_, _, entry, err := m.fetchRepo(ctx, rawRef)
	if err != nil {
		return nil, err
	}
	return discoverIn(entry, rawRef)
}

func (m *Manager) fetchRepo(ctx context.Context, rawRef string) (*ref.Reference, ref.Resolved, string, error) {
	r, err := ref.Parse(rawRef)
	if err != nil {
		return nil, ref.Resolved{}, "", err
	}
	if r.Kind == ref.KindRegistry {
		return nil, ref.Resolved{}, "", fmt.Errorf("registry references cannot be used for multi-skill installs: %s", rawRef)
	}

	repoURL := r.RepoURL(m.cfg.Registries)
	resolved, err := ref.ResolveVersion(ctx, m.git, repoURL, r.Spec())
	if err != nil {
		return nil, ref.Resolved{}, "", err
	}

	entry, err := m.cache.Cache(ctx, repoURL, r, resolved)
	if err != nil {
		return nil, ref.Resolved{}, "", err
	}
	return r, resolved, entry, nil
}

func discoverIn(entry, rawRef string) ([]Discovered, error) {
	var found []Discovered

	err := filepath.WalkDir(entry, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if name := d.Name(); name != "." && (strings.HasPrefix(name, ".") || name == "node_modules") {
			return fs.SkipDir
		}

		if !manifest.IsSkillDir(path) {
			return nil
		}
		mf, err := manifest.Read(path)
		if err != nil {
			return nil // malformed manifest, not a valid skill
		}

		rel, err := filepath.Rel(entry, path)
		if err != nil {
			return err
		}
		if rel == "." {
			rel = ""
		}
		found = append(found, Discovered{
			Name:     mf.Name,
			RelPath:  filepath.ToSlash(rel),
			Manifest: mf,
		})
		// A skill directory never nests further skills.
		return fs.SkipDir
	})
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	if len(found) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoSkillsFound, rawRef)
	}
	sort.Slice(found, func(i, j int) bool { return found[i].Name < found[j].Name })
	return found, nil
}

// InstallFromRepo installs a subset of the skills inside one repository
// reference. An empty names slice installs every discovered skill. Names
// matching nothing produce an error enumerating the names that were found.
// Each installed skill is declared as the repository reference plus a
// #fragment naming it, so a later reinstall-all re-extracts exactly it.
func (m *Manager) InstallFromRepo(ctx context.Context, rawRef string, names []string, opts InstallOptions) ([]*InstallReport, error) {
	r, resolved, entry, err := m.fetchRepo(ctx, rawRef)
	if err != nil {
		return nil, err
	}

	discovered, err := discoverIn(entry, rawRef)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]Discovered, len(discovered))
	available := make([]string, 0, len(discovered))
	for _, d := range discovered {
		byName[d.Name] = d
		available = append(available, d.Name)
	}

	selected := discovered
	if len(names) > 0 {
		selected = selected[:0:0]
		var missing []string
		for _, name := range names {
			d, ok := byName[name]
			if !ok {
				missing = append(missing, name)
				continue
			}
			selected = append(selected, d)
		}
		if len(missing) > 0 {
			return nil, fmt.Errorf("skills %s not found in %s; found: %s",
				strings.Join(missing, ", "), rawRef, strings.Join(available, ", "))
		}
	}

	// A name override can only mean one skill.
	if opts.Name != "" && len(selected) > 1 {
		return nil, fmt.Errorf("name override %q is ambiguous across %d skills", opts.Name, len(selected))
	}

	repoURL := r.RepoURL(m.cfg.Registries)
	var reports []*InstallReport
	var errs []error
	for _, d := range selected {
		name := d.Name
		if opts.Name != "" {
			name = opts.Name
		}
		report, err := m.materialize(materializeParams{
			reference: r,
			rawRef:    rawRef + "#" + d.Name,
			repoURL:   repoURL,
			resolved:  resolved,
			name:      name,
			relPath:   d.RelPath,
			opts:      opts,
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", d.Name, err))
			continue
		}
		reports = append(reports, report)
	}
	return reports, errors.Join(errs...)
}
