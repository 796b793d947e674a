// Package cache maintains the content-addressable store of fetched skill
// content, keyed by (registry, owner, repo, subPath, resolved ref).
package cache

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/quangdo/skm/internal/gitcmd"
	"github.com/quangdo/skm/internal/ref"
	"github.com/quangdo/skm/internal/source"
)

// commitFile records the source commit hash inside each cache entry.
const commitFile = ".skm-commit"

// internalPrefix marks bookkeeping files that must never be copied out.
const internalPrefix = ".skm-"

// internalFiles are entry-level files excluded from installed output.
var internalFiles = map[string]bool{
	commitFile:      true,
	"README.md":     true,
	"metadata.json": true,
}

// ErrSubPathNotFound reports a monorepo subPath missing from the fetched tree.
var ErrSubPathNotFound = fmt.Errorf("subPath not found in repository")

// Store is the on-disk cache. Entries are append-only; Clear is the only
// removal operation.
type Store struct {
	root string
	git  *gitcmd.Client
}

// New creates a store rooted at root.
func New(root string, git *gitcmd.Client) *Store {
	return &Store{root: root, git: git}
}

// Root returns the cache root directory.
func (s *Store) Root() string {
	return s.root
}

// Path returns the deterministic entry path for a reference at a resolved
// ref. The subPath segment is always part of the key: sibling monorepo
// skills sharing owner/repo must never collide.
func (s *Store) Path(r *ref.Reference, resolvedRef string) string {
	parts := []string{s.root, r.Registry(), r.Owner, r.Repo}
	if r.SubPath != "" {
		parts = append(parts, r.SubPath)
	}
	parts = append(parts, sanitizeRef(resolvedRef))
	return filepath.Join(parts...)
}

// Get performs a pure local lookup; present iff the deterministic path exists.
func (s *Store) Get(r *ref.Reference, resolvedRef string) (string, bool) {
	p := s.Path(r, resolvedRef)
	info, err := os.Stat(p)
	if err != nil || !info.IsDir() {
		return "", false
	}
	return p, true
}

// Cache fetches the content at resolved into the deterministic path and
// writes the commit marker. An already-present entry short-circuits without
// a network fetch. Population goes through a temp directory and a rename, so
// concurrent installs of the same key converge on one winner.
func (s *Store) Cache(ctx context.Context, repoURL string, r *ref.Reference, resolved ref.Resolved) (string, error) {
	final := s.Path(r, resolved.Ref)
	if _, err := os.Stat(final); err == nil {
		return final, nil
	}

	if err := os.MkdirAll(s.root, 0755); err != nil {
		return "", err
	}
	tmp, err := os.MkdirTemp(s.root, internalPrefix+"fetch-*")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(tmp)

	provider := source.DetectProvider(repoURL)
	if provider == nil {
		return "", &source.SourceError{Op: "cache", Source: repoURL, Err: source.ErrProviderNotFound}
	}

	fetchDir := filepath.Join(tmp, "fetch")
	if err := provider.Fetch(ctx, repoURL, fetchDir, source.FetchOptions{Ref: resolved.Ref}); err != nil {
		return "", err
	}

	commit := resolved.Commit
	if commit == "" && provider.Type() == "git" {
		commit = s.git.HeadCommit(fetchDir)
	}

	content := fetchDir
	if r.SubPath != "" {
		content = filepath.Join(fetchDir, filepath.FromSlash(r.SubPath))
		if info, err := os.Stat(content); err != nil || !info.IsDir() {
			return "", fmt.Errorf("%w: %s in %s", ErrSubPathNotFound, r.SubPath, repoURL)
		}
	}
	os.RemoveAll(filepath.Join(content, ".git"))

	if err := os.WriteFile(filepath.Join(content, commitFile), []byte(commit+"\n"), 0644); err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(final), 0755); err != nil {
		return "", err
	}
	if err := os.Rename(content, final); err != nil {
		// A concurrent install of the same key may have won the rename.
		if _, statErr := os.Stat(final); statErr == nil {
			return final, nil
		}
		return "", err
	}
	return final, nil
}

// CopyTo copies a cache entry to destination, excluding internal
// bookkeeping files so they never leak into installed output.
func (s *Store) CopyTo(r *ref.Reference, resolvedRef, destination string) error {
	entry, ok := s.Get(r, resolvedRef)
	if !ok {
		return fmt.Errorf("cache entry missing for %s/%s/%s@%s", r.Registry(), r.Owner, r.Repo, resolvedRef)
	}
	return copyFiltered(entry, destination)
}

// CopyPathTo copies one subtree of a cache entry to destination, with the
// same internal-file filtering as CopyTo. Used for monorepo subset installs
// where one entry holds several skills.
func (s *Store) CopyPathTo(r *ref.Reference, resolvedRef, relPath, destination string) error {
	entry, ok := s.Get(r, resolvedRef)
	if !ok {
		return fmt.Errorf("cache entry missing for %s/%s/%s@%s", r.Registry(), r.Owner, r.Repo, resolvedRef)
	}
	src := filepath.Join(entry, filepath.FromSlash(relPath))
	if info, err := os.Stat(src); err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrSubPathNotFound, relPath)
	}
	return copyFiltered(src, destination)
}

// Commit reads the recorded source commit of an entry, if any.
func (s *Store) Commit(r *ref.Reference, resolvedRef string) string {
	entry, ok := s.Get(r, resolvedRef)
	if !ok {
		return ""
	}
	data, err := os.ReadFile(filepath.Join(entry, commitFile))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// RemoteCommit is a lightweight staleness probe: it resolves refName on the
// remote without fetching content.
func (s *Store) RemoteCommit(ctx context.Context, repoURL, refName string) (string, error) {
	return s.git.RemoteCommit(ctx, repoURL, refName)
}

// Clear removes every cache entry. It is explicit; nothing is
// garbage-collected automatically.
func (s *Store) Clear() error {
	if err := os.RemoveAll(s.root); err != nil {
		return err
	}
	return os.MkdirAll(s.root, 0755)
}

func sanitizeRef(resolvedRef string) string {
	r := strings.NewReplacer("/", "-", ":", "-", "\\", "-")
	return r.Replace(resolvedRef)
}

func isInternal(name string) bool {
	return internalFiles[name] || strings.HasPrefix(name, internalPrefix)
}

func copyFiltered(src, dst string) error {
	if err := os.MkdirAll(dst, 0755); err != nil {
		return err
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if isInternal(entry.Name()) {
			continue
		}

		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		if entry.IsDir() {
			if err := copyDir(srcPath, dstPath); err != nil {
				return err
			}
		} else {
			if err := copyFile(srcPath, dstPath); err != nil {
				return err
			}
		}
	}

	return nil
}

func copyDir(src, dst string) error {
	if err := os.MkdirAll(dst, 0755); err != nil {
		return err
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		// Reserved-prefix names are internal at any depth.
		if strings.HasPrefix(entry.Name(), internalPrefix) {
			continue
		}

		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		if entry.IsDir() {
			if err := copyDir(srcPath, dstPath); err != nil {
				return err
			}
		} else {
			if err := copyFile(srcPath, dstPath); err != nil {
				return err
			}
		}
	}

	return nil
}

func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}

	dstFile, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, srcInfo.Mode())
	if err != nil {
		return err
	}
	defer dstFile.Close()

	_, err = io.Copy(dstFile, srcFile)
	return err
}
