package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/quangdo/skm/internal/ref"
)

func mustParse(t *testing.T, raw string) *ref.Reference {
	t.Helper()
	r, err := ref.Parse(raw)
	if err != nil {
		t.Fatalf("Parse(%q) error = %v", raw, err)
	}
	return r
}

// seedEntry builds a cache entry by hand at the deterministic path.
func seedEntry(t *testing.T, s *Store, r *ref.Reference, resolvedRef string, files map[string]string) string {
	t.Helper()
	entry := s.Path(r, resolvedRef)
	for name, content := range files {
		p := filepath.Join(entry, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return entry
}

func TestPath(t *testing.T) {
	s := New("/cache", nil)

	tests := []struct {
		name        string
		raw         string
		resolvedRef string
		want        string
	}{
		{
			name:        "plain repo",
			raw:         "anthropics/skills",
			resolvedRef: "v1.0.0",
			want:        "/cache/github/anthropics/skills/v1.0.0",
		},
		{
			name:        "registry prefix",
			raw:         "gitlab:org/repo",
			resolvedRef: "main",
			want:        "/cache/gitlab/org/repo/main",
		},
		{
			name:        "subPath is part of the key",
			raw:         "org/monorepo/skills/pdf",
			resolvedRef: "v1.0.0",
			want:        "/cache/github/org/monorepo/skills/pdf/v1.0.0",
		},
		{
			name:        "slashes in ref are sanitized",
			raw:         "org/repo",
			resolvedRef: "feature/new-thing",
			want:        "/cache/github/org/repo/feature-new-thing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Path(mustParse(t, tt.raw), tt.resolvedRef)
			if got != filepath.FromSlash(tt.want) {
				t.Errorf("Path() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPathSiblingSkillsDoNotCollide(t *testing.T) {
	s := New(t.TempDir(), nil)
	pdf := s.Path(mustParse(t, "org/monorepo/skills/pdf@v1.0.0"), "v1.0.0")
	xlsx := s.Path(mustParse(t, "org/monorepo/skills/xlsx@v1.0.0"), "v1.0.0")
	if pdf == xlsx {
		t.Fatalf("sibling skills map to the same entry %q", pdf)
	}
}

func TestCacheHitSkipsFetch(t *testing.T) {
	s := New(t.TempDir(), nil)
	r := mustParse(t, "org/repo@v1.0.0")
	seedEntry(t, s, r, "v1.0.0", map[string]string{"SKILL.md": "---\nname: repo\n---\n"})

	// The URL is not fetchable; a hit must return before any provider runs.
	got, err := s.Cache(context.Background(), "bogus://nowhere", r, ref.Resolved{Ref: "v1.0.0"})
	if err != nil {
		t.Fatalf("Cache() error = %v", err)
	}
	if got != s.Path(r, "v1.0.0") {
		t.Errorf("Cache() = %q, want existing entry path", got)
	}
}

func TestGet(t *testing.T) {
	s := New(t.TempDir(), nil)
	r := mustParse(t, "org/repo")

	if _, ok := s.Get(r, "v1.0.0"); ok {
		t.Error("Get() reported a hit for an empty cache")
	}

	seedEntry(t, s, r, "v1.0.0", map[string]string{"SKILL.md": "x"})
	if _, ok := s.Get(r, "v1.0.0"); !ok {
		t.Error("Get() missed a present entry")
	}
	if _, ok := s.Get(r, "v2.0.0"); ok {
		t.Error("Get() hit on the wrong ref")
	}
}

func TestCopyToFiltersInternalFiles(t *testing.T) {
	s := New(t.TempDir(), nil)
	r := mustParse(t, "org/repo")
	seedEntry(t, s, r, "main", map[string]string{
		"SKILL.md":           "---\nname: repo\n---\n",
		"scripts/run.sh":     "#!/bin/sh\n",
		".skm-commit":        "abc123\n",
		"README.md":          "entry readme",
		"metadata.json":      "{}",
		"docs/README.md":     "nested readme survives",
		"docs/.skm-internal": "never copied",
	})

	dst := t.TempDir()
	if err := s.CopyTo(r, "main", dst); err != nil {
		t.Fatalf("CopyTo() error = %v", err)
	}

	for _, want := range []string{"SKILL.md", "scripts/run.sh", "docs/README.md"} {
		if _, err := os.Stat(filepath.Join(dst, filepath.FromSlash(want))); err != nil {
			t.Errorf("expected %s in output: %v", want, err)
		}
	}
	for _, bad := range []string{".skm-commit", "README.md", "metadata.json", "docs/.skm-internal"} {
		if _, err := os.Stat(filepath.Join(dst, filepath.FromSlash(bad))); err == nil {
			t.Errorf("internal file %s leaked into output", bad)
		}
	}
}

func TestCopyToMissingEntry(t *testing.T) {
	s := New(t.TempDir(), nil)
	r := mustParse(t, "org/repo")
	if err := s.CopyTo(r, "v9.9.9", t.TempDir()); err == nil {
		t.Fatal("expected error for missing cache entry")
	}
}

func TestCopyPathTo(t *testing.T) {
	s := New(t.TempDir(), nil)
	r := mustParse(t, "org/monorepo")
	seedEntry(t, s, r, "main", map[string]string{
		"skills/pdf/SKILL.md":  "---\nname: pdf\n---\n",
		"skills/xlsx/SKILL.md": "---\nname: xlsx\n---\n",
		".skm-commit":          "abc\n",
	})

	dst := t.TempDir()
	if err := s.CopyPathTo(r, "main", "skills/pdf", dst); err != nil {
		t.Fatalf("CopyPathTo() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dst, "SKILL.md")); err != nil {
		t.Errorf("expected SKILL.md from subtree: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dst, "skills")); err == nil {
		t.Error("CopyPathTo copied the whole entry instead of the subtree")
	}

	if err := s.CopyPathTo(r, "main", "skills/nope", t.TempDir()); err == nil {
		t.Error("expected error for missing subtree")
	}
}

func TestCommit(t *testing.T) {
	s := New(t.TempDir(), nil)
	r := mustParse(t, "org/repo")

	if got := s.Commit(r, "main"); got != "" {
		t.Errorf("Commit() on missing entry = %q, want empty", got)
	}

	seedEntry(t, s, r, "main", map[string]string{".skm-commit": "deadbeef\n"})
	if got := s.Commit(r, "main"); got != "deadbeef" {
		t.Errorf("Commit() = %q, want %q", got, "deadbeef")
	}
}

func TestClear(t *testing.T) {
	s := New(t.TempDir(), nil)
	r := mustParse(t, "org/repo")
	seedEntry(t, s, r, "main", map[string]string{"SKILL.md": "x"})

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if _, ok := s.Get(r, "main"); ok {
		t.Error("entry survived Clear()")
	}
	if info, err := os.Stat(s.Root()); err != nil || !info.IsDir() {
		t.Error("cache root should exist after Clear()")
	}
}
