package skills

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func seedTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestDiscoverIn(t *testing.T) {
	entry := t.TempDir()
	seedTree(t, entry, map[string]string{
		"skills/pdf/SKILL.md":        "---\nname: pdf\nversion: 1.0.0\n---\n",
		"skills/pdf/nested/SKILL.md": "---\nname: hidden\n---\n",
		"skills/xlsx/SKILL.md":       "---\nname: xlsx\n---\n",
		"skills/broken/SKILL.md":     "no frontmatter here\n",
		".github/workflows/SKILL.md": "---\nname: ci\n---\n",
		"node_modules/dep/SKILL.md":  "---\nname: dep\n---\n",
		"docs/README.md":             "not a skill\n",
	})

	found, err := discoverIn(entry, "org/monorepo")
	if err != nil {
		t.Fatalf("discoverIn() error = %v", err)
	}

	if len(found) != 2 {
		t.Fatalf("got %d skills, want 2: %+v", len(found), found)
	}
	// Sorted by name.
	if found[0].Name != "pdf" || found[1].Name != "xlsx" {
		t.Errorf("names = %s, %s; want pdf, xlsx", found[0].Name, found[1].Name)
	}
	if found[0].RelPath != "skills/pdf" {
		t.Errorf("pdf RelPath = %q, want skills/pdf", found[0].RelPath)
	}
	if found[0].Manifest.Version != "1.0.0" {
		t.Errorf("pdf manifest version = %q", found[0].Manifest.Version)
	}
}

func TestDiscoverInRootSkill(t *testing.T) {
	entry := t.TempDir()
	seedTree(t, entry, map[string]string{
		"SKILL.md": "---\nname: solo\n---\n",
	})

	found, err := discoverIn(entry, "org/solo")
	if err != nil {
		t.Fatalf("discoverIn() error = %v", err)
	}
	if len(found) != 1 || found[0].Name != "solo" || found[0].RelPath != "" {
		t.Errorf("got %+v, want one root-level skill with empty RelPath", found)
	}
}

func TestDiscoverInEmpty(t *testing.T) {
	entry := t.TempDir()
	seedTree(t, entry, map[string]string{"README.md": "nothing here\n"})

	_, err := discoverIn(entry, "org/empty")
	if !errors.Is(err, ErrNoSkillsFound) {
		t.Errorf("error = %v, want ErrNoSkillsFound", err)
	}
}
