package skills

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/quangdo/skm/internal/lockfile"
)

func TestUpdateUpToDate(t *testing.T) {
	m := testManager(t)
	const commit = "1122334455667788990011223344556677889900"
	rawRef := "org/demo@commit:" + commit

	m.cfg.SetSkill("demo", rawRef)
	m.lock.LockSkill("demo", lockfile.Entry{Source: rawRef, Ref: commit, Commit: commit})

	res := m.Update(context.Background(), "demo")
	if res.Err != nil {
		t.Fatalf("Update() error = %v", res.Err)
	}
	if res.Updated {
		t.Error("Updated = true for an up-to-date skill")
	}
	if res.NewCommit != commit {
		t.Errorf("NewCommit = %q, want probe result %q", res.NewCommit, commit)
	}
}

func TestUpdateStaleSkill(t *testing.T) {
	m := testManager(t)
	const newCommit = "aaaabbbbccccddddeeeeffff0000111122223333"
	rawRef := "org/demo@commit:" + newCommit

	seedCache(t, m, rawRef, newCommit, map[string]string{
		"SKILL.md":    "---\nname: demo\nversion: 2.0.0\n---\n",
		".skm-commit": newCommit + "\n",
	})
	m.cfg.SetSkill("demo", rawRef)
	m.lock.LockSkill("demo", lockfile.Entry{Source: rawRef, Ref: "old", Commit: "oldcommit"})

	res := m.Update(context.Background(), "demo")
	if res.Err != nil {
		t.Fatalf("Update() error = %v", res.Err)
	}
	if !res.Updated {
		t.Fatal("Updated = false for a stale skill")
	}
	if res.OldCommit != "oldcommit" {
		t.Errorf("OldCommit = %q", res.OldCommit)
	}
	if res.NewCommit != newCommit {
		t.Errorf("NewCommit = %q, want %q", res.NewCommit, newCommit)
	}

	entry, _ := m.LockEntry("demo")
	if entry.Commit != newCommit || entry.Version != "2.0.0" {
		t.Errorf("lock not refreshed: %+v", entry)
	}
}

func TestUpdateArchiveSkillReinstalls(t *testing.T) {
	m := testManager(t)
	archiveURL := "https://example.com/dist/demo.tar.gz"

	// Archive content has no git identity, so an update is a plain
	// reinstall. The seeded cache entry keeps the whole path offline.
	seedCache(t, m, archiveURL, "main", map[string]string{
		"SKILL.md": "---\nname: demo\nversion: 3.0.0\n---\n",
	})
	m.cfg.SetSkill("demo", archiveURL)
	m.lock.LockSkill("demo", lockfile.Entry{Source: archiveURL})

	res := m.Update(context.Background(), "demo")
	if res.Err != nil {
		t.Fatalf("Update() error = %v", res.Err)
	}
	if !res.Updated {
		t.Error("Updated = false, want archive reinstall")
	}

	entry, _ := m.LockEntry("demo")
	if entry.Version != "3.0.0" {
		t.Errorf("lock not refreshed: %+v", entry)
	}
}

func TestUpdateUnknownSkill(t *testing.T) {
	m := testManager(t)
	res := m.Update(context.Background(), "ghost")
	if !errors.Is(res.Err, ErrSkillNotFound) {
		t.Errorf("error = %v, want ErrSkillNotFound", res.Err)
	}
}

func TestUpdateFallsBackToLockSource(t *testing.T) {
	m := testManager(t)
	const commit = "abcdefabcdefabcdefabcdefabcdefabcdefabcd"
	rawRef := "org/demo@commit:" + commit

	// Declared nowhere in skills.toml, but locked from a past install.
	m.lock.LockSkill("demo", lockfile.Entry{Source: rawRef, Ref: commit, Commit: commit})

	res := m.Update(context.Background(), "demo")
	if res.Err != nil {
		t.Fatalf("Update() error = %v", res.Err)
	}
	if res.Updated {
		t.Error("Updated = true, want probe-only")
	}
}

func TestUninstall(t *testing.T) {
	m := testManager(t)
	rawRef := "org/demo@v1.0.0"
	seedCache(t, m, rawRef, "v1.0.0", map[string]string{
		"SKILL.md": "---\nname: demo\n---\n",
	})
	if _, err := m.Install(context.Background(), rawRef, InstallOptions{}); err != nil {
		t.Fatal(err)
	}

	results, err := m.Uninstall("demo")
	if err != nil {
		t.Fatalf("Uninstall() error = %v", err)
	}
	for name, ok := range results {
		if !ok {
			t.Errorf("%s: target removal failed", name)
		}
	}

	if _, err := os.Lstat(filepath.Join(m.paths.CanonicalDir(), "demo")); !os.IsNotExist(err) {
		t.Error("canonical copy still present")
	}
	if _, err := os.Lstat(filepath.Join(m.paths.Root, ".claude", "skills", "demo")); !os.IsNotExist(err) {
		t.Error("agent target still present")
	}
	if _, ok := m.cfg.Skills["demo"]; ok {
		t.Error("config entry still present")
	}
	if _, ok := m.LockEntry("demo"); ok {
		t.Error("lock entry still present")
	}
}

func TestUninstallAbsentSkill(t *testing.T) {
	m := testManager(t)
	results, err := m.Uninstall("ghost")
	if err != nil {
		t.Fatalf("Uninstall() error = %v", err)
	}
	for name, ok := range results {
		if !ok {
			t.Errorf("%s: absence should count as uninstalled", name)
		}
	}
}
