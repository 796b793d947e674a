package installer

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/quangdo/skm/internal/agent"
)

func writeSkill(t *testing.T, dir string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Join(dir, "scripts"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "SKILL.md"), []byte("---\nname: demo\n---\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "scripts", "run.sh"), []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatal(err)
	}
}

func mustTargets(t *testing.T, names ...string) []agent.Target {
	t.Helper()
	targets, err := agent.Resolve(names)
	if err != nil {
		t.Fatal(err)
	}
	return targets
}

func TestInstallToAgentsSymlink(t *testing.T) {
	root := t.TempDir()
	canonical := filepath.Join(root, ".agents", "skills", "demo")
	writeSkill(t, canonical)

	inst := New()
	targets := mustTargets(t, "claude", "opencode")
	results := inst.InstallToAgents(canonical, canonical, "demo", root, targets, ModeSymlink)

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	for name, res := range results {
		if !res.Success {
			t.Errorf("%s: Success = false, err = %v", name, res.Err)
		}
		if res.SymlinkFailed {
			t.Errorf("%s: unexpected symlink fallback", name)
		}
		info, err := os.Lstat(res.Path)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if info.Mode()&os.ModeSymlink == 0 {
			t.Errorf("%s: %s is not a symlink", name, res.Path)
		}
	}

	// opencode uses a singular "skill" directory.
	if _, err := os.Lstat(filepath.Join(root, ".opencode", "skill", "demo")); err != nil {
		t.Errorf("opencode target not at .opencode/skill: %v", err)
	}
}

func TestInstallToAgentsCopy(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, ".agents", "skills", "demo")
	writeSkill(t, src)

	inst := New()
	results := inst.InstallToAgents(src, src, "demo", root, mustTargets(t, "claude", "codex"), ModeCopy)

	for name, res := range results {
		if !res.Success {
			t.Fatalf("%s: Success = false, err = %v", name, res.Err)
		}
		info, err := os.Lstat(res.Path)
		if err != nil {
			t.Fatal(err)
		}
		if info.Mode()&os.ModeSymlink != 0 {
			t.Errorf("%s: copy mode produced a symlink", name)
		}
		if _, err := os.Stat(filepath.Join(res.Path, "scripts", "run.sh")); err != nil {
			t.Errorf("%s: nested file missing from copy: %v", name, err)
		}
	}
}

func TestInstallToAgentsSymlinkFallback(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, ".agents", "skills", "demo")
	writeSkill(t, src)

	inst := New()
	inst.createLink = func(source, target string) error {
		return errors.New("symlinks unsupported")
	}
	results := inst.InstallToAgents(src, src, "demo", root, mustTargets(t, "claude"), ModeSymlink)

	res := results["claude"]
	if !res.Success {
		t.Fatalf("Success = false, err = %v", res.Err)
	}
	if !res.SymlinkFailed {
		t.Error("SymlinkFailed = false, want true")
	}
	info, err := os.Lstat(res.Path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode()&os.ModeSymlink != 0 {
		t.Error("fallback should produce a real copy, not a symlink")
	}
	if _, err := os.Stat(filepath.Join(res.Path, "SKILL.md")); err != nil {
		t.Errorf("fallback copy incomplete: %v", err)
	}
}

func TestInstallToAgentsFailureIsLocal(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, ".agents", "skills", "demo")
	writeSkill(t, src)

	inst := New()
	failing := agent.Target{Name: "broken", SkillsDir: "missing/skills"}
	inst.createLink = func(source, target string) error {
		if filepath.Base(filepath.Dir(filepath.Dir(source))) == "missing" {
			return errors.New("link failed")
		}
		if err := os.MkdirAll(filepath.Dir(source), 0755); err != nil {
			return err
		}
		return os.Symlink(target, source)
	}
	// Make the fallback copy fail too by occupying the parent with a file.
	if err := os.WriteFile(filepath.Join(root, "missing"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	targets := append(mustTargets(t, "claude"), failing)
	results := inst.InstallToAgents(src, src, "demo", root, targets, ModeSymlink)

	if !results["claude"].Success {
		t.Errorf("claude should succeed despite broken sibling: %v", results["claude"].Err)
	}
	if results["broken"].Success {
		t.Error("broken target should fail")
	}
	if results["broken"].Err == nil {
		t.Error("broken target should carry its error")
	}
}

func TestInstallReplacesExistingTarget(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, ".agents", "skills", "demo")
	writeSkill(t, src)

	inst := New()
	targets := mustTargets(t, "claude")
	stale := targets[0].SkillPath(root, "demo")
	if err := os.MkdirAll(stale, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(stale, "old.txt"), []byte("stale"), 0644); err != nil {
		t.Fatal(err)
	}

	results := inst.InstallToAgents(src, src, "demo", root, targets, ModeSymlink)
	if !results["claude"].Success {
		t.Fatalf("install over existing dir failed: %v", results["claude"].Err)
	}
	info, err := os.Lstat(stale)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode()&os.ModeSymlink == 0 {
		t.Error("existing directory was not replaced by a symlink")
	}
}

func TestInstallPopulatesCanonicalOnce(t *testing.T) {
	root := t.TempDir()
	src := t.TempDir()
	writeSkill(t, src)
	canonical := filepath.Join(root, ".agents", "skills", "demo")

	inst := New()
	results := inst.InstallToAgents(src, canonical, "demo", root, mustTargets(t, "claude"), ModeSymlink)
	if !results["claude"].Success {
		t.Fatalf("install failed: %v", results["claude"].Err)
	}
	if _, err := os.Stat(filepath.Join(canonical, "SKILL.md")); err != nil {
		t.Errorf("canonical copy not populated: %v", err)
	}
	if got := results["claude"].CanonicalPath; got != canonical {
		t.Errorf("CanonicalPath = %q, want %q", got, canonical)
	}
}

func TestUninstallFromAgents(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, ".agents", "skills", "demo")
	writeSkill(t, src)

	inst := New()
	targets := mustTargets(t, "claude", "codex")
	inst.InstallToAgents(src, src, "demo", root, targets, ModeSymlink)

	results := inst.UninstallFromAgents("demo", root, targets)
	for name, ok := range results {
		if !ok {
			t.Errorf("%s: uninstall failed", name)
		}
	}
	for _, tgt := range targets {
		if _, err := os.Lstat(tgt.SkillPath(root, "demo")); !os.IsNotExist(err) {
			t.Errorf("%s: target path still present", tgt.Name)
		}
	}

	// Absence counts as success.
	again := inst.UninstallFromAgents("demo", root, targets)
	for name, ok := range again {
		if !ok {
			t.Errorf("%s: uninstalling an absent skill should succeed", name)
		}
	}
}
