// Package agent declares the registry of install targets. Each agent keeps
// its own skills-directory convention; conventions are not uniform, so
// every path decision is table-driven.
package agent

import (
	"fmt"
	"path/filepath"
	"sort"
)

// Target is one consumer directory convention.
type Target struct {
	Name      string
	SkillsDir string // relative to the install root, slash-separated
}

// targets maps agent name to its convention. Note opencode: it uses a
// singular "skill" directory, unlike every other agent.
var targets = map[string]Target{
	"claude":   {Name: "claude", SkillsDir: ".claude/skills"},
	"codex":    {Name: "codex", SkillsDir: ".codex/skills"},
	"cursor":   {Name: "cursor", SkillsDir: ".cursor/skills"},
	"windsurf": {Name: "windsurf", SkillsDir: ".windsurf/skills"},
	"opencode": {Name: "opencode", SkillsDir: ".opencode/skill"},
}

// Lookup returns the target for an agent name.
func Lookup(name string) (Target, bool) {
	t, ok := targets[name]
	return t, ok
}

// Resolve maps agent names to targets, failing on the first unknown name.
func Resolve(names []string) ([]Target, error) {
	out := make([]Target, 0, len(names))
	for _, name := range names {
		t, ok := targets[name]
		if !ok {
			return nil, fmt.Errorf("unknown agent %q (known: %v)", name, Names())
		}
		out = append(out, t)
	}
	return out, nil
}

// Names returns all known agent names, sorted.
func Names() []string {
	names := make([]string, 0, len(targets))
	for name := range targets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SkillPath returns the path a skill occupies under this target at root.
func (t Target) SkillPath(root, skillName string) string {
	return filepath.Join(root, filepath.FromSlash(t.SkillsDir), skillName)
}
