// Package manifest reads the SKILL.md metadata of a skill directory. It is
// deliberately narrow: given a directory, return name, version and
// description, or report that no valid manifest exists.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the manifest file every skill directory must carry.
const FileName = "SKILL.md"

// Manifest is the skill's own declared metadata.
type Manifest struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Description string `yaml:"description"`
}

// ErrNoManifest reports a directory without a SKILL.md.
var ErrNoManifest = fmt.Errorf("no %s found", FileName)

// Read parses the YAML frontmatter of dir/SKILL.md. A manifest without a
// name falls back to the directory name.
func Read(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoManifest
		}
		return nil, err
	}

	front, err := frontmatter(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Join(dir, FileName), err)
	}

	var m Manifest
	if err := yaml.Unmarshal([]byte(front), &m); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Join(dir, FileName), err)
	}
	if m.Name == "" {
		m.Name = filepath.Base(dir)
	}
	return &m, nil
}

// IsSkillDir reports whether dir contains a manifest file.
func IsSkillDir(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, FileName))
	return err == nil && !info.IsDir()
}

func frontmatter(content string) (string, error) {
	content = strings.TrimPrefix(content, "\uFEFF")
	if !strings.HasPrefix(content, "---") {
		return "", fmt.Errorf("missing frontmatter")
	}

	rest := content[len("---"):]
	rest = strings.TrimPrefix(rest, "\r\n")
	rest = strings.TrimPrefix(rest, "\n")

	for _, delim := range []string{"\n---\n", "\n---\r\n", "\r\n---\r\n", "\r\n---\n"} {
		if i := strings.Index(rest, delim); i >= 0 {
			return rest[:i], nil
		}
	}
	// Frontmatter may close at end of file.
	trimmed := strings.TrimRight(rest, "\r\n ")
	if strings.HasSuffix(trimmed, "\n---") {
		return trimmed[:len(trimmed)-len("\n---")], nil
	}
	return "", fmt.Errorf("unterminated frontmatter")
}
