package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the skills.toml project configuration file
type Config struct {
	// Declared skills: name -> reference, optionally with a #fragment
	// naming a specific skill inside a monorepo reference.
	Skills map[string]string `toml:"skills,omitempty"`

	// Install defaults
	Install InstallConfig `toml:"install"`

	// Registry base URL overrides: source name -> base URL
	Registries map[string]string `toml:"registries,omitempty"`

	// Skills registry API settings
	Registry RegistryConfig `toml:"registry"`
}

// InstallConfig holds install defaults
type InstallConfig struct {
	// Mode is "symlink" or "copy"
	Mode string `toml:"mode"`

	// Targets are the agents receiving each install
	Targets []string `toml:"targets"`

	// SkillsDir overrides the legacy install directory; when set to a
	// non-default value, new installs target it instead of the
	// canonical store.
	SkillsDir string `toml:"skills_dir,omitempty"`
}

// RegistryConfig holds skills registry API settings
type RegistryConfig struct {
	// BaseURL of the registry API (for self-hosted)
	BaseURL string `toml:"base_url,omitempty"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Skills: make(map[string]string),
		Install: InstallConfig{
			Mode:    "symlink",
			Targets: []string{"claude"},
		},
	}
}

// Load reads skills.toml from dir, returning defaults when absent.
func Load(dir string) (*Config, error) {
	data, err := os.ReadFile(filepath.Join(dir, "skills.toml"))
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.Skills == nil {
		cfg.Skills = make(map[string]string)
	}
	return cfg, nil
}

// Save writes skills.toml to dir.
func (c *Config) Save(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "skills.toml"), data, 0644)
}

// SetSkill declares or replaces a skill reference.
func (c *Config) SetSkill(name, reference string) {
	if c.Skills == nil {
		c.Skills = make(map[string]string)
	}
	c.Skills[name] = reference
}

// RemoveSkill drops a declared skill.
func (c *Config) RemoveSkill(name string) {
	delete(c.Skills, name)
}

// HasCustomSkillsDir reports whether the project explicitly requests a
// non-default legacy-style install directory.
func (c *Config) HasCustomSkillsDir() bool {
	return c.Install.SkillsDir != "" && c.Install.SkillsDir != DefaultLegacyDir
}
