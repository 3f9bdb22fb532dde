package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where syncview looks for its config in the workspace.
const DefaultPath = "syncview.yaml"

// Config is the root of syncview.yaml: which shared directories map to
// which project directories, global excludes, and tuning knobs for the
// diff engine and sync behavior.
type Config struct {
	Mappings []Mapping `yaml:"mappings"`
	// Exclude patterns apply to every mapping on top of the built-in
	// defaults. "*suffix" matches path suffixes, anything else matches
	// as a substring.
	Exclude []string `yaml:"exclude,omitempty"`
	Engine  Engine   `yaml:"engine,omitempty"`
	Sync    Sync     `yaml:"sync,omitempty"`
}

// Mapping pairs one shared directory with its project-side location.
type Mapping struct {
	Shared  string   `yaml:"shared"`
	Project string   `yaml:"project"`
	Exclude []string `yaml:"exclude,omitempty"`
}

// Engine exposes the diff view tuning.
type Engine struct {
	// ContextLines is how many unchanged rows stay visible around a
	// fold.
	ContextLines int `yaml:"context_lines"`
	// SimilarityThreshold is the minimum token overlap for two lines to
	// pair as a modification instead of a remove/add.
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
}

// Sync carries defaults for the sync command.
type Sync struct {
	Backup          bool `yaml:"backup"`
	ContinueOnError bool `yaml:"continue_on_error"`
}

// Default returns the config used when syncview.yaml has no say.
func Default() *Config {
	return &Config{
		Engine: Engine{ContextLines: 3, SimilarityThreshold: 0.3},
		Sync:   Sync{Backup: true, ContinueOnError: true},
	}
}

// Load reads and validates a config file. Absent keys keep their
// defaults, so a file listing only mappings is complete.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	c := Default()
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse config YAML: %w", err)
	}
	if len(c.Mappings) == 0 {
		return nil, fmt.Errorf("config has no mappings")
	}
	for i, m := range c.Mappings {
		if m.Shared == "" || m.Project == "" {
			return nil, fmt.Errorf("mapping %d: shared and project are both required", i)
		}
	}
	if c.Engine.ContextLines < 0 {
		return nil, fmt.Errorf("engine.context_lines must not be negative")
	}
	if c.Engine.SimilarityThreshold < 0 || c.Engine.SimilarityThreshold > 1 {
		return nil, fmt.Errorf("engine.similarity_threshold must be between 0 and 1")
	}
	return c, nil
}

func Save(path string, c *Config) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Clone deep-copies a config so a TUI session can edit freely.
func Clone(c *Config) *Config {
	out := *c
	out.Mappings = make([]Mapping, len(c.Mappings))
	for i, m := range c.Mappings {
		cp := m
		if m.Exclude != nil {
			cp.Exclude = append([]string(nil), m.Exclude...)
		}
		out.Mappings[i] = cp
	}
	if c.Exclude != nil {
		out.Exclude = append([]string(nil), c.Exclude...)
	}
	return &out
}
