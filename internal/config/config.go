package config

import (
	"github.com/mvp-joe/refaudit/internal/diff"
)

// Collision policies for duplicate definition names within one revision.
const (
	CollisionWarn = "warn" // report and keep the lexicographically last file's definition
	CollisionFail = "fail" // abort the audit
)

// Config represents the complete refaudit configuration.
// It can be loaded from .refaudit/config.yml with environment variable overrides.
type Config struct {
	Compare CompareConfig `yaml:"compare" mapstructure:"compare"`
	Paths   PathsConfig   `yaml:"paths" mapstructure:"paths"`
	Python  PythonConfig  `yaml:"python" mapstructure:"python"`
	History HistoryConfig `yaml:"history" mapstructure:"history"`
	Watch   WatchConfig   `yaml:"watch" mapstructure:"watch"`

	// Aliases maps a language name to its declared renames, applied
	// before definitions are classified.
	Aliases map[string][]diff.RenameAlias `yaml:"aliases" mapstructure:"aliases"`
}

// CompareConfig controls how the two revisions are compared.
type CompareConfig struct {
	BaseRef         string `yaml:"base_ref" mapstructure:"base_ref"`                 // empty means auto-detect (main/master ancestor)
	Detailed        bool   `yaml:"detailed" mapstructure:"detailed"`                 // attach line diffs to modified entries
	CollisionPolicy string `yaml:"collision_policy" mapstructure:"collision_policy"` // "warn" or "fail"
}

// PathsConfig defines which files to audit and which to ignore.
type PathsConfig struct {
	Include []string `yaml:"include" mapstructure:"include"` // glob patterns for source files
	Ignore  []string `yaml:"ignore" mapstructure:"ignore"`   // glob patterns to ignore
}

// PythonConfig configures the embedded interpreter backend.
type PythonConfig struct {
	RuntimeDir string `yaml:"runtime_dir" mapstructure:"runtime_dir"` // Override default ~/.refaudit/python
}

// HistoryConfig configures the local run log.
type HistoryConfig struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	Location string `yaml:"location" mapstructure:"location"` // Override default ~/.refaudit/history.db
}

// WatchConfig configures watch mode.
type WatchConfig struct {
	DebounceMs int `yaml:"debounce_ms" mapstructure:"debounce_ms"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Compare: CompareConfig{
			BaseRef:         "",
			Detailed:        false,
			CollisionPolicy: CollisionWarn,
		},
		Paths: PathsConfig{
			Include: []string{
				"**/*.py",
				"**/*.ts",
				"**/*.tsx",
				"**/*.mts",
				"**/*.cts",
				"**/*.js",
				"**/*.jsx",
				"**/*.mjs",
				"**/*.cjs",
			},
			Ignore: []string{
				"node_modules/**",
				"vendor/**",
				".git/**",
				"dist/**",
				"build/**",
				"__pycache__/**",
				"*.min.js",
				"*.d.ts",
			},
		},
		Python: PythonConfig{
			RuntimeDir: "",
		},
		History: HistoryConfig{
			Enabled:  true,
			Location: "",
		},
		Watch: WatchConfig{
			DebounceMs: 400,
		},
		Aliases: map[string][]diff.RenameAlias{},
	}
}
