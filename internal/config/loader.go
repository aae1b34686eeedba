package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir string
}

// NewLoader creates a new configuration loader for the given root directory.
func NewLoader(rootDir string) Loader {
	return &loader{
		rootDir: rootDir,
	}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (REFAUDIT_*)
// 2. Config file (.refaudit/config.yml or .refaudit/config.yaml)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	// Set up config file search
	configDir := filepath.Join(l.rootDir, ".refaudit")
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)

	// Enable environment variable overrides
	v.SetEnvPrefix("REFAUDIT")
	v.AutomaticEnv()
	// Replace . with _ in env var names (e.g., REFAUDIT_COMPARE_BASE_REF)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Bind environment variables to config keys
	v.BindEnv("compare.base_ref")
	v.BindEnv("compare.detailed")
	v.BindEnv("compare.collision_policy")
	v.BindEnv("python.runtime_dir")
	v.BindEnv("history.enabled")
	v.BindEnv("history.location")
	v.BindEnv("watch.debounce_ms")

	setDefaults(v)

	// Try to read config file
	if err := v.ReadInConfig(); err != nil {
		// Config file not found is acceptable - we'll use defaults + env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("compare.base_ref", defaults.Compare.BaseRef)
	v.SetDefault("compare.detailed", defaults.Compare.Detailed)
	v.SetDefault("compare.collision_policy", defaults.Compare.CollisionPolicy)

	v.SetDefault("paths.include", defaults.Paths.Include)
	v.SetDefault("paths.ignore", defaults.Paths.Ignore)

	v.SetDefault("python.runtime_dir", defaults.Python.RuntimeDir)

	v.SetDefault("history.enabled", defaults.History.Enabled)
	v.SetDefault("history.location", defaults.History.Location)

	v.SetDefault("watch.debounce_ms", defaults.Watch.DebounceMs)
}

// LoadConfig is a convenience function that creates a loader and loads config.
// It uses the current working directory as the root.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd).Load()
}

// LoadConfigFromDir loads configuration from a specific directory.
func LoadConfigFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}
