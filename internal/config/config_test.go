package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/refaudit/internal/diff"
)

// Test Plan for config:
// - Defaults stand alone (no config file, no env)
// - Config file values override defaults
// - Environment variables override the config file
// - Per-language rename aliases parse from YAML
// - Validation rejects bad collision policies, empty includes,
//   negative debounce, and self-mapping aliases
// - Malformed YAML fails loading with a useful error

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadConfigFromDir(dir)
	require.NoError(t, err)

	assert.Equal(t, "", cfg.Compare.BaseRef)
	assert.False(t, cfg.Compare.Detailed)
	assert.Equal(t, CollisionWarn, cfg.Compare.CollisionPolicy)
	assert.Contains(t, cfg.Paths.Include, "**/*.py")
	assert.Contains(t, cfg.Paths.Ignore, "node_modules/**")
	assert.True(t, cfg.History.Enabled)
	assert.Equal(t, 400, cfg.Watch.DebounceMs)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
compare:
  base_ref: origin/develop
  detailed: true
  collision_policy: fail
paths:
  include:
    - "src/**/*.py"
  ignore:
    - "src/generated/**"
watch:
  debounce_ms: 1000
`)

	cfg, err := LoadConfigFromDir(dir)
	require.NoError(t, err)

	assert.Equal(t, "origin/develop", cfg.Compare.BaseRef)
	assert.True(t, cfg.Compare.Detailed)
	assert.Equal(t, CollisionFail, cfg.Compare.CollisionPolicy)
	assert.Equal(t, []string{"src/**/*.py"}, cfg.Paths.Include)
	assert.Equal(t, []string{"src/generated/**"}, cfg.Paths.Ignore)
	assert.Equal(t, 1000, cfg.Watch.DebounceMs)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
compare:
  base_ref: main
`)

	t.Setenv("REFAUDIT_COMPARE_BASE_REF", "release/2.0")
	t.Setenv("REFAUDIT_COMPARE_DETAILED", "true")

	cfg, err := LoadConfigFromDir(dir)
	require.NoError(t, err)

	assert.Equal(t, "release/2.0", cfg.Compare.BaseRef)
	assert.True(t, cfg.Compare.Detailed)
}

func TestLoad_Aliases(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
aliases:
  python:
    - from: "function:fetch_user"
      to: "function:load_user"
  typescript:
    - from: "class:Store"
      to: "class:Repository"
    - from: "function:init"
      to: "function:bootstrap"
`)

	cfg, err := LoadConfigFromDir(dir)
	require.NoError(t, err)

	require.Len(t, cfg.Aliases["python"], 1)
	assert.Equal(t, diff.RenameAlias{From: "function:fetch_user", To: "function:load_user"},
		cfg.Aliases["python"][0])
	assert.Len(t, cfg.Aliases["typescript"], 2)
}

func TestLoad_MalformedYAML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "compare: [not: a: map\n")

	_, err := LoadConfigFromDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file")
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:   "defaults are valid",
			mutate: func(cfg *Config) {},
		},
		{
			name: "bad collision policy",
			mutate: func(cfg *Config) {
				cfg.Compare.CollisionPolicy = "explode"
			},
			wantErr: ErrInvalidCollisionPolicy,
		},
		{
			name: "empty include patterns",
			mutate: func(cfg *Config) {
				cfg.Paths.Include = nil
			},
			wantErr: ErrEmptyInclude,
		},
		{
			name: "negative debounce",
			mutate: func(cfg *Config) {
				cfg.Watch.DebounceMs = -1
			},
			wantErr: ErrInvalidDebounce,
		},
		{
			name: "alias missing target",
			mutate: func(cfg *Config) {
				cfg.Aliases = map[string][]diff.RenameAlias{
					"python": {{From: "function:old"}},
				}
			},
			wantErr: ErrInvalidAlias,
		},
		{
			name: "alias maps to itself",
			mutate: func(cfg *Config) {
				cfg.Aliases = map[string][]diff.RenameAlias{
					"python": {{From: "function:same", To: "function:same"}},
				}
			},
			wantErr: ErrInvalidAlias,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := Default()
			tt.mutate(cfg)

			err := Validate(cfg)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	configDir := filepath.Join(dir, ".refaudit")
	require.NoError(t, os.MkdirAll(configDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.yml"), []byte(content), 0644))
}
