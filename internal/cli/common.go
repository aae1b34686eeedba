package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/mvp-joe/refaudit/internal/audit"
	"github.com/mvp-joe/refaudit/internal/config"
	"github.com/mvp-joe/refaudit/internal/extract"
	"github.com/mvp-joe/refaudit/internal/git"
	"github.com/mvp-joe/refaudit/internal/history"
)

// buildRunner wires configuration, extractors, and git into a ready
// audit runner for the current working directory.
func buildRunner() (*audit.Runner, *config.Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	cfg, err := config.LoadConfigFromDir(wd)
	if err != nil {
		return nil, nil, err
	}

	registry := extract.NewRegistry(
		extract.NewLazyPythonExtractor(cfg.Python.RuntimeDir),
		extract.NewTypeScriptExtractor(),
		extract.NewTSXExtractor(),
		extract.NewJavaScriptExtractor(),
	)

	cache, err := extract.NewResultCache()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build extraction cache: %w", err)
	}

	runner, err := audit.NewRunner(cfg, git.NewOperations(), registry, cache)
	if err != nil {
		return nil, nil, err
	}
	return runner, cfg, nil
}

// runAudit dispatches between git mode and directory mode.
func runAudit(ctx context.Context, runner *audit.Runner, args []string) (*audit.RunResult, error) {
	if len(args) == 2 {
		return runner.RunDirs(ctx, args[0], args[1])
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return runner.RunAgainstBase(ctx, wd)
}

// recordRun appends the result to the history log when enabled.
// History failures are reported but never fail the audit itself.
func recordRun(cfg *config.Config, result *audit.RunResult) {
	if !cfg.History.Enabled {
		return
	}

	location := cfg.History.Location
	if location == "" {
		var err error
		location, err = history.DefaultLocation()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: history disabled: %v\n", err)
			return
		}
	}

	store, err := history.Open(location)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: history disabled: %v\n", err)
		return
	}
	defer store.Close()

	if _, err := store.Record(result); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to record run: %v\n", err)
	}
}
