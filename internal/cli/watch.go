package cli

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/refaudit/internal/report"
	"github.com/mvp-joe/refaudit/internal/watcher"
)

// watchCmd re-runs the audit whenever audited source files change.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-audit on every source change",
	Long: `Watch monitors the repository and re-runs the audit against the base
revision after each batch of file changes, so a refactor can be verified
continuously while it is being made.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&checkBaseRef, "base", "", "base ref to compare against (default: auto-detect)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	runner, cfg, err := buildRunner()
	if err != nil {
		return err
	}
	if checkBaseRef != "" {
		cfg.Compare.BaseRef = checkBaseRef
	}

	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	extensions := []string{".py", ".ts", ".tsx", ".mts", ".cts", ".js", ".jsx", ".mjs", ".cjs"}
	debounce := time.Duration(cfg.Watch.DebounceMs) * time.Millisecond

	fw, err := watcher.NewFileWatcher(wd, extensions, debounce)
	if err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}
	defer fw.Stop()

	audit := func() {
		// Suspend event delivery while extracting so our own reads
		// don't retrigger the cycle.
		fw.Pause()
		defer fw.Resume()

		result, err := runner.RunAgainstBase(cmd.Context(), wd)
		if err != nil {
			log.Printf("Audit failed: %v", err)
			return
		}
		report.NewRenderer(os.Stdout).Render(result)
		recordRun(cfg, result)
	}

	log.Printf("Watching %s (debounce %s)...", wd, debounce)
	audit()

	if err := fw.Start(cmd.Context(), func(files []string) {
		log.Printf("%d files changed, re-auditing...", len(files))
		audit()
	}); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	log.Println("Stopping watch...")
	return nil
}
