package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/refaudit/internal/report"
)

var (
	checkBaseRef  string
	checkDetailed bool
)

// checkCmd audits the worktree against the base revision, or two
// directory trees when both are given as arguments.
var checkCmd = &cobra.Command{
	Use:   "check [OLD_DIR NEW_DIR]",
	Short: "Audit definitions against the base revision",
	Long: `Check compares the current worktree's definitions against the merge base
with the base branch (auto-detected main/master unless --base is given).
With two directory arguments it compares the trees directly, no git needed.

Exits 0 when the revisions are identical, 1 when definitions were removed,
added, or modified.`,
	Args: cobra.RangeArgs(0, 2),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&checkBaseRef, "base", "", "base ref to compare against (default: auto-detect)")
	checkCmd.Flags().BoolVar(&checkDetailed, "detailed", false, "show line diffs for modified definitions")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		return fmt.Errorf("directory mode needs both OLD_DIR and NEW_DIR")
	}

	runner, cfg, err := buildRunner()
	if err != nil {
		return err
	}

	if checkBaseRef != "" {
		cfg.Compare.BaseRef = checkBaseRef
	}
	if checkDetailed {
		cfg.Compare.Detailed = true
	}

	progress := NewCLIProgressReporter(quiet)
	runner.SetProgress(progress.Update)

	result, err := runAudit(cmd.Context(), runner, args)
	progress.Finish()
	if err != nil {
		return err
	}

	renderer := report.NewRenderer(os.Stdout)
	renderer.Detailed = cfg.Compare.Detailed
	renderer.Render(result)

	recordRun(cfg, result)

	if !result.Identical() {
		// Differences are the signal, not a malfunction: report them
		// through the exit code without a usage error.
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		os.Exit(1)
	}
	return nil
}
