package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/refaudit/internal/config"
	"github.com/mvp-joe/refaudit/internal/history"
)

var historyLimit int

// historyCmd lists past audit runs.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past audit runs",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of runs to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	cfg, err := config.LoadConfigFromDir(wd)
	if err != nil {
		return err
	}

	location := cfg.History.Location
	if location == "" {
		location, err = history.DefaultLocation()
		if err != nil {
			return err
		}
	}

	store, err := history.Open(location)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.List(historyLimit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No audit runs recorded yet.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tBRANCH\tBASE\tVERDICT\t-\t+\t~\t=\tPROBLEMS")
	for _, e := range entries {
		verdict := "different"
		if e.Identical {
			verdict = "identical"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%d\t%d\n",
			e.CreatedAt.Local().Format("2006-01-02 15:04"),
			e.Branch, e.BaseRef, verdict,
			e.Removed, e.Added, e.Modified, e.Matching,
			e.Failures+e.Collisions)
	}
	return w.Flush()
}
