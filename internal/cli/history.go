package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kstrand/autovault/internal/history"
	"github.com/kstrand/autovault/internal/ui"
)

var (
	historyLimit int
	historyOps   []string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent toolkit runs",
	Long: `Lists recent structure, template, test and cleanup runs recorded in the
vault's history database (.autovault/history.db).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := history.Open(getVaultPath())
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}
		defer store.Close()

		var runs []history.Run
		if len(historyOps) > 0 {
			runs, err = store.RecentByOps(historyOps, historyLimit)
		} else {
			runs, err = store.Recent(historyLimit)
		}
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{"runs": runs}, &Meta{Count: len(runs)})
			return nil
		}

		if len(runs) == 0 {
			fmt.Println(ui.Info("no runs recorded yet"))
			return nil
		}
		fmt.Println(ui.Header("Recent runs"))
		for _, run := range runs {
			status := ui.Success("ok")
			if !run.OK {
				status = ui.Errorf("%d error%s", run.Errors, pluralSuffix(run.Errors))
			}
			line := fmt.Sprintf("%s  %-15s %s", run.StartedAt.Local().Format("2006-01-02 15:04:05"), run.Op, status)
			if run.Created > 0 || run.Kept > 0 {
				line += fmt.Sprintf("  (%d created, %d kept)", run.Created, run.Kept)
			}
			if run.DryRun {
				line += "  " + ui.Hint("[dry run]")
			}
			if run.DurationMs > 0 {
				line += "  " + ui.Hint(time.Duration(run.DurationMs*int64(time.Millisecond)).String())
			}
			fmt.Println(line)
		}
		return nil
	},
}

func pluralSuffix(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of runs to show")
	historyCmd.Flags().StringSliceVar(&historyOps, "op", nil, "Only show runs for these operations")
	rootCmd.AddCommand(historyCmd)
}
