package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kstrand/autovault/internal/history"
	"github.com/kstrand/autovault/internal/structure"
	"github.com/kstrand/autovault/internal/ui"
)

var cleanupYes bool

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove customer folders that are not in the run config",
	Long: `Scans Run/ for CUST-* directories that do not belong to any configured
customer and removes them. Requires EnableCleanup in the run config and
an interactive confirmation (or --yes).

Anything that should survive a cleanup belongs in _archive/ or in the
run config.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadRunConfig()
		if err != nil {
			return err
		}

		if !cfg.EnableCleanup {
			return handleErrorMsg(ErrCleanupDisabled,
				"cleanup is disabled for this vault",
				"Set \"EnableCleanup\": true in the run config to allow it")
		}

		extra, err := structure.FindExtraneous(cfg)
		if err != nil {
			return handleError(ErrStructureFailed, err, "")
		}

		if len(extra) == 0 {
			if isJSONOutput() {
				outputSuccess(map[string]interface{}{"removed": []string{}, "dry_run": dryRun}, &Meta{Count: 0})
				return nil
			}
			fmt.Println(ui.Success("nothing to clean up"))
			return nil
		}

		if !dryRun {
			if !isJSONOutput() {
				fmt.Println(ui.Warningf("about to remove %d director%s:", len(extra), iesOrY(len(extra))))
				for _, rel := range extra {
					fmt.Printf("  %s\n", ui.FilePath(rel))
				}
			}
			if !confirmerFor(cleanupYes).Confirm("Remove these directories?") {
				return handleErrorMsg(ErrConfirmationRequired,
					"cleanup not confirmed",
					"Re-run with --yes to skip the prompt")
			}
		}

		started := time.Now()
		removed, err := structure.RemoveExtraneous(cfg, extra, dryRun)
		if err != nil {
			return handleError(ErrStructureFailed, err, "")
		}
		if !dryRun {
			recordHistory(history.Run{
				Op:         "cleanup",
				StartedAt:  started,
				DurationMs: time.Since(started).Milliseconds(),
				Created:    0,
				Errors:     0,
				OK:         true,
			})
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{"removed": removed, "dry_run": dryRun}, &Meta{Count: len(removed)})
			return nil
		}

		for _, rel := range removed {
			if dryRun {
				fmt.Println(ui.Info(fmt.Sprintf("would remove %s", rel)))
			} else {
				fmt.Println(ui.Successf("removed %s", rel))
			}
		}
		suffix := ""
		if dryRun {
			suffix = " (dry run)"
		}
		fmt.Println()
		fmt.Println(ui.Successf("%d director%s removed%s", len(removed), iesOrY(len(removed)), suffix))
		return nil
	},
}

func init() {
	cleanupCmd.Flags().BoolVar(&cleanupYes, "yes", false, "Skip the confirmation prompt")
	rootCmd.AddCommand(cleanupCmd)
}
