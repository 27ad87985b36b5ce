package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kstrand/autovault/internal/history"
	"github.com/kstrand/autovault/internal/structure"
	"github.com/kstrand/autovault/internal/ui"
)

var testStrict bool

var testCmd = &cobra.Command{
	Use:     "test",
	Aliases: []string{"verify"},
	Short:   "Verify the vault matches the configured structure",
	Long: `Checks that every configured customer has its directories, index notes
and hub link in place. Nothing is written; drift is reported as errors
(missing structure) and warnings (hub drift, width overflows, missing
optional folders).

Warnings never affect the exit code unless --strict is given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadRunConfig()
		if err != nil {
			return err
		}

		vaultPath := getVaultPath()
		if !isJSONOutput() {
			fmt.Printf("Checking vault: %s\n\n", vaultPath)
		}

		started := time.Now()
		result := structure.Verify(cfg, getLocal().HubFile)
		if !dryRun {
			recordHistory(history.Run{
				Op:         "test",
				StartedAt:  started,
				DurationMs: time.Since(started).Milliseconds(),
				Errors:     len(result.Errors),
				OK:         result.OK(),
			})
		}

		failed := !result.OK() || (testStrict && len(result.Warnings) > 0)

		if isJSONOutput() {
			outputJSON(Response{
				OK:   !failed,
				Data: result,
				Meta: &Meta{Count: len(result.Errors) + len(result.Warnings)},
			})
			if failed {
				os.Exit(1)
			}
			return nil
		}

		for _, issue := range result.Errors {
			if issue.Path != "" {
				fmt.Printf("ERROR: %s - %s\n", issue.Path, issue.Message)
			} else {
				fmt.Printf("ERROR: %s\n", issue.Message)
			}
		}
		for _, issue := range result.Warnings {
			if issue.Path != "" {
				fmt.Printf("WARN:  %s - %s\n", issue.Path, issue.Message)
			} else {
				fmt.Printf("WARN:  %s\n", issue.Message)
			}
		}

		fmt.Println()
		if result.OK() && len(result.Warnings) == 0 {
			fmt.Println(ui.Successf("structure matches the run config (%d customers, %d sections)",
				len(cfg.ValidIDs()), len(cfg.Sections)))
		} else {
			fmt.Println(ui.ErrorWarningCounts(len(result.Errors), len(result.Warnings)))
		}

		if failed {
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	testCmd.Flags().BoolVar(&testStrict, "strict", false, "Treat warnings as errors")
	rootCmd.AddCommand(testCmd)
}
