package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kstrand/autovault/internal/structure"
	"github.com/kstrand/autovault/internal/ui"
)

var structureWithTemplates bool

var structureCmd = &cobra.Command{
	Use:   "structure",
	Short: "Generate the customer/section folder tree",
	Long: `Creates Run/<CODE>/ and Run/<CODE>/<CODE>-<SECTION>/ directories for
every configured customer, fills in missing index notes, and writes the
hub note when absent.

The pass is idempotent: existing directories and files are kept
untouched. Malformed customer entries are reported and skipped; the
rest of the run continues.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadRunConfig()
		if err != nil {
			return err
		}

		opts := structure.Options{
			HubFile: getLocal().HubFile,
			DryRun:  dryRun,
			Logger:  logger,
		}
		if structureWithTemplates {
			store, err := loadTemplateStore(cfg)
			if err != nil {
				return err
			}
			opts.Store = store
		}

		started := time.Now()
		report, err := structure.NewGenerator(cfg, opts).Generate()
		if err != nil {
			return handleError(ErrStructureFailed, err, "")
		}
		warnings := widthWarnings(cfg)
		if !dryRun {
			recordHistory(newRun("structure", started, report))
		}

		printStructureReport := func() {
			printItemErrors(report.Errors)
			for _, action := range report.Actions {
				switch action.Kind {
				case structure.ActionCreateDir:
					fmt.Println(ui.Successf("created %s/", action.Path))
				case structure.ActionCreateFile, structure.ActionWriteFile:
					fmt.Println(ui.Successf("wrote %s", ui.FilePath(action.Path)))
				case structure.ActionWriteHub:
					fmt.Println(ui.Successf("wrote hub %s", ui.FilePath(action.Path)))
				case structure.ActionKeep:
					if verbose {
						fmt.Println(ui.Skipped(fmt.Sprintf("kept %s", action.Path)))
					}
				}
			}
			fmt.Println()
			summary := fmt.Sprintf("%d dirs created, %d files created, %d kept",
				report.DirsCreated, report.FilesCreated, report.Kept)
			if report.FilesWritten > 0 {
				summary += fmt.Sprintf(", %d files written", report.FilesWritten)
			}
			if report.DryRun {
				summary += " (dry run)"
			}
			if report.HasErrors() {
				fmt.Println(ui.Errorf("%s; %d entr%s skipped", summary,
					len(report.Errors), iesOrY(len(report.Errors))))
			} else {
				fmt.Println(ui.Success(summary))
			}
		}

		if report.HasErrors() {
			failPartial(report, warnings, printStructureReport)
		}

		if isJSONOutput() {
			outputSuccessWithWarnings(report, warnings, &Meta{Count: len(report.Actions)})
			return nil
		}
		printStructureReport()
		return nil
	},
}

func iesOrY(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}

func init() {
	structureCmd.Flags().BoolVar(&structureWithTemplates, "templates", false, "Fill new index notes from templates.json")
	rootCmd.AddCommand(structureCmd)
}
