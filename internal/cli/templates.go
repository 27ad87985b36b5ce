package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/kstrand/autovault/internal/atomicfile"
	"github.com/kstrand/autovault/internal/structure"
	"github.com/kstrand/autovault/internal/ui"
)

var templatesExportForce bool

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Manage index note templates",
	Long: `Templates live in config/templates.json. For hands-on editing they can
be exported as markdown working copies into the vault's template folder,
edited in any editor, and synced back.`,
}

var templatesExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write template working copies into the vault template folder",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadRunConfig()
		if err != nil {
			return err
		}
		store, err := loadTemplateStore(cfg)
		if err != nil {
			return err
		}

		templateDir := filepath.Join(cfg.ResolveVaultRoot(), filepath.FromSlash(cfg.TemplateDir()))
		if !dryRun {
			if err := os.MkdirAll(templateDir, 0755); err != nil {
				return handleError(ErrFileWriteError, fmt.Errorf("create template folder: %w", err), "")
			}
		}

		type exported struct {
			Name   string `json:"name"`
			Status string `json:"status"`
		}
		var results []exported
		written, kept := 0, 0

		for _, wc := range store.WorkingCopies(cfg) {
			// Empty slots (typically unused note templates) are not exported.
			if wc.Body == "" {
				continue
			}
			target := filepath.Join(templateDir, wc.Name)
			if _, err := os.Stat(target); err == nil && !templatesExportForce {
				results = append(results, exported{Name: wc.Name, Status: "kept"})
				kept++
				continue
			}
			if !dryRun {
				if err := atomicfile.WriteFile(target, []byte(wc.Body), 0o644); err != nil {
					return handleError(ErrFileWriteError, fmt.Errorf("write %s: %w", wc.Name, err), "")
				}
			}
			results = append(results, exported{Name: wc.Name, Status: "written"})
			written++
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{
				"template_dir": templateDir,
				"files":        results,
				"dry_run":      dryRun,
			}, &Meta{Count: len(results)})
			return nil
		}

		for _, r := range results {
			if r.Status == "written" {
				fmt.Println(ui.Successf("wrote %s", ui.FilePath(r.Name)))
			} else {
				fmt.Println(ui.Skipped(fmt.Sprintf("kept %s (use --force to overwrite)", r.Name)))
			}
		}
		suffix := ""
		if dryRun {
			suffix = " (dry run)"
		}
		fmt.Println()
		fmt.Println(ui.Successf("%d written, %d kept in %s%s", written, kept, ui.FilePath(templateDir), suffix))
		return nil
	},
}

var templatesSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Read edited working copies back into templates.json",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadRunConfig()
		if err != nil {
			return err
		}
		store, err := loadTemplateStore(cfg)
		if err != nil {
			return err
		}

		templateDir := filepath.Join(cfg.ResolveVaultRoot(), filepath.FromSlash(cfg.TemplateDir()))
		if _, err := os.Stat(templateDir); os.IsNotExist(err) {
			return handleErrorMsg(ErrTemplateMissing,
				fmt.Sprintf("template folder not found: %s", templateDir),
				"Run 'avt templates export' first")
		}

		var synced []string
		for _, wc := range store.WorkingCopies(cfg) {
			data, err := os.ReadFile(filepath.Join(templateDir, wc.Name))
			if err != nil {
				if os.IsNotExist(err) {
					continue
				}
				return handleError(ErrFileReadError, fmt.Errorf("read %s: %w", wc.Name, err), "")
			}
			if string(data) == wc.Body {
				continue
			}
			store.SetWorkingCopy(cfg, wc.Name, string(data))
			synced = append(synced, wc.Name)
		}

		if !dryRun && len(synced) > 0 {
			if err := store.Save(); err != nil {
				return handleError(ErrFileWriteError, err, "")
			}
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{
				"synced":  synced,
				"dry_run": dryRun,
			}, &Meta{Count: len(synced)})
			return nil
		}

		if len(synced) == 0 {
			fmt.Println(ui.Info("templates.json already matches the working copies"))
			return nil
		}
		for _, name := range synced {
			fmt.Println(ui.Successf("synced %s", ui.FilePath(name)))
		}
		if dryRun {
			fmt.Println(ui.Info("dry run: templates.json not written"))
		}
		return nil
	},
}

var templatesApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Re-render index notes from templates, overwriting existing content",
	Long: `Overwrites every customer and section index note with freshly rendered
template content. Directories and the hub note are left alone. Use
--dry-run to preview which files would change.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadRunConfig()
		if err != nil {
			return err
		}
		store, err := loadTemplateStore(cfg)
		if err != nil {
			return err
		}

		started := time.Now()
		report, err := structure.NewGenerator(cfg, structure.Options{
			Store:   store,
			HubFile: getLocal().HubFile,
			DryRun:  dryRun,
			Logger:  logger,
		}).ApplyTemplates()
		if err != nil {
			return handleError(ErrStructureFailed, err, "")
		}
		warnings := widthWarnings(cfg)
		if !dryRun {
			recordHistory(newRun("templates-apply", started, report))
		}

		printApplyReport := func() {
			printItemErrors(report.Errors)
			for _, action := range report.Actions {
				if action.Kind == structure.ActionWriteFile || action.Kind == structure.ActionCreateFile {
					fmt.Println(ui.Successf("wrote %s", ui.FilePath(action.Path)))
				}
			}
			suffix := ""
			if report.DryRun {
				suffix = " (dry run)"
			}
			fmt.Println()
			fmt.Println(ui.Successf("%d files rendered%s", report.FilesWritten+report.FilesCreated, suffix))
		}

		if report.HasErrors() {
			failPartial(report, warnings, printApplyReport)
		}

		if isJSONOutput() {
			outputSuccessWithWarnings(report, warnings, &Meta{Count: len(report.Actions)})
			return nil
		}
		printApplyReport()
		return nil
	},
}

func init() {
	templatesExportCmd.Flags().BoolVar(&templatesExportForce, "force", false, "Overwrite existing working copies")
	templatesCmd.AddCommand(templatesExportCmd)
	templatesCmd.AddCommand(templatesSyncCmd)
	templatesCmd.AddCommand(templatesApplyCmd)
	rootCmd.AddCommand(templatesCmd)
}
