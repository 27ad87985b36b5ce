package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kstrand/autovault/internal/structure"
	"github.com/kstrand/autovault/internal/ui"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show a vault status report",
	Long: `Summarizes the vault: configured customers and sections, verification
results, and backup state. In a terminal the report is rendered as
styled markdown.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadRunConfig()
		if err != nil {
			return err
		}

		result := structure.Verify(cfg, getLocal().HubFile)
		backups, err := backupManager(cfg).List()
		if err != nil {
			return handleError(ErrFileReadError, err, "")
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{
				"vault":        getVaultPath(),
				"customers":    len(cfg.ValidIDs()),
				"invalid":      len(cfg.InvalidEntries()),
				"sections":     cfg.Sections,
				"verification": result,
				"backups":      len(backups),
			}, nil)
			return nil
		}

		var b strings.Builder
		fmt.Fprintf(&b, "# Vault report\n\n")
		fmt.Fprintf(&b, "**Vault:** `%s`\n\n", getVaultPath())

		fmt.Fprintf(&b, "## Customers\n\n")
		fmt.Fprintf(&b, "%d configured, width %d", len(cfg.ValidIDs()), cfg.CustomerIDWidth)
		if bad := len(cfg.InvalidEntries()); bad > 0 {
			fmt.Fprintf(&b, ", %d malformed entr%s", bad, iesOrY(bad))
		}
		fmt.Fprintf(&b, ".\n\n")
		for _, id := range cfg.ValidIDs() {
			code := structure.FormatCode(id, cfg.CustomerIDWidth)
			status := "missing"
			dir := filepath.Join(cfg.ResolveVaultRoot(), filepath.FromSlash(structure.CustomerDirRel(code)))
			if info, statErr := os.Stat(dir); statErr == nil && info.IsDir() {
				status = "ok"
			}
			fmt.Fprintf(&b, "- `%s` (%s)\n", code, status)
		}

		fmt.Fprintf(&b, "\n## Sections\n\n")
		for _, section := range cfg.Sections {
			fmt.Fprintf(&b, "- %s\n", section)
		}

		fmt.Fprintf(&b, "\n## Verification\n\n")
		if result.OK() && len(result.Warnings) == 0 {
			fmt.Fprintf(&b, "Structure matches the run config.\n")
		} else {
			fmt.Fprintf(&b, "%d error(s), %d warning(s). Run `avt test` for details.\n",
				len(result.Errors), len(result.Warnings))
		}

		fmt.Fprintf(&b, "\n## Backups\n\n")
		if len(backups) == 0 {
			fmt.Fprintf(&b, "No backups yet. Run `avt backup create`.\n")
		} else {
			fmt.Fprintf(&b, "%d backup(s), newest from %s.\n",
				len(backups), backups[0].Timestamp.Format("2006-01-02 15:04:05"))
		}

		display := ui.NewDisplayContext()
		rendered, err := ui.RenderMarkdown(b.String(), display.TermWidth)
		if err != nil {
			// Rendering is cosmetic; fall back to the raw markdown.
			fmt.Println(b.String())
			return nil
		}
		fmt.Print(rendered)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
}
