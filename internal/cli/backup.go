package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kstrand/autovault/internal/backup"
	"github.com/kstrand/autovault/internal/history"
	"github.com/kstrand/autovault/internal/ui"
)

var (
	backupCleanupKeep int
	backupCleanupYes  bool
	backupRestoreYes  bool
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Manage run config backups",
	Long: `Backups are timestamped copies of the run config stored under
config/backups/. Config-mutating commands take one automatically;
'backup create' takes one on demand.`,
}

var backupCreateCmd = &cobra.Command{
	Use:   "create [description]",
	Short: "Back up the run config",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadRunConfig()
		if err != nil {
			return err
		}

		description := ""
		if len(args) == 1 {
			description = args[0]
		}

		if dryRun {
			if isJSONOutput() {
				outputSuccess(map[string]interface{}{"dry_run": true}, nil)
				return nil
			}
			fmt.Println(ui.Info("would back up the run config"))
			return nil
		}

		started := time.Now()
		path, err := backupManager(cfg).Create(description)
		if err != nil {
			return handleError(ErrFileWriteError, err, "")
		}
		recordHistory(history.Run{
			Op:         "backup-create",
			StartedAt:  started,
			DurationMs: time.Since(started).Milliseconds(),
			Created:    1,
			OK:         true,
		})

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{"path": path}, nil)
			return nil
		}
		fmt.Println(ui.Successf("backed up to %s", ui.FilePath(path)))
		return nil
	},
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List backups, most recent first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadRunConfig()
		if err != nil {
			return err
		}

		entries, err := backupManager(cfg).List()
		if err != nil {
			return handleError(ErrFileReadError, err, "")
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{"backups": entries}, &Meta{Count: len(entries)})
			return nil
		}

		if len(entries) == 0 {
			fmt.Println(ui.Info("no backups yet"))
			return nil
		}
		fmt.Println(ui.Header("Backups"))
		for i, entry := range entries {
			desc := entry.Description
			if desc != "" {
				desc = " " + ui.Hint("("+desc+")")
			}
			fmt.Printf("%3d. %s %s%s\n", i+1,
				entry.Timestamp.Format("2006-01-02 15:04:05"),
				ui.FilePath(entry.Name), desc)
		}
		return nil
	},
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore [backup]",
	Short: "Restore the run config from a backup",
	Long: `Restores a backup over the current run config. The backup argument is
either a 1-based index from 'backup list' or a file path; with no
argument the most recent backup is used.

A pre-restore backup of the current config is taken first, so a restore
is always reversible.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadRunConfig()
		if err != nil {
			return err
		}
		mgr := backupManager(cfg)

		var target string
		if len(args) == 0 || !strings.ContainsAny(args[0], "/\\.") {
			index := 1
			if len(args) == 1 {
				index, err = strconv.Atoi(args[0])
				if err != nil || index < 1 {
					return handleErrorMsg(ErrInvalidInput,
						fmt.Sprintf("backup selector must be a 1-based index or a path, got %q", args[0]), "")
				}
			}
			entry, err := mgr.Select(index)
			if err != nil {
				if errors.Is(err, backup.ErrNoBackups) {
					return handleError(ErrBackupNotFound, err, "Run 'avt backup create' first")
				}
				return handleError(ErrBackupNotFound, err, "Run 'avt backup list' to see available backups")
			}
			target = entry.Path
		} else {
			target = args[0]
		}

		if dryRun {
			if isJSONOutput() {
				outputSuccess(map[string]interface{}{"restored_from": target, "dry_run": true}, nil)
				return nil
			}
			fmt.Println(ui.Info(fmt.Sprintf("would restore from %s", target)))
			return nil
		}

		if !confirmerFor(backupRestoreYes).Confirm(
			fmt.Sprintf("Replace the run config with %s?", target)) {
			return handleErrorMsg(ErrConfirmationRequired,
				"restore not confirmed",
				"Re-run with --yes to skip the prompt")
		}

		started := time.Now()
		if err := mgr.Restore(target); err != nil {
			return handleError(ErrBackupInvalid, err, "")
		}
		recordHistory(history.Run{
			Op:         "backup-restore",
			StartedAt:  started,
			DurationMs: time.Since(started).Milliseconds(),
			Created:    1,
			OK:         true,
		})

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{"restored_from": target}, nil)
			return nil
		}
		fmt.Println(ui.Successf("restored run config from %s", ui.FilePath(target)))
		fmt.Println(ui.Hint("A pre-restore backup of the previous config was taken"))
		return nil
	},
}

var backupCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete old backups beyond the retention count",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadRunConfig()
		if err != nil {
			return err
		}

		keep := backupCleanupKeep
		if keep <= 0 {
			keep = getLocal().BackupKeep
		}
		mgr := backupManager(cfg)

		// Preview pass so the prompt can name what goes.
		candidates, err := mgr.Cleanup(keep, true)
		if err != nil {
			return handleError(ErrFileReadError, err, "")
		}

		if !dryRun && len(candidates) > 0 {
			if !isJSONOutput() {
				fmt.Println(ui.Warningf("about to delete %d backup%s:", len(candidates), pluralSuffix(len(candidates))))
				for _, entry := range candidates {
					fmt.Printf("  %s\n", ui.FilePath(entry.Name))
				}
			}
			if !confirmerFor(backupCleanupYes).Confirm(fmt.Sprintf("Delete these backups, keeping the %d most recent?", keep)) {
				return handleErrorMsg(ErrConfirmationRequired,
					"backup cleanup not confirmed",
					"Re-run with --yes to skip the prompt")
			}
		}

		started := time.Now()
		removed, err := mgr.Cleanup(keep, dryRun)
		if err != nil {
			return handleError(ErrFileWriteError, err, "")
		}
		if !dryRun {
			recordHistory(history.Run{
				Op:         "backup-cleanup",
				StartedAt:  started,
				DurationMs: time.Since(started).Milliseconds(),
				Kept:       keep,
				OK:         true,
			})
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{
				"removed": removed,
				"kept":    keep,
				"dry_run": dryRun,
			}, &Meta{Count: len(removed)})
			return nil
		}

		if len(removed) == 0 {
			fmt.Println(ui.Successf("nothing to delete (keeping %d)", keep))
			return nil
		}
		for _, entry := range removed {
			if dryRun {
				fmt.Println(ui.Info(fmt.Sprintf("would delete %s", entry.Name)))
			} else {
				fmt.Println(ui.Successf("deleted %s", entry.Name))
			}
		}
		return nil
	},
}

func init() {
	backupCleanupCmd.Flags().IntVar(&backupCleanupKeep, "keep", 0, "How many backups to keep (default from autovault.yaml)")
	backupCleanupCmd.Flags().BoolVar(&backupCleanupYes, "yes", false, "Skip the confirmation prompt")
	backupRestoreCmd.Flags().BoolVar(&backupRestoreYes, "yes", false, "Skip the confirmation prompt")
	backupCmd.AddCommand(backupCreateCmd)
	backupCmd.AddCommand(backupListCmd)
	backupCmd.AddCommand(backupRestoreCmd)
	backupCmd.AddCommand(backupCleanupCmd)
	rootCmd.AddCommand(backupCmd)
}
