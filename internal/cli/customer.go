package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kstrand/autovault/internal/backup"
	"github.com/kstrand/autovault/internal/config"
	"github.com/kstrand/autovault/internal/structure"
	"github.com/kstrand/autovault/internal/ui"
)

var (
	customerRemoveDelete  bool
	customerRemoveArchive bool
	customerRemoveYes     bool
)

var customerCmd = &cobra.Command{
	Use:   "customer",
	Short: "Manage customers in the run config",
}

var customerAddCmd = &cobra.Command{
	Use:   "add <id>",
	Short: "Add a customer ID to the run config",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseCustomerID(args[0])
		if err != nil {
			return handleError(ErrInvalidInput, err, "")
		}

		cfg, err := loadRunConfig()
		if err != nil {
			return err
		}
		if cfg.HasCustomer(id) {
			return handleErrorMsg(ErrCustomerExists,
				fmt.Sprintf("customer %d already configured", id), "")
		}

		code := structure.FormatCode(id, cfg.CustomerIDWidth)

		if dryRun {
			if isJSONOutput() {
				outputSuccess(map[string]interface{}{"id": id, "code": code, "dry_run": true}, nil)
				return nil
			}
			fmt.Println(ui.Info(fmt.Sprintf("would add customer %d as %s", id, ui.Code(code))))
			return nil
		}

		if _, err := backupManager(cfg).Create("before-customer-add"); err != nil {
			return handleError(ErrFileWriteError, fmt.Errorf("backup config: %w", err), "")
		}
		if err := cfg.AddCustomer(id); err != nil {
			return handleError(ErrInvalidInput, err, "")
		}
		if err := cfg.Save(); err != nil {
			return handleError(ErrFileWriteError, err, "")
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{"id": id, "code": code}, nil)
			return nil
		}
		fmt.Println(ui.Successf("added customer %d as %s", id, ui.Code(code)))
		fmt.Println(ui.Hint("Run 'avt structure' to create its folders"))
		return nil
	},
}

var customerRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a customer ID from the run config",
	Long: `Removes the customer from the run config after taking a config backup.
The folder tree is kept by default; --archive moves it to _archive/ and
--delete-folder removes it permanently.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if customerRemoveDelete && customerRemoveArchive {
			return handleErrorMsg(ErrInvalidInput,
				"--delete-folder and --archive are mutually exclusive", "")
		}

		id, err := parseCustomerID(args[0])
		if err != nil {
			return handleError(ErrInvalidInput, err, "")
		}

		cfg, err := loadRunConfig()
		if err != nil {
			return err
		}
		if !cfg.HasCustomer(id) {
			return handleErrorMsg(ErrCustomerNotFound,
				fmt.Sprintf("customer %d not in the run config", id), "")
		}

		code := structure.FormatCode(id, cfg.CustomerIDWidth)
		vaultRoot := cfg.ResolveVaultRoot()
		customerDir := filepath.Join(vaultRoot, filepath.FromSlash(structure.CustomerDirRel(code)))

		if dryRun {
			if isJSONOutput() {
				outputSuccess(map[string]interface{}{"id": id, "code": code, "dry_run": true}, nil)
				return nil
			}
			fmt.Println(ui.Info(fmt.Sprintf("would remove customer %d (%s)", id, code)))
			return nil
		}

		if customerRemoveDelete {
			if !confirmerFor(customerRemoveYes).Confirm(
				fmt.Sprintf("Permanently delete %s and its contents?", structure.CustomerDirRel(code))) {
				return handleErrorMsg(ErrConfirmationRequired,
					"folder deletion not confirmed",
					"Re-run with --yes to skip the prompt")
			}
		}

		if _, err := backupManager(cfg).Create("before-customer-remove"); err != nil {
			return handleError(ErrFileWriteError, fmt.Errorf("backup config: %w", err), "")
		}
		if err := cfg.RemoveCustomer(id); err != nil {
			return handleError(ErrInvalidInput, err, "")
		}
		if err := cfg.Save(); err != nil {
			return handleError(ErrFileWriteError, err, "")
		}

		folderStatus := "kept"
		if _, err := os.Stat(customerDir); err == nil {
			switch {
			case customerRemoveDelete:
				if err := os.RemoveAll(customerDir); err != nil {
					return handleError(ErrFileWriteError, fmt.Errorf("delete %s: %w", customerDir, err), "")
				}
				folderStatus = "deleted"
			case customerRemoveArchive:
				archiveDir := filepath.Join(vaultRoot, "_archive")
				if err := os.MkdirAll(archiveDir, 0755); err != nil {
					return handleError(ErrFileWriteError, fmt.Errorf("create _archive: %w", err), "")
				}
				if err := os.Rename(customerDir, filepath.Join(archiveDir, code)); err != nil {
					return handleError(ErrFileWriteError, fmt.Errorf("archive %s: %w", code, err), "")
				}
				folderStatus = "archived"
			}
		} else {
			folderStatus = "missing"
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{"id": id, "code": code, "folder": folderStatus}, nil)
			return nil
		}
		fmt.Println(ui.Successf("removed customer %d (%s), folder %s", id, code, folderStatus))
		if folderStatus == "kept" {
			fmt.Println(ui.Hint("The folder tree was kept; use --archive or --delete-folder to move it out"))
		}
		return nil
	},
}

var customerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured customers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadRunConfig()
		if err != nil {
			return err
		}

		type customerRow struct {
			Raw          string `json:"raw,omitempty"`
			ID           int    `json:"id"`
			Code         string `json:"code,omitempty"`
			Valid        bool   `json:"valid"`
			FolderExists bool   `json:"folder_exists"`
		}

		vaultRoot := cfg.ResolveVaultRoot()
		rows := make([]customerRow, 0, len(cfg.Customers))
		for _, entry := range cfg.Customers {
			row := customerRow{Raw: entry.Raw, ID: entry.ID, Valid: entry.Valid}
			if entry.Valid {
				row.Code = structure.FormatCode(entry.ID, cfg.CustomerIDWidth)
				dir := filepath.Join(vaultRoot, filepath.FromSlash(structure.CustomerDirRel(row.Code)))
				if info, err := os.Stat(dir); err == nil && info.IsDir() {
					row.FolderExists = true
				}
			}
			rows = append(rows, row)
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{"customers": rows, "sections": cfg.Sections}, &Meta{Count: len(rows)})
			return nil
		}

		if len(rows) == 0 {
			fmt.Println(ui.Info("no customers configured"))
			return nil
		}
		fmt.Println(ui.Header("Customers"))
		for _, row := range rows {
			switch {
			case !row.Valid:
				fmt.Println(ui.Errorf("%s (malformed entry)", row.Raw))
			case row.FolderExists:
				fmt.Println(ui.Success(ui.Code(row.Code)))
			default:
				fmt.Println(ui.Skipped(fmt.Sprintf("%s (no folder yet)", row.Code)))
			}
		}
		return nil
	},
}

// parseCustomerID parses a non-negative integer customer ID.
func parseCustomerID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("customer ID must be a non-negative integer, got %q", arg)
	}
	return id, nil
}

// backupManager builds the backup manager for the active run config.
func backupManager(cfg *config.RunConfig) *backup.Manager {
	dir := filepath.Join(getVaultPath(), filepath.FromSlash(getLocal().BackupDir))
	return backup.NewManager(cfg.Path, dir)
}

func init() {
	customerRemoveCmd.Flags().BoolVar(&customerRemoveDelete, "delete-folder", false, "Permanently delete the customer folder tree")
	customerRemoveCmd.Flags().BoolVar(&customerRemoveArchive, "archive", false, "Move the customer folder tree to _archive/")
	customerRemoveCmd.Flags().BoolVar(&customerRemoveYes, "yes", false, "Skip the confirmation prompt")
	customerCmd.AddCommand(customerAddCmd)
	customerCmd.AddCommand(customerRemoveCmd)
	customerCmd.AddCommand(customerListCmd)
	rootCmd.AddCommand(customerCmd)
}
