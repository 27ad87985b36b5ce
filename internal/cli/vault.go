package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kstrand/autovault/internal/config"
	"github.com/kstrand/autovault/internal/ui"
)

var (
	vaultAddDefault  bool
	vaultRemoveForce bool
)

type vaultRow struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	IsDefault bool   `json:"is_default"`
	IsActive  bool   `json:"is_active"`
}

type vaultContext struct {
	cfg        *config.Global
	state      *config.State
	configPath string
	statePath  string
}

func loadVaultContext() (*vaultContext, error) {
	cfg, err := config.LoadGlobal()
	if err != nil {
		return nil, err
	}
	configPath := config.ResolveGlobalPath("")
	statePath := config.ResolveStatePath(statePathFlag, configPath, cfg)
	state, err := config.LoadState(statePath)
	if err != nil {
		return nil, err
	}
	return &vaultContext{
		cfg:        cfg,
		state:      state,
		configPath: configPath,
		statePath:  statePath,
	}, nil
}

var vaultCmd = &cobra.Command{
	Use:   "vault",
	Short: "Manage configured vaults",
	Long: `Vaults are registered by name in ~/.config/autovault/config.toml.
The active vault (state.toml) is what commands operate on when neither
--vault nor --vault-path is given.`,
}

var vaultAddCmd = &cobra.Command{
	Use:   "add <name> <path>",
	Short: "Register a vault by name",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, path := args[0], args[1]

		abs, err := filepath.Abs(path)
		if err != nil {
			return handleError(ErrInvalidInput, err, "")
		}
		if _, err := os.Stat(abs); os.IsNotExist(err) {
			return handleErrorMsg(ErrVaultNotFound,
				fmt.Sprintf("vault directory not found: %s", abs),
				fmt.Sprintf("Run 'avt init %s' to create it", abs))
		}

		vctx, err := loadVaultContext()
		if err != nil {
			return handleError(ErrConfigInvalid, err, "")
		}
		if vctx.cfg.Vaults == nil {
			vctx.cfg.Vaults = make(map[string]string)
		}
		if existing, ok := vctx.cfg.Vaults[name]; ok && existing != abs {
			return handleErrorMsg(ErrInvalidInput,
				fmt.Sprintf("vault '%s' already registered at %s", name, existing),
				"Remove it first with 'avt vault remove'")
		}
		vctx.cfg.Vaults[name] = abs
		if vaultAddDefault || vctx.cfg.DefaultVault == "" {
			vctx.cfg.DefaultVault = name
		}

		if err := config.SaveGlobalTo(vctx.configPath, vctx.cfg); err != nil {
			return handleError(ErrFileWriteError, err, "")
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{"name": name, "path": abs, "is_default": vctx.cfg.DefaultVault == name}, nil)
			return nil
		}
		fmt.Println(ui.Successf("registered vault '%s' at %s", name, ui.FilePath(abs)))
		if vctx.cfg.DefaultVault == name {
			fmt.Println(ui.Info(fmt.Sprintf("'%s' is now the default vault", name)))
		}
		return nil
	},
}

var vaultListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured vaults",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		vctx, err := loadVaultContext()
		if err != nil {
			return handleError(ErrConfigInvalid, err, "")
		}

		vaults := vctx.cfg.ListVaults()
		activeName := strings.TrimSpace(vctx.state.ActiveVault)

		names := make([]string, 0, len(vaults))
		for name := range vaults {
			names = append(names, name)
		}
		sort.Strings(names)

		rows := make([]vaultRow, 0, len(names))
		for _, name := range names {
			rows = append(rows, vaultRow{
				Name:      name,
				Path:      vaults[name],
				IsDefault: name == vctx.cfg.DefaultVault,
				IsActive:  name == activeName,
			})
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{"vaults": rows}, &Meta{Count: len(rows)})
			return nil
		}

		if len(rows) == 0 {
			fmt.Println(ui.Info("no vaults configured"))
			fmt.Println(ui.Hint("Run 'avt init <path>' and 'avt vault add <name> <path>'"))
			return nil
		}
		for _, row := range rows {
			markers := ""
			if row.IsDefault {
				markers += " " + ui.Hint("(default)")
			}
			if row.IsActive {
				markers += " " + ui.Success("(active)")
			}
			fmt.Printf("%-20s %s%s\n", row.Name, ui.FilePath(row.Path), markers)
		}
		return nil
	},
}

var vaultUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Set the active vault",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		vctx, err := loadVaultContext()
		if err != nil {
			return handleError(ErrConfigInvalid, err, "")
		}
		if _, err := vctx.cfg.GetVaultPath(name); err != nil {
			return handleErrorMsg(ErrVaultNotFound,
				fmt.Sprintf("vault '%s' not found in config", name),
				"Run 'avt vault list' to see configured vaults")
		}

		vctx.state.ActiveVault = name
		if err := config.SaveState(vctx.statePath, vctx.state); err != nil {
			return handleError(ErrFileWriteError, err, "")
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{"active_vault": name}, nil)
			return nil
		}
		fmt.Println(ui.Successf("active vault is now '%s'", name))
		return nil
	},
}

var vaultRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Unregister a vault (files are untouched)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		vctx, err := loadVaultContext()
		if err != nil {
			return handleError(ErrConfigInvalid, err, "")
		}
		if _, ok := vctx.cfg.Vaults[name]; !ok {
			return handleErrorMsg(ErrVaultNotFound,
				fmt.Sprintf("vault '%s' not found in config", name), "")
		}
		if vctx.cfg.DefaultVault == name && !vaultRemoveForce {
			return handleErrorMsg(ErrInvalidInput,
				fmt.Sprintf("vault '%s' is the default vault", name),
				"Re-run with --force to remove it anyway")
		}

		delete(vctx.cfg.Vaults, name)
		if vctx.cfg.DefaultVault == name {
			vctx.cfg.DefaultVault = ""
		}
		if err := config.SaveGlobalTo(vctx.configPath, vctx.cfg); err != nil {
			return handleError(ErrFileWriteError, err, "")
		}

		if strings.TrimSpace(vctx.state.ActiveVault) == name {
			vctx.state.ActiveVault = ""
			if err := config.SaveState(vctx.statePath, vctx.state); err != nil {
				return handleError(ErrFileWriteError, err, "")
			}
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{"removed": name}, nil)
			return nil
		}
		fmt.Println(ui.Successf("removed vault '%s' from config (files untouched)", name))
		return nil
	},
}

func init() {
	vaultAddCmd.Flags().BoolVar(&vaultAddDefault, "default", false, "Also make this the default vault")
	vaultRemoveCmd.Flags().BoolVar(&vaultRemoveForce, "force", false, "Remove even if it is the default vault")
	vaultCmd.AddCommand(vaultAddCmd)
	vaultCmd.AddCommand(vaultListCmd)
	vaultCmd.AddCommand(vaultUseCmd)
	vaultCmd.AddCommand(vaultRemoveCmd)
	rootCmd.AddCommand(vaultCmd)
}
