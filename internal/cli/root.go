// Package cli implements the command-line interface.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/kstrand/autovault/internal/config"
	"github.com/kstrand/autovault/internal/logging"
)

var (
	// Global flags
	vaultName     string // Named vault from config
	vaultPathFlag string // Explicit path (rare)
	runConfigFlag string // Explicit run config path
	statePathFlag string
	dryRun        bool
	verbose       bool

	// Resolved values
	resolvedVaultPath     string
	resolvedRunConfigPath string
	resolvedGlobalPath    string
	resolvedStatePath     string
	globalCfg             *config.Global
	localCfg              *config.Local
	logger                *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "avt",
	Short: "AutoVault - organize customer workspaces in a markdown vault",
	Long: `AutoVault maintains a customer/section folder hierarchy inside a
markdown vault: index notes generated from templates, a hub note linking
every customer, config backups, and a verifier that reports drift between
the configured structure and what is on disk.

The run config (config/cust-run-config.json) is the source of truth;
the filesystem is derived from it.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = logging.New(verbose)
		if verbose {
			cmd.Flags().Visit(func(f *pflag.Flag) {
				logger.Debug("flag set", zap.String(f.Name, f.Value.String()))
			})
		}

		// Skip vault resolution for commands that don't need it
		switch cmd.Name() {
		case "init", "vault", "completion", "help", "version", "docs":
			return nil
		}
		if cmd.Parent() != nil && (cmd.Parent().Name() == "completion" || cmd.Parent().Name() == "vault") {
			return nil
		}

		var err error
		globalCfg, err = config.LoadGlobal()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		resolvedGlobalPath = config.ResolveGlobalPath("")
		resolvedStatePath = config.ResolveStatePath(statePathFlag, resolvedGlobalPath, globalCfg)

		// Resolve vault path: explicit path > named vault > active state > default
		if vaultPathFlag != "" {
			resolvedVaultPath = vaultPathFlag
		} else if vaultName != "" {
			resolvedVaultPath, err = globalCfg.GetVaultPath(vaultName)
			if err != nil {
				return fmt.Errorf("vault '%s' not found\n\nRun 'avt vault list' to see configured vaults", vaultName)
			}
		} else {
			state, stateErr := config.LoadState(resolvedStatePath)
			if stateErr != nil {
				return fmt.Errorf("failed to load state: %w", stateErr)
			}

			activeVaultName := strings.TrimSpace(state.ActiveVault)
			if activeVaultName != "" {
				resolvedVaultPath, err = globalCfg.GetVaultPath(activeVaultName)
				if err != nil {
					resolvedVaultPath, err = globalCfg.GetDefaultVaultPath()
					if err != nil {
						return fmt.Errorf("active vault '%s' not found in config and no default vault configured\n\nRun 'avt vault use <name>' or set default_vault in config.toml", activeVaultName)
					}
					if !jsonOutput {
						fmt.Fprintf(os.Stderr, "warning: active vault '%s' not found in config, falling back to default\n", activeVaultName)
					}
				}
			} else {
				resolvedVaultPath, err = globalCfg.GetDefaultVaultPath()
				if err != nil {
					return fmt.Errorf(`no vault specified

Either:
  1. Use --vault <name> (from config)
  2. Use --vault-path /path/to/vault
  3. Run 'avt vault use <name>' to set active_vault in state.toml
  4. Set default_vault in ~/.config/autovault/config.toml
  5. Run 'avt init /path/to/new/vault' to create one`)
				}
			}
		}

		// Verify vault exists
		if _, err := os.Stat(resolvedVaultPath); os.IsNotExist(err) {
			return fmt.Errorf("vault not found: %s\n\nRun 'avt init %s' to create it", resolvedVaultPath, resolvedVaultPath)
		}

		if runConfigFlag != "" {
			resolvedRunConfigPath = runConfigFlag
		} else {
			resolvedRunConfigPath = filepath.Join(resolvedVaultPath, filepath.FromSlash(config.RunConfigRelPath))
		}

		localCfg, err = config.LoadLocal(resolvedVaultPath)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", config.LocalConfigName, err)
		}

		return nil
	},
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&vaultName, "vault", "", "Named vault from config")
	rootCmd.PersistentFlags().StringVar(&vaultPathFlag, "vault-path", "", "Explicit path to vault directory")
	rootCmd.PersistentFlags().StringVar(&runConfigFlag, "config", "", "Path to run config file (default: <vault>/config/cust-run-config.json)")
	rootCmd.PersistentFlags().StringVar(&statePathFlag, "state", "", "Path to state file (overrides state_file in config)")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Report planned changes without touching the filesystem")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose diagnostics on stderr")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format (for agent/script use)")
}

// getVaultPath returns the resolved vault path.
func getVaultPath() string {
	return resolvedVaultPath
}

// getRunConfigPath returns the resolved run config path.
func getRunConfigPath() string {
	return resolvedRunConfigPath
}

// getLocal returns the vault-local settings (always non-nil after
// resolution).
func getLocal() *config.Local {
	if localCfg == nil {
		return &config.Local{
			BackupDir:  config.DefaultBackupDir,
			BackupKeep: config.DefaultBackupKeep,
			HubFile:    config.DefaultHubFile,
		}
	}
	return localCfg
}
