package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kstrand/autovault/internal/config"
	"github.com/kstrand/autovault/internal/history"
)

var initCmd = &cobra.Command{
	Use:   "init <path>",
	Short: "Initialize a new vault",
	Long: `Creates a new vault at the specified path with default configuration files.

Creates:
  - config/cust-run-config.json  (run configuration, the source of truth)
  - config/templates.json        (index note templates)
  - config/backups/              (config backup directory)
  - _archive/                    (parking spot for retired customer folders)
  - .gitignore                   (ignores derived files)`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		fmt.Printf("Initializing vault at: %s\n", path)

		if err := os.MkdirAll(path, 0755); err != nil {
			return fmt.Errorf("failed to create vault directory: %w", err)
		}

		for _, dir := range []string{
			filepath.Join(path, "config", "backups"),
			filepath.Join(path, "_archive"),
			filepath.Join(path, history.DirName),
		} {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create %s: %w", dir, err)
			}
		}

		// Ensure .gitignore covers derived files
		gitignorePath := filepath.Join(path, ".gitignore")
		gitignoreStatus := "created"
		ignoreEntries := []string{history.DirName + "/", "config/backups/"}

		existingContent := ""
		if data, err := os.ReadFile(gitignorePath); err == nil {
			existingContent = string(data)
		}

		var missingEntries []string
		for _, entry := range ignoreEntries {
			if !strings.Contains(existingContent, entry) {
				missingEntries = append(missingEntries, entry)
			}
		}

		if len(missingEntries) > 0 {
			var newContent string
			if existingContent == "" {
				newContent = `# AutoVault (auto-generated)
# The run config is the source of truth; these are derived files

# Run history database
.autovault/

# Config backups
config/backups/
`
			} else {
				gitignoreStatus = "updated"
				addition := "\n# AutoVault\n"
				for _, entry := range missingEntries {
					addition += entry + "\n"
				}
				newContent = strings.TrimRight(existingContent, "\n") + "\n" + addition
			}
			if err := os.WriteFile(gitignorePath, []byte(newContent), 0644); err != nil {
				return fmt.Errorf("failed to write .gitignore: %w", err)
			}
		} else if existingContent != "" {
			gitignoreStatus = "already has AutoVault entries"
		}

		createdConfig, err := createDefaultRunConfig(path)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", config.RunConfigName, err)
		}

		createdTemplates, err := createDefaultTemplateStore(path)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", config.TemplateStoreName, err)
		}

		if createdConfig {
			fmt.Printf("✓ Created config/%s (run configuration)\n", config.RunConfigName)
		} else {
			fmt.Printf("• config/%s already exists (kept)\n", config.RunConfigName)
		}

		if createdTemplates {
			fmt.Printf("✓ Created config/%s (index templates)\n", config.TemplateStoreName)
		} else {
			fmt.Printf("• config/%s already exists (kept)\n", config.TemplateStoreName)
		}

		fmt.Println("✓ Ensured config/backups/, _archive/ and .autovault/ exist")

		switch gitignoreStatus {
		case "created":
			fmt.Println("✓ Created .gitignore")
		case "updated":
			fmt.Println("✓ Updated .gitignore (added AutoVault entries)")
		default:
			fmt.Println("• .gitignore already has AutoVault entries")
		}

		if createdConfig || createdTemplates {
			fmt.Println("\nVault initialized! Add customers with 'avt customer add <id>' and run 'avt structure'.")
		} else {
			fmt.Println("\nExisting vault detected. Configuration preserved.")
		}

		return nil
	},
}

// createDefaultRunConfig writes a starter run config unless one exists.
func createDefaultRunConfig(vaultPath string) (bool, error) {
	path := filepath.Join(vaultPath, filepath.FromSlash(config.RunConfigRelPath))
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}

	cfg := &config.RunConfig{
		VaultRoot:            ".",
		CustomerIDWidth:      3,
		Sections:             []string{"FP", "RAISED"},
		TemplateRelativeRoot: "Templates",
	}
	if err := cfg.SaveTo(path); err != nil {
		return false, err
	}
	return true, nil
}

// createDefaultTemplateStore writes starter templates unless they exist.
func createDefaultTemplateStore(vaultPath string) (bool, error) {
	path := filepath.Join(vaultPath, "config", config.TemplateStoreName)
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}

	store := &config.TemplateStore{
		Index: config.IndexTemplates{
			Root: "# {{CUST_CODE}}\n\nCreated {{NOW_UTC}}\n",
			Sections: map[string]string{
				"FP":     "# {{CUST_CODE}} - FP\n\n(Section index for {{SECTION}}.)\n",
				"RAISED": "# {{CUST_CODE}} - RAISED\n\n(Section index for {{SECTION}}.)\n",
			},
		},
		Notes: map[string]string{},
	}
	if err := store.SaveTo(path); err != nil {
		return false, err
	}
	return true, nil
}

func init() {
	rootCmd.AddCommand(initCmd)
}
