package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Global represents the global AutoVault configuration
// (~/.config/autovault/config.toml): a registry of named vault directories.
type Global struct {
	// DefaultVault is the name of the default vault (from Vaults).
	DefaultVault string `toml:"default_vault"`

	// StateFile optionally relocates state.toml (relative paths resolve
	// against the config file directory).
	StateFile string `toml:"state_file"`

	// Vaults maps vault names to vault directories.
	Vaults map[string]string `toml:"vaults"`
}

// GetVaultPath returns the directory for a named vault.
// If name is empty, the default vault is used.
func (g *Global) GetVaultPath(name string) (string, error) {
	if name == "" {
		name = g.DefaultVault
	}
	if name == "" {
		return "", fmt.Errorf("no default vault configured")
	}
	if g.Vaults != nil {
		if path, ok := g.Vaults[name]; ok {
			return path, nil
		}
	}
	return "", fmt.Errorf("vault '%s' not found in config", name)
}

// GetDefaultVaultPath returns the default vault directory.
func (g *Global) GetDefaultVaultPath() (string, error) {
	return g.GetVaultPath("")
}

// ListVaults returns all configured vaults with their directories.
func (g *Global) ListVaults() map[string]string {
	result := make(map[string]string, len(g.Vaults))
	for name, path := range g.Vaults {
		result[name] = path
	}
	return result
}

// LoadGlobal loads the global configuration from the default location.
// Returns an empty config if the file doesn't exist.
func LoadGlobal() (*Global, error) {
	path := DefaultGlobalPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &Global{}, nil
	}
	return LoadGlobalFrom(path)
}

// LoadGlobalFrom loads the global configuration from a specific path.
func LoadGlobalFrom(path string) (*Global, error) {
	var g Global
	if _, err := toml.DecodeFile(path, &g); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return &g, nil
}

// DefaultGlobalPath returns the default global config file path.
// Checks ~/.config/autovault/config.toml first (XDG style), then falls
// back to the OS-specific location.
func DefaultGlobalPath() string {
	if home, err := os.UserHomeDir(); err == nil {
		xdgPath := filepath.Join(home, ".config", "autovault", "config.toml")
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath
		}
	}

	if configDir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(configDir, "autovault", "config.toml")
	}

	return filepath.Join(".", "config.toml")
}

// ResolveGlobalPath resolves the effective global config path from an
// optional override.
func ResolveGlobalPath(explicit string) string {
	if strings.TrimSpace(explicit) != "" {
		return explicit
	}
	return DefaultGlobalPath()
}
