package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/kstrand/autovault/internal/atomicfile"
)

// persistedGlobal omits empty fields so hand-edited configs stay tidy.
type persistedGlobal struct {
	DefaultVault *string           `toml:"default_vault,omitempty"`
	StateFile    *string           `toml:"state_file,omitempty"`
	Vaults       map[string]string `toml:"vaults,omitempty"`
}

func nonEmptyPtr(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// SaveGlobal writes the global config to the default config path.
func SaveGlobal(g *Global) error {
	return SaveGlobalTo(DefaultGlobalPath(), g)
}

// SaveGlobalTo writes the global config to a specific path atomically.
func SaveGlobalTo(path string, g *Global) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("config path is required")
	}
	if g == nil {
		g = &Global{}
	}

	out := persistedGlobal{
		DefaultVault: nonEmptyPtr(g.DefaultVault),
		StateFile:    nonEmptyPtr(g.StateFile),
	}
	if len(g.Vaults) > 0 {
		out.Vaults = g.Vaults
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(out); err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return atomicfile.WriteFile(path, buf.Bytes(), 0o644)
}
