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

// StateVersion is the current state file schema version.
const StateVersion = 1

// State represents mutable machine-local runtime state.
type State struct {
	Version     int    `toml:"version"`
	ActiveVault string `toml:"active_vault,omitempty"`
}

// ResolveStatePath resolves the state.toml path with precedence:
//  1. explicit flag
//  2. state_file from config.toml (relative to config file dir when not absolute)
//  3. sibling state.toml next to config.toml
func ResolveStatePath(explicit, globalPath string, g *Global) string {
	if strings.TrimSpace(explicit) != "" {
		return explicit
	}

	resolved := ResolveGlobalPath(globalPath)
	configDir := filepath.Dir(resolved)

	if g != nil {
		if fromConfig := strings.TrimSpace(g.StateFile); fromConfig != "" {
			if filepath.IsAbs(fromConfig) || strings.HasPrefix(filepath.ToSlash(fromConfig), "/") {
				return filepath.Clean(filepath.FromSlash(fromConfig))
			}
			return filepath.Join(configDir, filepath.FromSlash(fromConfig))
		}
	}

	return filepath.Join(configDir, "state.toml")
}

// LoadState loads state.toml from a specific path.
// Returns a default state when the file does not exist.
func LoadState(path string) (*State, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("state path is required")
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &State{Version: StateVersion}, nil
	}

	var state State
	if _, err := toml.DecodeFile(path, &state); err != nil {
		return nil, fmt.Errorf("failed to parse state %s: %w", path, err)
	}
	if state.Version == 0 {
		state.Version = StateVersion
	}
	return &state, nil
}

// SaveState writes state.toml atomically.
func SaveState(path string, state *State) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("state path is required")
	}
	if state == nil {
		state = &State{Version: StateVersion}
	}
	if state.Version == 0 {
		state.Version = StateVersion
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(state); err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	return atomicfile.WriteFile(path, buf.Bytes(), 0o644)
}
