package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LocalConfigName is the optional vault-local settings file.
const LocalConfigName = "autovault.yaml"

// Local represents optional vault-level overrides from autovault.yaml in
// the vault directory. Everything here has a sensible default; the file is
// only needed to change backup layout or hub naming for one vault.
type Local struct {
	// BackupDir is where config backups are stored, relative to the vault
	// directory (default: "config/backups").
	BackupDir string `yaml:"backup_dir,omitempty"`

	// BackupKeep is the default retention count for `backup cleanup`
	// (default: 10).
	BackupKeep int `yaml:"backup_keep,omitempty"`

	// HubFile overrides the hub file name (default: "Run-Hub.md").
	HubFile string `yaml:"hub_file,omitempty"`
}

// Defaults for Local settings.
const (
	DefaultBackupDir  = "config/backups"
	DefaultBackupKeep = 10
	DefaultHubFile    = "Run-Hub.md"
)

// LoadLocal loads autovault.yaml from a vault directory.
// Returns defaults when the file does not exist; an existing but invalid
// file is an error.
func LoadLocal(vaultDir string) (*Local, error) {
	l := &Local{
		BackupDir:  DefaultBackupDir,
		BackupKeep: DefaultBackupKeep,
		HubFile:    DefaultHubFile,
	}

	path := filepath.Join(vaultDir, LocalConfigName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return l, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, l); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if l.BackupDir == "" {
		l.BackupDir = DefaultBackupDir
	}
	if l.BackupKeep <= 0 {
		l.BackupKeep = DefaultBackupKeep
	}
	if l.HubFile == "" {
		l.HubFile = DefaultHubFile
	}
	return l, nil
}
