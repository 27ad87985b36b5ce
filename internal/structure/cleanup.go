package structure

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kstrand/autovault/internal/config"
)

// FindExtraneous lists directories directly under Run/ that do not belong
// to any configured customer. Files and dot-directories are left alone;
// only CUST-* directories for unknown customers are candidates.
func FindExtraneous(cfg *config.RunConfig) ([]string, error) {
	vaultRoot := cfg.ResolveVaultRoot()
	runDir := filepath.Join(vaultRoot, RunDirName)

	entries, err := os.ReadDir(runDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", runDir, err)
	}

	expected := make(map[string]bool)
	for _, id := range cfg.ValidIDs() {
		expected[FormatCode(id, cfg.CustomerIDWidth)] = true
	}

	var extra []string
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if !strings.HasPrefix(name, CodePrefix) {
			continue
		}
		if !expected[name] {
			extra = append(extra, filepath.Join(RunDirName, name))
		}
	}
	sort.Strings(extra)
	return extra, nil
}

// RemoveExtraneous deletes the given vault-relative directories. With
// dryRun set it only reports what would be removed.
func RemoveExtraneous(cfg *config.RunConfig, dirs []string, dryRun bool) ([]string, error) {
	vaultRoot := cfg.ResolveVaultRoot()

	var removed []string
	for _, rel := range dirs {
		if dryRun {
			removed = append(removed, rel)
			continue
		}
		if err := os.RemoveAll(filepath.Join(vaultRoot, rel)); err != nil {
			return removed, fmt.Errorf("remove %s: %w", rel, err)
		}
		removed = append(removed, rel)
	}
	return removed, nil
}
