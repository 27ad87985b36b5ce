package testutil

import (
	"os"
	"path/filepath"
	"strings"
)

func (v *TestVault) stat(relPath string) (os.FileInfo, error) {
	return os.Stat(filepath.Join(v.Path, relPath))
}

// AssertFileExists fails the test if relPath is missing from the vault.
func (v *TestVault) AssertFileExists(relPath string) {
	v.t.Helper()
	if _, err := v.stat(relPath); os.IsNotExist(err) {
		v.t.Errorf("missing file: %s", relPath)
	}
}

// AssertFileNotExists fails the test if relPath is present in the vault.
func (v *TestVault) AssertFileNotExists(relPath string) {
	v.t.Helper()
	if _, err := v.stat(relPath); err == nil {
		v.t.Errorf("file should not exist: %s", relPath)
	}
}

// AssertFileContains fails the test unless the file contains substr.
func (v *TestVault) AssertFileContains(relPath, substr string) {
	v.t.Helper()
	content := v.ReadFile(relPath)
	if !strings.Contains(content, substr) {
		v.t.Errorf("file %s should contain %q, got:\n%s", relPath, substr, content)
	}
}

// AssertFileNotContains fails the test if the file contains substr.
func (v *TestVault) AssertFileNotContains(relPath, substr string) {
	v.t.Helper()
	content := v.ReadFile(relPath)
	if strings.Contains(content, substr) {
		v.t.Errorf("file %s should not contain %q, got:\n%s", relPath, substr, content)
	}
}

// AssertDirExists fails the test unless relPath exists and is a directory.
func (v *TestVault) AssertDirExists(relPath string) {
	v.t.Helper()
	info, err := v.stat(relPath)
	switch {
	case os.IsNotExist(err):
		v.t.Errorf("missing directory: %s", relPath)
	case err == nil && !info.IsDir():
		v.t.Errorf("%s should be a directory, found a file", relPath)
	}
}

// AssertDirNotExists fails the test if relPath is present in the vault.
func (v *TestVault) AssertDirNotExists(relPath string) {
	v.t.Helper()
	if _, err := v.stat(relPath); err == nil {
		v.t.Errorf("directory should not exist: %s", relPath)
	}
}
