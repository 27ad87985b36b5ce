// Package testutil provides reusable test utilities for AutoVault integration tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// TestVault builds a throwaway vault under t.TempDir(). Queue files with
// WithFile and friends, then Build to materialize them on disk.
type TestVault struct {
	Path  string
	t     *testing.T
	files map[string]string
}

// NewTestVault starts a vault builder. Nothing touches disk until Build.
func NewTestVault(t *testing.T) *TestVault {
	t.Helper()
	return &TestVault{
		t:     t,
		files: make(map[string]string),
	}
}

// WithFile queues a file at a vault-relative path.
func (v *TestVault) WithFile(path, content string) *TestVault {
	v.files[path] = content
	return v
}

// WithRunConfig queues the config/cust-run-config.json content.
func (v *TestVault) WithRunConfig(json string) *TestVault {
	return v.WithFile("config/cust-run-config.json", json)
}

// WithTemplateStore queues the config/templates.json content.
func (v *TestVault) WithTemplateStore(json string) *TestVault {
	return v.WithFile("config/templates.json", json)
}

// Build materializes the vault directory and every queued file.
func (v *TestVault) Build() *TestVault {
	v.t.Helper()
	v.Path = v.t.TempDir()
	for path, content := range v.files {
		v.writeFile(path, content)
	}
	return v
}

func (v *TestVault) writeFile(relPath, content string) {
	v.t.Helper()
	fullPath := filepath.Join(v.Path, relPath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		v.t.Fatalf("mkdir for %s: %v", relPath, err)
	}
	if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
		v.t.Fatalf("write %s: %v", relPath, err)
	}
}

// WriteFile adds a file to an already built vault, creating parent
// directories as needed.
func (v *TestVault) WriteFile(relPath, content string) {
	v.t.Helper()
	v.writeFile(relPath, content)
}

// ReadFile returns the content of a vault file, failing the test if the
// read fails.
func (v *TestVault) ReadFile(relPath string) string {
	v.t.Helper()
	content, err := os.ReadFile(filepath.Join(v.Path, relPath))
	if err != nil {
		v.t.Fatalf("read %s: %v", relPath, err)
	}
	return string(content)
}

// FileExists reports whether the vault contains relPath.
func (v *TestVault) FileExists(relPath string) bool {
	v.t.Helper()
	_, err := os.Stat(filepath.Join(v.Path, relPath))
	return err == nil
}

// MkDir creates a directory inside the vault.
func (v *TestVault) MkDir(relPath string) {
	v.t.Helper()
	if err := os.MkdirAll(filepath.Join(v.Path, relPath), 0755); err != nil {
		v.t.Fatalf("mkdir %s: %v", relPath, err)
	}
}

// MinimalRunConfig returns a minimal valid cust-run-config.json content
// with two customers and two sections.
func MinimalRunConfig() string {
	return `{
  "VaultRoot": ".",
  "CustomerIdWidth": 3,
  "CustomerIds": [2, 7],
  "Sections": ["FP", "RAISED"],
  "TemplateRelativeRoot": "Templates",
  "EnableCleanup": false
}
`
}

// MinimalTemplateStore returns a templates.json covering the index
// templates for MinimalRunConfig.
func MinimalTemplateStore() string {
	return `{
  "templates": {
    "index": {
      "root": "# {{CUST_CODE}}\n\nCreated {{NOW_UTC}}\n",
      "sections": {
        "FP": "# {{CUST_CODE}} {{SECTION}}\n",
        "RAISED": "# {{CUST_CODE}} {{SECTION}}\n"
      }
    },
    "notes": {}
  }
}
`
}
