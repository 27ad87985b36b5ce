package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeRunConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config", RunConfigName)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const validRunConfig = `{
  "VaultRoot": "/tmp/v",
  "CustomerIdWidth": 3,
  "CustomerIds": [2, 7],
  "Sections": ["FP", "RAISED"],
  "TemplateRelativeRoot": "_templates/Run"
}`

func TestLoadRunConfig_Valid(t *testing.T) {
	path := writeRunConfig(t, t.TempDir(), validRunConfig)

	cfg, err := LoadRunConfig(path)
	if err != nil {
		t.Fatalf("LoadRunConfig failed: %v", err)
	}

	if cfg.VaultRoot != "/tmp/v" {
		t.Errorf("VaultRoot = %q", cfg.VaultRoot)
	}
	if cfg.CustomerIDWidth != 3 {
		t.Errorf("CustomerIDWidth = %d", cfg.CustomerIDWidth)
	}
	if ids := cfg.ValidIDs(); len(ids) != 2 || ids[0] != 2 || ids[1] != 7 {
		t.Errorf("ValidIDs = %v", ids)
	}
	if len(cfg.Sections) != 2 || cfg.Sections[0] != "FP" {
		t.Errorf("Sections = %v", cfg.Sections)
	}
	if cfg.EnableCleanup {
		t.Error("EnableCleanup should default to false")
	}
}

func TestLoadRunConfig_MissingFile(t *testing.T) {
	_, err := LoadRunConfig(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, ErrRunConfigNotFound) {
		t.Errorf("expected ErrRunConfigNotFound, got %v", err)
	}
}

func TestLoadRunConfig_MalformedJSON(t *testing.T) {
	path := writeRunConfig(t, t.TempDir(), `{"VaultRoot": `)
	if _, err := LoadRunConfig(path); err == nil {
		t.Error("expected parse error for malformed JSON")
	}
}

func TestLoadRunConfig_MissingFields(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no VaultRoot", `{"CustomerIdWidth":3,"CustomerIds":[1],"Sections":["FP"],"TemplateRelativeRoot":"_t"}`},
		{"no CustomerIdWidth", `{"VaultRoot":"/v","CustomerIds":[1],"Sections":["FP"],"TemplateRelativeRoot":"_t"}`},
		{"no CustomerIds", `{"VaultRoot":"/v","CustomerIdWidth":3,"Sections":["FP"],"TemplateRelativeRoot":"_t"}`},
		{"no Sections", `{"VaultRoot":"/v","CustomerIdWidth":3,"CustomerIds":[1],"TemplateRelativeRoot":"_t"}`},
		{"no TemplateRelativeRoot", `{"VaultRoot":"/v","CustomerIdWidth":3,"CustomerIds":[1],"Sections":["FP"]}`},
		{"wrong-typed VaultRoot", `{"VaultRoot":7,"CustomerIdWidth":3,"CustomerIds":[1],"Sections":["FP"],"TemplateRelativeRoot":"_t"}`},
		{"wrong-typed width", `{"VaultRoot":"/v","CustomerIdWidth":"3","CustomerIds":[1],"Sections":["FP"],"TemplateRelativeRoot":"_t"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeRunConfig(t, t.TempDir(), tt.content)
			if _, err := LoadRunConfig(path); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestLoadRunConfig_ValidationRules(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"width zero", `{"VaultRoot":"/v","CustomerIdWidth":0,"CustomerIds":[1],"Sections":["FP"],"TemplateRelativeRoot":"_t"}`},
		{"width eleven", `{"VaultRoot":"/v","CustomerIdWidth":11,"CustomerIds":[1],"Sections":["FP"],"TemplateRelativeRoot":"_t"}`},
		{"empty section", `{"VaultRoot":"/v","CustomerIdWidth":3,"CustomerIds":[1],"Sections":["FP",""],"TemplateRelativeRoot":"_t"}`},
		{"duplicate section", `{"VaultRoot":"/v","CustomerIdWidth":3,"CustomerIds":[1],"Sections":["FP","FP"],"TemplateRelativeRoot":"_t"}`},
		{"duplicate customer", `{"VaultRoot":"/v","CustomerIdWidth":3,"CustomerIds":[1,1],"Sections":["FP"],"TemplateRelativeRoot":"_t"}`},
		{"empty sections list", `{"VaultRoot":"/v","CustomerIdWidth":3,"CustomerIds":[1],"Sections":[],"TemplateRelativeRoot":"_t"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeRunConfig(t, t.TempDir(), tt.content)
			if _, err := LoadRunConfig(path); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestLoadRunConfig_InvalidEntriesRetained(t *testing.T) {
	content := `{"VaultRoot":"/v","CustomerIdWidth":3,"CustomerIds":[2,"x",-1,3.5],"Sections":["FP"],"TemplateRelativeRoot":"_t"}`
	path := writeRunConfig(t, t.TempDir(), content)

	cfg, err := LoadRunConfig(path)
	if err != nil {
		t.Fatalf("per-item problems must not fail the load: %v", err)
	}

	if ids := cfg.ValidIDs(); len(ids) != 1 || ids[0] != 2 {
		t.Errorf("ValidIDs = %v, want [2]", ids)
	}
	bad := cfg.InvalidEntries()
	if len(bad) != 3 {
		t.Fatalf("expected 3 invalid entries, got %d", len(bad))
	}
	if bad[0].Raw != `"x"` {
		t.Errorf("first invalid entry raw = %q", bad[0].Raw)
	}
}

func TestRunConfig_WidthWarnings(t *testing.T) {
	cfg := &RunConfig{
		CustomerIDWidth: 2,
		Customers: []CustomerEntry{
			{Raw: "7", ID: 7, Valid: true},
			{Raw: "123", ID: 123, Valid: true},
		},
	}

	warnings := cfg.WidthWarnings()
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %v", warnings)
	}
}

func TestRunConfig_AddRemoveCustomer(t *testing.T) {
	cfg := &RunConfig{}

	if err := cfg.AddCustomer(2); err != nil {
		t.Fatalf("AddCustomer: %v", err)
	}
	if err := cfg.AddCustomer(2); err == nil {
		t.Error("expected duplicate add to fail")
	}
	if err := cfg.AddCustomer(-1); err == nil {
		t.Error("expected negative add to fail")
	}
	if err := cfg.RemoveCustomer(2); err != nil {
		t.Fatalf("RemoveCustomer: %v", err)
	}
	if err := cfg.RemoveCustomer(2); err == nil {
		t.Error("expected removing absent customer to fail")
	}
}

func TestRunConfig_SaveRoundTrip(t *testing.T) {
	content := `{"VaultRoot":".","CustomerIdWidth":3,"CustomerIds":[2,"x"],"Sections":["FP"],"TemplateRelativeRoot":"_t"}`
	path := writeRunConfig(t, t.TempDir(), content)

	cfg, err := LoadRunConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := cfg.AddCustomer(5); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := cfg.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	reloaded, err := LoadRunConfig(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if ids := reloaded.ValidIDs(); len(ids) != 2 || ids[1] != 5 {
		t.Errorf("reloaded ValidIDs = %v", ids)
	}
	// The malformed entry must survive a save untouched.
	if bad := reloaded.InvalidEntries(); len(bad) != 1 || bad[0].Raw != `"x"` {
		t.Errorf("invalid entries after round-trip = %+v", bad)
	}
}

func TestRunConfig_ResolveVaultRoot(t *testing.T) {
	dir := t.TempDir()
	path := writeRunConfig(t, dir, validRunConfig)

	cfg, err := LoadRunConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := cfg.ResolveVaultRoot(); got != filepath.Clean("/tmp/v") {
		t.Errorf("absolute root: got %q", got)
	}

	cfg.VaultRoot = "."
	if got := cfg.ResolveVaultRoot(); got != filepath.Clean(dir) {
		t.Errorf("relative root: got %q, want %q", got, dir)
	}
}
