package structure

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/kstrand/autovault/internal/config"
)

func testConfig(vaultRoot string) *config.RunConfig {
	return &config.RunConfig{
		VaultRoot:            vaultRoot,
		CustomerIDWidth:      3,
		Customers:            []config.CustomerEntry{{Raw: "2", ID: 2, Valid: true}},
		Sections:             []string{"FP", "RAISED"},
		TemplateRelativeRoot: "_templates/Run",
	}
}

func mustExist(t *testing.T, vaultRoot, rel string) {
	t.Helper()
	if _, err := os.Stat(filepath.Join(vaultRoot, filepath.FromSlash(rel))); err != nil {
		t.Errorf("expected %s to exist: %v", rel, err)
	}
}

// snapshotTree maps every path under root to its file content ("" for dirs).
func snapshotTree(t *testing.T, root string) map[string]string {
	t.Helper()
	tree := make(map[string]string)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(root, path)
		if rel == "." {
			return nil
		}
		if d.IsDir() {
			tree[rel] = ""
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		tree[rel] = string(data)
		return nil
	})
	if err != nil {
		t.Fatalf("walk %s: %v", root, err)
	}
	return tree
}

func TestGenerate_CreatesFullTree(t *testing.T) {
	vault := t.TempDir()
	cfg := testConfig(vault)

	report, err := NewGenerator(cfg, Options{}).Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if report.HasErrors() {
		t.Fatalf("unexpected per-item errors: %+v", report.Errors)
	}

	mustExist(t, vault, "Run/CUST-002/CUST-002-Index.md")
	mustExist(t, vault, "Run/CUST-002/CUST-002-FP/CUST-002-FP-Index.md")
	mustExist(t, vault, "Run/CUST-002/CUST-002-RAISED/CUST-002-RAISED-Index.md")
	mustExist(t, vault, "Run-Hub.md")

	if !report.HubWritten {
		t.Error("expected hub to be written on first run")
	}

	// A freshly generated tree must verify clean.
	result := Verify(cfg, "")
	if !result.OK() {
		t.Errorf("Verify after Generate returned errors: %+v", result.Errors)
	}
}

func TestGenerate_Idempotent(t *testing.T) {
	vault := t.TempDir()
	cfg := testConfig(vault)

	if _, err := NewGenerator(cfg, Options{}).Generate(); err != nil {
		t.Fatalf("first Generate: %v", err)
	}
	first := snapshotTree(t, vault)

	report, err := NewGenerator(cfg, Options{}).Generate()
	if err != nil {
		t.Fatalf("second Generate: %v", err)
	}
	second := snapshotTree(t, vault)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("tree changed on repeated generate (-first +second):\n%s", diff)
	}
	if report.DirsCreated != 0 || report.FilesCreated != 0 || report.HubWritten {
		t.Errorf("second run should create nothing: %+v", report)
	}
}

func TestGenerate_PreservesExistingHub(t *testing.T) {
	vault := t.TempDir()
	cfg := testConfig(vault)

	custom := "# My hub\n\n- [CUST-002](Run/CUST-002/CUST-002-Index.md)\n"
	if err := os.WriteFile(filepath.Join(vault, "Run-Hub.md"), []byte(custom), 0o644); err != nil {
		t.Fatalf("write hub: %v", err)
	}

	if _, err := NewGenerator(cfg, Options{}).Generate(); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(vault, "Run-Hub.md"))
	if err != nil {
		t.Fatalf("read hub: %v", err)
	}
	if string(data) != custom {
		t.Error("existing hub file was modified")
	}
}

func TestGenerate_InvalidEntrySkippedPassContinues(t *testing.T) {
	vault := t.TempDir()
	cfg := testConfig(vault)
	cfg.Customers = []config.CustomerEntry{
		{Raw: "2", ID: 2, Valid: true},
		{Raw: `"x"`},
	}

	report, err := NewGenerator(cfg, Options{}).Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if len(report.Errors) != 1 || report.Errors[0].Entry != `"x"` {
		t.Errorf("expected one per-item error for \"x\", got %+v", report.Errors)
	}
	mustExist(t, vault, "Run/CUST-002/CUST-002-Index.md")
}

func TestGenerate_MissingVaultRootIsFatal(t *testing.T) {
	cfg := testConfig(filepath.Join(t.TempDir(), "missing"))

	if _, err := NewGenerator(cfg, Options{}).Generate(); err == nil {
		t.Error("expected fatal error for missing vault root")
	}
}

func TestGenerate_DryRunTouchesNothing(t *testing.T) {
	vault := t.TempDir()
	cfg := testConfig(vault)

	report, err := NewGenerator(cfg, Options{DryRun: true}).Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if report.DirsCreated == 0 || report.FilesCreated == 0 || !report.HubWritten {
		t.Errorf("dry run should plan the full tree: %+v", report)
	}
	if tree := snapshotTree(t, vault); len(tree) != 0 {
		t.Errorf("dry run created files: %v", tree)
	}
}

func TestGenerate_TemplatedIndexFiles(t *testing.T) {
	vault := t.TempDir()
	cfg := testConfig(vault)
	store := &config.TemplateStore{
		Index: config.IndexTemplates{
			Root: "# {{CUST_CODE}} at {{NOW_UTC}}",
			Sections: map[string]string{
				"FP":     "# {{CUST_CODE}}-{{SECTION}}",
				"RAISED": "# {{CUST_CODE}}-{{SECTION}}",
			},
		},
	}
	now := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)

	if _, err := NewGenerator(cfg, Options{Store: store, Now: func() time.Time { return now }}).Generate(); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(vault, "Run", "CUST-002", "CUST-002-Index.md"))
	if err != nil {
		t.Fatalf("read root index: %v", err)
	}
	if string(data) != "# CUST-002 at 2026-08-26 10:00:00 UTC" {
		t.Errorf("root index = %q", string(data))
	}

	data, err = os.ReadFile(filepath.Join(vault, "Run", "CUST-002", "CUST-002-FP", "CUST-002-FP-Index.md"))
	if err != nil {
		t.Fatalf("read section index: %v", err)
	}
	if string(data) != "# CUST-002-FP" {
		t.Errorf("section index = %q", string(data))
	}
}

func TestGenerate_MissingTemplateAborts(t *testing.T) {
	vault := t.TempDir()
	cfg := testConfig(vault)
	store := &config.TemplateStore{
		Index: config.IndexTemplates{
			Root:     "# root",
			Sections: map[string]string{"FP": "# fp"}, // RAISED missing
		},
	}

	_, err := NewGenerator(cfg, Options{Store: store}).Generate()
	if err == nil {
		t.Fatal("expected missing template to abort")
	}
	if tree := snapshotTree(t, vault); len(tree) != 0 {
		t.Errorf("aborted run must not create files, got %v", tree)
	}
}

func TestApplyTemplates_OverwritesIndexes(t *testing.T) {
	vault := t.TempDir()
	cfg := testConfig(vault)
	cfg.Sections = []string{"FP"}

	if _, err := NewGenerator(cfg, Options{}).Generate(); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	store := &config.TemplateStore{
		Index: config.IndexTemplates{
			Root:     "# templated root",
			Sections: map[string]string{"FP": "# templated section"},
		},
	}
	report, err := NewGenerator(cfg, Options{Store: store}).ApplyTemplates()
	if err != nil {
		t.Fatalf("ApplyTemplates: %v", err)
	}
	if report.FilesWritten != 2 {
		t.Errorf("FilesWritten = %d, want 2", report.FilesWritten)
	}

	data, _ := os.ReadFile(filepath.Join(vault, "Run", "CUST-002", "CUST-002-Index.md"))
	if string(data) != "# templated root" {
		t.Errorf("root index after apply = %q", string(data))
	}

	// Hub is left untouched by a template pass.
	hub, err := os.ReadFile(filepath.Join(vault, "Run-Hub.md"))
	if err != nil {
		t.Fatalf("hub should still exist: %v", err)
	}
	if !HubReferences(hub, "CUST-002") {
		t.Error("hub lost its customer reference")
	}
}
