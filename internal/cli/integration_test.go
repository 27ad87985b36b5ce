package cli_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kstrand/autovault/internal/testutil"
)

func removeAll(t *testing.T, v *testutil.TestVault, rel string) {
	t.Helper()
	if err := os.RemoveAll(filepath.Join(v.Path, filepath.FromSlash(rel))); err != nil {
		t.Fatalf("remove %s: %v", rel, err)
	}
}

func newConfiguredVault(t *testing.T) *testutil.TestVault {
	t.Helper()
	return testutil.NewTestVault(t).
		WithRunConfig(testutil.MinimalRunConfig()).
		WithTemplateStore(testutil.MinimalTemplateStore()).
		Build()
}

func TestStructureCreatesTree(t *testing.T) {
	v := newConfiguredVault(t)

	v.RunCLI("structure").MustSucceed(t)

	v.AssertDirExists("Run/CUST-002")
	v.AssertDirExists("Run/CUST-002/CUST-002-FP")
	v.AssertDirExists("Run/CUST-007/CUST-007-RAISED")
	v.AssertFileExists("Run/CUST-002/CUST-002-Index.md")
	v.AssertFileExists("Run/CUST-007/CUST-007-FP/CUST-007-FP-Index.md")
	v.AssertFileExists("Run-Hub.md")
	v.AssertFileContains("Run-Hub.md", "CUST-002")
	v.AssertFileContains("Run-Hub.md", "CUST-007")

	// Fresh index files are empty until a template pass.
	if got := v.ReadFile("Run/CUST-002/CUST-002-Index.md"); got != "" {
		t.Errorf("fresh index should be empty, got %q", got)
	}

	// Second run keeps everything.
	result := v.RunCLI("structure").MustSucceed(t)
	if result.ExitCode != 0 {
		t.Errorf("idempotent rerun exit code = %d", result.ExitCode)
	}
}

func TestStructureWithTemplates(t *testing.T) {
	v := newConfiguredVault(t)

	v.RunCLI("structure", "--templates").MustSucceed(t)

	v.AssertFileContains("Run/CUST-002/CUST-002-Index.md", "# CUST-002")
	v.AssertFileContains("Run/CUST-007/CUST-007-FP/CUST-007-FP-Index.md", "CUST-007 FP")
	// Substitution is total: no tokens survive.
	v.AssertFileNotContains("Run/CUST-002/CUST-002-Index.md", "{{")
}

func TestStructureDryRunWritesNothing(t *testing.T) {
	v := newConfiguredVault(t)

	v.RunCLI("structure", "--dry-run").MustSucceed(t)

	v.AssertDirNotExists("Run")
	v.AssertFileNotExists("Run-Hub.md")
}

func TestStructureMalformedEntryExitsOne(t *testing.T) {
	v := testutil.NewTestVault(t).
		WithRunConfig(`{
  "VaultRoot": ".",
  "CustomerIdWidth": 3,
  "CustomerIds": [2, "x"],
  "Sections": ["FP"],
  "TemplateRelativeRoot": "Templates",
  "EnableCleanup": false
}`).
		WithTemplateStore(testutil.MinimalTemplateStore()).
		Build()

	result := v.RunCLI("structure")
	if result.OK {
		t.Fatalf("expected failure with per-item errors, got OK\n%s", result.RawJSON)
	}
	if result.ExitCode != 1 {
		t.Errorf("exit code = %d, want 1", result.ExitCode)
	}

	// The valid customer was still processed.
	v.AssertDirExists("Run/CUST-002/CUST-002-FP")
}

func TestVerifyCleanAndDrifted(t *testing.T) {
	v := newConfiguredVault(t)

	v.RunCLI("structure").MustSucceed(t)
	v.RunCLI("test").MustSucceed(t)

	// Remove one section dir; verify must fail.
	v2 := newConfiguredVault(t)
	v2.RunCLI("structure").MustSucceed(t)
	removeAll(t, v2, "Run/CUST-007/CUST-007-RAISED")
	result := v2.RunCLI("test")
	if result.OK {
		t.Fatalf("expected verification failure\n%s", result.RawJSON)
	}
	if result.ExitCode != 1 {
		t.Errorf("exit code = %d, want 1", result.ExitCode)
	}
}

func TestCustomerAddAndRemove(t *testing.T) {
	v := newConfiguredVault(t)

	v.RunCLI("customer", "add", "42").MustSucceed(t)
	v.AssertFileContains("config/cust-run-config.json", "42")

	// Adding again fails.
	v.RunCLI("customer", "add", "42").MustFail(t, "CUSTOMER_EXISTS")

	// The mutation took a backup first.
	list := v.RunCLI("backup", "list").MustSucceed(t)
	if len(list.DataList("backups")) == 0 {
		t.Error("expected an automatic backup before customer add")
	}

	v.RunCLI("customer", "remove", "42").MustSucceed(t)
	v.AssertFileNotContains("config/cust-run-config.json", "42")

	v.RunCLI("customer", "remove", "42").MustFail(t, "CUSTOMER_NOT_FOUND")
}

func TestCustomerAddRejectsBadID(t *testing.T) {
	v := newConfiguredVault(t)
	v.RunCLI("customer", "add", "abc").MustFail(t, "INVALID_INPUT")
	v.RunCLI("customer", "add", "3.5").MustFail(t, "INVALID_INPUT")
}

func TestBackupCreateAndRestore(t *testing.T) {
	v := newConfiguredVault(t)

	original := v.ReadFile("config/cust-run-config.json")
	v.RunCLI("backup", "create", "before edits").MustSucceed(t)

	// Mutate the config, then restore the newest backup.
	v.RunCLI("customer", "add", "99").MustSucceed(t)
	v.RunCLI("backup", "restore", "1", "--yes").MustSucceed(t)

	// Restore picks the newest backup, which is the pre-add automatic
	// one, so the config is back to the original content.
	if got := v.ReadFile("config/cust-run-config.json"); got != original {
		t.Errorf("restore did not bring back the original config:\n%s", got)
	}
}

func TestVaultPathMustExist(t *testing.T) {
	v := testutil.NewTestVault(t).Build()

	result := v.RunCLI("--vault-path", filepath.Join(v.Path, "no-such-vault"), "test")
	if result.OK {
		t.Fatalf("expected failure for missing vault path\n%s", result.RawJSON)
	}
	if result.ExitCode != 1 {
		t.Errorf("exit code = %d, want 1", result.ExitCode)
	}
	if !strings.Contains(result.Stderr, "vault not found") {
		t.Errorf("stderr = %q, want vault-not-found message", result.Stderr)
	}
}

func TestBackupCleanupRequiresConfirmation(t *testing.T) {
	v := newConfiguredVault(t)

	for _, desc := range []string{"one", "two", "three"} {
		v.RunCLI("backup", "create", desc).MustSucceed(t)
	}

	// Without --yes nothing is deleted: stdin is not a terminal, so the
	// prompt refuses.
	v.RunCLI("backup", "cleanup", "--keep", "1").MustFail(t, "CONFIRMATION_REQUIRED")
	list := v.RunCLI("backup", "list").MustSucceed(t)
	if got := len(list.DataList("backups")); got != 3 {
		t.Fatalf("unconfirmed cleanup deleted backups: %d left", got)
	}

	v.RunCLI("backup", "cleanup", "--keep", "1", "--yes").MustSucceed(t)
	list = v.RunCLI("backup", "list").MustSucceed(t)
	if got := len(list.DataList("backups")); got != 1 {
		t.Errorf("expected 1 backup after cleanup, got %d", got)
	}
}

func TestCleanupGatedByConfig(t *testing.T) {
	v := newConfiguredVault(t)
	v.RunCLI("structure").MustSucceed(t)
	v.MkDir("Run/CUST-099")

	// EnableCleanup is false in the minimal config.
	v.RunCLI("cleanup", "--yes").MustFail(t, "CLEANUP_DISABLED")
	v.AssertDirExists("Run/CUST-099")
}

func TestCleanupRemovesExtraneous(t *testing.T) {
	v := testutil.NewTestVault(t).
		WithRunConfig(`{
  "VaultRoot": ".",
  "CustomerIdWidth": 3,
  "CustomerIds": [2],
  "Sections": ["FP"],
  "TemplateRelativeRoot": "Templates",
  "EnableCleanup": true
}`).
		WithTemplateStore(testutil.MinimalTemplateStore()).
		Build()

	v.RunCLI("structure").MustSucceed(t)
	v.MkDir("Run/CUST-099")

	// Dry run reports but keeps the directory.
	v.RunCLI("cleanup", "--dry-run").MustSucceed(t)
	v.AssertDirExists("Run/CUST-099")

	v.RunCLI("cleanup", "--yes").MustSucceed(t)
	v.AssertDirNotExists("Run/CUST-099")
	v.AssertDirExists("Run/CUST-002")
}

func TestTemplatesExportSyncApply(t *testing.T) {
	v := newConfiguredVault(t)
	v.RunCLI("structure").MustSucceed(t)

	v.RunCLI("templates", "export").MustSucceed(t)
	v.AssertFileExists("Templates/Run-Root-Index.md")
	v.AssertFileExists("Templates/Run-FP-Index.md")

	// Edit a working copy and sync it back.
	v.WriteFile("Templates/Run-Root-Index.md", "# {{CUST_CODE}} edited\n")
	v.RunCLI("templates", "sync").MustSucceed(t)
	v.AssertFileContains("config/templates.json", "edited")

	v.RunCLI("templates", "apply").MustSucceed(t)
	v.AssertFileContains("Run/CUST-002/CUST-002-Index.md", "# CUST-002 edited")
}

func TestHistoryRecordsRuns(t *testing.T) {
	v := newConfiguredVault(t)
	v.RunCLI("structure").MustSucceed(t)
	v.RunCLI("test").MustSucceed(t)

	result := v.RunCLI("history").MustSucceed(t)
	runs := result.DataList("runs")
	if len(runs) < 2 {
		t.Fatalf("expected at least 2 recorded runs, got %d\n%s", len(runs), result.RawJSON)
	}
}

func TestVerifyDryRunRecordsNoHistory(t *testing.T) {
	v := newConfiguredVault(t)
	v.RunCLI("structure").MustSucceed(t)

	v.RunCLI("test", "--dry-run").MustSucceed(t)

	result := v.RunCLI("history").MustSucceed(t)
	if runs := result.DataList("runs"); len(runs) != 1 {
		t.Errorf("expected only the structure run in history, got %d\n%s", len(runs), result.RawJSON)
	}
}

func TestMissingConfigIsFatal(t *testing.T) {
	v := testutil.NewTestVault(t).Build()

	result := v.RunCLI("structure")
	result.MustFail(t, "CONFIG_NOT_FOUND")
	if result.ExitCode != 1 {
		t.Errorf("exit code = %d, want 1", result.ExitCode)
	}
	v.AssertDirNotExists("Run")
}
