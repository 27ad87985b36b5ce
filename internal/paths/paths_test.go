package paths

import (
	"path/filepath"
	"testing"
)

func TestNormalizeRel(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"_templates/Run", "_templates/Run"},
		{"./_templates/Run", "_templates/Run"},
		{"/_templates//Run", "_templates/Run"},
		{"  Run/CUST-002  ", "Run/CUST-002"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeRel(tt.in); got != tt.expected {
			t.Errorf("NormalizeRel(%q) = %q, want %q", tt.in, got, tt.expected)
		}
	}
}

func TestNormalizeDirRoot(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"/_templates/", "_templates/"},
		{"_templates", "_templates/"},
		{"_templates/Run", "_templates/Run/"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeDirRoot(tt.in); got != tt.expected {
			t.Errorf("NormalizeDirRoot(%q) = %q, want %q", tt.in, got, tt.expected)
		}
	}
}

func TestValidateWithinVault(t *testing.T) {
	vault := t.TempDir()

	if err := ValidateWithinVault(vault, filepath.Join(vault, "Run", "CUST-002")); err != nil {
		t.Errorf("expected path inside vault to validate, got: %v", err)
	}

	if err := ValidateWithinVault(vault, filepath.Join(vault, "..", "escape")); err == nil {
		t.Error("expected escaping path to fail validation")
	}
}

func TestJoinVault(t *testing.T) {
	vault := t.TempDir()

	full, err := JoinVault(vault, "Run/CUST-002")
	if err != nil {
		t.Fatalf("JoinVault failed: %v", err)
	}
	expected := filepath.Join(vault, "Run", "CUST-002")
	if full != expected {
		t.Errorf("JoinVault = %q, want %q", full, expected)
	}

	if _, err := JoinVault(vault, "../outside"); err == nil {
		t.Error("expected escaping relative path to be rejected")
	}

	if _, err := JoinVault(vault, ""); err == nil {
		t.Error("expected empty relative path to be rejected")
	}
}
