// Package paths provides canonical helpers for vault-relative paths.
//
// Every file the toolkit touches lives under a single vault root; these
// helpers normalize relative references and reject anything that would
// escape the root.
package paths

import (
	"fmt"
	"path/filepath"
	"strings"
)

// NormalizeRel normalizes a vault-relative path-like value:
// - converts OS separators to '/'
// - trims leading "./" and leading "/"
// - collapses repeated '/'
func NormalizeRel(p string) string {
	p = filepath.ToSlash(strings.TrimSpace(p))
	p = strings.TrimPrefix(p, "./")
	p = strings.TrimPrefix(p, "/")
	for strings.Contains(p, "//") {
		p = strings.ReplaceAll(p, "//", "/")
	}
	return p
}

// NormalizeDirRoot normalizes a directory root to have no leading slash and
// exactly one trailing slash (unless empty).
//
// Examples:
// - "/_templates/" -> "_templates/"
// - "_templates"   -> "_templates/"
// - ""             -> ""
func NormalizeDirRoot(root string) string {
	root = filepath.ToSlash(root)
	root = strings.Trim(root, "/")
	if root == "" {
		return ""
	}
	return root + "/"
}

// ValidateWithinVault ensures fullPath is inside vaultRoot after resolving
// relative components. It returns an error for anything that escapes.
func ValidateWithinVault(vaultRoot, fullPath string) error {
	absVault, err := filepath.Abs(vaultRoot)
	if err != nil {
		return fmt.Errorf("resolve vault root: %w", err)
	}
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	rel, err := filepath.Rel(absVault, absPath)
	if err != nil {
		return fmt.Errorf("path %s is outside the vault", fullPath)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("path %s is outside the vault", fullPath)
	}
	return nil
}

// JoinVault joins a vault root and a vault-relative path, validating that
// the result stays inside the vault.
func JoinVault(vaultRoot, rel string) (string, error) {
	rel = NormalizeRel(rel)
	if rel == "" || rel == "." {
		return "", fmt.Errorf("vault-relative path must be non-empty")
	}
	full := filepath.Join(vaultRoot, filepath.FromSlash(rel))
	if err := ValidateWithinVault(vaultRoot, full); err != nil {
		return "", err
	}
	return full, nil
}
