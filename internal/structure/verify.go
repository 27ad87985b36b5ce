package structure

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kstrand/autovault/internal/config"
)

// IssueLevel indicates the severity of a verification issue.
type IssueLevel int

const (
	LevelError IssueLevel = iota
	LevelWarning
)

func (l IssueLevel) String() string {
	switch l {
	case LevelError:
		return "ERROR"
	case LevelWarning:
		return "WARN"
	default:
		return "UNKNOWN"
	}
}

// Issue is one verification finding.
type Issue struct {
	Level   IssueLevel `json:"-"`
	Path    string     `json:"path,omitempty"`
	Message string     `json:"message"`
}

// VerifyResult separates errors from warnings. Warnings never affect the
// exit code; errors do.
type VerifyResult struct {
	Errors   []Issue `json:"errors"`
	Warnings []Issue `json:"warnings"`
}

// OK reports whether verification found no errors.
func (r *VerifyResult) OK() bool {
	return len(r.Errors) == 0
}

func (r *VerifyResult) errorf(path, format string, args ...interface{}) {
	r.Errors = append(r.Errors, Issue{Level: LevelError, Path: path, Message: fmt.Sprintf(format, args...)})
}

func (r *VerifyResult) warnf(path, format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, Issue{Level: LevelWarning, Path: path, Message: fmt.Sprintf(format, args...)})
}

// Verify walks the expected structure for cfg and reports anything missing.
// It never repairs; `structure` does that.
func Verify(cfg *config.RunConfig, hubFile string) *VerifyResult {
	if hubFile == "" {
		hubFile = DefaultHubFile
	}
	result := &VerifyResult{}
	vaultRoot := cfg.ResolveVaultRoot()

	if info, err := os.Stat(vaultRoot); err != nil || !info.IsDir() {
		result.errorf("", "vault root %s does not exist", vaultRoot)
		return result
	}

	exists := func(rel string) bool {
		_, err := os.Stat(filepath.Join(vaultRoot, filepath.FromSlash(rel)))
		return err == nil
	}
	isDir := func(rel string) bool {
		info, err := os.Stat(filepath.Join(vaultRoot, filepath.FromSlash(rel)))
		return err == nil && info.IsDir()
	}

	if !isDir(RunDirName) {
		result.errorf(RunDirName, "run directory missing")
	}

	var hubContent []byte
	if exists(hubFile) {
		hubContent, _ = os.ReadFile(filepath.Join(vaultRoot, filepath.FromSlash(hubFile)))
	} else {
		result.errorf(hubFile, "hub file missing")
	}

	for _, entry := range cfg.Customers {
		if !entry.Valid {
			result.errorf("", "malformed customer ID %s in config", entry.Raw)
			continue
		}
		code := FormatCode(entry.ID, cfg.CustomerIDWidth)

		if !isDir(CustomerDirRel(code)) {
			result.errorf(CustomerDirRel(code), "customer directory missing")
			continue
		}
		if !exists(RootIndexRel(code)) {
			result.errorf(RootIndexRel(code), "root index missing")
		}

		for _, section := range cfg.Sections {
			if !isDir(SectionDirRel(code, section)) {
				result.errorf(SectionDirRel(code, section), "section directory missing")
				continue
			}
			if !exists(SectionIndexRel(code, section)) {
				result.errorf(SectionIndexRel(code, section), "section index missing")
			}
		}

		if hubContent != nil && !HubReferences(hubContent, code) {
			result.warnf(hubFile, "hub does not reference %s", code)
		}
	}

	// Optional directories only warrant warnings.
	if !isDir("_archive") {
		result.warnf("_archive", "optional archive directory missing")
	}
	if tmplDir := cfg.TemplateDir(); tmplDir != "" && !isDir(tmplDir) {
		result.warnf(tmplDir, "template directory missing; run 'templates export'")
	}

	for _, msg := range cfg.WidthWarnings() {
		result.warnf("", "%s", msg)
	}

	return result
}
