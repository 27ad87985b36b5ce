package testutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
)

// The avt binary is built once per test run and shared across tests.
var (
	binaryPath string
	buildMu    sync.Mutex
	buildErr   error
)

// CLIResult is the parsed outcome of one avt invocation.
type CLIResult struct {
	OK       bool
	Data     map[string]interface{}
	Error    *CLIError
	Warnings []CLIWarning
	Meta     *CLIMeta
	RawJSON  string
	Stderr   string
	ExitCode int
}

// CLIError mirrors the error object of the JSON envelope.
type CLIError struct {
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Suggestion string                 `json:"suggestion,omitempty"`
}

// CLIWarning mirrors one warning of the JSON envelope.
type CLIWarning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Path    string `json:"path,omitempty"`
}

// CLIMeta mirrors the meta object of the JSON envelope.
type CLIMeta struct {
	Count      int   `json:"count,omitempty"`
	DurationMs int64 `json:"duration_ms,omitempty"`
}

// BuildCLI compiles cmd/avt into a temp directory and returns the binary
// path. RunCLI calls it implicitly; the result is cached.
func BuildCLI(t *testing.T) string {
	t.Helper()

	buildMu.Lock()
	defer buildMu.Unlock()

	if binaryPath != "" {
		// Some Windows runners clean the temp dir mid-run; rebuild then.
		if _, err := os.Stat(binaryPath); err == nil {
			return binaryPath
		}
		binaryPath = ""
		buildErr = nil
	}

	if buildErr == nil {
		binaryPath, buildErr = buildBinary()
	}
	if buildErr != nil {
		t.Fatalf("failed to build CLI: %v", buildErr)
	}
	return binaryPath
}

func buildBinary() (string, error) {
	projectRoot, err := findProjectRoot()
	if err != nil {
		return "", err
	}
	tmpDir, err := os.MkdirTemp("", "avt-cli-bin-*")
	if err != nil {
		return "", err
	}

	name := "avt"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	bin := filepath.Join(tmpDir, name)

	cmd := exec.Command("go", "build", "-o", bin, "./cmd/avt")
	cmd.Dir = projectRoot
	if output, err := cmd.CombinedOutput(); err != nil {
		return "", &BuildError{Output: string(output), Err: err}
	}
	return bin, nil
}

// BuildError carries the compiler output alongside the exec error.
type BuildError struct {
	Output string
	Err    error
}

func (e *BuildError) Error() string {
	return e.Err.Error() + "\n" + e.Output
}

// findProjectRoot walks up from the test's working directory to the
// directory containing go.mod.
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}

// RunCLI runs avt against the vault with --vault-path and --json prepended
// and parses the JSON envelope.
func (v *TestVault) RunCLI(args ...string) *CLIResult {
	v.t.Helper()
	return v.runCLI(nil, args)
}

// RunCLIWithStdin is RunCLI with data on standard input.
func (v *TestVault) RunCLIWithStdin(stdin string, args ...string) *CLIResult {
	v.t.Helper()
	return v.runCLI(strings.NewReader(stdin), args)
}

func (v *TestVault) runCLI(stdin *strings.Reader, args []string) *CLIResult {
	v.t.Helper()

	cmd := exec.Command(BuildCLI(v.t), append([]string{"--vault-path", v.Path, "--json"}, args...)...)
	if stdin != nil {
		cmd.Stdin = stdin
	}

	// Diagnostics go to stderr; only stdout carries the JSON envelope.
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()

	result := &CLIResult{
		RawJSON: stdout.String(),
		Stderr:  stderr.String(),
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = -1
		}
	}

	var resp struct {
		OK       bool                   `json:"ok"`
		Data     map[string]interface{} `json:"data,omitempty"`
		Error    *CLIError              `json:"error,omitempty"`
		Warnings []CLIWarning           `json:"warnings,omitempty"`
		Meta     *CLIMeta               `json:"meta,omitempty"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		result.Error = &CLIError{
			Code:    "PARSE_ERROR",
			Message: "failed to parse JSON output: " + err.Error(),
			Details: map[string]interface{}{"stdout": stdout.String(), "stderr": stderr.String()},
		}
		return result
	}

	result.OK = resp.OK
	result.Data = resp.Data
	result.Error = resp.Error
	result.Warnings = resp.Warnings
	result.Meta = resp.Meta
	return result
}

// MustSucceed fails the test unless the command reported ok:true.
func (r *CLIResult) MustSucceed(t *testing.T) *CLIResult {
	t.Helper()
	if !r.OK {
		msg := "unknown error"
		if r.Error != nil {
			msg = r.Error.Code + ": " + r.Error.Message
		}
		t.Fatalf("command failed: %s\nstdout: %s\nstderr: %s", msg, r.RawJSON, r.Stderr)
	}
	return r
}

// MustFail fails the test unless the command failed with the given code.
func (r *CLIResult) MustFail(t *testing.T, expectedCode string) *CLIResult {
	t.Helper()
	if r.OK {
		t.Fatalf("expected failure with code %s, command succeeded\nstdout: %s", expectedCode, r.RawJSON)
	}
	if r.Error == nil {
		t.Fatalf("expected error code %s, error is nil\nstdout: %s\nstderr: %s", expectedCode, r.RawJSON, r.Stderr)
	}
	if r.Error.Code != expectedCode {
		t.Fatalf("error code = %s (%s), want %s\nstdout: %s", r.Error.Code, r.Error.Message, expectedCode, r.RawJSON)
	}
	return r
}

// DataList returns Data[key] as a list, or nil.
func (r *CLIResult) DataList(key string) []interface{} {
	if r.Data == nil {
		return nil
	}
	list, _ := r.Data[key].([]interface{})
	return list
}

// DataString returns Data[key] as a string, or "".
func (r *CLIResult) DataString(key string) string {
	if r.Data == nil {
		return ""
	}
	s, _ := r.Data[key].(string)
	return s
}
