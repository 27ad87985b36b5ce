package cli

import (
	"encoding/json"
	"fmt"
	"os"
)

// Set by the root --json flag.
var jsonOutput bool

// Response is the envelope every command emits in JSON mode. OK mirrors the
// exit code: false always pairs with a non-zero exit.
type Response struct {
	OK       bool        `json:"ok"`
	Data     interface{} `json:"data,omitempty"`
	Error    *ErrorInfo  `json:"error,omitempty"`
	Warnings []Warning   `json:"warnings,omitempty"`
	Meta     *Meta       `json:"meta,omitempty"`
}

// ErrorInfo is the machine-readable error payload. Code values are stable
// strings scripts can match on.
type ErrorInfo struct {
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	Suggestion string      `json:"suggestion,omitempty"`
}

// Warning is a non-fatal finding attached to an otherwise usable result.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Path    string `json:"path,omitempty"`
}

// Meta carries counts and timing alongside Data.
type Meta struct {
	Count      int   `json:"count,omitempty"`
	DurationMs int64 `json:"duration_ms,omitempty"`
}

func outputJSON(resp Response) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(resp)
}

func outputSuccess(data interface{}, meta *Meta) {
	outputSuccessWithWarnings(data, nil, meta)
}

func outputSuccessWithWarnings(data interface{}, warnings []Warning, meta *Meta) {
	outputJSON(Response{OK: true, Data: data, Warnings: warnings, Meta: meta})
}

func outputError(code, message string, details interface{}, suggestion string) {
	outputJSON(Response{OK: false, Error: &ErrorInfo{
		Code:       code,
		Message:    message,
		Details:    details,
		Suggestion: suggestion,
	}})
}

func isJSONOutput() bool { return jsonOutput }

// handleError adapts an error to the active output mode. JSON mode prints
// the envelope and exits 1 so the shell sees the failure; text mode hands
// the error back to cobra.
func handleError(code string, err error, suggestion string) error {
	return handleErrorWithDetails(code, err.Error(), suggestion, nil)
}

// handleErrorMsg is handleError for errors that exist only as a message.
func handleErrorMsg(code, message, suggestion string) error {
	return handleErrorWithDetails(code, message, suggestion, nil)
}

func handleErrorWithDetails(code, message, suggestion string, details interface{}) error {
	if jsonOutput {
		outputError(code, message, details, suggestion)
		os.Exit(1)
	}
	return fmt.Errorf("%s", message)
}

// failPartial reports a pass that finished but hit per-item errors, then
// exits 1. Warnings never reach this path.
func failPartial(data interface{}, warnings []Warning, text func()) {
	if jsonOutput {
		outputJSON(Response{
			OK:       false,
			Data:     data,
			Warnings: warnings,
			Error: &ErrorInfo{
				Code:    ErrStructureFailed,
				Message: "completed with item errors",
			},
		})
	} else {
		text()
	}
	os.Exit(1)
}
