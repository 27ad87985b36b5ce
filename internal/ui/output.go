package ui

import "fmt"

// Status symbols; color stays reserved for paths, codes and hints.
const (
	SymbolSuccess = "✓"
	SymbolError   = "✗"
	SymbolWarning = "⚠"
	SymbolInfo    = "ℹ"
	SymbolSkipped = "•"
)

// Success prefixes msg with the success symbol
func Success(msg string) string {
	return SymbolSuccess + " " + msg
}

// Successf is Success with formatting
func Successf(format string, args ...interface{}) string {
	return Success(fmt.Sprintf(format, args...))
}

// Error prefixes msg with the error symbol
func Error(msg string) string {
	return SymbolError + " " + msg
}

// Errorf is Error with formatting
func Errorf(format string, args ...interface{}) string {
	return Error(fmt.Sprintf(format, args...))
}

// Warning prefixes msg with the warning symbol
func Warning(msg string) string {
	return SymbolWarning + " " + msg
}

// Warningf is Warning with formatting
func Warningf(format string, args ...interface{}) string {
	return Warning(fmt.Sprintf(format, args...))
}

// Info prefixes msg with the info symbol
func Info(msg string) string {
	return SymbolInfo + " " + msg
}

// Infof is Info with formatting
func Infof(format string, args ...interface{}) string {
	return Info(fmt.Sprintf(format, args...))
}

// Skipped marks a line for something that was left as-is
func Skipped(msg string) string {
	return SymbolSkipped + " " + msg
}

// Header styles a section header
func Header(msg string) string {
	return Bold.Render(msg)
}

// FilePath styles a file path
func FilePath(path string) string {
	return Accent.Render(path)
}

// Code styles a customer code
func Code(code string) string {
	return AccentBold.Render(code)
}

// Hint styles muted hint text
func Hint(msg string) string {
	return Muted.Render(msg)
}

// ErrorWarningCounts formats a summary like "(3 errors, 2 warnings)",
// omitting whichever count is zero.
func ErrorWarningCounts(errors, warnings int) string {
	switch {
	case errors > 0 && warnings > 0:
		return fmt.Sprintf("(%d %s, %d %s)",
			errors, pluralize("error", errors),
			warnings, pluralize("warning", warnings))
	case errors > 0:
		return fmt.Sprintf("(%d %s)", errors, pluralize("error", errors))
	default:
		return fmt.Sprintf("(%d %s)", warnings, pluralize("warning", warnings))
	}
}

func pluralize(singular string, count int) string {
	if count == 1 {
		return singular
	}
	return singular + "s"
}
