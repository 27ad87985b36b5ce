// Package template provides flat placeholder substitution for vault
// Markdown templates.
//
// This is not a template language: there are no conditionals, loops, or
// expressions. A fixed set of tokens is replaced with computed values and
// everything else passes through untouched.
package template

import (
	"strings"
	"time"
)

// Placeholder tokens recognized in template bodies.
const (
	TokenCustCode = "{{CUST_CODE}}"
	TokenSection  = "{{SECTION}}"
	TokenNowUTC   = "{{NOW_UTC}}"
	TokenNowLocal = "{{NOW_LOCAL}}"
)

// Timestamp layouts for the NOW_* bindings.
const (
	LayoutUTC   = "2006-01-02 15:04:05 UTC"
	LayoutLocal = "2006-01-02 15:04:05 MST"
)

// Bindings holds the substitution values for one rendered file.
//
// A zero-value field substitutes as the empty string; root-level templates
// get an empty SECTION binding on purpose.
type Bindings struct {
	CustCode string
	Section  string
	NowUTC   string
	NowLocal string
}

// NewBindings creates Bindings for a customer code and section.
//
// Callers render all files for one customer from the same Bindings value so
// the whole customer shares an identical timestamp pair.
func NewBindings(custCode, section string, now time.Time) Bindings {
	return Bindings{
		CustCode: custCode,
		Section:  section,
		NowUTC:   now.UTC().Format(LayoutUTC),
		NowLocal: now.Format(LayoutLocal),
	}
}

// WithSection returns a copy of b bound to a different section, keeping the
// customer code and timestamp pair.
func (b Bindings) WithSection(section string) Bindings {
	b.Section = section
	return b
}

// Apply substitutes the known placeholder tokens in body.
//
// Every literal occurrence of a known token is replaced with its binding
// value (empty string when unbound). Unknown {{...}} sequences are left
// as-is so user content is never mangled.
func Apply(body string, b Bindings) string {
	if body == "" {
		return body
	}

	replacer := strings.NewReplacer(
		TokenCustCode, b.CustCode,
		TokenSection, b.Section,
		TokenNowUTC, b.NowUTC,
		TokenNowLocal, b.NowLocal,
	)
	return replacer.Replace(body)
}

// KnownTokens returns the placeholder tokens Apply understands.
func KnownTokens() []string {
	return []string{TokenCustCode, TokenSection, TokenNowUTC, TokenNowLocal}
}

// ContainsToken reports whether body still contains any known placeholder.
func ContainsToken(body string) bool {
	for _, tok := range KnownTokens() {
		if strings.Contains(body, tok) {
			return true
		}
	}
	return false
}
