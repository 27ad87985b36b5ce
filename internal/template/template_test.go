package template

import (
	"testing"
	"time"
)

func TestApply(t *testing.T) {
	bindings := Bindings{
		CustCode: "CUST-002",
		Section:  "FP",
		NowUTC:   "2026-08-26 10:00:00 UTC",
		NowLocal: "2026-08-26 12:00:00 CEST",
	}

	tests := []struct {
		name     string
		body     string
		bindings Bindings
		expected string
	}{
		{
			name:     "code and section",
			body:     "Code: {{CUST_CODE}}, Section: {{SECTION}}",
			bindings: bindings,
			expected: "Code: CUST-002, Section: FP",
		},
		{
			name:     "timestamps",
			body:     "Created {{NOW_UTC}} ({{NOW_LOCAL}})",
			bindings: bindings,
			expected: "Created 2026-08-26 10:00:00 UTC (2026-08-26 12:00:00 CEST)",
		},
		{
			name:     "repeated token",
			body:     "{{CUST_CODE}}/{{CUST_CODE}}-Index.md",
			bindings: bindings,
			expected: "CUST-002/CUST-002-Index.md",
		},
		{
			name:     "unbound section becomes empty",
			body:     "# {{CUST_CODE}} {{SECTION}}Index",
			bindings: Bindings{CustCode: "CUST-002"},
			expected: "# CUST-002 Index",
		},
		{
			name:     "unknown token preserved",
			body:     "keep {{TEMPLATER_DATE}} alone",
			bindings: bindings,
			expected: "keep {{TEMPLATER_DATE}} alone",
		},
		{
			name:     "empty body",
			body:     "",
			bindings: bindings,
			expected: "",
		},
		{
			name:     "no tokens",
			body:     "plain text",
			bindings: bindings,
			expected: "plain text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(tt.body, tt.bindings)
			if got != tt.expected {
				t.Errorf("Apply() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestApply_SubstitutionIsTotal(t *testing.T) {
	body := "# {{CUST_CODE}}\n\nSection: {{SECTION}}\nUTC: {{NOW_UTC}}\nLocal: {{NOW_LOCAL}}\n"
	result := Apply(body, NewBindings("CUST-042", "RAISED", time.Now()))

	if ContainsToken(result) {
		t.Errorf("expected all known tokens substituted, got:\n%s", result)
	}
}

func TestNewBindings_SharedTimestampPair(t *testing.T) {
	now := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)
	root := NewBindings("CUST-002", "", now)
	section := root.WithSection("FP")

	if root.NowUTC != section.NowUTC || root.NowLocal != section.NowLocal {
		t.Error("expected root and section bindings to share the timestamp pair")
	}
	if section.Section != "FP" {
		t.Errorf("WithSection: got %q, want FP", section.Section)
	}
	if root.Section != "" {
		t.Errorf("root bindings must keep an empty section, got %q", root.Section)
	}
	if root.NowUTC != "2026-08-26 10:00:00 UTC" {
		t.Errorf("NowUTC = %q", root.NowUTC)
	}
}
