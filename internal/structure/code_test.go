package structure

import "testing"

func TestFormatCode(t *testing.T) {
	tests := []struct {
		name     string
		id       int
		width    int
		expected string
	}{
		{"pads to width", 2, 3, "CUST-002"},
		{"exact width", 123, 3, "CUST-123"},
		{"width one", 0, 1, "CUST-0"},
		{"wide ids never truncate", 12345, 3, "CUST-12345"},
		{"max width", 7, 10, "CUST-0000000007"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatCode(tt.id, tt.width); got != tt.expected {
				t.Errorf("FormatCode(%d, %d) = %q, want %q", tt.id, tt.width, got, tt.expected)
			}
		})
	}
}

func TestFormatCode_Length(t *testing.T) {
	// For any ID whose decimal length fits the width, the code length is
	// len("CUST-") + width.
	for width := 1; width <= 10; width++ {
		for _, id := range []int{0, 1, 9} {
			code := FormatCode(id, width)
			if len(code) != 5+width {
				t.Errorf("FormatCode(%d, %d) = %q, want length %d", id, width, code, 5+width)
			}
		}
	}
}

func TestRelPathHelpers(t *testing.T) {
	code := "CUST-002"

	if got := CustomerDirRel(code); got != "Run/CUST-002" {
		t.Errorf("CustomerDirRel = %q", got)
	}
	if got := RootIndexRel(code); got != "Run/CUST-002/CUST-002-Index.md" {
		t.Errorf("RootIndexRel = %q", got)
	}
	if got := SectionDirRel(code, "FP"); got != "Run/CUST-002/CUST-002-FP" {
		t.Errorf("SectionDirRel = %q", got)
	}
	if got := SectionIndexRel(code, "FP"); got != "Run/CUST-002/CUST-002-FP/CUST-002-FP-Index.md" {
		t.Errorf("SectionIndexRel = %q", got)
	}
}
