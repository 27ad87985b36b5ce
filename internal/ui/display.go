package ui

import (
	"os"

	"github.com/charmbracelet/x/term"
)

// DefaultTermWidth is used when stdout is not a terminal or width
// detection fails.
const DefaultTermWidth = 100

// DisplayContext carries the terminal parameters rendering depends on.
type DisplayContext struct {
	TermWidth int
	IsTTY     bool
}

// NewDisplayContext probes stdout for terminal size.
func NewDisplayContext() *DisplayContext {
	fd := os.Stdout.Fd()
	ctx := &DisplayContext{
		TermWidth: DefaultTermWidth,
		IsTTY:     term.IsTerminal(fd),
	}
	if ctx.IsTTY {
		if w, _, err := term.GetSize(fd); err == nil && w > 0 {
			ctx.TermWidth = w
		}
	}
	return ctx
}

// NewDisplayContextWithWidth fixes the width, for tests.
func NewDisplayContextWithWidth(width int) *DisplayContext {
	return &DisplayContext{TermWidth: width, IsTTY: true}
}
