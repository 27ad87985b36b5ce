package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
)

// RenderMarkdown renders markdown for terminal display, word-wrapped to
// width. A non-positive width falls back to DefaultTermWidth.
func RenderMarkdown(content string, width int) (string, error) {
	if width <= 0 {
		width = DefaultTermWidth
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(vaultMarkdownStyle()),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}

	rendered, err := r.Render(content)
	if err != nil {
		return "", err
	}

	// glamour pads the end with newlines; keep exactly one.
	return strings.TrimRight(rendered, "\n") + "\n", nil
}

// vaultMarkdownStyle is a minimal glamour style tuned for report and docs
// output: accent headings, muted links, plain list bullets. Heading hash
// marks are kept so rendered text still reads as markdown.
func vaultMarkdownStyle() ansi.StyleConfig {
	accent := mdPtr("#7AA2F7")
	muted := mdPtr("8")
	bold := mdPtr(true)
	margin := mdPtr(uint(2))

	cfg := ansi.StyleConfig{
		Document: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{
				BlockPrefix: "\n",
				BlockSuffix: "\n",
			},
			Margin: margin,
		},
		Heading: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{
				BlockSuffix: "\n",
				Color:       accent,
				Bold:        bold,
			},
		},
		H1: ansi.StyleBlock{StylePrimitive: ansi.StylePrimitive{Prefix: "# "}},
		H2: ansi.StyleBlock{StylePrimitive: ansi.StylePrimitive{Prefix: "## "}},
		H3: ansi.StyleBlock{StylePrimitive: ansi.StylePrimitive{Prefix: "### "}},
		List: ansi.StyleList{
			LevelIndent: 2,
		},
		Item:   ansi.StylePrimitive{BlockPrefix: "• "},
		Emph:   ansi.StylePrimitive{Italic: mdPtr(true)},
		Strong: ansi.StylePrimitive{Bold: bold},
		HorizontalRule: ansi.StylePrimitive{
			Color:  muted,
			Format: "\n--------\n",
		},
		Link: ansi.StylePrimitive{
			Color:     muted,
			Underline: mdPtr(true),
		},
		LinkText: ansi.StylePrimitive{
			Color: muted,
			Bold:  bold,
		},
		Code: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{Prefix: "`", Suffix: "`"},
		},
		Table: ansi.StyleTable{
			CenterSeparator: mdPtr("│"),
			ColumnSeparator: mdPtr("│"),
			RowSeparator:    mdPtr("─"),
		},
	}
	return cfg
}

func mdPtr[T any](v T) *T { return &v }
