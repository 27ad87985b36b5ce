package structure

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// DefaultHubFile is the hub file name at the vault root.
const DefaultHubFile = "Run-Hub.md"

// HubEntry is one customer link collected during generation.
type HubEntry struct {
	Code string
	Rel  string // vault-relative path to the customer's root index
}

// RenderHub builds the hub file body linking every customer's root index.
func RenderHub(entries []HubEntry) string {
	var b strings.Builder
	b.WriteString("# Run Hub\n\n")
	for _, e := range entries {
		b.WriteString("- [")
		b.WriteString(e.Code)
		b.WriteString("](")
		b.WriteString(e.Rel)
		b.WriteString(")\n")
	}
	return b.String()
}

// HubLinkTargets extracts every link destination from hub markdown.
//
// The hub is user-editable, so rather than grepping for exact lines the
// verifier parses the markdown and accepts a customer reference anywhere a
// link points at its root index.
func HubLinkTargets(content []byte) []string {
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(content))

	var targets []string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Link:
			targets = append(targets, string(node.Destination))
		case *ast.AutoLink:
			targets = append(targets, string(node.URL(content)))
		}
		return ast.WalkContinue, nil
	})
	return targets
}

// HubReferences reports whether the hub content links to the root index of
// the given customer code.
func HubReferences(content []byte, code string) bool {
	needle := code + "-Index.md"
	for _, target := range HubLinkTargets(content) {
		if strings.HasSuffix(target, needle) {
			return true
		}
	}
	return false
}
