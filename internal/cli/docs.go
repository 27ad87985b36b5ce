package cli

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	builtindocs "github.com/kstrand/autovault/docs"
	"github.com/kstrand/autovault/internal/ui"
)

const docsCommandHint = "For command docs, use: avt help <command>"

type docsTopicView struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Path  string `json:"path"`
}

var docsCmd = &cobra.Command{
	Use:   "docs [topic]",
	Short: "Browse long-form Markdown documentation",
	Long: `Browse the guides bundled into the avt binary.

Examples:
  avt docs
  avt docs templates`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		topics, err := listBundledDocTopics()
		if err != nil {
			return handleError(ErrInternal, err, "Rebuild avt so bundled docs are available")
		}

		if len(args) == 0 {
			if isJSONOutput() {
				outputSuccess(map[string]interface{}{"topics": topics}, &Meta{Count: len(topics)})
				return nil
			}
			fmt.Println(ui.Header("Guides"))
			for _, topic := range topics {
				fmt.Printf("  %-20s %s\n", topic.ID, ui.Hint(topic.Title))
			}
			fmt.Println()
			fmt.Println(ui.Hint(docsCommandHint))
			return nil
		}

		id := strings.TrimSuffix(args[0], ".md")
		var match *docsTopicView
		for i := range topics {
			if topics[i].ID == id {
				match = &topics[i]
				break
			}
		}
		if match == nil {
			return handleErrorMsg(ErrInvalidInput,
				fmt.Sprintf("doc topic '%s' not found", id),
				"Run 'avt docs' to list topics")
		}

		content, err := fs.ReadFile(builtindocs.FS, match.Path)
		if err != nil {
			return handleError(ErrInternal, err, "")
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{
				"topic":   match,
				"content": string(content),
			}, nil)
			return nil
		}

		display := ui.NewDisplayContext()
		rendered, err := ui.RenderMarkdown(string(content), display.TermWidth)
		if err != nil {
			fmt.Println(string(content))
			return nil
		}
		fmt.Print(rendered)
		return nil
	},
}

// listBundledDocTopics walks the embedded guide directory. The topic
// title is taken from the first "# " heading.
func listBundledDocTopics() ([]docsTopicView, error) {
	var topics []docsTopicView
	err := fs.WalkDir(builtindocs.FS, "guide", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, ".md") {
			return nil
		}
		topic := docsTopicView{
			ID:   strings.TrimSuffix(path.Base(p), ".md"),
			Path: p,
		}
		if data, readErr := fs.ReadFile(builtindocs.FS, p); readErr == nil {
			for _, line := range strings.Split(string(data), "\n") {
				if strings.HasPrefix(line, "# ") {
					topic.Title = strings.TrimPrefix(line, "# ")
					break
				}
			}
		}
		topics = append(topics, topic)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(topics, func(i, j int) bool { return topics[i].ID < topics[j].ID })
	return topics, nil
}

func init() {
	rootCmd.AddCommand(docsCmd)
}
