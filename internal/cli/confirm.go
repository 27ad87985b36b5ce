package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/kstrand/autovault/internal/ui"
)

// Confirmer decides whether a destructive action may proceed. Commands
// take it as an injected dependency so tests never touch a terminal.
type Confirmer interface {
	Confirm(message string) bool
}

// terminalConfirmer prompts on the controlling terminal. Outside a
// terminal (or in JSON mode) it refuses, so scripts must pass --yes.
type terminalConfirmer struct{}

func (terminalConfirmer) Confirm(message string) bool {
	if isJSONOutput() {
		return false
	}
	if !isatty.IsTerminal(os.Stdout.Fd()) || !isatty.IsTerminal(os.Stdin.Fd()) {
		return false
	}
	if message == "" {
		message = "Apply changes?"
	}
	fmt.Printf("%s %s ", message, ui.Hint("[y/N]"))
	reader := bufio.NewReader(os.Stdin)
	response, _ := reader.ReadString('\n')
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}

// alwaysConfirm is used when --yes is given.
type alwaysConfirm struct{}

func (alwaysConfirm) Confirm(string) bool { return true }

// confirmerFor returns the Confirmer for a command, honoring --yes.
func confirmerFor(yes bool) Confirmer {
	if yes {
		return alwaysConfirm{}
	}
	return terminalConfirmer{}
}
