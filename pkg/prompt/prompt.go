// Package prompt provides the interactive confirmations stash asks for
// before destructive operations.
package prompt

import (
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/mattn/go-isatty"
)

// IsInteractive reports whether stdin is attached to a terminal.
func IsInteractive() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
}

// Confirm asks a yes/no question. In non-interactive contexts the
// default is returned without prompting.
func Confirm(message string, def bool) (bool, error) {
	if !IsInteractive() {
		return def, nil
	}
	answer := def
	err := survey.AskOne(&survey.Confirm{Message: message, Default: def}, &answer)
	if err != nil {
		return false, err
	}
	return answer, nil
}
