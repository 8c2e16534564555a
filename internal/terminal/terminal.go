// Package terminal provides small terminal utilities: screen clearing for
// the clear meta-command and width detection for sizing table output.
package terminal

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// ClearScreen wipes the visible screen and homes the cursor.
func ClearScreen(w io.Writer) {
	fmt.Fprint(w, "\x1b[2J\x1b[H")
}

// Width returns the terminal width in columns, or the fallback when stdout
// is not a terminal or the size cannot be determined.
func Width(fallback int) int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return fallback
}

// IsInteractive reports whether both stdin and stdout are terminals.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}
