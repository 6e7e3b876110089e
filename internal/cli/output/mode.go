// Package output renders CLI results as styled text, markdown, JSON or
// GitHub Actions annotations.
package output

import (
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Mode selects how results are rendered.
type Mode string

// Output modes.
const (
	ModeAuto     Mode = "auto"     // TTY=text, non-TTY=markdown
	ModeText     Mode = "text"     // styled terminal output
	ModeMarkdown Mode = "markdown" // plain markdown, for logs and PR comments
	ModeJSON     Mode = "json"     // machine-readable
	ModeGitHub   Mode = "github"   // GitHub Actions workflow commands
)

// ParseMode normalizes a mode name. Unknown and empty names give ModeAuto.
func ParseMode(s string) Mode {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeText, ModeMarkdown, ModeJSON, ModeGitHub:
		return m
	case "md":
		return ModeMarkdown
	default:
		return ModeAuto
	}
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// Resolve returns the concrete mode for m given the TTY state.
func (m Mode) Resolve(isTTY bool) Mode {
	if m == ModeAuto || m == "" {
		if isTTY {
			return ModeText
		}
		return ModeMarkdown
	}
	return m
}
