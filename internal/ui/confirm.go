package ui

import (
	"fmt"
	"io"
	"strings"
)

// Confirm asks a yes/no question on w and reads the answer from r.
func Confirm(r io.Reader, w io.Writer, prompt string) bool {
	fmt.Fprintf(w, "%s [y/N]: ", StyleWarning.Render(prompt))
	return readYes(r)
}

// ConfirmDanger is Confirm styled for destructive actions.
func ConfirmDanger(r io.Reader, w io.Writer, prompt string) bool {
	fmt.Fprintf(w, "%s [y/N]: ", StyleError.Render("⚠ "+prompt))
	return readYes(r)
}

// readYes consumes exactly one line so later prompts on r still see theirs.
func readYes(r io.Reader) bool {
	var sb strings.Builder
	b := make([]byte, 1)
	for {
		n, err := r.Read(b)
		if n == 1 {
			if b[0] == '\n' {
				break
			}
			sb.WriteByte(b[0])
		}
		if err != nil {
			break
		}
	}
	line := strings.TrimSpace(strings.ToLower(sb.String()))
	return line == "y" || line == "yes"
}
