package shell

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4"))

	headingStyle = lipgloss.NewStyle().
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E5C07B"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5555")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))
)

// styler applies lipgloss styles only when writing to a terminal, so piped or
// captured output stays plain text.
type styler struct {
	color bool
}

func (s styler) apply(st lipgloss.Style, text string) string {
	if !s.color {
		return text
	}
	return st.Render(text)
}

func (s styler) title(t string) string   { return s.apply(titleStyle, t) }
func (s styler) heading(t string) string { return s.apply(headingStyle, t) }
func (s styler) success(t string) string { return s.apply(successStyle, t) }
func (s styler) warn(t string) string    { return s.apply(warnStyle, t) }
func (s styler) err(t string) string     { return s.apply(errorStyle, t) }
func (s styler) dim(t string) string     { return s.apply(dimStyle, t) }

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
