package interact

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	boxStyle     = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("63")).Padding(1, 2).MarginBottom(1)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	dimStyle     = lipgloss.NewStyle().Faint(true)
)

// MessageBox renders a generated commit message under a heading.
func MessageBox(msg string) string {
	return headingStyle.Render("Generated commit message:") + "\n" +
		boxStyle.Render(strings.TrimSpace(msg))
}

func Heading(s string) string { return headingStyle.Render(s) }
func Success(s string) string { return successStyle.Render(s) }
func Warn(s string) string    { return warnStyle.Render(s) }
func Value(s string) string   { return valueStyle.Render(s) }
func Dim(s string) string     { return dimStyle.Render(s) }
