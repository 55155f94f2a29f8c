package cli

import "github.com/charmbracelet/lipgloss"

// Shared terminal styles for human-readable output. ANSI 256 color
// indices degrade gracefully on 16-color terminals.
var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	nameStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
)

func errorPrefix() string {
	return errorStyle.Render("Error:")
}
