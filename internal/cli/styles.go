package cli

import "github.com/charmbracelet/lipgloss"

var (
	HeadingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	DoneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	PendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	MutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true)
)

// Mark renders the completed-today marker of a habit row.
func Mark(done bool) string {
	if done {
		return DoneStyle.Render("✓")
	}
	return PendingStyle.Render("○")
}
