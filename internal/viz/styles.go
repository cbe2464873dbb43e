package viz

import "github.com/charmbracelet/lipgloss"

var (
	HeaderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	LabelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	ValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	GoodStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Bold(true)
	BadStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("204")).Bold(true)
	GraphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	HelpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

// Row renders an aligned label/value pair.
func Row(label, value string) string {
	return LabelStyle.Render(label) + ValueStyle.Render(value)
}
