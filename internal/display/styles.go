package display

import "github.com/charmbracelet/lipgloss"

var (
	colorText   = lipgloss.Color("#FAFAFA")
	colorAccent = lipgloss.Color("#7D56F4")
	colorGreen  = lipgloss.Color("#96CEB4")
	colorGold   = lipgloss.Color("#FFD700")
	colorRed    = lipgloss.Color("#FF6B6B")
	colorAmber  = lipgloss.Color("#FFEAA7")
	colorMuted  = lipgloss.Color("#626262")

	bold = lipgloss.NewStyle().Bold(true)
)

// Styles shared by the renderers and the TUI.
var (
	HeaderStyle   = bold.Foreground(colorText).Background(colorAccent)
	HandInfoStyle = bold.Foreground(colorGreen)
	// ActionStyle marks the seat that is due to act.
	ActionStyle = bold.Foreground(colorGold)

	RedCardStyle    = bold.Foreground(colorRed)
	BlackCardStyle  = bold.Foreground(colorText)
	HiddenCardStyle = lipgloss.NewStyle().Foreground(colorMuted)

	SuccessStyle = bold.Foreground(colorGreen)
	ErrorStyle   = bold.Foreground(colorRed)
	WarningStyle = bold.Foreground(colorAmber)
	InfoStyle    = lipgloss.NewStyle().Foreground(colorMuted)
)
