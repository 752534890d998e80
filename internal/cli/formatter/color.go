package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/kallan/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)

	// StyleSelected marks words the learner has picked.
	StyleSelected = lipgloss.NewStyle().Foreground(ColorYellow).Bold(true)
	// StyleCorrect marks correct words in a revealed answer.
	StyleCorrect = lipgloss.NewStyle().Foreground(ColorGreen).Underline(true)
)

// GateStyle returns the style for a gate state.
func GateStyle(state domain.GateState) lipgloss.Style {
	switch state {
	case domain.GateCompleted:
		return StyleGreen
	case domain.GateUnlocked:
		return StyleYellow
	case domain.GateLocked:
		return StyleDim
	default:
		return StyleDim
	}
}

// GateIndicator returns a colored gate marker such as "✔ Klar".
func GateIndicator(state domain.GateState) string {
	switch state {
	case domain.GateCompleted:
		return StyleGreen.Render("✔ Klar")
	case domain.GateUnlocked:
		return StyleYellow.Render("● Öppen")
	case domain.GateLocked:
		return StyleDim.Render("🔒 Låst")
	default:
		return StyleDim.Render(string(state))
	}
}

// Outcome renders a pass or fail marker.
func Outcome(success bool) string {
	if success {
		return StyleGreen.Render("✔")
	}
	return StyleRed.Render("✖")
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", lipgloss.Width(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

// Dim renders text in the muted/dim color.
func Dim(text string) string {
	return StyleDim.Render(text)
}

// Bold renders text in bold with the foreground color.
func Bold(text string) string {
	return StyleBold.Render(text)
}
