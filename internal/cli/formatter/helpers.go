package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		PaddingLeft(2).
		PaddingRight(2).
		PaddingTop(1).
		PaddingBottom(1)

	if title != "" {
		titleRendered := StyleHeader.Render(strings.ToUpper(title))
		inner := titleRendered + "\n\n" + content
		return boxStyle.Render(inner)
	}

	return boxStyle.Render(content)
}

// FormatDuration renders whole seconds as "1m 05s". A nil duration is shown
// as "--".
func FormatDuration(seconds *int) string {
	if seconds == nil {
		return StyleDim.Render("--")
	}
	s := *seconds
	if s < 60 {
		return fmt.Sprintf("%ds", s)
	}
	return fmt.Sprintf("%dm %02ds", s/60, s%60)
}

// Bullets renders one "• item" line per item with the given style.
func Bullets(items []string, style lipgloss.Style) string {
	var b strings.Builder
	for _, it := range items {
		b.WriteString("  • ")
		b.WriteString(style.Render(it))
		b.WriteString("\n")
	}
	return b.String()
}

// Quote renders a quoted list such as "frihet", "rätt".
func Quote(words []string) string {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = fmt.Sprintf("%q", w)
	}
	return strings.Join(quoted, ", ")
}
