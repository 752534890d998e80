package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/kallan/internal/domain"
	"github.com/alexanderramin/kallan/internal/progress"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

// RenderProgress renders a progress bar like [████░░░░] 45%.
// The bar is colored based on percentage: green >66%, yellow 33-66%, red <33%.
func RenderProgress(pct float64, width int) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 1 {
		pct = 1
	}
	if width < 2 {
		width = 2
	}

	filled := int(pct * float64(width))
	if filled > width {
		filled = width
	}
	empty := width - filled

	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, empty)

	var style = StyleGreen
	if pct < 0.33 {
		style = StyleRed
	} else if pct < 0.66 {
		style = StyleYellow
	}

	pctStr := fmt.Sprintf("%3.0f%%", pct*100)
	return fmt.Sprintf("[%s] %s", style.Render(bar), pctStr)
}

// FormatProgress renders the gate list with an overall completion bar.
func FormatProgress(s progress.Snapshot) string {
	gates := s.Gates()
	done := 0
	rows := make([][]string, 0, len(gates))
	for _, g := range gates {
		if g.State == domain.GateCompleted {
			done++
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", g.Position),
			g.ID.Label(),
			GateIndicator(g.State),
		})
	}

	var b strings.Builder
	b.WriteString(Header("Framsteg"))
	b.WriteString("\n")
	b.WriteString(RenderTable([]string{"#", "Moment", "Status"}, rows))
	b.WriteString("\n")
	b.WriteString(RenderProgress(float64(done)/float64(len(gates)), 20))
	b.WriteString("\n")
	if next, ok := s.Frontier(); ok {
		b.WriteString(Dim("Nästa: " + next.Label()))
	} else {
		b.WriteString(StyleGreen.Render("Alla moment är klara!"))
	}
	b.WriteString("\n")
	return b.String()
}
