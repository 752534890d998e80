package formatter

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

const colGap = 2

// RenderTable renders an aligned table under a separator line. Widths are
// measured on visible text so styled cells line up. Columns whose cells are
// all numeric (counts, percentages, durations) are right-aligned.
func RenderTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}
	widths := make([]int, len(headers))
	numeric := make([]bool, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
		numeric[i] = len(rows) > 0
	}
	for _, row := range rows {
		for i := range headers {
			c := cell(row, i)
			widths[i] = max(widths[i], lipgloss.Width(c))
			if c != "" && !isNumeric(c) {
				numeric[i] = false
			}
		}
	}

	var b strings.Builder
	styled := make([]string, len(headers))
	for i, h := range headers {
		styled[i] = StyleHeader.Render(h)
	}
	writeRow(&b, styled, widths, numeric)

	rule := make([]string, len(widths))
	for i, w := range widths {
		rule[i] = StyleDim.Render(strings.Repeat("─", w))
	}
	writeRow(&b, rule, widths, nil)

	for _, row := range rows {
		cells := make([]string, len(headers))
		for i := range headers {
			cells[i] = cell(row, i)
		}
		writeRow(&b, cells, widths, numeric)
	}
	return b.String()
}

func writeRow(b *strings.Builder, cells []string, widths []int, right []bool) {
	var line strings.Builder
	for i, c := range cells {
		pad := strings.Repeat(" ", max(widths[i]-lipgloss.Width(c), 0))
		if right != nil && right[i] {
			line.WriteString(pad + c)
		} else {
			line.WriteString(c + pad)
		}
		line.WriteString(strings.Repeat(" ", colGap))
	}
	b.WriteString(strings.TrimRight(line.String(), " "))
	b.WriteString("\n")
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

// isNumeric reports whether a cell reads as a quantity such as "12", "75%",
// "1m 05s" or "--".
func isNumeric(s string) bool {
	s = strings.TrimSpace(ansi.Strip(s))
	if s == "--" {
		return true
	}
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) && !strings.ContainsRune("%ms ", r) {
			return false
		}
	}
	return unicode.IsDigit([]rune(s)[0])
}

// RenderFields renders label/value pairs with the labels padded to one width.
// Pairs with an empty value are skipped.
func RenderFields(pairs [][2]string) string {
	width := 0
	for _, p := range pairs {
		if p[1] != "" && lipgloss.Width(p[0]) > width {
			width = lipgloss.Width(p[0])
		}
	}
	var b strings.Builder
	for _, p := range pairs {
		if p[1] == "" {
			continue
		}
		fmt.Fprintf(&b, "  %s%s  %s\n", StyleDim.Render(p[0]), strings.Repeat(" ", width-lipgloss.Width(p[0])), p[1])
	}
	return b.String()
}
