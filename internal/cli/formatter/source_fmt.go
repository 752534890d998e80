package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/kallan/internal/rubric"
	"github.com/alexanderramin/kallan/internal/service"
)

// FormatSourceList renders the source catalog as a table.
func FormatSourceList(sources []*rubric.Source) string {
	if len(sources) == 0 {
		return Dim("Inga källor hittades.") + "\n"
	}
	rows := make([][]string, 0, len(sources))
	for _, s := range sources {
		rows = append(rows, []string{
			StylePurple.Render(s.ID),
			s.Title,
			fmt.Sprintf("%d", len(s.Level2.Steps)),
			fmt.Sprintf("%d", len(s.Level3.Concepts)),
		})
	}
	return RenderTable([]string{"ID", "Titel", "Mallsteg", "Begrepp"}, rows)
}

// FormatSourceDetail renders a summary of one compiled rubric.
func FormatSourceDetail(s *rubric.Source) string {
	var b strings.Builder
	b.WriteString(Header(s.Title))
	b.WriteString("\n")
	b.WriteString(RenderFields([][2]string{
		{"ID", s.ID},
		{"Fil", s.Path},
	}))
	b.WriteString("\n")

	b.WriteString(Bold("Nivå 1"))
	b.WriteString("\n")
	for _, step := range s.Level1.Steps {
		fmt.Fprintf(&b, "  %d. %s %s\n", step.Number, step.Title,
			Dim(fmt.Sprintf("(%s, %d av %d ord)", step.Variant, step.Threshold, len(step.CorrectWords))))
	}

	b.WriteString(Bold("Nivå 2"))
	b.WriteString("\n")
	for _, step := range s.Level2.Steps {
		fmt.Fprintf(&b, "  %d. %s %s\n", step.Number, step.Question, Dim("("+step.Kind.String()+")"))
	}

	b.WriteString(Bold("Nivå 3"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  %s\n", s.Level3.Question)
	fmt.Fprintf(&b, "  %s\n", Dim(fmt.Sprintf("%d poäng möjliga, %d krävs, minst %d ord",
		s.Level3.MaxPoints(), s.Level3.SuccessThreshold, s.Level3.MinWords)))
	return b.String()
}

// FormatLintReport renders one rubric's lint result.
func FormatLintReport(r service.LintReport) string {
	name := r.Path
	if r.SourceID != "" {
		name = fmt.Sprintf("%s (%s)", r.Path, r.SourceID)
	}
	if r.OK() {
		return fmt.Sprintf("%s %s\n", StyleGreen.Render("✔"), name)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", StyleRed.Render("✖"), name)
	for _, err := range r.Errs {
		fmt.Fprintf(&b, "    %s\n", StyleRed.Render(err.Error()))
	}
	return b.String()
}
