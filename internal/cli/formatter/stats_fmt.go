package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/kallan/internal/domain"
	"github.com/alexanderramin/kallan/internal/repository"
)

// FormatDashboard renders level completion rates and source popularity.
func FormatDashboard(d *domain.Dashboard) string {
	var b strings.Builder

	title := "Nivåstatistik"
	if d.SourceTitle != "" {
		title += ": " + d.SourceTitle
	}
	b.WriteString(Header(title))
	b.WriteString("\n")
	if len(d.Levels) == 0 {
		b.WriteString(Dim("Inga avslutade nivåer registrerade."))
		b.WriteString("\n")
	} else {
		rows := make([][]string, 0, len(d.Levels))
		for _, s := range d.Levels {
			total := s.Completed + s.Failed
			rate := 0.0
			if total > 0 {
				rate = float64(s.Completed) / float64(total)
			}
			rows = append(rows, []string{
				s.Label(),
				fmt.Sprintf("%d", s.Completed),
				fmt.Sprintf("%d", s.Failed),
				RenderProgress(rate, 10),
				FormatDuration(s.AvgDuration),
			})
		}
		b.WriteString(RenderTable([]string{"Nivå", "Klarade", "Misslyckade", "Andel", "Snittid"}, rows))
	}

	if d.SourceTitle == "" {
		b.WriteString("\n")
		b.WriteString(Header("Populära källor"))
		b.WriteString("\n")
		if len(d.Sources) == 0 {
			b.WriteString(Dim("Inga källor valda ännu."))
			b.WriteString("\n")
		} else {
			rows := make([][]string, 0, len(d.Sources))
			for _, p := range d.Sources {
				rows = append(rows, []string{p.Title, fmt.Sprintf("%d", p.Count)})
			}
			b.WriteString(RenderTable([]string{"Källa", "Val"}, rows))
		}
	}
	return b.String()
}

// FormatWordSelections renders the most selected words of a step, marking
// the correct ones.
func FormatWordSelections(sourceID string, step int, s *domain.WordSelectionStats, top int) string {
	var b strings.Builder
	b.WriteString(Header(fmt.Sprintf("Ordval: %s steg %d", sourceID, step)))
	b.WriteString("\n")
	b.WriteString(RenderFields([][2]string{
		{"Försök", fmt.Sprintf("%d", s.TotalAttempts)},
		{"Lyckade", fmt.Sprintf("%d%%", s.SuccessRate)},
		{"Rätta ord", strings.Join(s.CorrectWords, ", ")},
	}))
	b.WriteString("\n")

	correct := make(map[string]bool, len(s.CorrectWords))
	for _, w := range s.CorrectWords {
		correct[strings.ToLower(w)] = true
	}
	words := repository.TopWords(s.WordFrequency, top)
	rows := make([][]string, 0, len(words))
	for _, w := range words {
		label := w
		if correct[strings.ToLower(w)] {
			label = StyleGreen.Render(w)
		}
		rows = append(rows, []string{label, fmt.Sprintf("%d", s.WordFrequency[w])})
	}
	b.WriteString(RenderTable([]string{"Ord", "Antal"}, rows))
	return b.String()
}

// FormatSessionEvents renders the events of one session in order.
func FormatSessionEvents(events []*domain.AnalyticsEvent) string {
	if len(events) == 0 {
		return Dim("Inga händelser.") + "\n"
	}
	rows := make([][]string, 0, len(events))
	for _, e := range events {
		outcome := ""
		if e.Success != nil {
			outcome = Outcome(*e.Success)
		}
		level := ""
		if e.Level > 0 {
			s := domain.LevelStats{Level: e.Level}
			if e.Step != nil {
				s.Step = *e.Step
			}
			level = s.Label()
		}
		duration := ""
		if e.DurationSeconds != nil {
			duration = FormatDuration(e.DurationSeconds)
		}
		rows = append(rows, []string{
			e.CreatedAt.Local().Format("15:04:05"),
			eventLabel(e.Type),
			e.SourceTitle,
			level,
			outcome,
			duration,
		})
	}
	return RenderTable([]string{"Tid", "Händelse", "Källa", "Nivå", "", "Tid åtgång"}, rows)
}

func eventLabel(t domain.EventType) string {
	switch t {
	case domain.EventSourceSelected:
		return StyleBlue.Render("källa vald")
	case domain.EventLevelStarted:
		return StylePurple.Render("nivå startad")
	case domain.EventLevelCompleted:
		return StyleGreen.Render("nivå avslutad")
	default:
		return Dim(string(t))
	}
}
