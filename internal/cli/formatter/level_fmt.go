package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/kallan/internal/engine"
	"github.com/alexanderramin/kallan/internal/rubric"
	"github.com/charmbracelet/lipgloss"
)

// FormatTokens renders a step text. Selected words are highlighted, and
// when annotate is set the correct words are underlined as well.
func FormatTokens(tokens []engine.Token, annotate bool) string {
	var b strings.Builder
	for _, t := range tokens {
		switch {
		case t.Word == "":
			b.WriteString(t.Text)
		case annotate && t.Correct:
			b.WriteString(StyleCorrect.Render(t.Text))
		case t.Selected:
			b.WriteString(StyleSelected.Render(t.Text))
		default:
			b.WriteString(StyleFg.Render(t.Text))
		}
	}
	return b.String()
}

// FormatLevel1Step renders the heading and instructions of a word-selection step.
func FormatLevel1Step(step rubric.Level1Step) string {
	var b strings.Builder
	b.WriteString(Header(fmt.Sprintf("Steg %d av %d: %s", step.Number, rubric.Level1Steps, step.Title)))
	b.WriteString("\n")
	if step.Instruction != "" {
		b.WriteString(step.Instruction)
		b.WriteString("\n")
	}
	if step.Hint != "" {
		b.WriteString(Dim("Tips: " + step.Hint))
		b.WriteString("\n")
	}
	return b.String()
}

// FormatLevel1Result renders the feedback of one word-selection evaluation.
func FormatLevel1Result(res engine.Level1Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %d av %d rätt (krav: %d)\n", Outcome(res.Success), res.SuccessCount, res.Total, res.Threshold)

	switch res.Kind {
	case engine.ResultPerKeyword:
		for _, m := range res.Messages {
			fmt.Fprintf(&b, "  %s %s\n", StyleGreen.Render(m.Word+":"), m.Message)
		}
		if len(res.Missed) > 0 && !res.Success {
			if res.MissingFeedback != "" {
				fmt.Fprintf(&b, "%s\n", StyleYellow.Render(res.MissingFeedback))
			}
			fmt.Fprintf(&b, "%s\n", Dim(fmt.Sprintf("%d nyckelord saknas fortfarande.", len(res.Missed))))
		}
	case engine.ResultAdaptive:
		style := StyleYellow
		if res.Success {
			style = StyleGreen
		}
		b.WriteString(style.Render(res.Message))
		b.WriteString("\n")
	}
	return b.String()
}

// StepStatusStyle returns the style for a Level 2 validation status.
func StepStatusStyle(s engine.StepStatus) lipgloss.Style {
	switch s {
	case engine.StepPassed, engine.ChoiceCorrect:
		return StyleGreen
	case engine.StepTooShort, engine.StepTooVague, engine.StepMissingConcepts:
		return StyleYellow
	case engine.StepAntiPattern, engine.ChoiceIncorrect:
		return StyleRed
	default:
		return StyleDim
	}
}

// FormatStepResult renders the feedback for one Level 2 answer.
func FormatStepResult(res engine.StepResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", Outcome(res.Status.Passed()), StepStatusStyle(res.Status).Render(res.Message))
	if res.Phrase != "" {
		fmt.Fprintf(&b, "  %s\n", Dim(fmt.Sprintf("Hittade: %q", res.Phrase)))
	}
	if len(res.MissingConcepts) > 0 {
		fmt.Fprintf(&b, "  %s %s\n", Dim("Saknas:"), strings.Join(res.MissingConcepts, ", "))
	}
	if len(res.MatchedKeywords) > 0 {
		fmt.Fprintf(&b, "  %s %s\n", Dim("Nyckelord:"), Quote(res.MatchedKeywords))
	}
	return b.String()
}

// FormatLevel2Step renders the question of a template step.
func FormatLevel2Step(step rubric.Level2Step, position, total int, bridge string) string {
	var b strings.Builder
	b.WriteString(Header(fmt.Sprintf("Steg %d av %d", position+1, total)))
	b.WriteString("\n")
	if bridge != "" {
		b.WriteString(StyleBlue.Render(bridge))
		b.WriteString("\n")
	}
	b.WriteString(Bold(step.Question))
	b.WriteString("\n")
	if step.Example != "" {
		b.WriteString(Dim("Exempel: " + step.Example))
		b.WriteString("\n")
	}
	if step.Kind == rubric.KindFreeText {
		b.WriteString(Dim(fmt.Sprintf("Minst %d tecken.", step.MinLength)))
		b.WriteString("\n")
	}
	return b.String()
}

// FormatNarrative renders the assembled Level 2 text and its evaluation.
func FormatNarrative(narrative, evaluation string) string {
	body := narrative
	if evaluation != "" {
		body += "\n\n" + StyleGreen.Render(evaluation)
	}
	return RenderBox("Din analys", body)
}

// FormatComparison renders the compared sources of Level 3.
func FormatComparison(l3 rubric.Level3) string {
	var b strings.Builder
	for _, cs := range l3.Compared {
		title := cs.Title
		if cs.Year != "" {
			title = fmt.Sprintf("%s (%s)", cs.Title, cs.Year)
		}
		body := cs.Text
		if cs.Perspective != "" {
			body += "\n\n" + Dim("Perspektiv: "+cs.Perspective)
		}
		b.WriteString(RenderBox(title, body))
		b.WriteString("\n")
	}
	b.WriteString(Bold(l3.Question))
	b.WriteString("\n")
	if l3.TemplateGuide != "" {
		b.WriteString(Dim(l3.TemplateGuide))
		b.WriteString("\n")
	}
	return b.String()
}

// FormatLevel3Result renders the score and feedback of an essay.
func FormatLevel3Result(res engine.Level3Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s Poäng: %s (krav: %d)\n", Outcome(res.Success), Bold(fmt.Sprintf("%d/%d", res.Score, res.MaxPoints)), res.Threshold)
	if res.Message != "" {
		style := StyleYellow
		if res.Success {
			style = StyleGreen
		}
		b.WriteString(style.Render(res.Message))
		b.WriteString("\n")
	}
	if len(res.Found) > 0 {
		b.WriteString(Dim("Begrepp du använder:"))
		b.WriteString("\n")
		b.WriteString(Bullets(res.Found, StyleGreen))
	}
	if len(res.Missing) > 0 {
		b.WriteString(Dim("Att utveckla:"))
		b.WriteString("\n")
		for _, m := range res.Missing {
			line := m.Name
			if m.Feedback != "" {
				line += ": " + m.Feedback
			}
			fmt.Fprintf(&b, "  • %s\n", StyleYellow.Render(line))
		}
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(&b, "%s %s\n", StyleRed.Render("⚠"), w.Warning)
	}
	return b.String()
}

// FormatModelAnswer renders the model answer with its analysis.
func FormatModelAnswer(m rubric.ModelAnswer) string {
	body := m.Text
	if m.Analysis != "" {
		body += "\n\n" + Dim(m.Analysis)
	}
	return RenderBox("Modellsvar", body)
}
