package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/alexanderramin/kallan/internal/domain"
	"github.com/alexanderramin/kallan/internal/match"
	"github.com/alexanderramin/kallan/internal/rubric"
)

// Default Level 2 feedback texts.
const (
	DefaultTooShort         = "Svaret är för kort. Skriv minst %d tecken."
	DefaultStepSuccess      = "Bra! Du förklarar källans betydelse."
	DefaultNeedsImprovement = "Du behöver utveckla ditt svar mer."
	DefaultHasKeyword       = "Bra! Du citerar från texten."
	DefaultTooVague         = "Lägg till mer specifika ord från texten."
)

// PreviewGap stands in for answers not yet given in a preview.
const PreviewGap = "…"

var (
	positionalMarker = regexp.MustCompile(`\{step(\d+)\}|\[STEG (\d+)\]`)

	// fragmentMarkers all resolve to the answer of the step owning the fragment.
	fragmentMarkers = []string{"[VALT SVAR]", "[SVAR]", "[CITAT]", "[FÖRKLARING]", "[EXEMPEL]", "{answer}"}

	bridgeMarkers = []string{"{previous}", "[FÖREGÅENDE]"}
)

// StepStatus is the closed set of outcomes of validating one Level 2 step.
type StepStatus int

const (
	StepPassed StepStatus = iota
	StepTooShort
	StepAntiPattern
	StepMissingConcepts
	StepTooVague
	ChoiceCorrect
	ChoiceIncorrect
)

func (s StepStatus) String() string {
	switch s {
	case StepPassed:
		return "passed"
	case StepTooShort:
		return "too_short"
	case StepAntiPattern:
		return "anti_pattern"
	case StepMissingConcepts:
		return "missing_concepts"
	case StepTooVague:
		return "too_vague"
	case ChoiceCorrect:
		return "choice_correct"
	case ChoiceIncorrect:
		return "choice_incorrect"
	default:
		return "unknown"
	}
}

// Passed reports whether the status lets the learner move on.
func (s StepStatus) Passed() bool {
	return s == StepPassed || s == ChoiceCorrect
}

// StepResult is the outcome of validating one Level 2 answer.
type StepResult struct {
	Step    int
	Kind    rubric.StepKind
	Status  StepStatus
	Message string

	// Phrase is the forbidden phrase found for StepAntiPattern.
	Phrase string

	MatchedConcepts []string
	MissingConcepts []string
	MatchedKeywords []string
}

type stepValidator func(step rubric.Level2Step, answer string) StepResult

var validators = map[rubric.StepKind]stepValidator{
	rubric.KindChoice:   validateChoice,
	rubric.KindFreeText: validateFreeText,
}

// ValidateStep runs the validator registered for the step's kind.
func ValidateStep(step rubric.Level2Step, answer string) StepResult {
	v, ok := validators[step.Kind]
	if !ok {
		v = validateFreeText
	}
	res := v(step, answer)
	res.Step = step.Number
	res.Kind = step.Kind
	return res
}

func validateChoice(step rubric.Level2Step, answer string) StepResult {
	opt, ok := step.Option(answer)
	if !ok {
		return StepResult{Status: ChoiceIncorrect}
	}
	if opt.Correct {
		return StepResult{Status: ChoiceCorrect, Message: opt.Feedback}
	}
	return StepResult{Status: ChoiceIncorrect, Message: opt.Feedback}
}

// validateFreeText applies the layers in order; the first failing layer
// decides the result.
func validateFreeText(step rubric.Level2Step, answer string) StepResult {
	text := strings.TrimSpace(answer)
	fb := step.Feedback

	if utf8.RuneCountInString(text) < step.MinLength {
		return StepResult{
			Status:  StepTooShort,
			Message: rubric.Text(fb, "too_short", fmt.Sprintf(DefaultTooShort, step.MinLength)),
		}
	}

	for _, ap := range step.AntiPatterns {
		if phrase, ok := match.FirstPhrase(text, ap.Phrases); ok {
			return StepResult{Status: StepAntiPattern, Message: ap.Warning, Phrase: phrase}
		}
	}

	if len(step.Concepts) > 0 {
		res := StepResult{}
		for _, c := range step.Concepts {
			if match.CountMatches(text, c.Keywords) >= c.MinMatch {
				res.MatchedConcepts = append(res.MatchedConcepts, c.Name)
			} else {
				res.MissingConcepts = append(res.MissingConcepts, c.Name)
			}
		}
		if len(res.MissingConcepts) == 0 {
			res.Status = StepPassed
			res.Message = rubric.Text(fb, "success", DefaultStepSuccess)
		} else {
			res.Status = StepMissingConcepts
			res.Message = rubric.Text(fb, "needs_improvement", DefaultNeedsImprovement)
		}
		return res
	}

	if len(step.RequiredKeywords) > 0 {
		res := StepResult{MatchedKeywords: match.Matched(text, step.RequiredKeywords)}
		if len(res.MatchedKeywords) >= step.MinKeywordsMatch {
			res.Status = StepPassed
			res.Message = rubric.FirstText(fb, DefaultHasKeyword, "has_keyword", "success")
		} else {
			res.Status = StepTooVague
			res.Message = rubric.FirstText(fb, DefaultTooVague, "too_vague", "needs_improvement")
		}
		return res
	}

	return StepResult{Status: StepPassed, Message: rubric.Text(fb, "success", DefaultStepSuccess)}
}

// Level2Advance reports what happened on an advance attempt.
type Level2Advance struct {
	Result     StepResult
	Finished   bool
	Narrative  string
	Evaluation string
	Completion Completion
}

// Level2 runs the guided template exercise over a variable number of steps.
type Level2 struct {
	rubric   rubric.Level2
	current  int
	answers  map[int]string
	results  map[int]StepResult
	attempts int
	done     bool
}

func NewLevel2(r rubric.Level2) *Level2 {
	return &Level2{
		rubric:  r,
		answers: make(map[int]string),
		results: make(map[int]StepResult),
	}
}

// StepCount is the number of steps in the template.
func (l *Level2) StepCount() int { return len(l.rubric.Steps) }

// Position is the 0-based index of the current step.
func (l *Level2) Position() int { return l.current }

func (l *Level2) Attempts() int { return l.attempts }

func (l *Level2) Done() bool { return l.done }

// Current returns the step awaiting an answer.
func (l *Level2) Current() (rubric.Level2Step, bool) {
	if l.current >= len(l.rubric.Steps) {
		return rubric.Level2Step{}, false
	}
	return l.rubric.Steps[l.current], true
}

// Answer returns the current step's answer.
func (l *Level2) Answer() string {
	step, ok := l.Current()
	if !ok {
		return ""
	}
	return l.answers[step.Number]
}

// Result returns the latest validation of the current step.
func (l *Level2) Result() (StepResult, bool) {
	step, ok := l.Current()
	if !ok {
		return StepResult{}, false
	}
	res, ok := l.results[step.Number]
	return res, ok
}

// Choose records a choice and immediately returns the option's feedback.
func (l *Level2) Choose(option string) (StepResult, error) {
	step, err := l.currentOfKind(rubric.KindChoice)
	if err != nil {
		return StepResult{}, err
	}
	if _, ok := step.Option(option); !ok {
		return StepResult{}, fmt.Errorf("%w: %q", ErrUnknownOption, option)
	}
	l.answers[step.Number] = option
	res := ValidateStep(step, option)
	l.results[step.Number] = res
	return res, nil
}

// SetText records free text for the current step, discarding any earlier
// validation of it.
func (l *Level2) SetText(text string) error {
	step, err := l.currentOfKind(rubric.KindFreeText)
	if err != nil {
		return err
	}
	l.answers[step.Number] = text
	delete(l.results, step.Number)
	return nil
}

// CanAdvance reports whether the current answer has the minimum shape needed
// to attempt an advance.
func (l *Level2) CanAdvance() bool {
	step, ok := l.Current()
	if !ok || l.done {
		return false
	}
	answer := l.answers[step.Number]
	switch step.Kind {
	case rubric.KindChoice:
		return answer != ""
	case rubric.KindFreeText:
		return utf8.RuneCountInString(answer) >= step.MinLength
	default:
		return false
	}
}

// Advance validates the current answer and, when it passes, moves to the next
// step. Passing the last step assembles the narrative and completes Level 2.
func (l *Level2) Advance() (Level2Advance, error) {
	if l.done {
		return Level2Advance{}, ErrFinished
	}
	if !l.CanAdvance() {
		return Level2Advance{}, ErrNotReady
	}
	step, _ := l.Current()
	l.attempts++
	res := ValidateStep(step, l.answers[step.Number])
	l.results[step.Number] = res

	out := Level2Advance{Result: res}
	if !res.Status.Passed() {
		return out, nil
	}
	l.current++
	if l.current < len(l.rubric.Steps) {
		return out, nil
	}

	l.done = true
	out.Finished = true
	out.Narrative = l.Narrative()
	out.Evaluation = l.Evaluation()
	out.Completion = Completion{
		Gate:         domain.GateLevel2,
		Level:        2,
		Attempts:     l.attempts,
		ExerciseDone: true,
	}
	return out, nil
}

// Bridge returns the presentational sentence linking the previous answer to
// the current step, or "" when there is none.
func (l *Level2) Bridge() string {
	step, ok := l.Current()
	if !ok || l.current == 0 || step.Bridge == "" {
		return ""
	}
	prev := l.rubric.Steps[l.current-1]
	return replaceAll(step.Bridge, bridgeMarkers, strings.TrimSpace(l.answers[prev.Number]))
}

// Narrative assembles all answers into the final text.
func (l *Level2) Narrative() string {
	return Assemble(l.rubric, l.answers, "")
}

// Preview assembles the answers given so far, marking gaps.
func (l *Level2) Preview() string {
	return Assemble(l.rubric, l.answers, PreviewGap)
}

// Evaluation returns the closing evaluation text for the number of steps.
func (l *Level2) Evaluation() string {
	return rubric.FirstText(l.rubric.Evaluation, "", strconv.Itoa(len(l.rubric.Steps))+"_parts", "default")
}

func (l *Level2) currentOfKind(kind rubric.StepKind) (rubric.Level2Step, error) {
	if l.done {
		return rubric.Level2Step{}, ErrFinished
	}
	step, ok := l.Current()
	if !ok {
		return rubric.Level2Step{}, ErrNotReady
	}
	if step.Kind != kind {
		return rubric.Level2Step{}, fmt.Errorf("%w: step %d is %s", ErrWrongKind, step.Number, step.Kind)
	}
	return step, nil
}

// Assemble builds the Level 2 narrative from answers keyed by step number.
// With a final template, every {stepN} or [STEG N] marker is replaced by that
// step's answer. Without one, each step's output fragment is filled in and the
// fragments are joined. Missing answers become gap.
func Assemble(r rubric.Level2, answers map[int]string, gap string) string {
	answer := func(n int) string {
		if a := strings.TrimSpace(answers[n]); a != "" {
			return a
		}
		return gap
	}

	if strings.TrimSpace(r.Template) != "" {
		return positionalMarker.ReplaceAllStringFunc(r.Template, func(m string) string {
			sub := positionalMarker.FindStringSubmatch(m)
			ref := sub[1]
			if ref == "" {
				ref = sub[2]
			}
			n, err := strconv.Atoi(ref)
			if err != nil {
				return gap
			}
			return answer(n)
		})
	}

	var parts []string
	for _, step := range r.Steps {
		a := answer(step.Number)
		if a == "" {
			continue
		}
		if step.Output == "" {
			parts = append(parts, a)
			continue
		}
		parts = append(parts, replaceAll(step.Output, fragmentMarkers, a))
	}
	return strings.Join(parts, " ")
}

func replaceAll(s string, markers []string, value string) string {
	for _, m := range markers {
		s = strings.ReplaceAll(s, m, value)
	}
	return s
}
