package engine

import (
	"regexp"
	"sort"
	"strings"

	"github.com/alexanderramin/kallan/internal/domain"
	"github.com/alexanderramin/kallan/internal/match"
	"github.com/alexanderramin/kallan/internal/rubric"
)

// Default Level 1 feedback texts, used when a rubric leaves them out.
const (
	DefaultWordPraise      = "Bra valt ord!"
	DefaultAdaptiveSuccess = "Utmärkt! Du har hittat de viktigaste nyckelorden."
	DefaultHalfway         = "Du är på rätt väg! Hitta några fler ord."
	DefaultTooFew          = "Du behöver hitta fler ord för att förstå källans kärna."
	DefaultStaticSuccess   = "Utmärkt! Du har hittat de viktigaste nyckelorden i källan."
	DefaultStaticFailure   = "Du behöver hitta några fler ord för att förstå källans kärna."
	DefaultBothTypes       = "Utmärkt! Du har hittat både försvarande och varnande ord."
	DefaultOnlyDefense     = "Du har hittat orden som försvarar handlingarna. Leta också efter de varnande orden."
	DefaultOnlyWarning     = "Du har hittat de varnande orden. Leta också efter orden som försvarar handlingarna."
)

var tokenPattern = regexp.MustCompile(`\s+|\S+`)

// Token is one piece of a step's display text. Whitespace tokens have an
// empty Word.
type Token struct {
	Text     string
	Word     string
	Selected bool
	Correct  bool
}

// Level1ResultKind tells which fields of a Level1Result are populated.
type Level1ResultKind int

const (
	// ResultPerKeyword carries Messages, Missed and MissingFeedback.
	ResultPerKeyword Level1ResultKind = iota
	// ResultAdaptive carries Branch and Message.
	ResultAdaptive
)

// Level1Branch is the adaptive feedback branch chosen for the last step.
type Level1Branch int

const (
	BranchNone Level1Branch = iota
	BranchBothTypes
	BranchOnlyDefense
	BranchOnlyWarning
	BranchTooFew
	BranchSuccess
	BranchHalfway
	BranchStaticSuccess
	BranchStaticFailure
)

func (b Level1Branch) String() string {
	switch b {
	case BranchNone:
		return "none"
	case BranchBothTypes:
		return "has_both_types"
	case BranchOnlyDefense:
		return "only_defense"
	case BranchOnlyWarning:
		return "only_warning"
	case BranchTooFew:
		return "too_few"
	case BranchSuccess:
		return "success"
	case BranchHalfway:
		return "halfway"
	case BranchStaticSuccess:
		return "static_success"
	case BranchStaticFailure:
		return "static_failure"
	default:
		return "unknown"
	}
}

// WordFeedback is the message attached to one matched word.
type WordFeedback struct {
	Word    string
	Keyword string
	Message string
}

// Level1Result is the outcome of evaluating one selection.
type Level1Result struct {
	Kind         Level1ResultKind
	Step         int
	Variant      rubric.Level1Variant
	Success      bool
	Matched      []string
	SuccessCount int
	Total        int
	Threshold    int

	// ResultPerKeyword
	Messages        []WordFeedback
	Missed          []string
	MissingFeedback string

	// ResultAdaptive
	Branch  Level1Branch
	Message string
}

// EvaluateSelection scores a selection against one step. It is pure: the
// same step and selection always give the same result.
func EvaluateSelection(step rubric.Level1Step, selected []string) Level1Result {
	res := Level1Result{
		Step:      step.Number,
		Variant:   step.Variant,
		Total:     len(step.CorrectWords),
		Threshold: step.Threshold,
	}
	for _, w := range selected {
		if match.MatchesAny(w, step.CorrectWords) {
			res.Matched = append(res.Matched, w)
		}
	}
	res.SuccessCount = len(res.Matched)
	res.Success = res.SuccessCount >= step.Threshold

	switch step.Variant {
	case rubric.VariantPerKeyword:
		res.Kind = ResultPerKeyword
		perKeyword(&res, step, selected)
	case rubric.VariantDualCategory:
		res.Kind = ResultAdaptive
		dualCategory(&res, step)
	case rubric.VariantGenericAdaptive:
		res.Kind = ResultAdaptive
		genericAdaptive(&res, step)
	case rubric.VariantStatic:
		res.Kind = ResultAdaptive
		if res.Success {
			res.Branch, res.Message = BranchStaticSuccess, DefaultStaticSuccess
		} else {
			res.Branch, res.Message = BranchStaticFailure, DefaultStaticFailure
		}
	}
	return res
}

func perKeyword(res *Level1Result, step rubric.Level1Step, selected []string) {
	for _, w := range res.Matched {
		kw, _ := match.FirstMatch(w, step.CorrectWords)
		res.Messages = append(res.Messages, WordFeedback{
			Word:    w,
			Keyword: kw,
			Message: keywordFeedback(step.Feedback, kw),
		})
	}
	for _, kw := range step.CorrectWords {
		covered := false
		for _, w := range selected {
			if match.Matches(w, kw) {
				covered = true
				break
			}
		}
		if !covered {
			res.Missed = append(res.Missed, kw)
		}
	}
	res.MissingFeedback = step.MissingFeedback
}

// keywordFeedback looks a keyword up exactly first, then ignoring case.
func keywordFeedback(m map[string]string, kw string) string {
	if v := rubric.Text(m, kw, ""); v != "" {
		return v
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if strings.EqualFold(k, kw) && strings.TrimSpace(m[k]) != "" {
			return m[k]
		}
	}
	return DefaultWordPraise
}

func dualCategory(res *Level1Result, step rubric.Level1Step) {
	var defense, warning bool
	for _, w := range res.Matched {
		if match.MatchesAny(w, rubric.DefenseKeywords) {
			defense = true
		}
		if match.MatchesAny(w, rubric.WarningKeywords) {
			warning = true
		}
	}
	switch {
	case defense && warning:
		res.Branch = BranchBothTypes
		res.Message = rubric.Text(step.Adaptive, "has_both_types", DefaultBothTypes)
	case defense:
		res.Branch = BranchOnlyDefense
		res.Message = rubric.Text(step.Adaptive, "only_defense", DefaultOnlyDefense)
	case warning:
		res.Branch = BranchOnlyWarning
		res.Message = rubric.Text(step.Adaptive, "only_warning", DefaultOnlyWarning)
	default:
		res.Branch = BranchTooFew
		res.Message = rubric.Text(step.Adaptive, "too_few", DefaultTooFew)
	}
}

func genericAdaptive(res *Level1Result, step rubric.Level1Step) {
	switch {
	case res.Success:
		res.Branch = BranchSuccess
		res.Message = rubric.FirstText(step.Adaptive, DefaultAdaptiveSuccess, "success", "has_both_types")
	case res.Total > 0 && res.SuccessCount*2 >= res.Total:
		res.Branch = BranchHalfway
		res.Message = rubric.FirstText(step.Adaptive, DefaultHalfway, "halfway", "only_work", "only_social")
	default:
		res.Branch = BranchTooFew
		res.Message = rubric.Text(step.Adaptive, "too_few", DefaultTooFew)
	}
}

// Tokenize splits text into words and the whitespace between them, marking
// every word that contains one of the correct keywords.
func Tokenize(text string, correct []string) []Token {
	parts := tokenPattern.FindAllString(text, -1)
	tokens := make([]Token, 0, len(parts))
	for _, p := range parts {
		t := Token{Text: p, Word: strings.TrimSpace(p)}
		if t.Word != "" {
			t.Correct = match.MatchesAny(t.Word, correct)
		}
		tokens = append(tokens, t)
	}
	return tokens
}

// Level1 runs the three-step word selection exercise.
type Level1 struct {
	rubric   rubric.Level1
	step     int
	selected []string
	attempts int
	result   *Level1Result
	revealed bool
	done     bool
}

// NewLevel1 starts the exercise at startStep, clamped to 1..3.
func NewLevel1(r rubric.Level1, startStep int) *Level1 {
	if startStep < 1 {
		startStep = 1
	}
	if startStep > rubric.Level1Steps {
		startStep = rubric.Level1Steps
	}
	return &Level1{rubric: r, step: startStep}
}

func (l *Level1) StepNumber() int { return l.step }

func (l *Level1) Step() rubric.Level1Step { return l.rubric.Step(l.step) }

func (l *Level1) Attempts() int { return l.attempts }

func (l *Level1) Done() bool { return l.done }

func (l *Level1) Revealed() bool { return l.revealed }

// Tokens returns the current step text with selection state applied.
func (l *Level1) Tokens() []Token {
	step := l.Step()
	tokens := Tokenize(step.Text, step.CorrectWords)
	for i := range tokens {
		tokens[i].Selected = tokens[i].Word != "" && l.isSelected(tokens[i].Word)
	}
	return tokens
}

// Words lists the distinct selectable words of the current step in text order.
func (l *Level1) Words() []string {
	var out []string
	seen := make(map[string]bool)
	for _, t := range Tokenize(l.Step().Text, nil) {
		if t.Word == "" || seen[t.Word] {
			continue
		}
		seen[t.Word] = true
		out = append(out, t.Word)
	}
	return out
}

// Toggle adds word to the selection or removes it if already selected. Any
// previous result and revealed answer are discarded.
func (l *Level1) Toggle(word string) {
	word = strings.TrimSpace(word)
	if word == "" || l.done {
		return
	}
	if i := l.indexOf(word); i >= 0 {
		l.selected = append(l.selected[:i], l.selected[i+1:]...)
	} else {
		l.selected = append(l.selected, word)
	}
	l.result = nil
	l.revealed = false
}

// Selected returns a copy of the selection in the order words were chosen.
func (l *Level1) Selected() []string {
	return append([]string(nil), l.selected...)
}

// Evaluate scores the current selection and counts an attempt.
func (l *Level1) Evaluate() (Level1Result, error) {
	if l.done {
		return Level1Result{}, ErrFinished
	}
	if len(l.selected) == 0 {
		return Level1Result{}, ErrNotReady
	}
	l.attempts++
	res := EvaluateSelection(l.Step(), l.selected)
	l.result = &res
	return res, nil
}

// Result returns the latest evaluation, if it is still current.
func (l *Level1) Result() (Level1Result, bool) {
	if l.result == nil {
		return Level1Result{}, false
	}
	return *l.result, true
}

// CanReveal reports whether the annotated answer may be shown.
func (l *Level1) CanReveal() bool {
	return l.result != nil && !l.result.Success && l.attempts >= RevealAfterAttempts
}

// RevealAnswer toggles the annotated answer view. It returns the annotated
// tokens when the view is now shown and nil when it is now hidden.
func (l *Level1) RevealAnswer() ([]Token, error) {
	if !l.CanReveal() {
		return nil, ErrRevealLocked
	}
	l.revealed = !l.revealed
	if !l.revealed {
		return nil, nil
	}
	step := l.Step()
	return Tokenize(step.Text, step.CorrectWords), nil
}

// Retry clears the selection, result and revealed answer. Attempts are kept.
func (l *Level1) Retry() {
	l.selected = nil
	l.result = nil
	l.revealed = false
}

// Advance completes the current step after a successful evaluation and moves
// to the next one with a fresh attempt state.
func (l *Level1) Advance() (Completion, error) {
	if l.done {
		return Completion{}, ErrFinished
	}
	if l.result == nil || !l.result.Success {
		return Completion{}, ErrNotSuccessful
	}
	c := Completion{
		Gate:     domain.Level1Gate(l.step),
		Level:    1,
		Step:     l.step,
		Attempts: l.attempts,
	}
	if l.step == rubric.Level1Steps {
		l.done = true
		c.ExerciseDone = true
	} else {
		l.step++
	}
	l.selected = nil
	l.result = nil
	l.attempts = 0
	l.revealed = false
	return c, nil
}

func (l *Level1) indexOf(word string) int {
	for i, w := range l.selected {
		if w == word {
			return i
		}
	}
	return -1
}

func (l *Level1) isSelected(word string) bool {
	return l.indexOf(word) >= 0
}
