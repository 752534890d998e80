package engine

import (
	"strconv"
	"strings"

	"github.com/alexanderramin/kallan/internal/domain"
	"github.com/alexanderramin/kallan/internal/match"
	"github.com/alexanderramin/kallan/internal/rubric"
)

// DefaultLevelFeedback is used when feedback_levels has neither the exact
// score nor a needs_improvement entry.
const DefaultLevelFeedback = "Fortsätt utveckla din analys."

// Warning is an advisory anti-pattern hit. It never affects the score.
type Warning struct {
	Phrase  string
	Warning string
}

// MissedConcept is a concept the essay did not earn.
type MissedConcept struct {
	Name     string
	Feedback string
}

// Level3Result is the outcome of scoring one essay.
type Level3Result struct {
	Score     int
	MaxPoints int
	Threshold int
	Success   bool
	Found     []string
	Missing   []MissedConcept
	Warnings  []Warning
	Message   string
}

// ScoreEssay scores text against the Level 3 concept table. It is pure.
func ScoreEssay(r rubric.Level3, text string) Level3Result {
	res := Level3Result{
		MaxPoints: r.MaxPoints(),
		Threshold: r.SuccessThreshold,
	}
	for _, c := range r.Concepts {
		if len(c.Keywords) > 0 && match.CountMatches(text, c.Keywords) >= c.MinMatch {
			res.Score += c.Points
			res.Found = append(res.Found, c.Name)
		} else {
			res.Missing = append(res.Missing, MissedConcept{Name: c.Name, Feedback: c.Feedback})
		}
	}
	for _, ap := range r.AntiPatterns {
		if phrase, ok := match.FirstPhrase(text, ap.Phrases); ok {
			res.Warnings = append(res.Warnings, Warning{Phrase: phrase, Warning: ap.Warning})
		}
	}
	res.Message = rubric.FirstText(r.FeedbackLevels, DefaultLevelFeedback, strconv.Itoa(res.Score), "needs_improvement")
	res.Success = res.Score >= r.SuccessThreshold
	return res
}

// WordCount counts whitespace-separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// Level3 runs the comparative essay exercise.
type Level3 struct {
	rubric       rubric.Level3
	text         string
	attempts     int
	result       *Level3Result
	hint         int
	hintsVisible bool
	modelVisible bool
	done         bool
}

func NewLevel3(r rubric.Level3) *Level3 {
	return &Level3{rubric: r}
}

func (l *Level3) Text() string { return l.text }

func (l *Level3) Attempts() int { return l.attempts }

func (l *Level3) Done() bool { return l.done }

func (l *Level3) WordCount() int { return WordCount(l.text) }

// SetText replaces the essay. A changed text invalidates the last result.
func (l *Level3) SetText(text string) {
	if text != l.text {
		l.result = nil
	}
	l.text = text
}

// CanEvaluate reports whether the essay has reached the minimum word count.
func (l *Level3) CanEvaluate() bool {
	return !l.done && l.WordCount() >= l.rubric.MinWords
}

// Evaluate scores the essay. Every call counts an attempt.
func (l *Level3) Evaluate() (Level3Result, error) {
	if l.done {
		return Level3Result{}, ErrFinished
	}
	if !l.CanEvaluate() {
		return Level3Result{}, ErrNotReady
	}
	l.attempts++
	res := ScoreEssay(l.rubric, l.text)
	l.result = &res
	return res, nil
}

func (l *Level3) Result() (Level3Result, bool) {
	if l.result == nil {
		return Level3Result{}, false
	}
	return *l.result, true
}

// NextHint shows the hints on first use and afterwards steps one hint
// forward, stopping at the last. The cursor never wraps or resets.
func (l *Level3) NextHint() (string, bool) {
	if len(l.rubric.Hints) == 0 {
		return "", false
	}
	if !l.hintsVisible {
		l.hintsVisible = true
	} else if l.hint < len(l.rubric.Hints)-1 {
		l.hint++
	}
	return l.rubric.Hints[l.hint], true
}

// Hint returns the current hint while hints are visible.
func (l *Level3) Hint() (string, bool) {
	if !l.hintsVisible || len(l.rubric.Hints) == 0 {
		return "", false
	}
	return l.rubric.Hints[l.hint], true
}

// HintPosition returns the 1-based hint cursor and the hint count.
func (l *Level3) HintPosition() (int, int) {
	return l.hint + 1, len(l.rubric.Hints)
}

// CanShowModelAnswer reports whether the model answer may be toggled.
func (l *Level3) CanShowModelAnswer() bool {
	return l.attempts >= RevealAfterAttempts
}

// ToggleModelAnswer flips model answer visibility and returns the new state.
func (l *Level3) ToggleModelAnswer() (bool, error) {
	if !l.CanShowModelAnswer() {
		return false, ErrRevealLocked
	}
	l.modelVisible = !l.modelVisible
	return l.modelVisible, nil
}

// ModelAnswer returns the model answer while it is visible.
func (l *Level3) ModelAnswer() (rubric.ModelAnswer, bool) {
	if !l.modelVisible {
		return rubric.ModelAnswer{}, false
	}
	return l.rubric.ModelAnswer, true
}

// Retry clears the result and hides hints. Text, attempts and the hint
// cursor are kept.
func (l *Level3) Retry() {
	l.result = nil
	l.hintsVisible = false
}

// Confirm completes Level 3 after a successful evaluation.
func (l *Level3) Confirm() (Completion, error) {
	if l.done {
		return Completion{}, ErrFinished
	}
	if l.result == nil || !l.result.Success {
		return Completion{}, ErrNotSuccessful
	}
	l.done = true
	return Completion{
		Gate:         domain.GateLevel3,
		Level:        3,
		Attempts:     l.attempts,
		ExerciseDone: true,
	}, nil
}
