package rubric

import "strings"

// Defaults applied when a document leaves a value out.
const (
	DefaultThreshold        = 1
	DefaultMinMatch         = 1
	DefaultMinLength        = 10
	DefaultMinWords         = 1
	DefaultSuccessThreshold = 3
)

// SentinelKeyword marks a Level 1 step 3 whose correct words split into the
// defense/warning categories below.
const SentinelKeyword = "ärofullt"

// DefenseKeywords and WarningKeywords are the fixed categories used by the
// dual-category feedback variant.
var (
	DefenseKeywords = []string{"ärofullt", "anständiga", "moraliska", "rätten", "plikten"}
	WarningKeywords = []string{"straffas", "död", "brutit", "förbarmande", "berika", "felat"}
)

// Source is a compiled, read-only rubric for one exercise source.
type Source struct {
	ID     string
	Title  string
	Path   string
	Level1 Level1
	Level2 Level2
	Level3 Level3
}

// Level1Steps is the fixed length of the word-selection sequence.
const Level1Steps = 3

type Level1 struct {
	Steps [Level1Steps]Level1Step
}

// Step returns step n (1-based). Out-of-range numbers yield an empty step,
// which can never be passed.
func (l Level1) Step(n int) Level1Step {
	if n < 1 || n > Level1Steps {
		return Level1Step{Number: n, Threshold: DefaultThreshold}
	}
	return l.Steps[n-1]
}

// Level1Variant selects how a word-selection step phrases its feedback.
type Level1Variant int

const (
	// VariantPerKeyword gives one message per matched word plus missed keywords.
	VariantPerKeyword Level1Variant = iota
	// VariantDualCategory classifies hits into defense and warning words.
	VariantDualCategory
	// VariantGenericAdaptive picks success, halfway or too-few texts.
	VariantGenericAdaptive
	// VariantStatic uses fixed success and failure sentences.
	VariantStatic
)

func (v Level1Variant) String() string {
	switch v {
	case VariantPerKeyword:
		return "per_keyword"
	case VariantDualCategory:
		return "dual_category"
	case VariantGenericAdaptive:
		return "generic_adaptive"
	case VariantStatic:
		return "static"
	default:
		return "unknown"
	}
}

type Level1Step struct {
	Number          int
	Title           string
	Instruction     string
	Hint            string
	Text            string
	CorrectWords    []string
	Threshold       int
	Feedback        map[string]string
	MissingFeedback string
	Variant         Level1Variant
	Adaptive        map[string]string
}

// StepKind is decided once when a Level 2 step is compiled.
type StepKind int

const (
	KindFreeText StepKind = iota
	KindChoice
)

func (k StepKind) String() string {
	switch k {
	case KindChoice:
		return "choice"
	case KindFreeText:
		return "free_text"
	default:
		return "unknown"
	}
}

type Level2 struct {
	Title       string
	Instruction string
	SourceTitle string
	SourceText  string
	Steps       []Level2Step
	Template    string
	Evaluation  map[string]string
}

type Level2Step struct {
	Key              string
	Number           int
	Kind             StepKind
	Question         string
	Example          string
	Options          []Option
	MinLength        int
	Concepts         []ConceptGroup
	AntiPatterns     []AntiPattern
	RequiredKeywords []string
	MinKeywordsMatch int
	Feedback         map[string]string
	Output           string
	Bridge           string
}

// Option looks up a choice option by its text.
func (s Level2Step) Option(text string) (Option, bool) {
	for _, o := range s.Options {
		if o.Text == text {
			return o, true
		}
	}
	return Option{}, false
}

type Option struct {
	Text     string
	Correct  bool
	Feedback string
}

type ConceptGroup struct {
	Name     string
	Keywords []string
	MinMatch int
	Points   int
	Feedback string
}

type AntiPattern struct {
	Phrases []string
	Warning string
}

type Level3 struct {
	Title            string
	Instruction      string
	Compared         []ComparedSource
	Question         string
	TemplateGuide    string
	HelperText       string
	Placeholder      string
	MinWords         int
	Hints            []string
	ModelAnswer      ModelAnswer
	Concepts         []ConceptGroup
	AntiPatterns     []AntiPattern
	FeedbackLevels   map[string]string
	SuccessThreshold int
}

// MaxPoints is the score reached when every concept is earned.
func (l Level3) MaxPoints() int {
	total := 0
	for _, c := range l.Concepts {
		total += c.Points
	}
	return total
}

type ModelAnswer struct {
	Text     string
	Analysis string
}

type ComparedSource struct {
	Key         string
	Title       string
	Year        string
	Type        string
	Perspective string
	Text        string
	Summary     string
}

// Text returns m[key] when present and non-blank, otherwise fallback.
func Text(m map[string]string, key, fallback string) string {
	if v, ok := m[key]; ok && strings.TrimSpace(v) != "" {
		return v
	}
	return fallback
}

// FirstText returns the first non-blank m[key] over keys, otherwise fallback.
func FirstText(m map[string]string, fallback string, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok && strings.TrimSpace(v) != "" {
			return v
		}
	}
	return fallback
}
