package rubric

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var stepKeyPattern = regexp.MustCompile(`^step(\d+)$`)

// Compile turns a parsed document into an immutable Source. Missing or
// malformed optional values resolve to their defaults; missing required values
// leave the affected check unsatisfiable rather than failing the load.
func Compile(doc *Document) *Source {
	src := &Source{
		ID:    doc.ID,
		Title: doc.Title,
	}

	steps := []*Level1StepDoc{doc.Level1.Step1, doc.Level1.Step2, doc.Level1.Step3}
	for i, sd := range steps {
		src.Level1.Steps[i] = compileLevel1Step(i+1, sd)
	}

	if doc.Level2 != nil {
		src.Level2 = compileLevel2(doc.Level2)
	}
	if doc.Level3 != nil {
		src.Level3 = compileLevel3(doc.Level3)
	}
	return src
}

func compileLevel1Step(n int, sd *Level1StepDoc) Level1Step {
	if sd == nil {
		return Level1Step{Number: n, Threshold: DefaultThreshold, Variant: defaultVariant(n)}
	}
	step := Level1Step{
		Number:          n,
		Title:           sd.Title,
		Instruction:     sd.Instruction,
		Hint:            sd.Hint,
		Text:            sd.TextHighlight,
		CorrectWords:    nonEmpty(sd.CorrectWords),
		Threshold:       atLeastOne(sd.SuccessThreshold, DefaultThreshold),
		Feedback:        copyMap(sd.Feedback),
		MissingFeedback: sd.MissingFeedback,
		Adaptive:        copyMap(sd.AdaptiveFeedback),
	}
	step.Variant = resolveVariant(n, sd)
	return step
}

func defaultVariant(n int) Level1Variant {
	if n == Level1Steps {
		return VariantStatic
	}
	return VariantPerKeyword
}

// resolveVariant decides the feedback variant for a step once, at load time.
// Only the last step uses adaptive feedback.
func resolveVariant(n int, sd *Level1StepDoc) Level1Variant {
	if n != Level1Steps {
		return VariantPerKeyword
	}
	switch sd.Variant {
	case "dual_category":
		return VariantDualCategory
	case "generic_adaptive":
		return VariantGenericAdaptive
	case "static":
		return VariantStatic
	}
	for _, w := range sd.CorrectWords {
		if strings.EqualFold(w, SentinelKeyword) {
			return VariantDualCategory
		}
	}
	if len(sd.AdaptiveFeedback) > 0 {
		return VariantGenericAdaptive
	}
	return VariantStatic
}

func compileLevel2(d *Level2Doc) Level2 {
	l2 := Level2{
		Title:       d.Title,
		Instruction: d.Instruction,
		SourceTitle: d.SourceTitle,
		SourceText:  d.SourceText,
	}
	if d.FinalAssembly != nil {
		l2.Template = d.FinalAssembly.Template
		l2.Evaluation = copyMap(d.FinalAssembly.Evaluation)
	}

	for key, sd := range d.Steps {
		if sd == nil {
			continue
		}
		n, ok := StepNumber(key)
		if !ok {
			continue
		}
		l2.Steps = append(l2.Steps, compileLevel2Step(key, n, sd))
	}
	sort.Slice(l2.Steps, func(i, j int) bool {
		return l2.Steps[i].Number < l2.Steps[j].Number
	})
	return l2
}

// StepNumber extracts N from a "stepN" key.
func StepNumber(key string) (int, bool) {
	m := stepKeyPattern.FindStringSubmatch(key)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

func compileLevel2Step(key string, n int, sd *Level2StepDoc) Level2Step {
	step := Level2Step{
		Key:              key,
		Number:           n,
		Kind:             resolveKind(sd),
		Question:         sd.Question,
		Example:          sd.Example,
		MinLength:        atLeastOne(sd.MinLength, DefaultMinLength),
		RequiredKeywords: nonEmpty(sd.RequiredKeywords),
		MinKeywordsMatch: atLeastOne(sd.MinKeywordsMatch, DefaultMinMatch),
		Feedback:         copyMap(sd.Feedback),
		Output:           sd.TemplateOutput,
		Bridge:           sd.Bridge,
	}
	for _, o := range sd.Options {
		step.Options = append(step.Options, Option{Text: o.Text, Correct: o.Correct, Feedback: o.Feedback})
	}
	step.Concepts = compileConcepts(sd.RequiredConcepts)
	step.AntiPatterns = compileAntiPatterns(sd.AntiPatterns)
	return step
}

// resolveKind honours an explicit kind and treats everything else as free
// text, whether or not keyword or concept fields are present.
func resolveKind(sd *Level2StepDoc) StepKind {
	switch sd.Kind {
	case "choice":
		return KindChoice
	default:
		return KindFreeText
	}
}

func compileLevel3(d *Level3Doc) Level3 {
	t := d.Task
	l3 := Level3{
		Title:            d.Title,
		Instruction:      d.Instruction,
		Question:         t.Question,
		TemplateGuide:    t.TemplateGuide,
		HelperText:       t.HelperText,
		Placeholder:      t.Placeholder,
		MinWords:         atLeastOne(t.MinWords, DefaultMinWords),
		Hints:            nonEmpty(t.Hints),
		Concepts:         compileConcepts(t.Evaluation.RequiredConcepts),
		AntiPatterns:     compileAntiPatterns(t.Evaluation.AntiPatterns),
		FeedbackLevels:   copyMap(t.Evaluation.FeedbackLevels),
		SuccessThreshold: atLeastOne(t.Evaluation.MinConceptsMatch, DefaultSuccessThreshold),
	}

	if t.ModelAnswer != nil {
		l3.ModelAnswer = ModelAnswer{Text: t.ModelAnswer.Text, Analysis: t.ModelAnswer.Analysis}
	}

	keys := make([]string, 0, len(d.SourceComparison))
	for k := range d.SourceComparison {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		cs := d.SourceComparison[k]
		l3.Compared = append(l3.Compared, ComparedSource{
			Key:         k,
			Title:       cs.Title,
			Year:        cs.Year,
			Type:        cs.Type,
			Perspective: cs.Perspective,
			Text:        cs.Text,
			Summary:     cs.Summary,
		})
	}
	return l3
}

func compileConcepts(docs []ConceptDoc) []ConceptGroup {
	var out []ConceptGroup
	for _, c := range docs {
		points := 0
		if c.Points != nil && *c.Points > 0 {
			points = *c.Points
		}
		out = append(out, ConceptGroup{
			Name:     c.ConceptName,
			Keywords: conceptKeywords(c),
			MinMatch: atLeastOne(c.MinKeywordsMatch, DefaultMinMatch),
			Points:   points,
			Feedback: c.Feedback,
		})
	}
	return out
}

// conceptKeywords prefers "keywords" and falls back to "required_keywords".
func conceptKeywords(c ConceptDoc) []string {
	if kws := nonEmpty(c.Keywords); len(kws) > 0 {
		return kws
	}
	return nonEmpty(c.RequiredKeywords)
}

func compileAntiPatterns(docs []AntiPatternDoc) []AntiPattern {
	var out []AntiPattern
	for _, ap := range docs {
		out = append(out, AntiPattern{Phrases: nonEmpty(ap.Phrases), Warning: ap.Warning})
	}
	return out
}

// atLeastOne returns *v when set, def otherwise, clamped to >= 1.
func atLeastOne(v *int, def int) int {
	n := def
	if v != nil {
		n = *v
	}
	if n < 1 {
		return 1
	}
	return n
}

// nonEmpty drops blank entries so that "" can never act as a match-all keyword.
func nonEmpty(in []string) []string {
	var out []string
	for _, s := range in {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

func copyMap(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
