package rubric

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	structValidator = validator.New()

	assemblyMarkerPattern = regexp.MustCompile(`\{step(\d+)\}|\[STEG (\d+)\]`)
)

// Validate checks a rubric document for authoring mistakes and returns every
// problem found. A document with problems still loads: evaluation fails
// closed on the affected checks.
func Validate(doc *Document) []error {
	var errs []error

	errs = append(errs, structErrors(doc)...)
	errs = append(errs, validateLevel1(&doc.Level1)...)
	if doc.Level2 != nil {
		errs = append(errs, validateLevel2(doc.Level2)...)
	}
	if doc.Level3 != nil {
		errs = append(errs, validateLevel3(doc.Level3)...)
	}
	return errs
}

func structErrors(doc *Document) []error {
	err := structValidator.Struct(doc)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []error{err}
	}
	out := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, fmt.Errorf("%s: failed %q%s", fieldPath(fe.Namespace()), fe.Tag(), paramSuffix(fe.Param())))
	}
	return out
}

// fieldPath drops the root type name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func paramSuffix(p string) string {
	if p == "" {
		return ""
	}
	return " (" + p + ")"
}

func validateLevel1(l *Level1Doc) []error {
	var errs []error
	for i, sd := range []*Level1StepDoc{l.Step1, l.Step2, l.Step3} {
		if sd == nil {
			continue
		}
		prefix := fmt.Sprintf("level1.step%d", i+1)
		if sd.SuccessThreshold != nil && *sd.SuccessThreshold > len(nonEmpty(sd.CorrectWords)) {
			errs = append(errs, fmt.Errorf("%s.success_threshold %d exceeds the %d correct words", prefix, *sd.SuccessThreshold, len(sd.CorrectWords)))
		}
		if i+1 < Level1Steps && (sd.Variant != "" || len(sd.AdaptiveFeedback) > 0) {
			errs = append(errs, fmt.Errorf("%s: adaptive feedback is only used on step3", prefix))
		}
		for _, kw := range sortedKeys(sd.Feedback) {
			if !containsFold(sd.CorrectWords, kw) {
				errs = append(errs, fmt.Errorf("%s.feedback: key %q is not a correct word", prefix, kw))
			}
		}
	}
	return errs
}

func validateLevel2(l *Level2Doc) []error {
	var errs []error
	keys := make([]string, 0, len(l.Steps))
	for key := range l.Steps {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	steps := make(map[int]bool)
	for _, key := range keys {
		sd := l.Steps[key]
		n, ok := StepNumber(key)
		if !ok {
			errs = append(errs, fmt.Errorf("level2.steps.%s: key must look like step<N>", key))
			continue
		}
		steps[n] = true
		if sd == nil {
			continue
		}
		prefix := "level2.steps." + key
		if sd.Kind == "choice" {
			if len(sd.Options) == 0 {
				errs = append(errs, fmt.Errorf("%s: choice step has no options", prefix))
			} else if !anyCorrect(sd.Options) {
				errs = append(errs, fmt.Errorf("%s: choice step has no correct option", prefix))
			}
		} else if len(sd.Options) > 0 {
			errs = append(errs, fmt.Errorf("%s: options are ignored unless kind is \"choice\"", prefix))
		}
		for i, c := range sd.RequiredConcepts {
			if len(conceptKeywords(c)) == 0 {
				errs = append(errs, fmt.Errorf("%s.required_concepts[%d]: no keywords", prefix, i))
			}
		}
	}
	if l.FinalAssembly != nil {
		for _, m := range assemblyMarkerPattern.FindAllStringSubmatch(l.FinalAssembly.Template, -1) {
			ref := m[1]
			if ref == "" {
				ref = m[2]
			}
			n, _ := StepNumber("step" + ref)
			if !steps[n] {
				errs = append(errs, fmt.Errorf("level2.final_assembly.template: marker %q has no matching step", m[0]))
			}
		}
	}
	return errs
}

func validateLevel3(l *Level3Doc) []error {
	var errs []error
	ev := l.Task.Evaluation
	total := 0
	for i, c := range ev.RequiredConcepts {
		prefix := fmt.Sprintf("level3.task.evaluation.required_concepts[%d]", i)
		kws := conceptKeywords(c)
		if len(kws) == 0 {
			errs = append(errs, fmt.Errorf("%s: no keywords", prefix))
		}
		if c.Points == nil {
			errs = append(errs, fmt.Errorf("%s.points is required", prefix))
		} else {
			total += *c.Points
		}
		if c.MinKeywordsMatch != nil && *c.MinKeywordsMatch > len(kws) {
			errs = append(errs, fmt.Errorf("%s.min_keywords_match %d exceeds the %d keywords", prefix, *c.MinKeywordsMatch, len(kws)))
		}
	}
	threshold := DefaultSuccessThreshold
	if ev.MinConceptsMatch != nil {
		threshold = *ev.MinConceptsMatch
	}
	if len(ev.RequiredConcepts) > 0 && threshold > total {
		errs = append(errs, fmt.Errorf("level3.task.evaluation.min_concepts_match %d exceeds the reachable %d points", threshold, total))
	}
	if _, ok := ev.FeedbackLevels["needs_improvement"]; !ok && len(ev.FeedbackLevels) > 0 {
		errs = append(errs, fmt.Errorf("level3.task.evaluation.feedback_levels: missing needs_improvement fallback"))
	}
	return errs
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func anyCorrect(opts []OptionDoc) bool {
	for _, o := range opts {
		if o.Correct {
			return true
		}
	}
	return false
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
