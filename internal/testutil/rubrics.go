package testutil

import (
	"github.com/alexanderramin/kallan/internal/rubric"
)

// IntPtr returns a pointer to n, for optional rubric fields.
func IntPtr(n int) *int { return &n }

// Document options
type DocumentOption func(*rubric.Document)

func WithSourceID(id, title string) DocumentOption {
	return func(d *rubric.Document) {
		d.ID = id
		d.Title = title
	}
}

// WithCorrectWords replaces the correct words and threshold of Level 1 step n.
func WithCorrectWords(step, threshold int, words ...string) DocumentOption {
	return func(d *rubric.Document) {
		sd := level1Step(d, step)
		sd.CorrectWords = words
		sd.SuccessThreshold = IntPtr(threshold)
	}
}

// WithStepText replaces the display text of Level 1 step n.
func WithStepText(step int, text string) DocumentOption {
	return func(d *rubric.Document) {
		level1Step(d, step).TextHighlight = text
	}
}

// WithAdaptiveFeedback sets the adaptive feedback bundle of step 3.
func WithAdaptiveFeedback(m map[string]string) DocumentOption {
	return func(d *rubric.Document) {
		d.Level1.Step3.AdaptiveFeedback = m
	}
}

// WithVariant forces the step 3 feedback variant.
func WithVariant(v string) DocumentOption {
	return func(d *rubric.Document) {
		d.Level1.Step3.Variant = v
	}
}

// WithLevel2Step adds or replaces one Level 2 step.
func WithLevel2Step(key string, sd *rubric.Level2StepDoc) DocumentOption {
	return func(d *rubric.Document) {
		d.Level2.Steps[key] = sd
	}
}

// WithLevel2Steps replaces every Level 2 step.
func WithLevel2Steps(steps map[string]*rubric.Level2StepDoc) DocumentOption {
	return func(d *rubric.Document) {
		d.Level2.Steps = steps
	}
}

// WithFinalAssembly replaces the Level 2 final template.
func WithFinalAssembly(template string) DocumentOption {
	return func(d *rubric.Document) {
		d.Level2.FinalAssembly.Template = template
	}
}

// WithLevel3Concepts replaces the Level 3 concept table and threshold.
func WithLevel3Concepts(threshold int, concepts ...rubric.ConceptDoc) DocumentOption {
	return func(d *rubric.Document) {
		d.Level3.Task.Evaluation.RequiredConcepts = concepts
		d.Level3.Task.Evaluation.MinConceptsMatch = IntPtr(threshold)
	}
}

func WithFeedbackLevels(m map[string]string) DocumentOption {
	return func(d *rubric.Document) {
		d.Level3.Task.Evaluation.FeedbackLevels = m
	}
}

func WithHints(hints ...string) DocumentOption {
	return func(d *rubric.Document) {
		d.Level3.Task.Hints = hints
	}
}

func WithMinWords(n int) DocumentOption {
	return func(d *rubric.Document) {
		d.Level3.Task.MinWords = IntPtr(n)
	}
}

func level1Step(d *rubric.Document, n int) *rubric.Level1StepDoc {
	switch n {
	case 1:
		return d.Level1.Step1
	case 2:
		return d.Level1.Step2
	default:
		return d.Level1.Step3
	}
}

// NewTestDocument returns a complete, lint-clean rubric document covering all
// three levels.
func NewTestDocument(opts ...DocumentOption) *rubric.Document {
	d := &rubric.Document{
		ID:    "testkalla",
		Title: "Testkälla",
		Level1: rubric.Level1Doc{
			Step1: &rubric.Level1StepDoc{
				Title:            "Hitta rättigheterna",
				Instruction:      "Klicka på orden som handlar om rättigheter.",
				TextHighlight:    "Frihetens ljus och rätten att tala är något annat än makt",
				CorrectWords:     []string{"frihet", "rätt"},
				SuccessThreshold: IntPtr(2),
				Feedback:         map[string]string{"frihet": "Frihet är källans kärna."},
				MissingFeedback:  "Leta efter ord om rättigheter.",
			},
			Step2: &rubric.Level1StepDoc{
				Title:            "Hitta arbetslivet",
				Instruction:      "Klicka på orden som beskriver arbetet.",
				TextHighlight:    "Arbetet var hårt och lönen låg i fabriken vid ån",
				CorrectWords:     []string{"arbete", "lön", "fabrik"},
				SuccessThreshold: IntPtr(2),
			},
			Step3: &rubric.Level1StepDoc{
				Title:            "Hitta tonen",
				Instruction:      "Klicka på de laddade orden.",
				TextHighlight:    "Arbetarna ska få bättre lön och kortare dagar i fabriken",
				CorrectWords:     []string{"arbetar", "lön", "dagar", "fabrik"},
				SuccessThreshold: IntPtr(3),
				AdaptiveFeedback: map[string]string{
					"has_both_types": "Du ser hela bilden.",
					"only_work":      "Du har hittat arbetsorden.",
					"too_few":        "Leta vidare.",
				},
			},
		},
		Level2: &rubric.Level2Doc{
			Title:       "Bygg din analys",
			Instruction: "Fyll i mallen steg för steg.",
			SourceText:  "Frihetens ljus och rätten att tala.",
			Steps: map[string]*rubric.Level2StepDoc{
				"step1": {
					Kind:     "choice",
					Question: "Vilket problem tar texten upp?",
					Options: []rubric.OptionDoc{
						{Text: "bristen på frihet", Correct: true, Feedback: "Rätt!"},
						{Text: "vädret", Correct: false, Feedback: "Läs texten igen."},
					},
					TemplateOutput: "I texten finns problemet [VALT SVAR].",
				},
				"step2": {
					Question:         "Citera orden som visar det.",
					MinLength:        IntPtr(10),
					RequiredKeywords: []string{"frihet", "rätt"},
					Feedback:         map[string]string{"too_vague": "Citera texten."},
					TemplateOutput:   "Detta ser jag i orden \"[CITAT]\".",
					Bridge:           "Du valde {previous}. Var syns det?",
				},
				"step3": {
					Question:  "Vad visar orden?",
					MinLength: IntPtr(20),
					RequiredConcepts: []rubric.ConceptDoc{
						{ConceptName: "Orsak", RequiredKeywords: []string{"eftersom", "därför"}},
					},
					AntiPatterns: []rubric.AntiPatternDoc{
						{Phrases: []string{"jag tycker"}, Warning: "Undvik personliga åsikter."},
					},
					Feedback:       map[string]string{"success": "Bra förklaring.", "needs_improvement": "Förklara varför."},
					TemplateOutput: "Detta visar att [FÖRKLARING].",
				},
			},
			FinalAssembly: &rubric.FinalAssemblyDoc{
				Evaluation: map[string]string{"3_parts": "Alla tre delar är klara.", "default": "Klart."},
			},
		},
		Level3: &rubric.Level3Doc{
			Title:       "Jämför källorna",
			Instruction: "Skriv en jämförande analys.",
			SourceComparison: map[string]rubric.ComparedSourceDoc{
				"source_a": {Title: "Källa A", Year: "1905", Text: "Arbetarna kräver rösträtt."},
				"source_b": {Title: "Källa B", Year: "1906", Text: "Fabriksägarna varnar för oro."},
			},
			Task: rubric.TaskDoc{
				Question: "Hur skiljer sig källornas perspektiv?",
				MinWords: IntPtr(5),
				Hints:    []string{"Börja med avsändarna.", "Jämför syftet.", "Tänk på tiden."},
				ModelAnswer: &rubric.ModelAnswerDoc{
					Text:     "Källorna skiljer sig i perspektiv eftersom de skrevs av olika grupper.",
					Analysis: "Svaret jämför och förklarar.",
				},
				Evaluation: rubric.EvaluationDoc{
					RequiredConcepts: []rubric.ConceptDoc{
						{ConceptName: "Jämförelse", Keywords: []string{"jämför", "skillnad", "skiljer"}, Points: IntPtr(2), Feedback: "Jämför källorna direkt."},
						{ConceptName: "Perspektiv", Keywords: []string{"perspektiv", "synsätt"}, Points: IntPtr(2), Feedback: "Nämn perspektiven."},
						{ConceptName: "Kontext", Keywords: []string{"samhälle", "tiden"}, Points: IntPtr(1), Feedback: "Sätt in i sin tid."},
					},
					AntiPatterns: []rubric.AntiPatternDoc{
						{Phrases: []string{"alla vet"}, Warning: "Undvik generaliseringar."},
					},
					FeedbackLevels: map[string]string{
						"5":                 "Utmärkt analys!",
						"4":                 "Mycket bra.",
						"needs_improvement": "Utveckla analysen.",
					},
					MinConceptsMatch: IntPtr(3),
				},
			},
		},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NewTestSource compiles NewTestDocument.
func NewTestSource(opts ...DocumentOption) *rubric.Source {
	return rubric.Compile(NewTestDocument(opts...))
}
