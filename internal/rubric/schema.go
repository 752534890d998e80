package rubric

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// Document is the on-disk shape of one exercise source. The same field names
// are used for JSON and YAML documents. Optional numeric fields are pointers
// so that an absent value can fall back to its default at compile time.
type Document struct {
	ID     string     `json:"id" yaml:"id" validate:"required"`
	Title  string     `json:"title" yaml:"title" validate:"required"`
	Level1 Level1Doc  `json:"level1" yaml:"level1"`
	Level2 *Level2Doc `json:"level2,omitempty" yaml:"level2,omitempty"`
	Level3 *Level3Doc `json:"level3,omitempty" yaml:"level3,omitempty"`
}

// Level1Doc holds the three word-selection steps.
type Level1Doc struct {
	Step1 *Level1StepDoc `json:"step1,omitempty" yaml:"step1,omitempty" validate:"required"`
	Step2 *Level1StepDoc `json:"step2,omitempty" yaml:"step2,omitempty" validate:"required"`
	Step3 *Level1StepDoc `json:"step3,omitempty" yaml:"step3,omitempty" validate:"required"`
}

// Level1StepDoc configures one word-selection step.
type Level1StepDoc struct {
	Title            string            `json:"title" yaml:"title"`
	Instruction      string            `json:"instruction" yaml:"instruction"`
	Hint             string            `json:"hint,omitempty" yaml:"hint,omitempty"`
	TextHighlight    string            `json:"text_highlight" yaml:"text_highlight" validate:"required"`
	CorrectWords     []string          `json:"correct_words" yaml:"correct_words" validate:"required,min=1,dive,required"`
	SuccessThreshold *int              `json:"success_threshold,omitempty" yaml:"success_threshold,omitempty" validate:"omitempty,gte=1"`
	Feedback         map[string]string `json:"feedback,omitempty" yaml:"feedback,omitempty"`
	MissingFeedback  string            `json:"missing_feedback,omitempty" yaml:"missing_feedback,omitempty"`
	Variant          string            `json:"variant,omitempty" yaml:"variant,omitempty" validate:"omitempty,oneof=dual_category generic_adaptive static"`
	AdaptiveFeedback map[string]string `json:"adaptive_feedback,omitempty" yaml:"adaptive_feedback,omitempty"`
}

// Level2Doc holds the guided template exercise.
type Level2Doc struct {
	Title         string                    `json:"title" yaml:"title"`
	Instruction   string                    `json:"instruction" yaml:"instruction"`
	SourceTitle   string                    `json:"source_title,omitempty" yaml:"source_title,omitempty"`
	SourceText    string                    `json:"source_text" yaml:"source_text"`
	Steps         map[string]*Level2StepDoc `json:"steps" yaml:"steps" validate:"required,min=1,dive,required"`
	FinalAssembly *FinalAssemblyDoc         `json:"final_assembly,omitempty" yaml:"final_assembly,omitempty"`
}

// Level2StepDoc configures one step of the guided template. Kind is either
// "choice" or "free_text"; anything else (or nothing) means free text.
type Level2StepDoc struct {
	Kind             string            `json:"kind,omitempty" yaml:"kind,omitempty" validate:"omitempty,oneof=choice free_text"`
	Question         string            `json:"question" yaml:"question" validate:"required"`
	Example          string            `json:"example,omitempty" yaml:"example,omitempty"`
	Options          []OptionDoc       `json:"options,omitempty" yaml:"options,omitempty" validate:"dive"`
	MinLength        *int              `json:"min_length,omitempty" yaml:"min_length,omitempty" validate:"omitempty,gte=1"`
	RequiredConcepts []ConceptDoc      `json:"required_concepts,omitempty" yaml:"required_concepts,omitempty" validate:"dive"`
	AntiPatterns     []AntiPatternDoc  `json:"anti_patterns,omitempty" yaml:"anti_patterns,omitempty" validate:"dive"`
	RequiredKeywords []string          `json:"required_keywords,omitempty" yaml:"required_keywords,omitempty" validate:"dive,required"`
	MinKeywordsMatch *int              `json:"min_keywords_match,omitempty" yaml:"min_keywords_match,omitempty" validate:"omitempty,gte=1"`
	Feedback         map[string]string `json:"feedback,omitempty" yaml:"feedback,omitempty"`
	TemplateOutput   string            `json:"template_output,omitempty" yaml:"template_output,omitempty"`
	Bridge           string            `json:"bridge,omitempty" yaml:"bridge,omitempty"`
}

// OptionDoc is one answer of a choice step.
type OptionDoc struct {
	Text     string `json:"text" yaml:"text" validate:"required"`
	Correct  bool   `json:"correct" yaml:"correct"`
	Feedback string `json:"feedback" yaml:"feedback"`
}

// ConceptDoc is a named keyword cluster. Level 2 documents historically call
// the keyword list "required_keywords"; both spellings are accepted.
type ConceptDoc struct {
	ConceptName      string   `json:"concept_name" yaml:"concept_name" validate:"required"`
	Keywords         []string `json:"keywords,omitempty" yaml:"keywords,omitempty" validate:"dive,required"`
	RequiredKeywords []string `json:"required_keywords,omitempty" yaml:"required_keywords,omitempty" validate:"dive,required"`
	MinKeywordsMatch *int     `json:"min_keywords_match,omitempty" yaml:"min_keywords_match,omitempty" validate:"omitempty,gte=1"`
	Points           *int     `json:"points,omitempty" yaml:"points,omitempty" validate:"omitempty,gte=0"`
	Feedback         string   `json:"feedback,omitempty" yaml:"feedback,omitempty"`
}

// AntiPatternDoc is a group of forbidden phrases sharing one warning.
type AntiPatternDoc struct {
	Phrases []string `json:"phrases" yaml:"phrases" validate:"required,min=1,dive,required"`
	Warning string   `json:"warning" yaml:"warning" validate:"required"`
}

// FinalAssemblyDoc describes how Level 2 answers become one narrative.
type FinalAssemblyDoc struct {
	Template   string            `json:"template,omitempty" yaml:"template,omitempty"`
	Evaluation map[string]string `json:"evaluation,omitempty" yaml:"evaluation,omitempty"`
}

// Level3Doc holds the comparative essay exercise.
type Level3Doc struct {
	Title            string                       `json:"title" yaml:"title"`
	Instruction      string                       `json:"instruction" yaml:"instruction"`
	SourceComparison map[string]ComparedSourceDoc `json:"source_comparison,omitempty" yaml:"source_comparison,omitempty"`
	Task             TaskDoc                      `json:"task" yaml:"task"`
}

// ComparedSourceDoc is one of the texts shown side by side in Level 3.
type ComparedSourceDoc struct {
	Title       string `json:"title" yaml:"title"`
	Year        string `json:"year,omitempty" yaml:"year,omitempty"`
	Type        string `json:"type,omitempty" yaml:"type,omitempty"`
	Perspective string `json:"perspective,omitempty" yaml:"perspective,omitempty"`
	Text        string `json:"text" yaml:"text"`
	Summary     string `json:"summary,omitempty" yaml:"summary,omitempty"`
}

// TaskDoc is the Level 3 writing task and its scoring table.
type TaskDoc struct {
	Question      string          `json:"question" yaml:"question" validate:"required"`
	TemplateGuide string          `json:"template_guide,omitempty" yaml:"template_guide,omitempty"`
	HelperText    string          `json:"helper_text,omitempty" yaml:"helper_text,omitempty"`
	Placeholder   string          `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	MinWords      *int            `json:"min_words,omitempty" yaml:"min_words,omitempty" validate:"omitempty,gte=1"`
	Hints         []string        `json:"hints,omitempty" yaml:"hints,omitempty"`
	ModelAnswer   *ModelAnswerDoc `json:"model_answer,omitempty" yaml:"model_answer,omitempty"`
	Evaluation    EvaluationDoc   `json:"evaluation" yaml:"evaluation"`
}

// ModelAnswerDoc is the exemplary essay revealed after repeated attempts.
type ModelAnswerDoc struct {
	Text     string `json:"text" yaml:"text"`
	Analysis string `json:"analysis,omitempty" yaml:"analysis,omitempty"`
}

// modelAnswerFields has the ModelAnswerDoc fields without its unmarshalers.
type modelAnswerFields ModelAnswerDoc

// UnmarshalJSON accepts either a bare string, taken as the text, or the
// {text, analysis} object.
func (m *ModelAnswerDoc) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*m = ModelAnswerDoc{Text: text}
		return nil
	}
	var f modelAnswerFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*m = ModelAnswerDoc(f)
	return nil
}

// UnmarshalYAML accepts either a scalar, taken as the text, or a mapping.
func (m *ModelAnswerDoc) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*m = ModelAnswerDoc{Text: node.Value}
		return nil
	}
	var f modelAnswerFields
	if err := node.Decode(&f); err != nil {
		return err
	}
	*m = ModelAnswerDoc(f)
	return nil
}

// EvaluationDoc is the Level 3 scoring table.
type EvaluationDoc struct {
	RequiredConcepts []ConceptDoc      `json:"required_concepts" yaml:"required_concepts" validate:"required,min=1,dive"`
	AntiPatterns     []AntiPatternDoc  `json:"anti_patterns,omitempty" yaml:"anti_patterns,omitempty" validate:"dive"`
	FeedbackLevels   map[string]string `json:"feedback_levels,omitempty" yaml:"feedback_levels,omitempty"`
	MinConceptsMatch *int              `json:"min_concepts_match,omitempty" yaml:"min_concepts_match,omitempty" validate:"omitempty,gte=1"`
}
