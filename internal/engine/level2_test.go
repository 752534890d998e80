package engine

import (
	"strconv"
	"testing"

	"github.com/alexanderramin/kallan/internal/domain"
	"github.com/alexanderramin/kallan/internal/rubric"
	"github.com/alexanderramin/kallan/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateStep_LengthPrecedesAntiPattern(t *testing.T) {
	step := rubric.Level2Step{
		Number:    3,
		Kind:      rubric.KindFreeText,
		MinLength: 20,
		AntiPatterns: []rubric.AntiPattern{
			{Phrases: []string{"jag tycker"}, Warning: "Undvik åsikter."},
		},
	}

	res := ValidateStep(step, "jag tycker")

	assert.Equal(t, StepTooShort, res.Status)
	assert.Equal(t, "Svaret är för kort. Skriv minst 20 tecken.", res.Message)
}

func TestValidateStep_FreeTextLayers(t *testing.T) {
	src := testutil.NewTestSource()
	step3 := src.Level2.Steps[2]

	tests := []struct {
		name    string
		answer  string
		status  StepStatus
		message string
	}{
		{"too short", "   eftersom   ", StepTooShort, "Svaret är för kort. Skriv minst 20 tecken."},
		{"anti-pattern", "jag tycker att det är så eftersom", StepAntiPattern, "Undvik personliga åsikter."},
		{"missing concept", "det handlar om makt och ordning", StepMissingConcepts, "Förklara varför."},
		{"passed", "orden visar förtryck eftersom de hotar", StepPassed, "Bra förklaring."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidateStep(step3, tt.answer)
			assert.Equal(t, tt.status, res.Status)
			assert.Equal(t, tt.message, res.Message)
			assert.Equal(t, 3, res.Step)
		})
	}
}

func TestValidateStep_AntiPatternReportsPhrase(t *testing.T) {
	step := rubric.Level2Step{
		Kind:      rubric.KindFreeText,
		MinLength: 1,
		AntiPatterns: []rubric.AntiPattern{
			{Phrases: []string{"alltid"}, Warning: "första"},
			{Phrases: []string{"aldrig"}, Warning: "andra"},
		},
	}

	res := ValidateStep(step, "det händer aldrig och alltid")

	assert.Equal(t, StepAntiPattern, res.Status)
	assert.Equal(t, "första", res.Message, "groups are checked in order")
	assert.Equal(t, "alltid", res.Phrase)
}

func TestValidateStep_ConceptGroupsNeedEveryGroup(t *testing.T) {
	step := rubric.Level2Step{
		Kind:      rubric.KindFreeText,
		MinLength: 1,
		Concepts: []rubric.ConceptGroup{
			{Name: "Orsak", Keywords: []string{"eftersom"}, MinMatch: 1},
			{Name: "Följd", Keywords: []string{"därför", "alltså"}, MinMatch: 2},
		},
	}

	res := ValidateStep(step, "eftersom det var så, därför")
	assert.Equal(t, StepMissingConcepts, res.Status)
	assert.Equal(t, []string{"Orsak"}, res.MatchedConcepts)
	assert.Equal(t, []string{"Följd"}, res.MissingConcepts)
	assert.Equal(t, DefaultNeedsImprovement, res.Message)

	res = ValidateStep(step, "eftersom det var så, därför och alltså")
	assert.Equal(t, StepPassed, res.Status)
	assert.Equal(t, DefaultStepSuccess, res.Message)
}

func TestValidateStep_FlatKeywords(t *testing.T) {
	src := testutil.NewTestSource()
	step2 := src.Level2.Steps[1]

	res := ValidateStep(step2, "ljuset att tala")
	assert.Equal(t, StepTooVague, res.Status)
	assert.Equal(t, "Citera texten.", res.Message)

	res = ValidateStep(step2, "Frihetens ljus")
	assert.Equal(t, StepPassed, res.Status)
	assert.Equal(t, DefaultHasKeyword, res.Message)
	assert.Equal(t, []string{"frihet"}, res.MatchedKeywords)
}

func TestValidateStep_LengthOnly(t *testing.T) {
	step := rubric.Level2Step{Kind: rubric.KindFreeText, MinLength: 3, Feedback: map[string]string{"success": "Fint."}}

	assert.Equal(t, StepPassed, ValidateStep(step, "abc").Status)
	assert.Equal(t, "Fint.", ValidateStep(step, "abc").Message)
}

func TestValidateStep_LengthCountsRunes(t *testing.T) {
	step := rubric.Level2Step{Kind: rubric.KindFreeText, MinLength: 4}

	assert.Equal(t, StepPassed, ValidateStep(step, "åäöå").Status)
}

func TestValidateStep_Choice(t *testing.T) {
	src := testutil.NewTestSource()
	step1 := src.Level2.Steps[0]
	require.Equal(t, rubric.KindChoice, step1.Kind)

	res := ValidateStep(step1, "bristen på frihet")
	assert.Equal(t, ChoiceCorrect, res.Status)
	assert.Equal(t, "Rätt!", res.Message)

	res = ValidateStep(step1, "vädret")
	assert.Equal(t, ChoiceIncorrect, res.Status)
	assert.Equal(t, "Läs texten igen.", res.Message)

	res = ValidateStep(step1, "")
	assert.Equal(t, ChoiceIncorrect, res.Status)
}

func TestLevel2_ChooseGivesImmediateFeedback(t *testing.T) {
	l := NewLevel2(testutil.NewTestSource().Level2)

	res, err := l.Choose("vädret")
	require.NoError(t, err)
	assert.Equal(t, ChoiceIncorrect, res.Status)

	_, err = l.Choose("något annat")
	assert.ErrorIs(t, err, ErrUnknownOption)

	err = l.SetText("fritext")
	assert.ErrorIs(t, err, ErrWrongKind)

	adv, err := l.Advance()
	require.NoError(t, err)
	assert.False(t, adv.Result.Status.Passed())
	assert.Equal(t, 0, l.Position(), "a wrong choice does not advance")
}

func TestLevel2_AdvanceBlockedUntilMinimumShape(t *testing.T) {
	l := NewLevel2(testutil.NewTestSource().Level2)

	assert.False(t, l.CanAdvance())
	_, err := l.Advance()
	assert.ErrorIs(t, err, ErrNotReady)
	assert.Equal(t, 0, l.Attempts())

	_, err = l.Choose("bristen på frihet")
	require.NoError(t, err)
	assert.True(t, l.CanAdvance())
	_, err = l.Advance()
	require.NoError(t, err)

	require.NoError(t, l.SetText("kort"))
	assert.False(t, l.CanAdvance())
	require.NoError(t, l.SetText("rätten att tala"))
	assert.True(t, l.CanAdvance())
}

func TestLevel2_FullRunAssemblesFragments(t *testing.T) {
	l := NewLevel2(testutil.NewTestSource().Level2)
	require.Equal(t, 3, l.StepCount())

	_, err := l.Choose("bristen på frihet")
	require.NoError(t, err)
	adv, err := l.Advance()
	require.NoError(t, err)
	require.True(t, adv.Result.Status.Passed())

	assert.Equal(t, "Du valde bristen på frihet. Var syns det?", l.Bridge())

	require.NoError(t, l.SetText("rätten att tala"))
	adv, err = l.Advance()
	require.NoError(t, err)
	require.True(t, adv.Result.Status.Passed())
	assert.Contains(t, l.Preview(), PreviewGap)

	require.NoError(t, l.SetText("makten tystar folket eftersom den är rädd"))
	adv, err = l.Advance()
	require.NoError(t, err)

	require.True(t, adv.Finished)
	assert.Equal(t,
		"I texten finns problemet bristen på frihet. Detta ser jag i orden \"rätten att tala\". Detta visar att makten tystar folket eftersom den är rädd.",
		adv.Narrative)
	assert.Equal(t, "Alla tre delar är klara.", adv.Evaluation)
	assert.Equal(t, Completion{Gate: domain.GateLevel2, Level: 2, Attempts: 3, ExerciseDone: true}, adv.Completion)
	assert.True(t, l.Done())

	_, err = l.Advance()
	assert.ErrorIs(t, err, ErrFinished)
}

func TestLevel2_BridgeSwedishMarker(t *testing.T) {
	src := testutil.NewTestSource(testutil.WithLevel2Step("step2", &rubric.Level2StepDoc{
		Question:  "Citera orden som visar det.",
		MinLength: testutil.IntPtr(5),
		Bridge:    "Efter [FÖREGÅENDE] kommer citatet.",
	}))
	l := NewLevel2(src.Level2)
	assert.Empty(t, l.Bridge(), "the first step has no bridge")

	_, err := l.Choose("bristen på frihet")
	require.NoError(t, err)
	_, err = l.Advance()
	require.NoError(t, err)

	assert.Equal(t, "Efter bristen på frihet kommer citatet.", l.Bridge())
}

func TestLevel2_EvaluationByPartCount(t *testing.T) {
	tests := []struct {
		name  string
		opts  []testutil.DocumentOption
		steps int
		want  string
	}{
		{"matching part count", nil, 3, "Alla tre delar är klara."},
		{"default fallback", []testutil.DocumentOption{
			testutil.WithLevel2Step("step4", &rubric.Level2StepDoc{Question: "Sammanfatta.", MinLength: testutil.IntPtr(1)}),
		}, 4, "Klart."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLevel2(testutil.NewTestSource(tt.opts...).Level2)
			require.Equal(t, tt.steps, l.StepCount())
			assert.Equal(t, tt.want, l.Evaluation())
		})
	}
}

func TestLevel2_FailedValidationStaysOnStep(t *testing.T) {
	l := NewLevel2(testutil.NewTestSource().Level2)
	_, err := l.Choose("bristen på frihet")
	require.NoError(t, err)
	_, err = l.Advance()
	require.NoError(t, err)

	require.NoError(t, l.SetText("ljuset att tala"))
	adv, err := l.Advance()
	require.NoError(t, err)

	assert.Equal(t, StepTooVague, adv.Result.Status)
	assert.False(t, adv.Finished)
	assert.Equal(t, 1, l.Position())
	res, ok := l.Result()
	require.True(t, ok)
	assert.Equal(t, StepTooVague, res.Status)
}

func TestAssemble_TemplateLeavesNoMarkers(t *testing.T) {
	src := testutil.NewTestSource(
		testutil.WithFinalAssembly("Problemet är {step1}. Citat: [STEG 2]. Slutsats: {step3}."),
	)
	answers := map[int]string{1: "ofrihet", 2: "rätten att tala", 3: "makten är rädd"}

	out := Assemble(src.Level2, answers, "")

	assert.Equal(t, "Problemet är ofrihet. Citat: rätten att tala. Slutsats: makten är rädd.", out)
	assert.NotRegexp(t, `\{step\d+\}|\[STEG \d+\]`, out)
}

func TestAssemble_StepsSortedNumerically(t *testing.T) {
	steps := map[string]*rubric.Level2StepDoc{}
	answers := map[int]string{}
	for i := 1; i <= 10; i++ {
		key := "step" + strconv.Itoa(i)
		steps[key] = &rubric.Level2StepDoc{Question: "q", MinLength: testutil.IntPtr(1)}
		answers[i] = strconv.Itoa(i)
	}
	src := testutil.NewTestSource(testutil.WithLevel2Steps(steps))

	require.Len(t, src.Level2.Steps, 10)
	assert.Equal(t, 10, src.Level2.Steps[9].Number)
	assert.Equal(t, "1 2 3 4 5 6 7 8 9 10", Assemble(src.Level2, answers, ""))
}

func TestLevel2_EmptyRubricNeverCompletes(t *testing.T) {
	l := NewLevel2(rubric.Level2{})

	assert.False(t, l.CanAdvance())
	_, err := l.Advance()
	assert.ErrorIs(t, err, ErrNotReady)
}
