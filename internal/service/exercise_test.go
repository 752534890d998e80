package service

import (
	"context"
	"testing"

	"github.com/alexanderramin/kallan/internal/analytics"
	"github.com/alexanderramin/kallan/internal/domain"
	"github.com/alexanderramin/kallan/internal/engine"
	"github.com/alexanderramin/kallan/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type trackedCall struct {
	Kind     string
	Level    int
	Step     int
	Attempts int
	Success  bool
	Selected []string
}

type recordingTracker struct {
	calls []trackedCall
}

func (r *recordingTracker) SourceSelected(analytics.Source) {
	r.calls = append(r.calls, trackedCall{Kind: "source_selected"})
}

func (r *recordingTracker) LevelStarted(_ analytics.Source, level, step int) {
	r.calls = append(r.calls, trackedCall{Kind: "level_started", Level: level, Step: step})
}

func (r *recordingTracker) LevelCompleted(_ analytics.Source, level, step, attempts int, success bool) {
	r.calls = append(r.calls, trackedCall{Kind: "level_completed", Level: level, Step: step, Attempts: attempts, Success: success})
}

func (r *recordingTracker) WordSelection(_ analytics.Source, step int, selected, _ []string, success bool, attempt int) {
	r.calls = append(r.calls, trackedCall{Kind: "word_selection", Level: 1, Step: step, Attempts: attempt, Success: success, Selected: selected})
}

func (r *recordingTracker) kinds() []string {
	var out []string
	for _, c := range r.calls {
		out = append(out, c.Kind)
	}
	return out
}

func newTestExercise(t *testing.T) (*Exercise, ProgressService, *recordingTracker) {
	t.Helper()
	svc, _ := newDBProgressService(t)
	svc.Load(context.Background())
	tr := &recordingTracker{}
	return NewExercise(testutil.NewTestSource(), svc, tr), svc, tr
}

func passLevel1Step(t *testing.T, ex *Exercise, l1 *engine.Level1, words ...string) engine.Completion {
	t.Helper()
	for _, w := range words {
		l1.Toggle(w)
	}
	res, err := ex.EvaluateLevel1(l1)
	require.NoError(t, err)
	require.True(t, res.Success, "step %d: %s", l1.StepNumber(), res.Message)
	c, err := ex.AdvanceLevel1(context.Background(), l1)
	require.NoError(t, err)
	return c
}

func TestExercise_FullRun(t *testing.T) {
	ex, svc, tr := newTestExercise(t)
	ctx := context.Background()

	// Later levels stay locked until their gate opens.
	_, err := ex.Level2()
	assert.ErrorIs(t, err, ErrLevelLocked)
	_, err = ex.Level3()
	assert.ErrorIs(t, err, ErrLevelLocked)

	l1, err := ex.Level1()
	require.NoError(t, err)
	assert.Equal(t, 1, l1.StepNumber())

	c := passLevel1Step(t, ex, l1, "Frihetens", "rätten")
	assert.Equal(t, domain.GateLevel1Step1, c.Gate)
	passLevel1Step(t, ex, l1, "Arbetet", "lönen")
	c = passLevel1Step(t, ex, l1, "Arbetarna", "lön", "dagar")
	assert.True(t, c.ExerciseDone)
	assert.Equal(t, domain.GateUnlocked, svc.Current().State(domain.GateLevel2))

	l2, err := ex.Level2()
	require.NoError(t, err)
	_, err = l2.Choose("bristen på frihet")
	require.NoError(t, err)
	adv, err := ex.AdvanceLevel2(ctx, l2)
	require.NoError(t, err)
	assert.False(t, adv.Finished)
	require.NoError(t, l2.SetText("frihet och rätt att tala"))
	_, err = ex.AdvanceLevel2(ctx, l2)
	require.NoError(t, err)
	require.NoError(t, l2.SetText("Orden visar förtryck eftersom folket saknade röst"))
	adv, err = ex.AdvanceLevel2(ctx, l2)
	require.NoError(t, err)
	require.True(t, adv.Finished)
	assert.Equal(t, domain.GateCompleted, svc.Current().State(domain.GateLevel2))

	l3, err := ex.Level3()
	require.NoError(t, err)
	l3.SetText("Jag jämför källorna och ser olika perspektiv i samhället")
	res, err := ex.EvaluateLevel3(l3)
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, domain.GateUnlocked, svc.Current().State(domain.GateLevel3), "passing waits for confirmation")
	c, err = ex.ConfirmLevel3(ctx, l3)
	require.NoError(t, err)
	assert.Equal(t, domain.GateLevel3, c.Gate)
	assert.True(t, svc.Current().AllCompleted())

	assert.Equal(t, []string{
		"source_selected",
		"level_started", "word_selection", "level_completed",
		"level_started", "word_selection", "level_completed",
		"level_started", "word_selection", "level_completed",
		"level_started", "level_completed",
		"level_started", "level_completed",
	}, tr.kinds())
}

func TestExercise_Level1FailureIsTracked(t *testing.T) {
	ex, svc, tr := newTestExercise(t)

	l1, err := ex.Level1()
	require.NoError(t, err)
	l1.Toggle("makt")
	res, err := ex.EvaluateLevel1(l1)
	require.NoError(t, err)
	assert.False(t, res.Success)

	_, err = ex.AdvanceLevel1(context.Background(), l1)
	assert.ErrorIs(t, err, engine.ErrNotSuccessful)
	assert.Equal(t, domain.GateUnlocked, svc.Current().State(domain.GateLevel1Step1))

	sel := tr.calls[2]
	assert.Equal(t, "word_selection", sel.Kind)
	assert.Equal(t, []string{"makt"}, sel.Selected)
	assert.Equal(t, 1, sel.Attempts)
	assert.False(t, sel.Success)

	done := tr.calls[3]
	assert.Equal(t, "level_completed", done.Kind)
	assert.False(t, done.Success)
}

func TestExercise_Level1EmptySelectionIsNotTracked(t *testing.T) {
	ex, _, tr := newTestExercise(t)

	l1, err := ex.Level1()
	require.NoError(t, err)
	_, err = ex.EvaluateLevel1(l1)
	assert.ErrorIs(t, err, engine.ErrNotReady)
	assert.Equal(t, []string{"source_selected", "level_started"}, tr.kinds())
}

func TestExercise_Level1ResumesAtFirstOpenStep(t *testing.T) {
	ex, svc, tr := newTestExercise(t)
	ctx := context.Background()
	_, err := svc.Complete(ctx, domain.GateLevel1Step1)
	require.NoError(t, err)

	l1, err := ex.Level1()
	require.NoError(t, err)
	assert.Equal(t, 2, l1.StepNumber())
	assert.Equal(t, trackedCall{Kind: "level_started", Level: 1, Step: 2}, tr.calls[1])
}

func TestExercise_Level1ReplaysFromFirstStepWhenCompleted(t *testing.T) {
	ex, svc, _ := newTestExercise(t)
	ctx := context.Background()
	for _, g := range domain.GateSequence[:3] {
		_, err := svc.Complete(ctx, g)
		require.NoError(t, err)
	}

	l1, err := ex.Level1()
	require.NoError(t, err)
	assert.Equal(t, 1, l1.StepNumber())
}

func TestExercise_RevisitCompletedLevel(t *testing.T) {
	ex, svc, _ := newTestExercise(t)
	ctx := context.Background()
	for _, g := range domain.GateSequence[:4] {
		_, err := svc.Complete(ctx, g)
		require.NoError(t, err)
	}
	before := svc.Current().Map()

	l2, err := ex.Level2()
	require.NoError(t, err, "a completed level can be replayed")
	_, err = l2.Choose("bristen på frihet")
	require.NoError(t, err)
	require.NoError(t, advanceAll(ex, l2))

	after := svc.Current().Map()
	assert.Equal(t, before, after, "re-completing a gate changes nothing")
}

func advanceAll(ex *Exercise, l2 *engine.Level2) error {
	ctx := context.Background()
	if _, err := ex.AdvanceLevel2(ctx, l2); err != nil {
		return err
	}
	if err := l2.SetText("frihet och rätt att tala"); err != nil {
		return err
	}
	if _, err := ex.AdvanceLevel2(ctx, l2); err != nil {
		return err
	}
	if err := l2.SetText("Orden visar förtryck eftersom folket saknade röst"); err != nil {
		return err
	}
	_, err := ex.AdvanceLevel2(ctx, l2)
	return err
}

func TestExercise_NilTracker(t *testing.T) {
	svc := NewProgressService(&stubStore{}, nil)
	svc.Load(context.Background())
	ex := NewExercise(testutil.NewTestSource(), svc, nil)

	l1, err := ex.Level1()
	require.NoError(t, err)
	l1.Toggle("Frihetens")
	_, err = ex.EvaluateLevel1(l1)
	assert.NoError(t, err)
}

func TestExercise_ProgressIsSharedAcrossSources(t *testing.T) {
	svc := NewProgressService(&stubStore{}, nil)
	svc.Load(context.Background())
	first := NewExercise(testutil.NewTestSource(testutil.WithSourceID("a", "A")), svc, nil)
	second := NewExercise(testutil.NewTestSource(testutil.WithSourceID("b", "B")), svc, nil)

	l1, err := first.Level1()
	require.NoError(t, err)
	passLevel1Step(t, first, l1, "Frihetens", "rätten")

	l1b, err := second.Level1()
	require.NoError(t, err)
	assert.Equal(t, 2, l1b.StepNumber())
}
