package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexanderramin/kallan/internal/analytics"
	"github.com/alexanderramin/kallan/internal/domain"
	"github.com/alexanderramin/kallan/internal/engine"
	"github.com/alexanderramin/kallan/internal/rubric"
)

// ErrLevelLocked is returned when a level is started before its gate opens.
var ErrLevelLocked = errors.New("level is locked")

// Exercise runs the engines of one source, feeding completions into
// progress and interactions into analytics.
type Exercise struct {
	source   *rubric.Source
	progress ProgressService
	tracker  Tracker
}

type noopTracker struct{}

func (noopTracker) SourceSelected(analytics.Source)                                    {}
func (noopTracker) LevelStarted(analytics.Source, int, int)                            {}
func (noopTracker) LevelCompleted(analytics.Source, int, int, int, bool)               {}
func (noopTracker) WordSelection(analytics.Source, int, []string, []string, bool, int) {}

// NewExercise selects src. tracker may be nil.
func NewExercise(src *rubric.Source, progress ProgressService, tracker Tracker) *Exercise {
	if tracker == nil {
		tracker = noopTracker{}
	}
	e := &Exercise{source: src, progress: progress, tracker: tracker}
	tracker.SourceSelected(e.ref())
	return e
}

func (e *Exercise) Source() *rubric.Source { return e.source }

func (e *Exercise) ref() analytics.Source {
	return analytics.Source{ID: e.source.ID, Title: e.source.Title}
}

func (e *Exercise) requireOpen(id domain.GateID) error {
	if !e.progress.Current().Open(id) {
		return fmt.Errorf("%s: %w", id.Label(), ErrLevelLocked)
	}
	return nil
}

// Level1 starts the word-selection exercise at the first step not yet
// completed.
func (e *Exercise) Level1() (*engine.Level1, error) {
	step := e.progress.Current().Level1StartStep()
	if err := e.requireOpen(domain.Level1Gate(step)); err != nil {
		return nil, err
	}
	e.tracker.LevelStarted(e.ref(), 1, step)
	return engine.NewLevel1(e.source.Level1, step), nil
}

// EvaluateLevel1 evaluates the selection and records it.
func (e *Exercise) EvaluateLevel1(l1 *engine.Level1) (engine.Level1Result, error) {
	res, err := l1.Evaluate()
	if err != nil {
		return res, err
	}
	step := l1.Step()
	e.tracker.WordSelection(e.ref(), step.Number, l1.Selected(), step.CorrectWords, res.Success, l1.Attempts())
	e.tracker.LevelCompleted(e.ref(), 1, step.Number, l1.Attempts(), res.Success)
	return res, nil
}

// AdvanceLevel1 completes the current step's gate and starts timing the next
// step.
func (e *Exercise) AdvanceLevel1(ctx context.Context, l1 *engine.Level1) (engine.Completion, error) {
	c, err := l1.Advance()
	if err != nil {
		return c, err
	}
	if _, err := e.progress.Complete(ctx, c.Gate); err != nil {
		return c, err
	}
	if !c.ExerciseDone {
		e.tracker.LevelStarted(e.ref(), 1, l1.StepNumber())
	}
	return c, nil
}

func (e *Exercise) Level2() (*engine.Level2, error) {
	if err := e.requireOpen(domain.GateLevel2); err != nil {
		return nil, err
	}
	e.tracker.LevelStarted(e.ref(), 2, 0)
	return engine.NewLevel2(e.source.Level2), nil
}

// AdvanceLevel2 validates the current answer. Finishing the last step
// completes the Level 2 gate.
func (e *Exercise) AdvanceLevel2(ctx context.Context, l2 *engine.Level2) (engine.Level2Advance, error) {
	adv, err := l2.Advance()
	if err != nil || !adv.Finished {
		return adv, err
	}
	e.tracker.LevelCompleted(e.ref(), 2, 0, adv.Completion.Attempts, true)
	if _, err := e.progress.Complete(ctx, adv.Completion.Gate); err != nil {
		return adv, err
	}
	return adv, nil
}

func (e *Exercise) Level3() (*engine.Level3, error) {
	if err := e.requireOpen(domain.GateLevel3); err != nil {
		return nil, err
	}
	e.tracker.LevelStarted(e.ref(), 3, 0)
	return engine.NewLevel3(e.source.Level3), nil
}

func (e *Exercise) EvaluateLevel3(l3 *engine.Level3) (engine.Level3Result, error) {
	res, err := l3.Evaluate()
	if err != nil {
		return res, err
	}
	e.tracker.LevelCompleted(e.ref(), 3, 0, l3.Attempts(), res.Success)
	return res, nil
}

// ConfirmLevel3 completes the final gate after a successful essay.
func (e *Exercise) ConfirmLevel3(ctx context.Context, l3 *engine.Level3) (engine.Completion, error) {
	c, err := l3.Confirm()
	if err != nil {
		return c, err
	}
	if _, err := e.progress.Complete(ctx, c.Gate); err != nil {
		return c, err
	}
	return c, nil
}
