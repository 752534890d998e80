// Package engine evaluates learner input against a compiled rubric. Each
// level has its own engine value holding the attempt state of one exercise
// run; engines are synchronous and not safe for concurrent use.
package engine

import (
	"errors"

	"github.com/alexanderramin/kallan/internal/domain"
)

var (
	// ErrNotReady means the answer does not yet have the minimum shape
	// required to be evaluated (empty selection, too short, too few words).
	ErrNotReady = errors.New("answer is not ready for evaluation")

	// ErrNotSuccessful means an advance or confirm was attempted without a
	// successful evaluation of the current answer.
	ErrNotSuccessful = errors.New("current answer has not passed")

	// ErrRevealLocked means the answer or model answer cannot be shown yet.
	ErrRevealLocked = errors.New("reveal requires at least two attempts")

	// ErrFinished means the exercise has already signalled completion.
	ErrFinished = errors.New("exercise already finished")

	// ErrWrongKind means an input operation does not fit the current step kind.
	ErrWrongKind = errors.New("operation does not apply to this step kind")

	// ErrUnknownOption means a choice was made that the step does not offer.
	ErrUnknownOption = errors.New("unknown option")
)

// RevealAfterAttempts is the attempt count from which answers and model
// answers may be revealed.
const RevealAfterAttempts = 2

// Completion is the signal an engine emits when a gate has been passed.
type Completion struct {
	Gate         domain.GateID
	Level        int
	Step         int
	Attempts     int
	ExerciseDone bool
}
