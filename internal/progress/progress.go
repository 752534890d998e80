// Package progress is the gate state machine. A Snapshot is an immutable
// value; Complete returns a new snapshot and never performs I/O. Loading and
// saving snapshots is the caller's job.
package progress

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/alexanderramin/kallan/internal/domain"
)

var (
	ErrUnknownGate = errors.New("unknown gate")
	ErrGateLocked  = errors.New("gate is locked")
)

// Snapshot holds one state per gate of domain.GateSequence, in order.
type Snapshot struct {
	states []domain.GateState
}

// Initial returns the starting state: first gate unlocked, all others locked.
func Initial() Snapshot {
	states := make([]domain.GateState, len(domain.GateSequence))
	for i := range states {
		states[i] = domain.GateLocked
	}
	if len(states) > 0 {
		states[0] = domain.GateUnlocked
	}
	return Snapshot{states: states}
}

func indexOf(id domain.GateID) int {
	for i, g := range domain.GateSequence {
		if g == id {
			return i
		}
	}
	return -1
}

// State returns the state of gate id. Unknown gates report locked.
func (s Snapshot) State(id domain.GateID) domain.GateState {
	i := indexOf(id)
	if i < 0 || i >= len(s.states) {
		return domain.GateLocked
	}
	return s.states[i]
}

// Open reports whether gate id may be entered, either for the first time or
// to revisit a completed exercise.
func (s Snapshot) Open(id domain.GateID) bool {
	return s.State(id) != domain.GateLocked
}

// Complete marks gate id completed and unlocks the gate after it if that gate
// is still locked. All other gates are left untouched, so completing an
// already completed gate changes nothing.
func Complete(s Snapshot, id domain.GateID) (Snapshot, error) {
	i := indexOf(id)
	if i < 0 {
		return s, fmt.Errorf("completing %q: %w", id, ErrUnknownGate)
	}
	s = Normalize(s)
	if s.states[i] == domain.GateLocked {
		return s, fmt.Errorf("completing %q: %w", id, ErrGateLocked)
	}

	next := Snapshot{states: append([]domain.GateState(nil), s.states...)}
	next.states[i] = domain.GateCompleted
	if i+1 < len(next.states) && next.states[i+1] == domain.GateLocked {
		next.states[i+1] = domain.GateUnlocked
	}
	return next, nil
}

// Frontier returns the first gate that is not completed. ok is false when
// every gate is completed.
func (s Snapshot) Frontier() (id domain.GateID, ok bool) {
	for _, g := range domain.GateSequence {
		if s.State(g) != domain.GateCompleted {
			return g, true
		}
	}
	return "", false
}

// AllCompleted reports whether every gate has been completed.
func (s Snapshot) AllCompleted() bool {
	_, ok := s.Frontier()
	return !ok
}

// Level1StartStep returns the Level 1 step to resume at: the first step whose
// gate is not completed. A fully completed Level 1 is replayed from step 1.
func (s Snapshot) Level1StartStep() int {
	for step := 1; step <= 3; step++ {
		if s.State(domain.Level1Gate(step)) != domain.GateCompleted {
			return step
		}
	}
	return 1
}

// Gate is one row of a snapshot listing.
type Gate struct {
	ID       domain.GateID
	Position int
	State    domain.GateState
}

// Gates lists every gate with its position (1-based) and state.
func (s Snapshot) Gates() []Gate {
	out := make([]Gate, len(domain.GateSequence))
	for i, g := range domain.GateSequence {
		out[i] = Gate{ID: g, Position: i + 1, State: s.State(g)}
	}
	return out
}

// Normalize fills gaps left by a partial or stale snapshot from the initial
// state and rejects unknown state strings by treating them as locked.
func Normalize(s Snapshot) Snapshot {
	base := Initial()
	out := Snapshot{states: make([]domain.GateState, len(base.states))}
	for i := range out.states {
		out.states[i] = base.states[i]
		if i < len(s.states) && domain.ValidGateStates[s.states[i]] {
			out.states[i] = s.states[i]
		}
	}
	return out
}

// FromMap builds a snapshot from a gate-id keyed map, as stored on disk.
func FromMap(m map[domain.GateID]domain.GateState) Snapshot {
	s := Snapshot{states: make([]domain.GateState, len(domain.GateSequence))}
	base := Initial()
	for i, g := range domain.GateSequence {
		st, ok := m[g]
		if !ok || !domain.ValidGateStates[st] {
			st = base.states[i]
		}
		s.states[i] = st
	}
	return s
}

// Map returns the snapshot as a gate-id keyed map.
func (s Snapshot) Map() map[domain.GateID]domain.GateState {
	m := make(map[domain.GateID]domain.GateState, len(domain.GateSequence))
	for _, g := range domain.GateSequence {
		m[g] = s.State(g)
	}
	return m
}

// MarshalJSON writes gates in sequence order.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, g := range domain.GateSequence {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(string(g))
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(string(s.State(g)))
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var m map[domain.GateID]domain.GateState
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("decoding progress snapshot: %w", err)
	}
	*s = FromMap(m)
	return nil
}
