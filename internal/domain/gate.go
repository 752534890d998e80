package domain

import "fmt"

type GateID string

const (
	GateLevel1Step1 GateID = "level1_step1"
	GateLevel1Step2 GateID = "level1_step2"
	GateLevel1Step3 GateID = "level1_step3"
	GateLevel2      GateID = "level2"
	GateLevel3      GateID = "level3"
)

// GateSequence is the fixed order in which exercises unlock.
var GateSequence = []GateID{
	GateLevel1Step1,
	GateLevel1Step2,
	GateLevel1Step3,
	GateLevel2,
	GateLevel3,
}

type GateState string

const (
	GateLocked    GateState = "locked"
	GateUnlocked  GateState = "unlocked"
	GateCompleted GateState = "completed"
)

// ValidGateStates is the canonical set of accepted gate state strings.
var ValidGateStates = map[GateState]bool{
	GateLocked: true, GateUnlocked: true, GateCompleted: true,
}

// Level1Gate returns the gate guarding Level 1 step n (1-based).
func Level1Gate(step int) GateID {
	return GateID(fmt.Sprintf("level1_step%d", step))
}

// GateLevel returns the exercise level and step a gate belongs to.
// Step is 0 for gates that cover a whole level.
func GateLevel(id GateID) (level, step int) {
	switch id {
	case GateLevel1Step1:
		return 1, 1
	case GateLevel1Step2:
		return 1, 2
	case GateLevel1Step3:
		return 1, 3
	case GateLevel2:
		return 2, 0
	case GateLevel3:
		return 3, 0
	default:
		return 0, 0
	}
}

// Label returns the human-readable tracker label for a gate.
func (g GateID) Label() string {
	switch g {
	case GateLevel1Step1:
		return "Nivå 1: Steg 1"
	case GateLevel1Step2:
		return "Nivå 1: Steg 2"
	case GateLevel1Step3:
		return "Nivå 1: Steg 3"
	case GateLevel2:
		return "Nivå 2: Mall"
	case GateLevel3:
		return "Nivå 3: Jämförelse"
	default:
		return string(g)
	}
}
