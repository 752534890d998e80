package domain

import "fmt"

// LevelStats aggregates completion events for one level (and step).
type LevelStats struct {
	Level       int
	Step        int
	Completed   int
	Failed      int
	AvgDuration *int
}

// Label mirrors the tracker naming, e.g. "Nivå 1 - Steg 2".
func (s LevelStats) Label() string {
	if s.Step > 0 {
		return fmt.Sprintf("Nivå %d - Steg %d", s.Level, s.Step)
	}
	return fmt.Sprintf("Nivå %d", s.Level)
}

// SourcePopularity counts how often a source was selected.
type SourcePopularity struct {
	Title string
	Count int
}

// WordSelectionStats summarizes the recorded selections for a source step.
type WordSelectionStats struct {
	TotalAttempts int
	SuccessRate   int
	WordFrequency map[string]int
	CorrectWords  []string
}

// Dashboard is the aggregate view shown by the stats command.
type Dashboard struct {
	SourceTitle string
	Levels      []LevelStats
	Sources     []SourcePopularity
}
