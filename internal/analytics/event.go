package analytics

import "github.com/alexanderramin/kallan/internal/domain"

// Event is one unit handed to a Sink. Exactly one of Activity or Selection
// is set.
type Event struct {
	Activity  *domain.AnalyticsEvent
	Selection *domain.WordSelection
}

// Name identifies the event kind in logs and remote payloads.
func (e Event) Name() string {
	switch {
	case e.Selection != nil:
		return "word_selection"
	case e.Activity != nil:
		return string(e.Activity.Type)
	default:
		return "empty"
	}
}

// Source identifies the rubric source an event belongs to.
type Source struct {
	ID    string
	Title string
}
