package listing

import "listview/internal/model"

type (
	inputHandler   func(*model.FilterInput) error
	statusHandler  func(*model.StatusControl) error
	headingHandler func(*model.Panel)
)

// Bindings is the handler table built by Initialize, keyed by element id.
type Bindings struct {
	inputs   map[string][]inputHandler
	statuses map[string][]statusHandler
	headings map[string][]headingHandler
}

func newBindings() Bindings {
	return Bindings{
		inputs:   make(map[string][]inputHandler),
		statuses: make(map[string][]statusHandler),
		headings: make(map[string][]headingHandler),
	}
}

func (b *Bindings) onInput(id string, h inputHandler) {
	b.inputs[id] = append(b.inputs[id], h)
}

func (b *Bindings) onStatus(id string, h statusHandler) {
	b.statuses[id] = append(b.statuses[id], h)
}

func (b *Bindings) onHeading(id string, h headingHandler) {
	b.headings[id] = append(b.headings[id], h)
}

// Inputs returns how many handlers are registered for a filter input.
func (b *Bindings) Inputs(id string) int { return len(b.inputs[id]) }

// Statuses returns how many handlers are registered for a status control.
func (b *Bindings) Statuses(id string) int { return len(b.statuses[id]) }

// Headings returns how many handlers are registered for a panel heading.
func (b *Bindings) Headings(id string) int { return len(b.headings[id]) }

// Len returns the number of elements with at least one handler.
func (b *Bindings) Len() int {
	return len(b.inputs) + len(b.statuses) + len(b.headings)
}
