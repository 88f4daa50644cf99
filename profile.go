package spne

import (
	"iter"
)

// PureStrategyProfile assigns exactly one action to each information set.
type PureStrategyProfile[I comparable, A any] struct {
	actions map[I]A
}

func NewPureStrategyProfile[I comparable, A any]() *PureStrategyProfile[I, A] {
	return &PureStrategyProfile[I, A]{
		actions: make(map[I]A),
	}
}

// Insert records action as the choice at infoSet, replacing any
// previously recorded action.
func (p *PureStrategyProfile[I, A]) Insert(infoSet I, action A) {
	p.actions[infoSet] = action
}

// Action returns the action chosen at infoSet, if any.
func (p *PureStrategyProfile[I, A]) Action(infoSet I) (A, bool) {
	a, ok := p.actions[infoSet]
	return a, ok
}

func (p *PureStrategyProfile[I, A]) Len() int {
	return len(p.actions)
}

// All iterates over every (information set, action) pair in the profile.
// The iteration order is unspecified.
func (p *PureStrategyProfile[I, A]) All() iter.Seq2[I, A] {
	return func(yield func(I, A) bool) {
		for is, a := range p.actions {
			if !yield(is, a) {
				return
			}
		}
	}
}
