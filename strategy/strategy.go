package strategy

import (
	"math/rand"
	"slices"

	"github.com/pkg/errors"

	"github.com/timpalpant/spne"
)

// Strategy assigns a Distribution over actions to information sets.
type Strategy[I comparable, A comparable] struct {
	m map[I]Distribution[A]
}

func New[I comparable, A comparable]() *Strategy[I, A] {
	return &Strategy[I, A]{m: make(map[I]Distribution[A])}
}

// FromProfile returns the Strategy that deterministically plays profile.
func FromProfile[I comparable, A comparable](profile *spne.PureStrategyProfile[I, A]) *Strategy[I, A] {
	s := New[I, A]()
	for is, a := range profile.All() {
		s.Set(is, Pure(a))
	}

	return s
}

func (s *Strategy[I, A]) Set(infoSet I, d Distribution[A]) {
	s.m[infoSet] = d
}

func (s *Strategy[I, A]) Get(infoSet I) (Distribution[A], bool) {
	d, ok := s.m[infoSet]
	return d, ok
}

func (s *Strategy[I, A]) Len() int {
	return len(s.m)
}

// SampleHistory plays out the game from root, sampling each action
// from s. Information sets without a Distribution in s are played
// uniformly at random.
func SampleHistory[I comparable, P comparable, A comparable](root spne.GameState[I, P, A], s *Strategy[I, A], rng *rand.Rand) (spne.History[A], spne.Outcome[P], error) {
	var history spne.History[A]
	state := root
	for !state.IsTerminal() {
		d, ok := s.Get(state.InformationSet())
		if !ok {
			actions := slices.Collect(state.Actions())
			if len(actions) == 0 {
				return history, spne.Outcome[P]{}, errors.Errorf("no actions available at %v", state.InformationSet())
			}
			d = Uniform(actions)
		}

		action := d.Sample(rng)
		next, err := state.Advance(action)
		if err != nil {
			return history, spne.Outcome[P]{}, errors.Wrapf(err, "after %v", history)
		}

		history.Append(action)
		state = next
	}

	outcome, ok := state.Outcome()
	if !ok {
		return history, spne.Outcome[P]{}, errors.Errorf("terminal state after %v has no outcome", history)
	}

	return history, outcome, nil
}
