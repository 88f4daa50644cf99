// Package strategy implements behavioural strategies: a probability
// distribution over actions at every information set.
package strategy

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"
)

const eps = 1e-3

// Distribution is a probability distribution over a finite set of actions.
type Distribution[A comparable] struct {
	actions []A
	probs   []float64
}

// NewDistribution returns the distribution choosing actions[i] with
// probability probs[i]. Probabilities must be non-negative and sum to 1.
func NewDistribution[A comparable](actions []A, probs []float64) (Distribution[A], error) {
	d := Distribution[A]{
		actions: append([]A(nil), actions...),
		probs:   append([]float64(nil), probs...),
	}

	if err := d.Validate(); err != nil {
		return Distribution[A]{}, err
	}

	return d, nil
}

// Pure returns the distribution that always chooses action.
func Pure[A comparable](action A) Distribution[A] {
	return Distribution[A]{actions: []A{action}, probs: []float64{1}}
}

// Uniform returns the distribution choosing each action with equal probability.
func Uniform[A comparable](actions []A) Distribution[A] {
	probs := make([]float64, len(actions))
	for i := range probs {
		probs[i] = 1.0 / float64(len(actions))
	}

	return Distribution[A]{actions: append([]A(nil), actions...), probs: probs}
}

// Validate checks that d is a probability distribution.
func (d Distribution[A]) Validate() error {
	if len(d.actions) == 0 {
		return errors.New("distribution has no actions")
	}
	if len(d.actions) != len(d.probs) {
		return errors.Errorf("%d actions but %d probabilities", len(d.actions), len(d.probs))
	}

	seen := make(map[A]struct{}, len(d.actions))
	total := 0.0
	for i, p := range d.probs {
		if p < 0 || math.IsNaN(p) {
			return errors.Errorf("probability of %v is %v", d.actions[i], p)
		}
		if _, dup := seen[d.actions[i]]; dup {
			return errors.Errorf("action %v appears more than once", d.actions[i])
		}
		seen[d.actions[i]] = struct{}{}
		total += p
	}

	if math.Abs(total-1) > eps {
		return errors.Errorf("probabilities sum to %v", total)
	}

	return nil
}

func (d Distribution[A]) Len() int {
	return len(d.actions)
}

// Weight returns the probability that action is chosen.
func (d Distribution[A]) Weight(action A) float64 {
	for i, a := range d.actions {
		if a == action {
			return d.probs[i]
		}
	}

	return 0
}

// Sample draws an action from d.
func (d Distribution[A]) Sample(rng *rand.Rand) A {
	x := rng.Float64()
	var cumProb float64
	last := len(d.actions) - 1
	for i, p := range d.probs {
		if p == 0 {
			continue
		}

		last = i
		cumProb += p
		if cumProb > x {
			return d.actions[i]
		}
	}

	// Probabilities may sum to slightly less than 1. Never return an
	// action that has zero probability.
	return d.actions[last]
}
