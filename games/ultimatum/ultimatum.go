// Package ultimatum implements a two-stage ultimatum game.
//
// The proposer first makes either a Fair or an Unfair offer. The
// responder then Accepts, realizing the offered split, or Rejects,
// in which case neither player receives anything.
package ultimatum

import (
	"fmt"
	"iter"

	"github.com/pkg/errors"

	"github.com/timpalpant/spne"
)

// Player represents the identity of a player in the game.
type Player uint8

const (
	Proposer Player = iota
	Responder
)

var playerStr = [...]string{
	"Proposer",
	"Responder",
}

func (p Player) String() string {
	return playerStr[p]
}

type Action uint8

const (
	_ Action = iota
	Fair
	Unfair
	Accept
	Reject
)

var actionStr = [...]string{
	"Invalid",
	"Fair",
	"Unfair",
	"Accept",
	"Reject",
}

func (a Action) String() string {
	return actionStr[a]
}

// ParseAction returns the Action with the given name.
func ParseAction(s string) (Action, error) {
	for a := Fair; a <= Reject; a++ {
		if a.String() == s {
			return a, nil
		}
	}

	return 0, errors.Errorf("unknown action %q", s)
}

// InfoSet identifies a decision point. Every player observes all prior
// actions, so each InfoSet contains exactly one node.
type InfoSet uint8

const (
	Initial InfoSet = iota
	AfterFair
	AfterUnfair
	// GameOver is reported by terminal states.
	GameOver
)

var infoSetStr = [...]string{
	"initial",
	"after Fair",
	"after Unfair",
	"game over",
}

func (is InfoSet) String() string {
	return infoSetStr[is]
}

// Split is the utility each player receives.
type Split struct {
	Proposer  float64 `hcl:"proposer"`
	Responder float64 `hcl:"responder"`
}

// Payoffs configures the utilities realized at each terminal node.
type Payoffs struct {
	Fair     Split `hcl:"fair,block"`
	Unfair   Split `hcl:"unfair,block"`
	Rejected Split `hcl:"rejected,block"`
}

// DefaultPayoffs splits 10 evenly when fair and 8/2 when unfair.
func DefaultPayoffs() Payoffs {
	return Payoffs{
		Fair:     Split{Proposer: 5, Responder: 5},
		Unfair:   Split{Proposer: 8, Responder: 2},
		Rejected: Split{},
	}
}

// State is a node in the ultimatum game tree.
type State struct {
	payoffs  *Payoffs
	offer    Action
	response Action
}

var _ spne.GameState[InfoSet, Player, Action] = &State{}

// New returns the root of an ultimatum game with the given payoffs.
func New(payoffs Payoffs) *State {
	return &State{payoffs: &payoffs}
}

func (s *State) IsTerminal() bool {
	return s.response != 0
}

func (s *State) Advance(action Action) (spne.GameState[InfoSet, Player, Action], error) {
	child := *s
	switch {
	case s.IsTerminal():
		return nil, errors.Errorf("cannot play %v, game is over", action)
	case s.offer == 0 && (action == Fair || action == Unfair):
		child.offer = action
	case s.offer != 0 && (action == Accept || action == Reject):
		child.response = action
	default:
		return nil, errors.Errorf("%v cannot play %v at %v", s.currentPlayer(), action, s.InformationSet())
	}

	return &child, nil
}

func (s *State) Actions() iter.Seq[Action] {
	var available []Action
	switch {
	case s.IsTerminal():
	case s.offer == 0:
		available = []Action{Fair, Unfair}
	default:
		available = []Action{Accept, Reject}
	}

	return func(yield func(Action) bool) {
		for _, a := range available {
			if !yield(a) {
				return
			}
		}
	}
}

func (s *State) InformationSet() InfoSet {
	switch {
	case s.IsTerminal():
		return GameOver
	case s.offer == Fair:
		return AfterFair
	case s.offer == Unfair:
		return AfterUnfair
	default:
		return Initial
	}
}

func (s *State) Player() (Player, bool) {
	if s.IsTerminal() {
		return 0, false
	}

	return s.currentPlayer(), true
}

func (s *State) currentPlayer() Player {
	if s.offer == 0 {
		return Proposer
	}

	return Responder
}

func (s *State) Outcome() (spne.Outcome[Player], bool) {
	if !s.IsTerminal() {
		return spne.Outcome[Player]{}, false
	}

	split := s.payoffs.Rejected
	if s.response == Accept {
		split = s.payoffs.Fair
		if s.offer == Unfair {
			split = s.payoffs.Unfair
		}
	}

	return spne.NewOutcome(map[Player]float64{
		Proposer:  split.Proposer,
		Responder: split.Responder,
	}), true
}

// String implements fmt.Stringer.
func (s *State) String() string {
	if s.IsTerminal() {
		return fmt.Sprintf("%v offer %v", s.offer, s.response)
	}

	return fmt.Sprintf("%v's turn (%v)", s.currentPlayer(), s.InformationSet())
}
