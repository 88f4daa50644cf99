package gamefile

import (
	"iter"

	"github.com/pkg/errors"

	"github.com/timpalpant/spne"
)

// State is a position in a declared game. Information sets, players
// and actions are all identified by name.
type State struct {
	node *Node
}

var _ spne.GameState[string, string, string] = &State{}

// Node returns the declared node this State is positioned at.
func (s *State) Node() *Node {
	return s.node
}

func (s *State) IsTerminal() bool {
	return s.node.IsTerminal()
}

func (s *State) Advance(action string) (spne.GameState[string, string, string], error) {
	if s.IsTerminal() {
		return nil, errors.Errorf("node %q is terminal", s.node.Name)
	}

	for _, e := range s.node.Edges {
		if e.Action == action {
			return &State{node: e.To}, nil
		}
	}

	return nil, errors.Errorf("node %q has no action %q", s.node.Name, action)
}

func (s *State) Actions() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, e := range s.node.Edges {
			if !yield(e.Action) {
				return
			}
		}
	}
}

func (s *State) InformationSet() string {
	return s.node.InfoSet
}

func (s *State) Player() (string, bool) {
	if s.IsTerminal() || s.node.Player == "" {
		return "", false
	}

	return s.node.Player, true
}

func (s *State) Outcome() (spne.Outcome[string], bool) {
	if s.node.Payoff == nil {
		return spne.Outcome[string]{}, false
	}

	return spne.NewOutcome(s.node.Payoff), true
}

// String implements fmt.Stringer.
func (s *State) String() string {
	return s.node.Name
}
