// Package centipede implements the centipede game.
//
// Two players alternate deciding whether to Take the pot, ending the
// game, or Pass, letting it grow. Whoever takes at stage k receives k+2
// and leaves k to the other player. If every stage is passed both
// players receive n+1, where n is the number of stages.
package centipede

import (
	"fmt"
	"iter"

	"github.com/pkg/errors"

	"github.com/timpalpant/spne"
)

// Player represents the identity of a player in the game.
type Player uint8

const (
	Player0 Player = iota
	Player1
)

var playerStr = [...]string{
	"Player0",
	"Player1",
}

func (p Player) String() string {
	return playerStr[p]
}

type Action bool

const (
	Take Action = true
	Pass Action = false
)

func (a Action) String() string {
	if a == Take {
		return "Take"
	}

	return "Pass"
}

// Stage identifies a decision point. Stages are observed by both
// players, so each contains exactly one node.
type Stage int

// State is a node in the centipede game tree.
type State struct {
	stage  Stage
	length int
	taken  bool
}

var _ spne.GameState[Stage, Player, Action] = State{}

// New returns the root of a centipede game with n stages.
func New(n int) (State, error) {
	if n <= 0 {
		return State{}, errors.Errorf("number of stages must be > 0, got %d", n)
	}

	return State{length: n}, nil
}

func (s State) IsTerminal() bool {
	return s.taken || int(s.stage) == s.length
}

func (s State) Advance(action Action) (spne.GameState[Stage, Player, Action], error) {
	if s.IsTerminal() {
		return nil, errors.Errorf("cannot %v at stage %d, game is over", action, s.stage)
	}

	if action == Take {
		s.taken = true
	} else {
		s.stage++
	}

	return s, nil
}

// Actions yields Take before Pass, so an indifferent player takes.
func (s State) Actions() iter.Seq[Action] {
	return func(yield func(Action) bool) {
		if s.IsTerminal() {
			return
		}

		_ = yield(Take) && yield(Pass)
	}
}

func (s State) InformationSet() Stage {
	return s.stage
}

func (s State) Player() (Player, bool) {
	if s.IsTerminal() {
		return 0, false
	}

	return s.mover(), true
}

func (s State) mover() Player {
	return Player(s.stage % 2)
}

func (s State) Outcome() (spne.Outcome[Player], bool) {
	if !s.IsTerminal() {
		return spne.Outcome[Player]{}, false
	}

	if !s.taken {
		end := float64(s.length + 1)
		return spne.NewOutcome(map[Player]float64{Player0: end, Player1: end}), true
	}

	k := float64(s.stage)
	mover := s.mover()
	return spne.NewOutcome(map[Player]float64{
		mover:     k + 2,
		1 - mover: k,
	}), true
}

// String implements fmt.Stringer.
func (s State) String() string {
	switch {
	case s.taken:
		return fmt.Sprintf("%v took at stage %d", s.mover(), s.stage)
	case s.IsTerminal():
		return fmt.Sprintf("passed all %d stages", s.length)
	default:
		return fmt.Sprintf("%v's turn at stage %d of %d", s.mover(), s.stage, s.length)
	}
}
