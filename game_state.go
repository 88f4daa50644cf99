// Package spne computes subgame-perfect Nash equilibria of finite,
// perfect-information extensive-form games by backward induction.
//
// Concrete games are supplied by implementing GameState. The solver
// walks the game tree once, depth-first, and never retains it: successor
// states are produced on demand and dropped as soon as they are resolved.
package spne

import (
	"fmt"
	"iter"
)

// GameState is a node in an extensive-form game tree.
//
// I identifies information sets, P identifies players and A is the type
// of action available at decision nodes. Implementations must guarantee
// that all nodes in an information set belong to the same player and
// produce the same action set. The solver's equilibrium guarantee only
// holds when every information set contains exactly one node.
type GameState[I comparable, P comparable, A any] interface {
	// IsTerminal returns true iff Player would report no active player.
	IsTerminal() bool

	// Advance applies action and returns the successor state. It must
	// fail if the state is terminal or if action is not in the current
	// action set.
	Advance(action A) (GameState[I, P, A], error)

	// Actions returns the finite, non-empty set of actions available at
	// a decision node. The sequence is consumed at most once per visit.
	Actions() iter.Seq[A]

	// InformationSet returns the information set this node belongs to.
	InformationSet() I

	// Player returns the acting player, or false iff the state is terminal.
	Player() (P, bool)

	// Outcome returns the utilities realized at this node. It must be
	// defined at terminal states and may be defined elsewhere.
	Outcome() (Outcome[P], bool)
}

// Closer is implemented by states that hold resources, such as lazily
// expanded children. Close is called at most once per state.
type Closer interface {
	Close()
}

// release closes state if it implements Closer.
func release[I comparable, P comparable, A any](state GameState[I, P, A]) {
	if c, ok := state.(Closer); ok {
		c.Close()
	}
}

// describe renders a state for inclusion in error messages.
func describe[I comparable, P comparable, A any](state GameState[I, P, A]) string {
	if s, ok := state.(fmt.Stringer); ok {
		return s.String()
	}

	return fmt.Sprintf("infoset %v", state.InformationSet())
}
