// Package cfrgame solves games written against the go-cfr game tree
// interface.
//
// go-cfr games identify information sets from a player's point of view,
// which may merge several nodes. Backward induction needs every node to
// be distinguishable, so the adapter identifies each decision node by
// the sequence of child indices leading to it from the root. Chance
// nodes are not supported.
package cfrgame

import (
	"iter"
	"strconv"

	"github.com/pkg/errors"
	"github.com/timpalpant/go-cfr"

	"github.com/timpalpant/spne"
)

// Node is the subset of cfr.GameTreeNode the adapter relies on.
type Node interface {
	Type() cfr.NodeType
	Player() int
	NumChildren() int
	Utility(player int) float64
	Close()
}

type childFunc func(n Node, i int) Node

// State adapts a go-cfr game tree node to spne.GameState.
// Actions are child indices. Closing a State closes its node, which
// lets go-cfr games release lazily built children; the solver does so
// once a subtree is resolved. The root node is left to the caller.
type State struct {
	node  Node
	path  string
	child childFunc
}

var _ spne.GameState[string, int, int] = &State{}

// New returns the root state of the go-cfr game rooted at root.
func New(root cfr.GameTreeNode) (*State, error) {
	return newState(root, func(n Node, i int) Node {
		return n.(cfr.GameTreeNode).GetChild(i)
	})
}

func newState(root Node, child childFunc) (*State, error) {
	if root.Type() == cfr.ChanceNodeType {
		return nil, errors.New("root is a chance node")
	}

	return &State{node: root, child: child}, nil
}

func (s *State) IsTerminal() bool {
	return s.node.Type() == cfr.TerminalNodeType
}

func (s *State) Advance(i int) (spne.GameState[string, int, int], error) {
	if s.IsTerminal() {
		return nil, errors.Errorf("node %s is terminal", s)
	}
	if i < 0 || i >= s.node.NumChildren() {
		return nil, errors.Errorf("node %s has no child %d", s, i)
	}

	next := s.child(s.node, i)
	if next.Type() == cfr.ChanceNodeType {
		return nil, errors.Errorf("child %d of node %s is a chance node", i, s)
	}

	return &State{
		node:  next,
		path:  s.path + "/" + strconv.Itoa(i),
		child: s.child,
	}, nil
}

func (s *State) Actions() iter.Seq[int] {
	return func(yield func(int) bool) {
		if s.IsTerminal() {
			return
		}

		for i := 0; i < s.node.NumChildren(); i++ {
			if !yield(i) {
				return
			}
		}
	}
}

// InformationSet returns the path of child indices from the root.
func (s *State) InformationSet() string {
	return s.String()
}

func (s *State) Player() (int, bool) {
	if s.IsTerminal() {
		return 0, false
	}

	return s.node.Player(), true
}

// Outcome returns the utility of both players at terminal nodes.
func (s *State) Outcome() (spne.Outcome[int], bool) {
	if !s.IsTerminal() {
		return spne.Outcome[int]{}, false
	}

	return spne.NewOutcome(map[int]float64{
		0: s.node.Utility(0),
		1: s.node.Utility(1),
	}), true
}

// Close implements spne.Closer.
func (s *State) Close() {
	s.node.Close()
}

// String implements fmt.Stringer.
func (s *State) String() string {
	if s.path == "" {
		return "/"
	}

	return s.path
}
