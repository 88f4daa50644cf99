package cfrgame

import (
	"expvar"
	"fmt"
	"slices"

	"github.com/pkg/errors"
	"github.com/timpalpant/go-cfr"

	"github.com/timpalpant/spne"
)

var nodesReleased = expvar.NewInt("cfrgame/nodes_released")

// Export exposes a two player game as a go-cfr game tree. players lists
// the players in go-cfr order. Children are expanded on demand and
// released by Close.
//
// The go-cfr interface cannot report errors, so the returned tree panics
// if the game violates the spne.GameState contract or if a player other
// than those in players acts.
func Export[I comparable, P comparable, A any](root spne.GameState[I, P, A], players [2]P) cfr.GameTreeNode {
	return &exportedNode[I, P, A]{state: root, players: players}
}

type exportedNode[I comparable, P comparable, A any] struct {
	state    spne.GameState[I, P, A]
	players  [2]P
	parent   *exportedNode[I, P, A]
	children []exportedNode[I, P, A]
}

var _ cfr.GameTreeNode = &exportedNode[string, string, string]{}

// Type implements cfr.GameTreeNode.
func (n *exportedNode[I, P, A]) Type() cfr.NodeType {
	if n.state.IsTerminal() {
		return cfr.TerminalNodeType
	}

	return cfr.PlayerNodeType
}

// Player implements cfr.GameTreeNode.
func (n *exportedNode[I, P, A]) Player() int {
	p, ok := n.state.Player()
	if !ok {
		panic(fmt.Sprintf("no player at node %v", n))
	}

	i := slices.Index(n.players[:], p)
	if i < 0 {
		panic(fmt.Sprintf("unexpected player %v at node %v", p, n))
	}

	return i
}

// InfoSet implements cfr.GameTreeNode.
func (n *exportedNode[I, P, A]) InfoSet(player int) cfr.InfoSet {
	return &InfoSet{key: fmt.Sprint(n.state.InformationSet())}
}

// Utility implements cfr.GameTreeNode.
func (n *exportedNode[I, P, A]) Utility(player int) float64 {
	if !n.state.IsTerminal() {
		panic("cannot get the utility of a non-terminal node")
	}

	outcome, ok := n.state.Outcome()
	if !ok {
		panic(fmt.Sprintf("no outcome at node %v", n))
	}

	u, ok := outcome.Utility(n.players[player])
	if !ok {
		panic(fmt.Sprintf("no utility for player %v at node %v", n.players[player], n))
	}

	return u
}

func (n *exportedNode[I, P, A]) buildChildren() {
	for action := range n.state.Actions() {
		next, err := n.state.Advance(action)
		if err != nil {
			panic(errors.Wrapf(err, "failed to expand node %v", n))
		}

		n.children = append(n.children, exportedNode[I, P, A]{
			state:   next,
			players: n.players,
			parent:  n,
		})
	}
}

// NumChildren implements cfr.GameTreeNode.
func (n *exportedNode[I, P, A]) NumChildren() int {
	if n.children == nil && !n.state.IsTerminal() {
		n.buildChildren()
	}

	return len(n.children)
}

// GetChild implements cfr.GameTreeNode.
func (n *exportedNode[I, P, A]) GetChild(i int) cfr.GameTreeNode {
	if n.children == nil {
		n.buildChildren()
	}

	return &n.children[i]
}

func (n *exportedNode[I, P, A]) Parent() cfr.GameTreeNode {
	if n.parent == nil {
		return nil
	}

	return n.parent
}

// GetChildProbability implements cfr.GameTreeNode.
func (n *exportedNode[I, P, A]) GetChildProbability(i int) float64 {
	panic("cannot get the probability of a non-chance node")
}

// SampleChild implements cfr.GameTreeNode.
func (n *exportedNode[I, P, A]) SampleChild() (cfr.GameTreeNode, float64) {
	panic("cannot sample the child of a non-chance node")
}

// Close implements cfr.GameTreeNode.
func (n *exportedNode[I, P, A]) Close() {
	nodesReleased.Add(int64(len(n.children)))
	n.children = nil
}

// String implements fmt.Stringer.
func (n *exportedNode[I, P, A]) String() string {
	return fmt.Sprint(n.state)
}

// InfoSet identifies a node of an exported game by its information set.
type InfoSet struct {
	key string
}

// Key implements cfr.InfoSet.
func (is *InfoSet) Key() string {
	return is.key
}

func (is *InfoSet) MarshalBinary() ([]byte, error) {
	return []byte(is.key), nil
}

func (is *InfoSet) UnmarshalBinary(buf []byte) error {
	is.key = string(buf)
	return nil
}
