// Package gametree materializes extensive-form game trees in memory.
//
// The solver in package spne never retains the tree it evaluates. A Tree
// is useful when a game is small enough to be inspected as a whole, for
// example to render it along with an equilibrium.
package gametree

import (
	"iter"

	"github.com/pkg/errors"

	"github.com/timpalpant/spne"
)

// NodeIndex identifies a node within a Tree.
type NodeIndex int

// NoNode is returned as the parent of the root.
const NoNode NodeIndex = -1

// Node is a single materialized game state.
type Node[I comparable, P comparable, A comparable] struct {
	State spne.GameState[I, P, A]
	// Action is the action taken at Parent to reach this node.
	Action A
	Parent NodeIndex
	Depth  int

	// children are the states reachable by one action, in the order
	// the actions were yielded.
	children []NodeIndex
}

// Tree is a fully materialized game tree.
type Tree[I comparable, P comparable, A comparable] struct {
	nodes []Node[I, P, A]
}

// Build materializes the tree rooted at root breadth-first. It fails if
// the tree has more than maxNodes nodes (zero means unlimited).
func Build[I comparable, P comparable, A comparable](root spne.GameState[I, P, A], maxNodes int) (*Tree[I, P, A], error) {
	t := &Tree[I, P, A]{}
	t.nodes = append(t.nodes, Node[I, P, A]{State: root, Parent: NoNode})
	for i := 0; i < len(t.nodes); i++ {
		state := t.nodes[i].State
		if state.IsTerminal() {
			continue
		}

		for action := range state.Actions() {
			child, err := state.Advance(action)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to expand node %d", i)
			}

			if maxNodes > 0 && len(t.nodes) >= maxNodes {
				return nil, errors.Errorf("game tree has more than %d nodes", maxNodes)
			}

			idx := NodeIndex(len(t.nodes))
			t.nodes = append(t.nodes, Node[I, P, A]{
				State:  child,
				Action: action,
				Parent: NodeIndex(i),
				Depth:  t.nodes[i].Depth + 1,
			})
			t.nodes[i].children = append(t.nodes[i].children, idx)
		}
	}

	return t, nil
}

func (t *Tree[I, P, A]) Root() NodeIndex {
	return 0
}

func (t *Tree[I, P, A]) Len() int {
	return len(t.nodes)
}

// Node returns the node at idx.
func (t *Tree[I, P, A]) Node(idx NodeIndex) *Node[I, P, A] {
	return &t.nodes[idx]
}

func (t *Tree[I, P, A]) Children(idx NodeIndex) []NodeIndex {
	return t.nodes[idx].children
}

// Parent returns the parent of idx, or NoNode for the root.
func (t *Tree[I, P, A]) Parent(idx NodeIndex) NodeIndex {
	return t.nodes[idx].Parent
}

// Predecessors iterates over the ancestors of idx, starting from its
// parent and ending at the root.
func (t *Tree[I, P, A]) Predecessors(idx NodeIndex) iter.Seq[NodeIndex] {
	return func(yield func(NodeIndex) bool) {
		for p := t.nodes[idx].Parent; p != NoNode; p = t.nodes[p].Parent {
			if !yield(p) {
				return
			}
		}
	}
}

// TerminalNodes returns every node without children.
func (t *Tree[I, P, A]) TerminalNodes() []NodeIndex {
	var result []NodeIndex
	for i := range t.nodes {
		if len(t.nodes[i].children) == 0 {
			result = append(result, NodeIndex(i))
		}
	}

	return result
}

// History returns the actions taken from the root to reach idx.
func (t *Tree[I, P, A]) History(idx NodeIndex) spne.History[A] {
	var reversed []A
	for n := idx; t.nodes[n].Parent != NoNode; n = t.nodes[n].Parent {
		reversed = append(reversed, t.nodes[n].Action)
	}

	var h spne.History[A]
	for i := len(reversed) - 1; i >= 0; i-- {
		h.Append(reversed[i])
	}

	return h
}

// OnPath reports whether the edge into idx is chosen by profile.
func (t *Tree[I, P, A]) OnPath(idx NodeIndex, profile *spne.PureStrategyProfile[I, A]) bool {
	n := &t.nodes[idx]
	if n.Parent == NoNode || profile == nil {
		return false
	}

	chosen, ok := profile.Action(t.nodes[n.Parent].State.InformationSet())
	return ok && chosen == n.Action
}

// MaxDepth returns the length of the longest history in the tree.
func (t *Tree[I, P, A]) MaxDepth() int {
	depth := 0
	for i := range t.nodes {
		depth = max(depth, t.nodes[i].Depth)
	}

	return depth
}
