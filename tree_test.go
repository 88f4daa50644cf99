package spne

import (
	"fmt"
	"iter"
	"math/rand"
	"strconv"

	"github.com/pkg/errors"
)

// testNode is an explicitly constructed game tree node used in tests.
type testNode struct {
	name     string
	player   string
	infoSet  string
	terminal bool
	// broken nodes fail to advance.
	broken   bool
	payoff   map[string]float64
	children []testEdge
}

type testEdge struct {
	action string
	child  *testNode
}

func decision(name, player string, edges ...testEdge) *testNode {
	return &testNode{name: name, player: player, infoSet: name, children: edges}
}

func leaf(name string, payoff map[string]float64) *testNode {
	return &testNode{name: name, terminal: true, payoff: payoff}
}

func edge(action string, child *testNode) testEdge {
	return testEdge{action: action, child: child}
}

// testState implements GameState over a testNode tree.
type testState struct {
	node *testNode
}

var _ GameState[string, string, string] = testState{}

func (s testState) IsTerminal() bool {
	return s.node.terminal
}

func (s testState) Advance(action string) (GameState[string, string, string], error) {
	if s.node.terminal {
		return nil, errors.Errorf("cannot advance terminal node %s", s.node.name)
	}
	if s.node.broken {
		return nil, errors.Errorf("node %s is broken", s.node.name)
	}

	for _, e := range s.node.children {
		if e.action == action {
			return testState{e.child}, nil
		}
	}

	return nil, errors.Errorf("illegal action %q at %s", action, s.node.name)
}

func (s testState) Actions() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, e := range s.node.children {
			if !yield(e.action) {
				return
			}
		}
	}
}

func (s testState) InformationSet() string {
	return s.node.infoSet
}

func (s testState) Player() (string, bool) {
	return s.node.player, s.node.player != ""
}

func (s testState) Outcome() (Outcome[string], bool) {
	if s.node.payoff == nil {
		return Outcome[string]{}, false
	}

	return NewOutcome(s.node.payoff), true
}

func (s testState) String() string {
	return s.node.name
}

// ultimatumTree builds the two-stage ultimatum game.
func ultimatumTree() *testNode {
	return decision("initial", "proposer",
		edge("Fair", decision("after Fair", "responder",
			edge("Accept", leaf("fair-accept", map[string]float64{"proposer": 5, "responder": 5})),
			edge("Reject", leaf("fair-reject", map[string]float64{"proposer": 0, "responder": 0})),
		)),
		edge("Unfair", decision("after Unfair", "responder",
			edge("Accept", leaf("unfair-accept", map[string]float64{"proposer": 8, "responder": 2})),
			edge("Reject", leaf("unfair-reject", map[string]float64{"proposer": 0, "responder": 0})),
		)),
	)
}

// randomTree generates a two player game with small integer payoffs,
// so that ties between actions are common.
func randomTree(rng *rand.Rand, name string, depth int) *testNode {
	if depth == 0 || (name != "r" && rng.Intn(4) == 0) {
		return leaf(name, map[string]float64{
			"p0": float64(rng.Intn(4)),
			"p1": float64(rng.Intn(4)),
		})
	}

	player := "p" + strconv.Itoa(depth%2)
	n := decision(name, player)
	nChildren := 1 + rng.Intn(3)
	for i := 0; i < nChildren; i++ {
		action := fmt.Sprintf("a%d", i)
		n.children = append(n.children, edge(action, randomTree(rng, name+"/"+action, depth-1)))
	}

	return n
}

// walkDecisions calls f on every decision node in the tree.
func walkDecisions(n *testNode, f func(*testNode)) {
	if n.terminal {
		return
	}

	f(n)
	for _, e := range n.children {
		walkDecisions(e.child, f)
	}
}

// trackingLog records how a solver uses the states it is given.
type trackingLog struct {
	// ranged counts the action sequences consumed per node.
	ranged map[*testNode]int
	closed map[*testNode]int
	errors []string
}

func newTrackingLog() *trackingLog {
	return &trackingLog{
		ranged: make(map[*testNode]int),
		closed: make(map[*testNode]int),
	}
}

func (l *trackingLog) state(n *testNode) *trackedState {
	return &trackedState{testState: testState{n}, log: l}
}

// trackedState is a testState whose action sequences may only be ranged
// over once, and which records when it is closed.
type trackedState struct {
	testState
	log *trackingLog
}

func (s *trackedState) Advance(action string) (GameState[string, string, string], error) {
	if s.log.closed[s.node] > 0 {
		s.log.errors = append(s.log.errors, "advance after close at "+s.node.name)
	}

	next, err := s.testState.Advance(action)
	if err != nil {
		return nil, err
	}

	return s.log.state(next.(testState).node), nil
}

func (s *trackedState) Actions() iter.Seq[string] {
	used := false
	return func(yield func(string) bool) {
		if used {
			s.log.errors = append(s.log.errors, "actions ranged twice at "+s.node.name)
			return
		}
		used = true
		s.log.ranged[s.node]++

		for _, e := range s.node.children {
			if !yield(e.action) {
				return
			}
		}
	}
}

func (s *trackedState) Close() {
	for _, e := range s.node.children {
		if s.log.closed[e.child] == 0 {
			s.log.errors = append(s.log.errors, "closed before child "+e.child.name)
		}
	}

	s.log.closed[s.node]++
}
