package spne

import (
	"iter"
	"math/rand"
	"testing"

	"github.com/coder/quartz"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type engine struct {
	name string
	opts []Option
}

var engines = []engine{
	{name: "work stack"},
	{name: "recursive", opts: []Option{WithRecursion()}},
}

func solve(t *testing.T, root *testNode, opts ...Option) *Equilibrium[string, string, string] {
	t.Helper()
	eq, err := NewSolver[string, string, string](opts...).Solve(testState{root})
	require.NoError(t, err)
	return eq
}

func TestUltimatumGame(t *testing.T) {
	for _, e := range engines {
		t.Run(e.name, func(t *testing.T) {
			eq := solve(t, ultimatumTree(), e.opts...)

			expected := map[string]string{
				"initial":      "Unfair",
				"after Fair":   "Accept",
				"after Unfair": "Accept",
			}
			assert.Equal(t, len(expected), eq.Profile.Len())
			for is, want := range expected {
				got, ok := eq.Profile.Action(is)
				assert.True(t, ok, "no action recorded for %q", is)
				assert.Equal(t, want, got, "information set %q", is)
			}

			assert.Equal(t, "proposer", eq.RootPlayer)
			assert.Equal(t, 8.0, eq.RootUtility())
			responder, _ := eq.Outcome.Utility("responder")
			assert.Equal(t, 2.0, responder)
		})
	}
}

func TestSubgamePerfectEquilibrium(t *testing.T) {
	profile, err := SubgamePerfectEquilibrium[string, string, string](testState{ultimatumTree()})
	require.NoError(t, err)
	action, ok := profile.Action("initial")
	require.True(t, ok)
	assert.Equal(t, "Unfair", action)

	_, ok = profile.Action("never visited")
	assert.False(t, ok)
}

func TestTieBreakKeepsFirstAction(t *testing.T) {
	root := decision("root", "p0",
		edge("low", leaf("l", map[string]float64{"p0": 1})),
		edge("first", leaf("f", map[string]float64{"p0": 3})),
		edge("second", leaf("s", map[string]float64{"p0": 3})),
		edge("third", leaf("t", map[string]float64{"p0": 2})),
	)

	for _, e := range engines {
		t.Run(e.name, func(t *testing.T) {
			eq := solve(t, root, e.opts...)
			action, _ := eq.Profile.Action("root")
			assert.Equal(t, "first", action)
			assert.Equal(t, 3.0, eq.RootUtility())
		})
	}
}

func TestTerminalOutcomeReturnedVerbatim(t *testing.T) {
	payoff := map[string]float64{"p0": 1.5, "p1": -2.25, "observer": 42}
	root := decision("root", "p0",
		edge("only", leaf("end", payoff)),
	)

	for _, e := range engines {
		t.Run(e.name, func(t *testing.T) {
			eq := solve(t, root, e.opts...)
			assert.True(t, eq.Outcome.Equal(NewOutcome(payoff)), "got %v", eq.Outcome)
		})
	}
}

func TestDeterminism(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		root := randomTree(rand.New(rand.NewSource(seed)), "r", 6)
		first := solve(t, root)
		second := solve(t, root)

		assert.Equal(t, first.Profile, second.Profile, "seed %d", seed)
		assert.Equal(t, first.RootUtility(), second.RootUtility(), "seed %d", seed)
		assert.True(t, first.Outcome.Equal(second.Outcome), "seed %d", seed)
	}
}

func TestEnginesAgree(t *testing.T) {
	for seed := int64(0); seed < 50; seed++ {
		root := randomTree(rand.New(rand.NewSource(seed)), "r", 7)
		iterative := solve(t, root)
		recursive := solve(t, root, WithRecursion())

		assert.Equal(t, iterative.Profile, recursive.Profile, "seed %d", seed)
		assert.True(t, iterative.Outcome.Equal(recursive.Outcome), "seed %d", seed)
		assert.Equal(t, iterative.Stats.NodesVisited, recursive.Stats.NodesVisited, "seed %d", seed)
		assert.Equal(t, iterative.Stats.MaxDepth, recursive.Stats.MaxDepth, "seed %d", seed)
	}
}

func TestOneShotDeviationOptimality(t *testing.T) {
	for seed := int64(100); seed < 130; seed++ {
		root := randomTree(rand.New(rand.NewSource(seed)), "r", 6)
		eq := solve(t, root)

		walkDecisions(root, func(n *testNode) {
			chosen, ok := eq.Profile.Action(n.infoSet)
			require.True(t, ok, "seed %d: no action at %s", seed, n.name)

			values := make(map[string]float64, len(n.children))
			for _, e := range n.children {
				_, outcome, err := Play[string, string, string](testState{e.child}, eq.Profile)
				require.NoError(t, err)
				values[e.action], _ = outcome.Utility(n.player)
			}

			for action, v := range values {
				assert.GreaterOrEqual(t, values[chosen], v,
					"seed %d: deviating from %s to %s at %s is profitable", seed, chosen, action, n.name)
			}

			// Ties are broken in favor of the first action.
			for _, e := range n.children {
				if e.action == chosen {
					break
				}
				assert.Less(t, values[e.action], values[chosen],
					"seed %d: earlier action %s ties with %s at %s", seed, e.action, chosen, n.name)
			}
		})
	}
}

func TestContractViolations(t *testing.T) {
	ok := map[string]float64{"p0": 1, "p1": 1}
	testCases := []struct {
		name string
		root *testNode
		opts []Option
		kind Kind
	}{
		{
			name: "root is terminal",
			root: leaf("end", ok),
			kind: RootNotDecisionState,
		},
		{
			name: "terminal root reporting a player",
			root: &testNode{name: "end", player: "p0", infoSet: "end", terminal: true, payoff: ok},
			kind: RootNotDecisionState,
		},
		{
			name: "non-terminal without player",
			root: decision("root", "p0",
				edge("a", &testNode{name: "orphan", infoSet: "orphan",
					children: []testEdge{edge("x", leaf("end", ok))}}),
			),
			kind: MissingPlayer,
		},
		{
			name: "empty action set",
			root: decision("root", "p0",
				edge("a", decision("stuck", "p1")),
			),
			kind: EmptyActionSet,
		},
		{
			name: "advance fails",
			root: decision("root", "p0",
				edge("a", &testNode{name: "broken", player: "p1", infoSet: "broken", broken: true,
					children: []testEdge{edge("x", leaf("end", ok))}}),
			),
			kind: MissingSuccessor,
		},
		{
			name: "terminal without outcome",
			root: decision("root", "p0",
				edge("a", leaf("end", nil)),
			),
			kind: MissingOutcome,
		},
		{
			name: "outcome without acting player",
			root: decision("root", "p0",
				edge("a", leaf("end", map[string]float64{"p1": 3})),
			),
			kind: MissingOutcome,
		},
		{
			name: "shared information set",
			root: decision("root", "p0",
				edge("a", &testNode{name: "left", player: "p1", infoSet: "shared",
					children: []testEdge{edge("x", leaf("l", ok))}}),
				edge("b", &testNode{name: "right", player: "p1", infoSet: "shared",
					children: []testEdge{edge("x", leaf("r", ok))}}),
			),
			kind: SharedInformationSet,
		},
		{
			name: "depth exceeded",
			root: decision("root", "p0",
				edge("a", decision("mid", "p1",
					edge("b", leaf("end", ok)))),
			),
			opts: []Option{WithMaxDepth(1)},
			kind: DepthExceeded,
		},
	}

	for _, e := range engines {
		for _, tc := range testCases {
			t.Run(e.name+"/"+tc.name, func(t *testing.T) {
				opts := append(append([]Option{}, tc.opts...), e.opts...)
				eq, err := NewSolver[string, string, string](opts...).Solve(testState{tc.root})
				require.Error(t, err)
				assert.Nil(t, eq)
				assert.True(t, errors.Is(err, tc.kind), "expected %v, got %v", tc.kind, err)
				assert.Equal(t, tc.kind, KindOf(err))

				var cv *ContractViolation
				require.True(t, errors.As(err, &cv))
				assert.NotEmpty(t, cv.Node)
			})
		}
	}
}

func TestSharedInformationSetsAllowed(t *testing.T) {
	root := decision("root", "p0",
		edge("a", &testNode{name: "left", player: "p1", infoSet: "shared", children: []testEdge{
			edge("x", leaf("lx", map[string]float64{"p0": 0, "p1": 2})),
			edge("y", leaf("ly", map[string]float64{"p0": 0, "p1": 1})),
		}}),
		edge("b", &testNode{name: "right", player: "p1", infoSet: "shared", children: []testEdge{
			edge("x", leaf("rx", map[string]float64{"p0": 1, "p1": 0})),
			edge("y", leaf("ry", map[string]float64{"p0": 1, "p1": 5})),
		}}),
	)

	for _, e := range engines {
		t.Run(e.name, func(t *testing.T) {
			eq := solve(t, root, append([]Option{WithSharedInformationSets()}, e.opts...)...)
			// The last node visited in the shared set determines its action.
			action, _ := eq.Profile.Action("shared")
			assert.Equal(t, "y", action)
		})
	}
}

func TestMissingSuccessorReportsNode(t *testing.T) {
	root := decision("root", "p0",
		edge("a", &testNode{name: "broken", player: "p1", infoSet: "broken", broken: true,
			children: []testEdge{edge("x", leaf("end", map[string]float64{"p0": 1}))}}),
	)

	_, err := NewSolver[string, string, string]().Solve(testState{root})
	var cv *ContractViolation
	require.True(t, errors.As(err, &cv))
	assert.Equal(t, "broken", cv.Node)
	assert.Equal(t, 1, cv.Depth)
	assert.Contains(t, err.Error(), "node broken is broken")
}

func TestStats(t *testing.T) {
	clock := quartz.NewMock(t)
	eq := solve(t, ultimatumTree(), WithClock(clock))

	assert.Equal(t, 7, eq.Stats.NodesVisited)
	assert.Equal(t, 4, eq.Stats.TerminalNodes)
	assert.Equal(t, 3, eq.Stats.DecisionNodes)
	assert.Equal(t, 2, eq.Stats.MaxDepth)
	assert.Zero(t, eq.Stats.Elapsed)
}

// chainState is a lazily generated game in which p0 may stop at every
// step or continue further down the chain. Continuing always pays more.
type chainState struct {
	step, length int
	stopped      bool
}

func (s chainState) IsTerminal() bool {
	return s.stopped || s.step == s.length
}

func (s chainState) Advance(action bool) (GameState[int, string, bool], error) {
	if s.IsTerminal() {
		return nil, errors.New("game over")
	}
	if action {
		return chainState{step: s.step + 1, length: s.length}, nil
	}

	return chainState{step: s.step, length: s.length, stopped: true}, nil
}

func (s chainState) Actions() iter.Seq[bool] {
	return func(yield func(bool) bool) {
		_ = yield(false) && yield(true)
	}
}

func (s chainState) InformationSet() int {
	return s.step
}

func (s chainState) Player() (string, bool) {
	return "p0", !s.IsTerminal()
}

func (s chainState) Outcome() (Outcome[string], bool) {
	return NewOutcome(map[string]float64{"p0": float64(s.step)}), s.IsTerminal()
}

func TestDeepTree(t *testing.T) {
	const length = 100000
	eq, err := NewSolver[int, string, bool]().Solve(chainState{length: length})
	require.NoError(t, err)

	assert.Equal(t, float64(length), eq.RootUtility())
	assert.Equal(t, length, eq.Profile.Len())
	assert.Equal(t, length, eq.Stats.MaxDepth)
	for step := 0; step < length; step += 1000 {
		action, ok := eq.Profile.Action(step)
		require.True(t, ok)
		require.True(t, action, "step %d", step)
	}
}

func TestPlay(t *testing.T) {
	root := testState{ultimatumTree()}
	eq := solve(t, ultimatumTree())

	history, outcome, err := Play[string, string, string](root, eq.Profile)
	require.NoError(t, err)
	assert.Equal(t, []string{"Unfair", "Accept"}, history.AsSlice())
	assert.True(t, outcome.Equal(eq.Outcome))

	partial := NewPureStrategyProfile[string, string]()
	partial.Insert("initial", "Fair")
	history, _, err = Play[string, string, string](root, partial)
	assert.True(t, errors.Is(err, MissingAction), "got %v", err)
	assert.Equal(t, []string{"Fair"}, history.AsSlice())
}

func TestNilRoot(t *testing.T) {
	_, err := NewSolver[string, string, string]().Solve(nil)
	assert.Error(t, err)
	assert.Zero(t, KindOf(err))
}

func TestSuccessorsClosedAfterResolution(t *testing.T) {
	for _, e := range engines {
		t.Run(e.name, func(t *testing.T) {
			for seed := int64(0); seed < 10; seed++ {
				root := randomTree(rand.New(rand.NewSource(seed)), "r", 6)
				log := newTrackingLog()
				_, err := NewSolver[string, string, string](e.opts...).Solve(log.state(root))
				require.NoError(t, err)

				assert.Zero(t, log.closed[root], "seed %d: root was closed", seed)
				var check func(n *testNode)
				check = func(n *testNode) {
					for _, c := range n.children {
						assert.Equal(t, 1, log.closed[c.child], "seed %d: %s", seed, c.child.name)
						check(c.child)
					}
				}
				check(root)
				assert.Empty(t, log.errors, "seed %d", seed)
			}
		})
	}
}

func TestActionsConsumedOnce(t *testing.T) {
	for _, e := range engines {
		t.Run(e.name, func(t *testing.T) {
			root := randomTree(rand.New(rand.NewSource(7)), "r", 6)
			log := newTrackingLog()
			eq, err := NewSolver[string, string, string](e.opts...).Solve(log.state(root))
			require.NoError(t, err)
			assert.Empty(t, log.errors)

			walkDecisions(root, func(n *testNode) {
				assert.Equal(t, 1, log.ranged[n], "actions at %s", n.name)
			})

			expected := solve(t, root, e.opts...)
			assert.Equal(t, expected.Profile, eq.Profile)
		})
	}
}

func TestFramePoolResetsStacks(t *testing.T) {
	var pool framePool[string, string, string]
	s := pool.alloc()
	*s = append(*s, frame[string, string, string]{depth: 3, actions: []string{"a"}})
	*s = append(*s, frame[string, string, string]{depth: 4})
	backing := (*s)[:2]

	pool.free(s)
	assert.Empty(t, *s)
	assert.Equal(t, frame[string, string, string]{}, backing[0])
	assert.Equal(t, frame[string, string, string]{}, backing[1])
}
