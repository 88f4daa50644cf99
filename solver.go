package spne

import (
	"sync"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// Equilibrium is a subgame-perfect equilibrium found by backward induction.
type Equilibrium[I comparable, P comparable, A any] struct {
	Profile *PureStrategyProfile[I, A]
	// Outcome is the outcome realized when all players follow Profile
	// from the root.
	Outcome Outcome[P]
	// RootPlayer is the player acting at the root.
	RootPlayer P
	Stats      Stats
}

// RootUtility returns the utility realized by the root player.
func (e *Equilibrium[I, P, A]) RootUtility() float64 {
	u, _ := e.Outcome.Utility(e.RootPlayer)
	return u
}

// Solver computes subgame-perfect equilibria by backward induction.
// A Solver may be shared by multiple goroutines, each call to Solve
// runs sequentially on the calling goroutine.
type Solver[I comparable, P comparable, A any] struct {
	opts   options
	frames framePool[I, P, A]
}

func NewSolver[I comparable, P comparable, A any](opts ...Option) *Solver[I, P, A] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return &Solver[I, P, A]{opts: o}
}

// Solve returns one subgame-perfect equilibrium of the game rooted at root.
//
// Every decision node in the tree is visited exactly once. Successor
// states implementing Closer are closed once their subtree is resolved;
// root is left to the caller. At each node
// the action maximizing the acting player's utility is recorded; among
// actions with equal utility the first one yielded by Actions wins.
// If the game state violates its contract, Solve returns a
// *ContractViolation and no partial result.
func (s *Solver[I, P, A]) Solve(root GameState[I, P, A]) (*Equilibrium[I, P, A], error) {
	if root == nil {
		return nil, errors.New("root state is nil")
	}

	player, ok := root.Player()
	if !ok || root.IsTerminal() {
		return nil, violation(RootNotDecisionState, root, 0, nil)
	}

	start := s.opts.clock.Now()
	run := &induction[I, P, A]{
		opts:    s.opts,
		profile: NewPureStrategyProfile[I, A](),
		decided: make(map[I]struct{}),
		frames:  &s.frames,
	}

	var outcome Outcome[P]
	var err error
	if s.opts.recursive {
		outcome, err = run.evaluate(root, 0)
	} else {
		outcome, err = run.evaluateIteratively(root)
	}
	if err != nil {
		return nil, errors.Wrap(err, "backward induction failed")
	}

	run.stats.Elapsed = s.opts.clock.Now().Sub(start)
	glog.V(1).Infof("Solved game: %v", run.stats)
	return &Equilibrium[I, P, A]{
		Profile:    run.profile,
		Outcome:    outcome,
		RootPlayer: player,
		Stats:      run.stats,
	}, nil
}

// SubgamePerfectEquilibrium returns the strategy profile of one
// subgame-perfect equilibrium of the game rooted at root.
func SubgamePerfectEquilibrium[I comparable, P comparable, A any](root GameState[I, P, A], opts ...Option) (*PureStrategyProfile[I, A], error) {
	eq, err := NewSolver[I, P, A](opts...).Solve(root)
	if err != nil {
		return nil, err
	}

	return eq.Profile, nil
}

// Play follows profile from root until a terminal node is reached,
// returning the actions taken and the realized outcome.
func Play[I comparable, P comparable, A any](root GameState[I, P, A], profile *PureStrategyProfile[I, A]) (History[A], Outcome[P], error) {
	var history History[A]
	state := root
	for depth := 0; !state.IsTerminal(); depth++ {
		action, ok := profile.Action(state.InformationSet())
		if !ok {
			return history, Outcome[P]{}, violation(MissingAction, state, depth, nil)
		}

		next, err := state.Advance(action)
		if err != nil || next == nil {
			return history, Outcome[P]{}, violation(MissingSuccessor, state, depth, err)
		}

		history.Append(action)
		state = next
	}

	outcome, ok := state.Outcome()
	if !ok {
		return history, Outcome[P]{}, violation(MissingOutcome, state, history.Len(), nil)
	}

	return history, outcome, nil
}

// framePool recycles work stacks between solves.
type framePool[I comparable, P comparable, A any] struct {
	pool sync.Pool
}

func (p *framePool[I, P, A]) alloc() *[]frame[I, P, A] {
	if s, ok := p.pool.Get().(*[]frame[I, P, A]); ok {
		return s
	}

	s := make([]frame[I, P, A], 0)
	return &s
}

func (p *framePool[I, P, A]) free(s *[]frame[I, P, A]) {
	clear((*s)[:cap(*s)])
	*s = (*s)[:0]
	p.pool.Put(s)
}
