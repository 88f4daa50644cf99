package spne

import (
	"slices"

	"github.com/pkg/errors"
)

// induction holds the state of a single backward induction run.
type induction[I comparable, P comparable, A any] struct {
	opts    options
	profile *PureStrategyProfile[I, A]
	// decided holds every information set a decision has been made at.
	decided map[I]struct{}
	stats   Stats
	frames  *framePool[I, P, A]
}

// frame is an unresolved decision node.
type frame[I comparable, P comparable, A any] struct {
	state   GameState[I, P, A]
	depth   int
	player  P
	infoSet I

	// actions are drained from the state once, when the frame is pushed.
	actions []A
	next    int

	best        Outcome[P]
	bestUtility float64
	hasBest     bool
}

// enter validates a newly visited state. It returns the state's Outcome
// if it is terminal, or a frame to resolve otherwise.
func (r *induction[I, P, A]) enter(state GameState[I, P, A], depth int) (Outcome[P], frame[I, P, A], bool, error) {
	r.stats.visit(depth)
	if r.opts.maxDepth > 0 && depth > r.opts.maxDepth {
		return Outcome[P]{}, frame[I, P, A]{}, false, violation(DepthExceeded, state, depth,
			errors.Errorf("limit is %d", r.opts.maxDepth))
	}

	if state.IsTerminal() {
		r.stats.terminal()
		outcome, ok := state.Outcome()
		if !ok {
			return Outcome[P]{}, frame[I, P, A]{}, false, violation(MissingOutcome, state, depth, nil)
		}

		return outcome, frame[I, P, A]{}, true, nil
	}

	r.stats.decision()
	player, ok := state.Player()
	if !ok {
		return Outcome[P]{}, frame[I, P, A]{}, false, violation(MissingPlayer, state, depth, nil)
	}

	infoSet := state.InformationSet()
	if !r.opts.sharedInfoSets {
		if _, seen := r.decided[infoSet]; seen {
			return Outcome[P]{}, frame[I, P, A]{}, false, violation(SharedInformationSet, state, depth,
				errors.Errorf("information set %v was already decided at another node", infoSet))
		}
		r.decided[infoSet] = struct{}{}
	}

	return Outcome[P]{}, frame[I, P, A]{
		state:   state,
		depth:   depth,
		player:  player,
		infoSet: infoSet,
	}, false, nil
}

// consider folds the outcome of taking action at f into f's best response.
// Only a strictly greater utility replaces the current best, so ties are
// broken in favor of the action yielded first.
func (r *induction[I, P, A]) consider(f *frame[I, P, A], action A, outcome Outcome[P], successor GameState[I, P, A]) error {
	u, ok := outcome.Utility(f.player)
	if !ok {
		return violation(MissingOutcome, successor, f.depth+1,
			errors.Errorf("no utility for player %v", f.player))
	}

	if !f.hasBest || u > f.bestUtility {
		f.best = outcome
		f.bestUtility = u
		f.hasBest = true
		r.profile.Insert(f.infoSet, action)
	}

	return nil
}

func (r *induction[I, P, A]) resolve(f *frame[I, P, A]) (Outcome[P], error) {
	if !f.hasBest {
		return Outcome[P]{}, violation(EmptyActionSet, f.state, f.depth, nil)
	}

	return f.best, nil
}

func (r *induction[I, P, A]) advance(f *frame[I, P, A], action A) (GameState[I, P, A], error) {
	successor, err := f.state.Advance(action)
	if err != nil {
		return nil, violation(MissingSuccessor, f.state, f.depth, err)
	}
	if successor == nil {
		return nil, violation(MissingSuccessor, f.state, f.depth,
			errors.Errorf("advance(%v) returned no state", action))
	}

	return successor, nil
}

// evaluate resolves the subtree rooted at state using the call stack.
func (r *induction[I, P, A]) evaluate(state GameState[I, P, A], depth int) (Outcome[P], error) {
	outcome, f, terminal, err := r.enter(state, depth)
	if err != nil || terminal {
		return outcome, err
	}

	for action := range state.Actions() {
		successor, err := r.advance(&f, action)
		if err != nil {
			return Outcome[P]{}, err
		}

		outcome, err := r.evaluate(successor, depth+1)
		if err != nil {
			return Outcome[P]{}, err
		}

		err = r.consider(&f, action, outcome, successor)
		release(successor)
		if err != nil {
			return Outcome[P]{}, err
		}
	}

	return r.resolve(&f)
}

// evaluateIteratively resolves the subtree rooted at root in post-order
// using an explicit work stack, so that the depth of the tree is
// limited only by available memory.
func (r *induction[I, P, A]) evaluateIteratively(root GameState[I, P, A]) (Outcome[P], error) {
	outcome, f, terminal, err := r.enter(root, 0)
	if err != nil || terminal {
		return outcome, err
	}

	pooled := r.frames.alloc()
	stack := *pooled
	defer func() {
		*pooled = stack
		r.frames.free(pooled)
	}()

	f.actions = slices.Collect(root.Actions())
	stack = append(stack, f)
	for {
		top := &stack[len(stack)-1]
		if top.next == len(top.actions) {
			// All children resolved, pop and report to the parent.
			resolved, err := r.resolve(top)
			if err != nil {
				return Outcome[P]{}, err
			}

			child := top.state
			stack[len(stack)-1] = frame[I, P, A]{}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return resolved, nil
			}

			parent := &stack[len(stack)-1]
			err = r.consider(parent, parent.actions[parent.next-1], resolved, child)
			release(child)
			if err != nil {
				return Outcome[P]{}, err
			}

			continue
		}

		action := top.actions[top.next]
		top.next++
		successor, err := r.advance(top, action)
		if err != nil {
			return Outcome[P]{}, err
		}

		outcome, f, terminal, err := r.enter(successor, top.depth+1)
		if err != nil {
			return Outcome[P]{}, err
		}

		if terminal {
			err := r.consider(top, action, outcome, successor)
			release(successor)
			if err != nil {
				return Outcome[P]{}, err
			}
			continue
		}

		f.actions = slices.Collect(successor.Actions())
		stack = append(stack, f)
	}
}
