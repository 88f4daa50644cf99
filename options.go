package spne

import (
	"github.com/coder/quartz"
)

type options struct {
	recursive      bool
	sharedInfoSets bool
	maxDepth       int
	clock          quartz.Clock
}

func defaultOptions() options {
	return options{
		clock: quartz.NewReal(),
	}
}

// Option configures a Solver.
type Option func(*options)

// WithRecursion evaluates the game tree on the goroutine's call stack
// instead of an explicit work stack. The result is identical, but the
// recursion depth is bounded by the maximum goroutine stack size.
func WithRecursion() Option {
	return func(o *options) {
		o.recursive = true
	}
}

// WithSharedInformationSets allows multiple nodes to share an information
// set. By default the solver fails with SharedInformationSet, since the
// result is then no longer guaranteed to be an equilibrium: the profile
// holds the choice made at the last such node visited.
func WithSharedInformationSets() Option {
	return func(o *options) {
		o.sharedInfoSets = true
	}
}

// WithMaxDepth fails the solve with DepthExceeded if any history is
// longer than n actions. Zero means unbounded.
func WithMaxDepth(n int) Option {
	return func(o *options) {
		o.maxDepth = n
	}
}

// WithClock sets the clock used to time solves.
func WithClock(clock quartz.Clock) Option {
	return func(o *options) {
		o.clock = clock
	}
}
