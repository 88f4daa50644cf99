package spne

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies the ways a GameState implementation can violate the
// contract the solver relies on. A Kind is itself an error, so callers
// may test for it with errors.Is(err, spne.MissingPlayer).
type Kind uint8

const (
	_ Kind = iota
	// A non-terminal node reported no acting player.
	MissingPlayer
	// Advance failed to produce a successor.
	MissingSuccessor
	// A non-terminal node offered no actions.
	EmptyActionSet
	// The root passed to the solver is terminal.
	RootNotDecisionState
	// A terminal node has no outcome, or its outcome has no utility
	// for the player acting at its parent.
	MissingOutcome
	// Two distinct nodes share an information set.
	SharedInformationSet
	// The tree is deeper than the configured bound.
	DepthExceeded
	// A profile has no action for an information set reached in play.
	MissingAction
)

var kindStr = [...]string{
	"Invalid",
	"MissingPlayer",
	"MissingSuccessor",
	"EmptyActionSet",
	"RootNotDecisionState",
	"MissingOutcome",
	"SharedInformationSet",
	"DepthExceeded",
	"MissingAction",
}

func (k Kind) String() string {
	if int(k) >= len(kindStr) {
		return fmt.Sprintf("Kind(%d)", k)
	}

	return kindStr[k]
}

func (k Kind) Error() string {
	return k.String()
}

// ContractViolation is returned when a GameState breaks the solver's
// contract. It identifies the failed invariant and the node it failed at.
type ContractViolation struct {
	Kind Kind
	// Node describes the offending state.
	Node string
	// Depth is the number of actions from the root to Node.
	Depth int
	// Err is the underlying cause, if any (e.g. the error from Advance).
	Err error
}

func (cv *ContractViolation) Error() string {
	msg := fmt.Sprintf("%v at %s (depth %d)", cv.Kind, cv.Node, cv.Depth)
	if cv.Err != nil {
		msg += ": " + cv.Err.Error()
	}

	return msg
}

// Is matches a ContractViolation against its Kind.
func (cv *ContractViolation) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == cv.Kind
}

func (cv *ContractViolation) Unwrap() error {
	return cv.Err
}

// KindOf returns the Kind of the ContractViolation in err's chain,
// or zero if there is none.
func KindOf(err error) Kind {
	var cv *ContractViolation
	if errors.As(err, &cv) {
		return cv.Kind
	}

	return 0
}

func violation[I comparable, P comparable, A any](kind Kind, state GameState[I, P, A], depth int, cause error) error {
	return errors.WithStack(&ContractViolation{
		Kind:  kind,
		Node:  describe(state),
		Depth: depth,
		Err:   cause,
	})
}
