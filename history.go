package spne

import (
	"fmt"
	"strings"
)

// History is the sequence of actions taken from the root of the game
// up until the current node.
type History[A any] struct {
	actions []A
}

func NewHistoryFromActions[A any](actions []A) History[A] {
	h := History[A]{}
	for _, a := range actions {
		h.Append(a)
	}

	return h
}

func (h *History[A]) Append(action A) {
	h.actions = append(h.actions, action)
}

func (h History[A]) Len() int {
	return len(h.actions)
}

// At returns the i'th action taken, starting from the root.
func (h History[A]) At(i int) A {
	return h.actions[i]
}

// AsSlice returns a copy of the actions in the History.
func (h History[A]) AsSlice() []A {
	result := make([]A, len(h.actions))
	copy(result, h.actions)
	return result
}

// String implements fmt.Stringer.
func (h History[A]) String() string {
	parts := make([]string, len(h.actions))
	for i, a := range h.actions {
		parts[i] = fmt.Sprint(a)
	}

	return "[" + strings.Join(parts, " ") + "]"
}
