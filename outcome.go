package spne

import (
	"fmt"
	"sort"
	"strings"
)

// Outcome maps each player to the utility they realize at a node.
// Usually only terminal nodes have an Outcome. An Outcome is immutable
// once constructed.
type Outcome[P comparable] struct {
	utilities map[P]float64
}

// NewOutcome creates an Outcome from the given utilities.
// The map is copied, later changes to it are not observed.
func NewOutcome[P comparable](utilities map[P]float64) Outcome[P] {
	m := make(map[P]float64, len(utilities))
	for p, u := range utilities {
		m[p] = u
	}

	return Outcome[P]{utilities: m}
}

// Utility returns the utility realized by player p, if p has one.
func (o Outcome[P]) Utility(p P) (float64, bool) {
	u, ok := o.utilities[p]
	return u, ok
}

func (o Outcome[P]) Len() int {
	return len(o.utilities)
}

func (o Outcome[P]) IsZero() bool {
	return len(o.utilities) == 0
}

// Players returns the players with a utility in this Outcome, ordered
// by their string representation.
func (o Outcome[P]) Players() []P {
	result := make([]P, 0, len(o.utilities))
	for p := range o.utilities {
		result = append(result, p)
	}

	sort.Slice(result, func(i, j int) bool {
		return fmt.Sprint(result[i]) < fmt.Sprint(result[j])
	})

	return result
}

// Utilities returns a copy of the underlying player -> utility mapping.
func (o Outcome[P]) Utilities() map[P]float64 {
	m := make(map[P]float64, len(o.utilities))
	for p, u := range o.utilities {
		m[p] = u
	}

	return m
}

// Equal reports whether both Outcomes assign identical utilities to
// the same set of players.
func (o Outcome[P]) Equal(other Outcome[P]) bool {
	if len(o.utilities) != len(other.utilities) {
		return false
	}

	for p, u := range o.utilities {
		v, ok := other.utilities[p]
		if !ok || u != v {
			return false
		}
	}

	return true
}

// String implements fmt.Stringer.
func (o Outcome[P]) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, p := range o.Players() {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%v=%g", p, o.utilities[p])
	}
	sb.WriteByte(')')
	return sb.String()
}
