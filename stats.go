package spne

import (
	"expvar"
	"fmt"
	"time"

	"github.com/golang/glog"
)

var (
	nodesVisited         = expvar.NewInt("nodes_visited")
	terminalNodesVisited = expvar.NewInt("nodes_visited/terminal")
	playerNodesVisited   = expvar.NewInt("nodes_visited/player")
)

// Log progress every time this many nodes have been visited.
const progressInterval = 10000000

// Stats summarizes a single solver run.
type Stats struct {
	NodesVisited  int
	TerminalNodes int
	DecisionNodes int
	// MaxDepth is the length of the longest history visited.
	MaxDepth int
	Elapsed  time.Duration
}

func (s *Stats) visit(depth int) {
	s.NodesVisited++
	nodesVisited.Add(1)
	if depth > s.MaxDepth {
		s.MaxDepth = depth
	}

	if s.NodesVisited%progressInterval == 0 {
		glog.V(1).Infof("Visited %d nodes (max depth %d)", s.NodesVisited, s.MaxDepth)
	}
}

func (s *Stats) terminal() {
	s.TerminalNodes++
	terminalNodesVisited.Add(1)
}

func (s *Stats) decision() {
	s.DecisionNodes++
	playerNodesVisited.Add(1)
}

// String implements fmt.Stringer.
func (s Stats) String() string {
	return fmt.Sprintf("%d nodes (%d terminal, %d decision), max depth %d, took %v",
		s.NodesVisited, s.TerminalNodes, s.DecisionNodes, s.MaxDepth, s.Elapsed)
}
