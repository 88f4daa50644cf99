// Package gamefile loads perfect-information games declared as Graphviz
// DOT digraphs.
//
// Every node is a game state and every edge an action, labeled with the
// action name. Edges leaving a node are offered in the order they appear
// in the file. Game data is carried in standard Graphviz attributes, so
// game files render as-is with dot(1):
//
//	xlabel   acting player at a decision node
//	group    information set of a decision node (defaults to the node name)
//	comment  payoffs at a terminal node, e.g. "proposer=8, responder=10-8"
//
// Each payoff value is an arithmetic expression compiled with
// github.com/expr-lang/expr.
package gamefile

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/awalterschulze/gographviz"
	gzip "github.com/klauspost/pgzip"
	"github.com/pkg/errors"
)

const (
	playerAttr  = "xlabel"
	infoSetAttr = "group"
	payoffAttr  = "comment"
	actionAttr  = "label"
)

// Node is a state in a declared game.
type Node struct {
	Name    string
	Player  string
	InfoSet string
	// Payoff is nil if the node does not declare one.
	Payoff map[string]float64
	Edges  []Edge
	Parent *Node
}

func (n *Node) IsTerminal() bool {
	return len(n.Edges) == 0
}

// Edge is an action leading from one Node to another.
type Edge struct {
	Action string
	To     *Node
}

// Game is a game tree declared in a DOT file.
type Game struct {
	Name  string
	root  *Node
	nodes map[string]*Node
}

// Load parses the game declared in the DOT file at path.
// Files ending in .gz are decompressed.
func Load(path string) (*Game, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to decompress %s", path)
		}
		defer gz.Close()
		r = gz
	}

	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	g, err := Parse(string(buf))
	if err != nil {
		return nil, errors.Wrapf(err, "invalid game file %s", path)
	}

	return g, nil
}

// Parse parses a game declared in DOT.
func Parse(dot string) (*Game, error) {
	ast, err := gographviz.ParseString(dot)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse DOT")
	}

	graph := gographviz.NewGraph()
	if err := gographviz.Analyse(ast, graph); err != nil {
		return nil, errors.Wrap(err, "failed to analyze DOT")
	}

	if !graph.Directed {
		return nil, errors.New("game must be declared as a digraph")
	}

	game := &Game{
		Name:  unquote(graph.Name),
		nodes: make(map[string]*Node, len(graph.Nodes.Nodes)),
	}

	for _, n := range graph.Nodes.Nodes {
		node := &Node{
			Name:    unquote(n.Name),
			Player:  getAttr(n.Attrs, playerAttr),
			InfoSet: getAttr(n.Attrs, infoSetAttr),
		}
		if node.InfoSet == "" {
			node.InfoSet = node.Name
		}

		if raw := getAttr(n.Attrs, payoffAttr); raw != "" {
			payoff, err := ParsePayoff(raw)
			if err != nil {
				return nil, errors.Wrapf(err, "invalid payoff at node %q", node.Name)
			}
			node.Payoff = payoff
		}

		game.nodes[n.Name] = node
	}

	for _, e := range graph.Edges.Edges {
		from, ok := game.nodes[e.Src]
		if !ok {
			return nil, errors.Errorf("edge references unknown source node %q", e.Src)
		}
		to, ok := game.nodes[e.Dst]
		if !ok {
			return nil, errors.Errorf("edge references unknown destination node %q", e.Dst)
		}

		action := getAttr(e.Attrs, actionAttr)
		if action == "" {
			return nil, errors.Errorf("edge %s -> %s has no action label", from.Name, to.Name)
		}
		for _, existing := range from.Edges {
			if existing.Action == action {
				return nil, errors.Errorf("node %q offers action %q twice", from.Name, action)
			}
		}
		if to.Parent != nil {
			return nil, errors.Errorf("node %q is reached from both %q and %q",
				to.Name, to.Parent.Name, from.Name)
		}

		to.Parent = from
		from.Edges = append(from.Edges, Edge{Action: action, To: to})
	}

	if err := game.validate(graph.Nodes.Nodes); err != nil {
		return nil, err
	}

	return game, nil
}

func (g *Game) validate(declared []*gographviz.Node) error {
	for _, n := range declared {
		node := g.nodes[n.Name]
		if node.Parent != nil {
			continue
		}
		if g.root != nil {
			return errors.Errorf("game has multiple roots: %q and %q", g.root.Name, node.Name)
		}
		g.root = node
	}

	if g.root == nil {
		return errors.New("game has no root")
	}

	reachable := 0
	stack := []*Node{g.root}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		reachable++

		switch {
		case node.IsTerminal() && node.Payoff == nil:
			return errors.Errorf("terminal node %q has no payoff", node.Name)
		case !node.IsTerminal() && node.Player == "":
			return errors.Errorf("decision node %q has no player", node.Name)
		}

		for _, e := range node.Edges {
			stack = append(stack, e.To)
		}
	}

	// Every node has at most one parent, so anything unreachable
	// from the root must lie on a cycle.
	if reachable != len(g.nodes) {
		return errors.Errorf("%d nodes are unreachable from root %q",
			len(g.nodes)-reachable, g.root.Name)
	}

	return nil
}

// RootNode returns the root of the declared tree.
func (g *Game) RootNode() *Node {
	return g.root
}

// Root returns the initial state of the game.
func (g *Game) Root() *State {
	return &State{node: g.root}
}

// Len returns the number of nodes in the game.
func (g *Game) Len() int {
	return len(g.nodes)
}

// getAttr reads a Graphviz attribute, stripping surrounding quotes.
func getAttr(attrs gographviz.Attrs, key string) string {
	val, ok := attrs[gographviz.Attr(key)]
	if !ok {
		return ""
	}

	return unquote(strings.TrimSpace(val))
}

// unquote strips the quotes from a DOT string, unescaping its contents.
func unquote(s string) string {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return s
	}

	if u, err := strconv.Unquote(s); err == nil {
		return u
	}

	// DOT escapes such as \l are not valid Go escapes.
	return strings.ReplaceAll(s[1:len(s)-1], `\"`, `"`)
}
