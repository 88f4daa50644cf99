package gametree

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/awalterschulze/gographviz"
	"github.com/pkg/errors"

	"github.com/timpalpant/spne"
)

// Graphviz renders the tree as a DOT digraph. If profile is non-nil the
// edges it selects are highlighted. The output uses the same attributes
// as package gamefile, so it can be loaded back as a game.
func (t *Tree[I, P, A]) Graphviz(name string, profile *spne.PureStrategyProfile[I, A]) (string, error) {
	g := gographviz.NewGraph()
	if err := g.SetName(strconv.Quote(name)); err != nil {
		return "", err
	}
	if err := g.SetDir(true); err != nil {
		return "", err
	}

	for i := range t.nodes {
		if err := g.AddNode(g.Name, nodeName(NodeIndex(i)), t.nodeAttrs(&t.nodes[i])); err != nil {
			return "", errors.Wrapf(err, "failed to add node %d", i)
		}
	}

	for i := range t.nodes {
		n := &t.nodes[i]
		if n.Parent == NoNode {
			continue
		}

		attrs := map[string]string{
			"label": strconv.Quote(fmt.Sprint(n.Action)),
		}
		if t.OnPath(NodeIndex(i), profile) {
			attrs["color"] = "red"
			attrs["penwidth"] = "2"
		}

		if err := g.AddEdge(nodeName(n.Parent), nodeName(NodeIndex(i)), true, attrs); err != nil {
			return "", errors.Wrapf(err, "failed to add edge into node %d", i)
		}
	}

	return g.String(), nil
}

func (t *Tree[I, P, A]) nodeAttrs(n *Node[I, P, A]) map[string]string {
	attrs := map[string]string{
		"label": strconv.Quote(fmt.Sprint(n.State)),
	}

	if player, ok := n.State.Player(); ok {
		attrs["xlabel"] = strconv.Quote(fmt.Sprint(player))
		attrs["group"] = strconv.Quote(fmt.Sprint(n.State.InformationSet()))
	}

	if outcome, ok := n.State.Outcome(); ok {
		parts := make([]string, 0, outcome.Len())
		for _, p := range outcome.Players() {
			u, _ := outcome.Utility(p)
			parts = append(parts, fmt.Sprintf("%v=%s", p, strconv.FormatFloat(u, 'g', -1, 64)))
		}
		attrs["comment"] = strconv.Quote(strings.Join(parts, ", "))
	}

	return attrs
}

func nodeName(idx NodeIndex) string {
	return "n" + strconv.Itoa(int(idx))
}
