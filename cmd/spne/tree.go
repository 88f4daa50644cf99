package main

import (
	"fmt"
	"os"

	"github.com/golang/glog"

	"github.com/timpalpant/spne"
	"github.com/timpalpant/spne/gamefile"
	"github.com/timpalpant/spne/gametree"
)

type TreeCmd struct {
	File        string `arg:"" type:"existingfile" help:"DOT game file."`
	Output      string `short:"o" help:"Write to this file instead of stdout." type:"path"`
	Equilibrium bool   `short:"e" help:"Highlight the equilibrium path."`
	MaxNodes    int    `default:"1000000" help:"Maximum number of nodes to expand."`
}

func (c *TreeCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}

	game, err := gamefile.Load(c.File)
	if err != nil {
		return err
	}

	tree, err := gametree.Build[string, string, string](game.Root(), c.MaxNodes)
	if err != nil {
		return err
	}
	glog.Infof("Expanded %d nodes (%d terminal), max depth %d",
		tree.Len(), len(tree.TerminalNodes()), tree.MaxDepth())

	var profile *spne.PureStrategyProfile[string, string]
	if c.Equilibrium {
		eq, err := spne.NewSolver[string, string, string](cfg.SolverOptions()...).Solve(game.Root())
		if err != nil {
			return err
		}
		profile = eq.Profile
	}

	dot, err := tree.Graphviz(gameName(game, c.File), profile)
	if err != nil {
		return err
	}

	if c.Output == "" {
		_, err = fmt.Print(dot)
		return err
	}

	return os.WriteFile(c.Output, []byte(dot), 0o644)
}
