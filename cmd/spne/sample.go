package main

import (
	"fmt"
	"math/rand"

	"github.com/timpalpant/spne"
	"github.com/timpalpant/spne/gamefile"
	"github.com/timpalpant/spne/strategy"
)

type SampleCmd struct {
	File        string `arg:"" type:"existingfile" help:"DOT game file."`
	Count       int    `short:"n" default:"1" help:"Number of histories to sample."`
	Seed        int64  `default:"123" help:"Random seed."`
	Equilibrium bool   `short:"e" help:"Follow the equilibrium instead of playing uniformly at random."`
}

func (c *SampleCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}

	game, err := gamefile.Load(c.File)
	if err != nil {
		return err
	}

	s := strategy.New[string, string]()
	if c.Equilibrium {
		eq, err := spne.NewSolver[string, string, string](cfg.SolverOptions()...).Solve(game.Root())
		if err != nil {
			return err
		}
		s = strategy.FromProfile(eq.Profile)
	}

	rng := rand.New(rand.NewSource(c.Seed))
	for i := 0; i < c.Count; i++ {
		history, outcome, err := strategy.SampleHistory[string, string, string](game.Root(), s, rng)
		if err != nil {
			return err
		}

		fmt.Printf("%d: %v %v\n", i, history, outcome)
	}

	return nil
}
