package main

import (
	"os"

	"github.com/timpalpant/spne/games/centipede"
	"github.com/timpalpant/spne/games/ultimatum"
)

type UltimatumCmd struct{}

func (c *UltimatumCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}

	r, err := solveGame[ultimatum.InfoSet, ultimatum.Player, ultimatum.Action](
		"ultimatum", ultimatum.New(*cfg.Ultimatum), cfg)
	if err != nil {
		return err
	}

	return writeReports(os.Stdout, cfg.Output.Format, []*report{r})
}

type CentipedeCmd struct {
	Stages int `short:"n" help:"Number of stages (overrides the config file)."`
}

func (c *CentipedeCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}

	stages := cfg.Centipede.Stages
	if c.Stages > 0 {
		stages = c.Stages
	}

	game, err := centipede.New(stages)
	if err != nil {
		return err
	}

	r, err := solveGame[centipede.Stage, centipede.Player, centipede.Action]("centipede", game, cfg)
	if err != nil {
		return err
	}

	return writeReports(os.Stdout, cfg.Output.Format, []*report{r})
}
