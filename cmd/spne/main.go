// Command spne computes subgame-perfect equilibria of perfect-information
// games by backward induction.
package main

import (
	"flag"
	"strconv"

	"github.com/alecthomas/kong"
	"github.com/golang/glog"

	"github.com/timpalpant/spne/internal/config"
)

// Globals are the flags shared by every command. Flags that are set
// override the config file.
type Globals struct {
	Config                string `help:"HCL config file." default:"${config}" type:"path"`
	Recursive             bool   `help:"Evaluate game trees on the call stack."`
	SharedInformationSets bool   `help:"Allow decision nodes to share an information set."`
	MaxDepth              int    `help:"Abort when a history is longer than this (0 is unbounded)."`
	Format                string `short:"f" help:"Output format (json or text)."`
	GraphDir              string `help:"Write a DOT rendering of each solved game to this directory." type:"path"`
	Compress              bool   `help:"Gzip rendered graphs."`
	Verbosity             int    `short:"v" help:"Log verbosity."`
}

func (g *Globals) load() (*config.Config, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, err
	}

	if g.Recursive {
		cfg.Solver.Recursive = true
	}
	if g.SharedInformationSets {
		cfg.Solver.SharedInformationSets = true
	}
	if g.MaxDepth > 0 {
		cfg.Solver.MaxDepth = g.MaxDepth
	}
	if g.Format != "" {
		cfg.Output.Format = g.Format
	}
	if g.GraphDir != "" {
		cfg.Output.GraphDir = g.GraphDir
	}
	if g.Compress {
		cfg.Output.Compress = true
	}

	return cfg, cfg.Validate()
}

type CLI struct {
	Globals

	Solve     SolveCmd     `cmd:"" help:"Solve games declared in DOT files."`
	Tree      TreeCmd      `cmd:"" help:"Render the full tree of a game file as DOT."`
	Sample    SampleCmd    `cmd:"" help:"Play out a game file by sampling actions."`
	Ultimatum UltimatumCmd `cmd:"" help:"Solve the ultimatum game."`
	Centipede CentipedeCmd `cmd:"" help:"Solve the centipede game."`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("spne"),
		kong.Description("Backward induction solver for perfect-information games"),
		kong.UsageOnError(),
		kong.Vars{
			"config": config.DefaultPath,
		},
	)

	flag.Set("logtostderr", "true")
	flag.Set("v", strconv.Itoa(cli.Verbosity))
	defer glog.Flush()

	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
