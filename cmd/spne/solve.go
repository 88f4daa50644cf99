package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/timpalpant/spne/gamefile"
	"github.com/timpalpant/spne/internal/config"
)

type SolveCmd struct {
	Files []string `arg:"" type:"existingfile" help:"DOT game files."`
	Jobs  int      `short:"j" help:"Number of games to solve concurrently (0 is one per CPU)."`
}

func (c *SolveCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}

	reports, err := solveFiles(c.Files, cfg, c.Jobs)
	if err != nil {
		return err
	}

	return writeReports(os.Stdout, cfg.Output.Format, reports)
}

// solveFiles solves each game file on its own goroutine.
// Reports are returned in the order of files.
func solveFiles(files []string, cfg *config.Config, jobs int) ([]*report, error) {
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	games := make([]*gamefile.Game, len(files))
	var load errgroup.Group
	load.SetLimit(jobs)
	for i, path := range files {
		load.Go(func() error {
			game, err := gamefile.Load(path)
			games[i] = game
			return err
		})
	}
	if err := load.Wait(); err != nil {
		return nil, err
	}

	// Names double as graph file names, so they must be distinct.
	names := make([]string, len(files))
	for i, path := range files {
		names[i] = gameName(games[i], path)
	}
	names = uniqueNames(names)

	reports := make([]*report, len(files))
	var solve errgroup.Group
	solve.SetLimit(jobs)
	for i, path := range files {
		solve.Go(func() error {
			r, err := solveGame[string, string, string](names[i], games[i].Root(), cfg)
			if err != nil {
				return errors.Wrapf(err, "failed to solve %s", path)
			}

			reports[i] = r
			return nil
		})
	}

	if err := solve.Wait(); err != nil {
		return nil, err
	}

	return reports, nil
}

// gameName returns the name of the graph, or the base name of its file
// if the graph is anonymous. The result never contains a path separator.
func gameName(game *gamefile.Game, path string) string {
	if name := filepath.Base(game.Name); game.Name != "" && validName(name) {
		return name
	}

	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

func validName(name string) bool {
	switch name {
	case ".", "..", string(filepath.Separator):
		return false
	}

	return !strings.ContainsRune(name, filepath.Separator)
}

// uniqueNames suffixes repeated names with a counter. The first
// occurrence keeps its name.
func uniqueNames(names []string) []string {
	result := make([]string, len(names))
	seen := make(map[string]bool, len(names))
	for i, n := range names {
		name := n
		for k := 1; seen[name]; k++ {
			name = fmt.Sprintf("%s-%d", n, k)
		}

		seen[name] = true
		result[i] = name
	}

	return result
}
