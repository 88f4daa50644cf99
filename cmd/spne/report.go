package main

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"text/tabwriter"

	"github.com/golang/glog"
	gzip "github.com/klauspost/pgzip"
	"github.com/pkg/errors"

	"github.com/timpalpant/spne"
	"github.com/timpalpant/spne/gametree"
	"github.com/timpalpant/spne/internal/config"
)

// maxGraphNodes bounds the size of trees rendered to the graph directory.
const maxGraphNodes = 100000

// report summarizes the equilibrium of one game.
type report struct {
	Game     string             `json:"game"`
	Profile  map[string]string  `json:"profile"`
	Path     []string           `json:"path"`
	Outcome  map[string]float64 `json:"outcome"`
	Nodes    int                `json:"nodes_visited"`
	MaxDepth int                `json:"max_depth"`
	Elapsed  string             `json:"elapsed"`

	outcome string
}

func solveGame[I comparable, P comparable, A comparable](name string, root spne.GameState[I, P, A], cfg *config.Config) (*report, error) {
	eq, err := spne.NewSolver[I, P, A](cfg.SolverOptions()...).Solve(root)
	if err != nil {
		return nil, err
	}
	glog.Infof("Solved %s: %v", name, eq.Stats)

	if cfg.Output.GraphDir != "" {
		if err := writeGraph(cfg.Output, name, root, eq.Profile); err != nil {
			return nil, err
		}
	}

	return newReport(name, root, eq)
}

func newReport[I comparable, P comparable, A any](name string, root spne.GameState[I, P, A], eq *spne.Equilibrium[I, P, A]) (*report, error) {
	history, _, err := spne.Play(root, eq.Profile)
	if err != nil {
		return nil, errors.Wrap(err, "failed to follow equilibrium path")
	}

	r := &report{
		Game:     name,
		Profile:  make(map[string]string, eq.Profile.Len()),
		Path:     make([]string, 0, history.Len()),
		Outcome:  make(map[string]float64, eq.Outcome.Len()),
		Nodes:    eq.Stats.NodesVisited,
		MaxDepth: eq.Stats.MaxDepth,
		Elapsed:  eq.Stats.Elapsed.String(),
		outcome:  eq.Outcome.String(),
	}

	for is, action := range eq.Profile.All() {
		r.Profile[fmt.Sprint(is)] = fmt.Sprint(action)
	}
	for _, action := range history.AsSlice() {
		r.Path = append(r.Path, fmt.Sprint(action))
	}
	for _, p := range eq.Outcome.Players() {
		u, _ := eq.Outcome.Utility(p)
		r.Outcome[fmt.Sprint(p)] = u
	}

	return r, nil
}

func writeGraph[I comparable, P comparable, A comparable](out *config.OutputSettings, name string, root spne.GameState[I, P, A], profile *spne.PureStrategyProfile[I, A]) error {
	tree, err := gametree.Build(root, maxGraphNodes)
	if err != nil {
		return errors.Wrapf(err, "cannot render %s", name)
	}

	dot, err := tree.Graphviz(name, profile)
	if err != nil {
		return err
	}

	path := filepath.Join(out.GraphDir, name+".dot")
	if out.Compress {
		path += ".gz"
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	glog.V(1).Infof("Writing %d nodes to %s", tree.Len(), path)
	if !out.Compress {
		_, err = io.WriteString(f, dot)
		return err
	}

	gz := gzip.NewWriter(f)
	if _, err := io.WriteString(gz, dot); err != nil {
		return err
	}

	return gz.Close()
}

func writeReports(w io.Writer, format string, reports []*report) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, r := range reports {
		fmt.Fprintf(tw, "game\t%s\n", r.Game)
		fmt.Fprintf(tw, "path\t%v\n", r.Path)
		fmt.Fprintf(tw, "outcome\t%s\n", r.outcome)
		fmt.Fprintf(tw, "nodes visited\t%d\n", r.Nodes)
		for _, is := range slices.Sorted(maps.Keys(r.Profile)) {
			fmt.Fprintf(tw, "  %s\t%s\n", is, r.Profile[is])
		}
		fmt.Fprintln(tw)
	}

	return tw.Flush()
}
