// Script to count the nodes of a game and compare with the number of
// nodes visited by backward induction.
package main

import (
	"flag"
	"net/http"
	_ "net/http/pprof"
	"runtime"
	"strings"
	"sync"

	"github.com/golang/glog"
	"github.com/timpalpant/go-cfr"

	"github.com/timpalpant/spne"
	"github.com/timpalpant/spne/cfrgame"
	"github.com/timpalpant/spne/gamefile"
	"github.com/timpalpant/spne/games/centipede"
)

func main() {
	gameFile := flag.String("game", "", "DOT game file (the centipede game is used if empty)")
	stages := flag.Int("stages", 1000, "Number of stages of the centipede game")
	viaCFR := flag.Bool("via_cfr", false, "Also traverse and solve the game as a go-cfr game tree")
	players := flag.String("players", "", "Comma-separated players of a game file, in go-cfr order")
	addr := flag.String("debug_addr", "localhost:4125", "Address to serve pprof and expvar on")
	flag.Parse()

	go http.ListenAndServe(*addr, nil)

	if *gameFile == "" {
		game, err := centipede.New(*stages)
		if err != nil {
			glog.Fatal(err)
		}

		run[centipede.Stage, centipede.Player, centipede.Action](game)
		if *viaCFR {
			runCFR[centipede.Stage, centipede.Player, centipede.Action](
				game, [2]centipede.Player{centipede.Player0, centipede.Player1})
		}
		return
	}

	game, err := gamefile.Load(*gameFile)
	if err != nil {
		glog.Fatal(err)
	}

	run[string, string, string](game.Root())
	if *viaCFR {
		names := strings.Split(*players, ",")
		if len(names) != 2 {
			glog.Exitf("-via_cfr needs exactly two -players, got %q", *players)
		}

		runCFR[string, string, string](game.Root(), [2]string{names[0], names[1]})
	}
}

func run[I comparable, P comparable, A any](root spne.GameState[I, P, A]) {
	total := countNodesParallel(root)
	glog.Infof("%d nodes in game", total)

	eq, err := spne.NewSolver[I, P, A]().Solve(root)
	if err != nil {
		glog.Fatal(err)
	}

	glog.Infof("Backward induction: %v, root utility %v", eq.Stats, eq.RootUtility())
	if eq.Stats.NodesVisited != total {
		glog.Errorf("Solver visited %d nodes, expected %d", eq.Stats.NodesVisited, total)
	}
}

// runCFR repeats run on the game exported as a go-cfr tree.
func runCFR[I comparable, P comparable, A any](root spne.GameState[I, P, A], players [2]P) {
	game := cfrgame.Export(root, players)
	total := countCFRNodes(game)
	glog.Infof("%d nodes in go-cfr tree", total)

	state, err := cfrgame.New(game)
	if err != nil {
		glog.Fatal(err)
	}

	eq, err := spne.NewSolver[string, int, int]().Solve(state)
	if err != nil {
		glog.Fatal(err)
	}

	glog.Infof("Backward induction over go-cfr tree: %v, root utility %v", eq.Stats, eq.RootUtility())
	if eq.Stats.NodesVisited != total {
		glog.Errorf("Solver visited %d go-cfr nodes, expected %d", eq.Stats.NodesVisited, total)
	}
}

func countCFRNodes(node cfr.GameTreeNode) int {
	total := 1
	for i := 0; i < node.NumChildren(); i++ {
		total += countCFRNodes(node.GetChild(i))
	}

	node.Close()
	return total
}

// countNodesParallel counts the subtree under each root action on
// its own goroutine.
func countNodesParallel[I comparable, P comparable, A any](root spne.GameState[I, P, A]) int {
	if root.IsTerminal() {
		return 1
	}

	sem := make(chan struct{}, runtime.NumCPU())
	total := 1
	var wg sync.WaitGroup
	var mu sync.Mutex
	for action := range root.Actions() {
		child, err := root.Advance(action)
		if err != nil {
			glog.Fatal(err)
		}

		sem <- struct{}{}
		wg.Add(1)
		go func() {
			n := countNodes(child)
			mu.Lock()
			total += n
			mu.Unlock()
			<-sem
			wg.Done()
		}()
	}

	wg.Wait()
	return total
}

func countNodes[I comparable, P comparable, A any](node spne.GameState[I, P, A]) int {
	total := 1
	stack := []spne.GameState[I, P, A]{node}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.IsTerminal() {
			continue
		}

		for action := range n.Actions() {
			child, err := n.Advance(action)
			if err != nil {
				glog.Fatal(err)
			}

			total++
			stack = append(stack, child)
		}
	}

	return total
}
