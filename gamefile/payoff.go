package gamefile

import (
	"expvar"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
)

const payoffCacheSize = 4096

var (
	payoffCacheHits   = expvar.NewInt("gamefile/payoff_cache/hits")
	payoffCacheMisses = expvar.NewInt("gamefile/payoff_cache/misses")
)

// programs caches compiled payoff expressions. Generated games tend to
// repeat the same few payoffs at many terminal nodes.
var programs = newProgramCache(payoffCacheSize)

func newProgramCache(size int) *lru.Cache {
	cache, err := lru.New(size)
	if err != nil {
		panic(err)
	}

	return cache
}

// ParsePayoff parses a comma-separated list of player=expression pairs.
// Commas nested in brackets or string literals belong to the expression.
func ParsePayoff(s string) (map[string]float64, error) {
	result := make(map[string]float64)
	for _, part := range splitTopLevel(s) {
		player, value, ok := strings.Cut(part, "=")
		player = strings.TrimSpace(player)
		if !ok || player == "" {
			return nil, errors.Errorf("expected player=value, got %q", strings.TrimSpace(part))
		}
		if _, dup := result[player]; dup {
			return nil, errors.Errorf("duplicate payoff for player %q", player)
		}

		u, err := evalUtility(strings.TrimSpace(value))
		if err != nil {
			return nil, errors.Wrapf(err, "payoff for player %q", player)
		}
		result[player] = u
	}

	return result, nil
}

// splitTopLevel splits s on commas that are not nested in (), [] or {}
// or quoted.
func splitTopLevel(s string) []string {
	var parts []string
	depth := 0
	var quote rune
	escaped := false
	start := 0
	for i, c := range s {
		switch {
		case quote != 0:
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == quote:
				quote = 0
			}
		case c == '"' || c == '\'' || c == '`':
			quote = c
		case c == '(' || c == '[' || c == '{':
			depth++
		case c == ')' || c == ']' || c == '}':
			depth--
		case c == ',' && depth == 0:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}

	return append(parts, s[start:])
}

func compile(source string) (*vm.Program, error) {
	if cached, ok := programs.Get(source); ok {
		payoffCacheHits.Add(1)
		return cached.(*vm.Program), nil
	}

	payoffCacheMisses.Add(1)
	program, err := expr.Compile(source)
	if err != nil {
		return nil, err
	}

	programs.Add(source, program)
	return program, nil
}

func evalUtility(source string) (float64, error) {
	program, err := compile(source)
	if err != nil {
		return 0, err
	}

	out, err := expr.Run(program, nil)
	if err != nil {
		return 0, err
	}

	switch v := out.(type) {
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case float64:
		return v, nil
	default:
		return 0, errors.Errorf("utility must evaluate to a number (got %T)", out)
	}
}
