package optim

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/kinefig/internal/experiment"
)

// Trial is one evaluated point of the grid.
type Trial struct {
	Params map[string]float64
	Value  float64
	Err    error
}

// GridSearch evaluates every combination of parameter values and keeps the
// one with the lowest metric.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("%d parameters but %d ranges", len(params), len(ranges))
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, fmt.Errorf("parameter %s has no values", params[i])
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Search runs every grid point. Points whose experiment cannot be built or
// run are recorded with their error and never win. It fails only if the
// context is done or no point produced the metric.
func (g *GridSearch) Search(
	ctx context.Context,
	buildExperiment func(params map[string]float64) (*experiment.Experiment, error),
	metricName string,
) (best Trial, trials []Trial, err error) {
	best.Value = math.Inf(1)

	err = g.searchRecursive(ctx, 0, make(map[string]float64), func(params map[string]float64) {
		t := Trial{Params: params, Value: math.NaN()}
		defer func() { trials = append(trials, t) }()

		exp, err := buildExperiment(params)
		if err != nil {
			t.Err = err
			return
		}
		result, err := exp.Run(ctx)
		if err != nil {
			t.Err = err
			return
		}

		val, ok := result.Metrics[metricName]
		if !ok {
			t.Err = fmt.Errorf("metric %s not reported", metricName)
			return
		}
		t.Value = val
		if val < best.Value {
			best = t
		}
	})
	if err != nil {
		return Trial{}, trials, err
	}
	if best.Params == nil {
		return Trial{}, trials, fmt.Errorf("no grid point produced %s", metricName)
	}
	return best, trials, nil
}

func (g *GridSearch) searchRecursive(ctx context.Context, depth int, current map[string]float64, eval func(map[string]float64)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		eval(current)
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, eval); err != nil {
			return err
		}
	}
	return nil
}

// Names returns the swept parameter names in a stable order.
func (g *GridSearch) Names() []string {
	names := append([]string(nil), g.paramNames...)
	sort.Strings(names)
	return names
}
