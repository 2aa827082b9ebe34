// Package optim searches parameter grids for the economy that best scores
// on a trajectory metric.
package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/malthus/internal/malthus"
	"github.com/san-kum/malthus/internal/metrics"
)

// Objective scores one parameter record.
type Objective func(p malthus.Parameters) (float64, error)

// MetricObjective simulates horizon periods from p's initial state and
// returns the named metric.
func MetricObjective(horizon int, metric string) Objective {
	return func(p malthus.Parameters) (float64, error) {
		tr, err := malthus.Simulate(p.Initial(), p, horizon)
		if err != nil {
			return 0, err
		}
		vals, err := metrics.Collect(tr, metrics.For(p)...)
		if err != nil {
			return 0, err
		}
		v, ok := vals[metric]
		if !ok {
			names := make([]string, 0, len(vals))
			for name := range vals {
				names = append(names, name)
			}
			sort.Strings(names)
			return 0, fmt.Errorf("unknown metric %q (want one of %v)", metric, names)
		}
		return v, nil
	}
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) == 0 || len(params) != len(ranges) {
		return nil, fmt.Errorf("grid needs one value list per parameter (got %d names, %d lists)", len(params), len(ranges))
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, fmt.Errorf("grid for %s is empty", params[i])
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Result is the best grid point found.
type Result struct {
	Params    malthus.Parameters
	Point     map[string]float64
	Score     float64
	Evaluated int
	// Skipped counts grid points rejected as invalid parameter records.
	Skipped int
}

// Size is the number of grid points.
func (g *GridSearch) Size() int {
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

// Search evaluates obj at every grid point applied over template and keeps
// the lowest score, or the highest when maximize is set. Points that fail
// with ErrInvalidParameter are skipped; any other error stops the search.
func (g *GridSearch) Search(ctx context.Context, template malthus.Parameters, obj Objective, maximize bool) (Result, error) {
	best := Result{Score: math.Inf(1)}
	if maximize {
		best.Score = math.Inf(-1)
	}

	err := g.searchRecursive(ctx, 0, template, make(map[string]float64), obj, maximize, &best)
	if err != nil {
		return Result{}, err
	}
	if best.Point == nil {
		return best, fmt.Errorf("%w: no valid grid point among %d", malthus.ErrInvalidParameter, g.Size())
	}
	return best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	p malthus.Parameters,
	current map[string]float64,
	obj Objective,
	maximize bool,
	best *Result,
) error {
	if depth == len(g.paramNames) {
		if err := ctx.Err(); err != nil {
			return err
		}

		score, err := obj(p)
		switch {
		case errors.Is(err, malthus.ErrInvalidParameter):
			best.Skipped++
			return nil
		case err != nil:
			return fmt.Errorf("grid point %v: %w", current, err)
		}
		best.Evaluated++

		if (maximize && score > best.Score) || (!maximize && score < best.Score) {
			best.Score = score
			best.Params = p
			best.Point = make(map[string]float64, len(current))
			for k, v := range current {
				best.Point[k] = v
			}
		}
		return nil
	}

	name := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		next, err := p.With(name, val)
		if err != nil {
			return err
		}
		current[name] = val
		if err := g.searchRecursive(ctx, depth+1, next, current, obj, maximize, best); err != nil {
			return err
		}
	}
	delete(current, name)
	return nil
}
