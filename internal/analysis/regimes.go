package analysis

import (
	"errors"
	"fmt"
	"strings"

	"github.com/san-kum/malthus/internal/malthus"
)

// RegimePoint is the long-run behaviour at one parameter value.
type RegimePoint struct {
	Param      float64
	Regime     malthus.Regime
	Income     float64
	Iterations int
	// Undecided is set when Equilibrium ran out of iterations or range.
	Undecided bool
}

// Linspace returns n evenly spaced values over [lo, hi].
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	step := (hi - lo) / float64(n-1)
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}

// RegimeDiagram solves the equilibrium at each of steps values of the named
// parameter over [lo, hi]. Undecided points are kept and flagged rather than
// aborting the diagram.
func RegimeDiagram(template malthus.Parameters, name string, lo, hi float64, steps int, cfg malthus.EquilibriumConfig) ([]RegimePoint, error) {
	values := Linspace(lo, hi, steps)
	points := make([]RegimePoint, 0, len(values))

	for _, v := range values {
		p, err := template.With(name, v)
		if err != nil {
			return nil, err
		}
		pt, err := classify(p, cfg)
		if err != nil {
			return nil, fmt.Errorf("%s=%v: %w", name, v, err)
		}
		pt.Param = v
		points = append(points, pt)
	}
	return points, nil
}

func classify(p malthus.Parameters, cfg malthus.EquilibriumConfig) (RegimePoint, error) {
	out, err := malthus.Equilibrium(p, cfg)
	var cerr *malthus.ConvergenceError
	switch {
	case errors.As(err, &cerr):
		return RegimePoint{Regime: malthus.DivergentGrowth, Income: cerr.Income, Iterations: cerr.Iterations, Undecided: true}, nil
	case err != nil:
		return RegimePoint{}, err
	}
	return RegimePoint{Regime: out.Regime, Income: out.Income, Iterations: out.Iterations}, nil
}

// RegimesToASCII renders one row per point with a bar proportional to
// income.
func RegimesToASCII(points []RegimePoint, paramName string, width int) string {
	if len(points) == 0 || width <= 0 {
		return ""
	}

	maxIncome := 0.0
	for _, p := range points {
		maxIncome = max(maxIncome, p.Income)
	}
	if maxIncome <= 0 {
		maxIncome = 1
	}

	var sb strings.Builder
	for _, p := range points {
		n := int(float64(width) * p.Income / maxIncome)
		n = min(max(n, 0), width)

		mark := '='
		label := p.Regime.String()
		switch {
		case p.Undecided:
			mark, label = '?', "undecided"
		case p.Regime == malthus.DivergentGrowth:
			mark = '#'
		}

		fmt.Fprintf(&sb, "%s=%-8.4g %-10s %s %.4g\n", paramName, p.Param, label, strings.Repeat(string(mark), n), p.Income)
	}
	return sb.String()
}
