package malthus

import (
	"fmt"
	"math"
)

// Regime tags the result of Equilibrium.
type Regime int

const (
	// Converged means income per capita settled within tolerance.
	Converged Regime = iota
	// DivergentGrowth means income per capita took off.
	DivergentGrowth
)

func (r Regime) String() string {
	switch r {
	case Converged:
		return "converged"
	case DivergentGrowth:
		return "divergent"
	default:
		return fmt.Sprintf("regime(%d)", int(r))
	}
}

// DivergenceConfig decides when income is treated as sustained growth.
// A period counts toward the streak when income grows by at least
// MinGrowthRate relative to the previous period. Convergent paths approach
// their fixed point with geometrically shrinking steps, so they break the
// streak long before GrowthStreak periods.
type DivergenceConfig struct {
	IncomeCeiling float64
	GrowthStreak  int
	MinGrowthRate float64
}

type EquilibriumConfig struct {
	Tolerance     float64
	MaxIterations int
	Divergence    DivergenceConfig
}

func DefaultDivergenceConfig() DivergenceConfig {
	return DivergenceConfig{
		IncomeCeiling: 1e6,
		GrowthStreak:  100,
		MinGrowthRate: 1e-3,
	}
}

func DefaultEquilibriumConfig() EquilibriumConfig {
	return EquilibriumConfig{
		Tolerance:     1e-9,
		MaxIterations: 10000,
		Divergence:    DefaultDivergenceConfig(),
	}
}

func (c EquilibriumConfig) validate() error {
	if !(c.Tolerance > 0) || math.IsInf(c.Tolerance, 0) {
		return invalidf("tolerance must be positive and finite, got %v", c.Tolerance)
	}
	if c.MaxIterations <= 0 {
		return invalidf("max iterations must be positive, got %d", c.MaxIterations)
	}
	if !(c.Divergence.IncomeCeiling > 0) {
		return invalidf("income ceiling must be positive, got %v", c.Divergence.IncomeCeiling)
	}
	if c.Divergence.GrowthStreak <= 0 {
		return invalidf("growth streak must be positive, got %d", c.Divergence.GrowthStreak)
	}
	if c.Divergence.MinGrowthRate < 0 || math.IsNaN(c.Divergence.MinGrowthRate) {
		return invalidf("min growth rate must be non-negative, got %v", c.Divergence.MinGrowthRate)
	}
	return nil
}

// Outcome is the successful result of Equilibrium.
type Outcome struct {
	Regime     Regime
	State      State
	Income     float64
	Iterations int
}

// Equilibrium iterates Step from p.Initial() until income per capita
// changes by less than cfg.Tolerance (Converged) or the divergence test
// fires (DivergentGrowth). Exhausting cfg.MaxIterations returns a
// *ConvergenceError. Overflowing float64 counts as DivergentGrowth when
// income had been rising for at least GrowthStreak periods, and as a
// *ConvergenceError otherwise.
func Equilibrium(p Parameters, cfg EquilibriumConfig) (Outcome, error) {
	if err := p.Validate(); err != nil {
		return Outcome{}, err
	}
	if err := cfg.validate(); err != nil {
		return Outcome{}, err
	}

	s := p.Initial()
	y, err := s.Income(p)
	if err != nil {
		return Outcome{}, err
	}

	// rising counts strictly increasing periods regardless of
	// MinGrowthRate. Paths just past the takeoff boundary grow too slowly
	// for streak but overflow the population long before MaxIterations.
	streak, rising := 0, 0
	for i := 1; i <= cfg.MaxIterations; i++ {
		next, err := advance(s, p)
		if err != nil {
			return Outcome{}, err
		}
		if !next.IsValid() {
			if rising >= cfg.Divergence.GrowthStreak {
				return Outcome{Regime: DivergentGrowth, State: s, Income: y, Iterations: i - 1}, nil
			}
			return Outcome{}, &ConvergenceError{Iterations: i - 1, Last: s, Income: y, Overflow: true}
		}
		ny, err := next.Income(p)
		if err != nil {
			return Outcome{}, err
		}

		if math.Abs(ny-y) < cfg.Tolerance {
			return Outcome{Regime: Converged, State: next, Income: ny, Iterations: i}, nil
		}

		if ny > y*(1+cfg.Divergence.MinGrowthRate) {
			streak++
		} else {
			streak = 0
		}
		if ny > y {
			rising++
		} else {
			rising = 0
		}
		if ny > cfg.Divergence.IncomeCeiling || streak >= cfg.Divergence.GrowthStreak {
			return Outcome{Regime: DivergentGrowth, State: next, Income: ny, Iterations: i}, nil
		}

		s, y = next, ny
	}

	return Outcome{}, &ConvergenceError{Iterations: cfg.MaxIterations, Last: s, Income: y}
}
