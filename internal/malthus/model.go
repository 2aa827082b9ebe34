package malthus

import "math"

const (
	// ProductionScale multiplies the Cobb-Douglas term.
	ProductionScale = 1.0

	// PopulationFloor keeps N strictly positive so production stays defined.
	PopulationFloor = 1e-9
)

// Production returns income per capita A·(N/L)^-(1-α)·ProductionScale.
func Production(n, a, land, alpha float64) (float64, error) {
	switch {
	case !finite(n, a, land, alpha):
		return 0, invalidf("production inputs must be finite (N=%v A=%v L=%v alpha=%v)", n, a, land, alpha)
	case n <= 0:
		return 0, invalidf("population must be positive, got %v", n)
	case a <= 0:
		return 0, invalidf("technology must be positive, got %v", a)
	case land <= 0:
		return 0, invalidf("land must be positive, got %v", land)
	case alpha <= 0 || alpha >= 1:
		return 0, invalidf("alpha must be in (0,1), got %v", alpha)
	}
	return a * math.Pow(n/land, -(1-alpha)) * ProductionScale, nil
}

// Step advances s by one period. Technology grows at g; population grows
// with the income gap to subsistence, capped at GrowthCeiling and floored
// at PopulationFloor.
func Step(s State, p Parameters) (State, error) {
	if err := p.Validate(); err != nil {
		return State{}, err
	}
	return step(s, p)
}

// step assumes p is valid.
func step(s State, p Parameters) (State, error) {
	next, err := advance(s, p)
	if err != nil {
		return State{}, err
	}
	if !next.IsValid() {
		return State{}, invalidf("state left the finite domain at t=%d", next.T)
	}
	return next, nil
}

// advance applies the law of motion without checking the result.
func advance(s State, p Parameters) (State, error) {
	y, err := s.Income(p)
	if err != nil {
		return State{}, err
	}

	growth := math.Min(p.Lambda*(y-p.Subsistence), p.GrowthCeiling())

	return State{
		T:          s.T + 1,
		Population: math.Max(s.Population*(1+growth), PopulationFloor),
		Technology: s.Technology * (1 + p.G),
	}, nil
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
