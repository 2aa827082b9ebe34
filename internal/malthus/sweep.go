package malthus

import (
	"fmt"
	"math"
)

// Probe runs one sweep point.
type Probe interface {
	probe(p Parameters) (SweepPoint, error)
	Kind() string
}

type simulateProbe struct{ horizon int }

// SimulateFor probes each sweep point with Simulate over horizon periods.
func SimulateFor(horizon int) Probe { return simulateProbe{horizon: horizon} }

func (sp simulateProbe) Kind() string { return "simulate" }

func (sp simulateProbe) probe(p Parameters) (SweepPoint, error) {
	tr, err := Simulate(p.Initial(), p, sp.horizon)
	if err != nil {
		return SweepPoint{}, err
	}
	if err := tr.Err(); err != nil {
		return SweepPoint{}, err
	}
	return SweepPoint{Params: p, Trajectory: &tr}, nil
}

type equilibriumProbe struct{ cfg EquilibriumConfig }

// SolveEquilibrium probes each sweep point with Equilibrium.
func SolveEquilibrium(cfg EquilibriumConfig) Probe { return equilibriumProbe{cfg: cfg} }

func (ep equilibriumProbe) Kind() string { return "equilibrium" }

func (ep equilibriumProbe) probe(p Parameters) (SweepPoint, error) {
	out, err := Equilibrium(p, ep.cfg)
	if err != nil {
		return SweepPoint{}, err
	}
	return SweepPoint{Params: p, Outcome: &out}, nil
}

// SweepPoint is the result for one swept value. Exactly one of Trajectory
// and Outcome is set, depending on the probe.
type SweepPoint struct {
	Value      float64
	Params     Parameters
	Trajectory *Trajectory
	Outcome    *Outcome
}

// SweepResult maps swept values to their results in the supplied order.
type SweepResult struct {
	Param  string
	Kind   string
	Points []SweepPoint
}

func (r SweepResult) Len() int { return len(r.Points) }

func (r SweepResult) Values() []float64 {
	out := make([]float64, len(r.Points))
	for i, pt := range r.Points {
		out[i] = pt.Value
	}
	return out
}

func (r SweepResult) Get(value float64) (SweepPoint, bool) {
	for _, pt := range r.Points {
		if pt.Value == value {
			return pt, true
		}
	}
	return SweepPoint{}, false
}

// Sweep evaluates probe once per value, with the named parameter of
// template replaced by that value. Points are independent; the first
// failure aborts the sweep.
func Sweep(name string, values []float64, template Parameters, probe Probe) (SweepResult, error) {
	res, variants, err := prepareSweep(name, values, template, probe)
	if err != nil {
		return SweepResult{}, err
	}
	for i, p := range variants {
		pt, err := runPoint(res.Param, values[i], p, probe)
		if err != nil {
			return SweepResult{}, err
		}
		res.Points[i] = pt
	}
	return res, nil
}

func prepareSweep(name string, values []float64, template Parameters, probe Probe) (SweepResult, []Parameters, error) {
	if probe == nil {
		return SweepResult{}, nil, invalidf("sweep probe is nil")
	}
	key, err := resolveParam(name)
	if err != nil {
		return SweepResult{}, nil, err
	}

	seen := make(map[float64]bool, len(values))
	variants := make([]Parameters, len(values))
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return SweepResult{}, nil, invalidf("sweep value %d of %s must be finite, got %v", i, key, v)
		}
		if seen[v] {
			return SweepResult{}, nil, fmt.Errorf("%w: %s=%v", ErrDuplicateValue, key, v)
		}
		seen[v] = true
		variants[i], _ = template.With(key, v)
	}

	return SweepResult{
		Param:  key,
		Kind:   probe.Kind(),
		Points: make([]SweepPoint, len(values)),
	}, variants, nil
}

func runPoint(name string, value float64, p Parameters, probe Probe) (SweepPoint, error) {
	pt, err := probe.probe(p)
	if err != nil {
		return SweepPoint{}, fmt.Errorf("sweep %s=%v: %w", name, value, err)
	}
	pt.Value = value
	return pt, nil
}
