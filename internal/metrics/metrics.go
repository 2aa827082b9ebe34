package metrics

import (
	"math"

	"github.com/san-kum/malthus/internal/malthus"
)

// Metric accumulates a scalar over a trajectory.
type Metric interface {
	Name() string
	Observe(s malthus.State, income float64)
	Value() float64
	Reset()
}

// For returns the metrics reported for every run, with the subsistence gap
// measured against p.Subsistence.
func For(p malthus.Parameters) []Metric {
	return []Metric{
		NewIncomeGrowth(),
		NewPopulationGrowth(),
		NewPeakIncome(),
		NewSubsistenceGap(p.Subsistence),
	}
}

// Collect runs every metric over tr and returns their values by name.
func Collect(tr malthus.Trajectory, ms ...Metric) (map[string]float64, error) {
	for _, m := range ms {
		m.Reset()
	}

	p := tr.Parameters()
	for _, s := range tr.All() {
		y, err := s.Income(p)
		if err != nil {
			return nil, err
		}
		for _, m := range ms {
			m.Observe(s, y)
		}
	}
	if err := tr.Err(); err != nil {
		return nil, err
	}

	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out, nil
}

// growthRate is the compound per-period growth rate between the first and
// last observation.
type growthRate struct {
	name          string
	first, last   float64
	firstT, lastT int
	samples       int
}

func (g *growthRate) Name() string { return g.name }

func (g *growthRate) observe(v float64, t int) {
	if g.samples == 0 {
		g.first, g.firstT = v, t
	}
	g.last, g.lastT = v, t
	g.samples++
}

func (g *growthRate) Value() float64 {
	periods := g.lastT - g.firstT
	if g.samples < 2 || g.first <= 0 || periods <= 0 {
		return 0
	}
	return math.Pow(g.last/g.first, 1/float64(periods)) - 1
}

func (g *growthRate) Reset() {
	g.first, g.last = 0, 0
	g.firstT, g.lastT, g.samples = 0, 0, 0
}
