package metrics

import (
	"math"

	"github.com/san-kum/malthus/internal/malthus"
)

type IncomeGrowth struct{ growthRate }

func NewIncomeGrowth() *IncomeGrowth {
	return &IncomeGrowth{growthRate{name: "income_growth"}}
}

func (m *IncomeGrowth) Observe(s malthus.State, income float64) {
	m.observe(income, s.T)
}

type PopulationGrowth struct{ growthRate }

func NewPopulationGrowth() *PopulationGrowth {
	return &PopulationGrowth{growthRate{name: "population_growth"}}
}

func (m *PopulationGrowth) Observe(s malthus.State, income float64) {
	m.observe(s.Population, s.T)
}

type PeakIncome struct {
	peak float64
}

func NewPeakIncome() *PeakIncome {
	return &PeakIncome{}
}

func (m *PeakIncome) Name() string { return "peak_income" }

func (m *PeakIncome) Observe(s malthus.State, income float64) {
	m.peak = math.Max(m.peak, income)
}

func (m *PeakIncome) Value() float64 { return m.peak }

func (m *PeakIncome) Reset() { m.peak = 0 }

// SubsistenceGap is the final income relative to subsistence, minus one.
type SubsistenceGap struct {
	subsistence float64
	last        float64
}

func NewSubsistenceGap(subsistence float64) *SubsistenceGap {
	return &SubsistenceGap{subsistence: subsistence}
}

func (m *SubsistenceGap) Name() string { return "subsistence_gap" }

func (m *SubsistenceGap) Observe(s malthus.State, income float64) {
	m.last = income
}

func (m *SubsistenceGap) Value() float64 {
	if m.subsistence <= 0 {
		return 0
	}
	return m.last/m.subsistence - 1
}

func (m *SubsistenceGap) Reset() { m.last = 0 }
