package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/malthus/internal/malthus"
)

func TestIncomeGrowth(t *testing.T) {
	m := NewIncomeGrowth()

	m.Observe(malthus.State{T: 0}, 1.0)
	m.Observe(malthus.State{T: 1}, 1.1)
	m.Observe(malthus.State{T: 2}, 1.21)

	if math.Abs(m.Value()-0.1) > 1e-9 {
		t.Errorf("expected 10%% growth, got %f", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero growth after reset")
	}
}

func TestPopulationGrowthSingleSample(t *testing.T) {
	m := NewPopulationGrowth()
	m.Observe(malthus.State{T: 0, Population: 10}, 1)
	if m.Value() != 0 {
		t.Errorf("expected zero growth for one sample, got %f", m.Value())
	}
}

func TestPeakIncome(t *testing.T) {
	m := NewPeakIncome()
	for _, y := range []float64{1.2, 3.4, 2.0} {
		m.Observe(malthus.State{}, y)
	}
	if m.Value() != 3.4 {
		t.Errorf("expected peak 3.4, got %f", m.Value())
	}
}

func TestCollectStagnation(t *testing.T) {
	p := malthus.DefaultParameters()
	tr, err := malthus.Simulate(p.Initial(), p, 400)
	if err != nil {
		t.Fatalf("simulate failed: %v", err)
	}

	values, err := Collect(tr, For(malthus.DefaultParameters())...)
	if err != nil {
		t.Fatalf("collect failed: %v", err)
	}

	for _, name := range []string{"income_growth", "population_growth", "peak_income", "subsistence_gap"} {
		if _, ok := values[name]; !ok {
			t.Errorf("metric %s missing", name)
		}
	}

	if math.Abs(values["subsistence_gap"]) > 1e-6 {
		t.Errorf("expected income at subsistence, gap %g", values["subsistence_gap"])
	}
	if values["income_growth"] >= 0 {
		t.Errorf("expected falling income from a sparse start, got %f", values["income_growth"])
	}
	if values["population_growth"] <= 0 {
		t.Errorf("expected growing population, got %f", values["population_growth"])
	}
}

func TestCollectTakeoff(t *testing.T) {
	p := malthus.DefaultParameters()
	p.Lambda = 0.05
	p.G = 0.05

	tr, err := malthus.Simulate(p.Initial(), p, 300)
	if err != nil {
		t.Fatalf("simulate failed: %v", err)
	}

	values, err := Collect(tr, NewIncomeGrowth())
	if err != nil {
		t.Fatalf("collect failed: %v", err)
	}
	if values["income_growth"] < 0.01 {
		t.Errorf("expected sustained income growth, got %f", values["income_growth"])
	}
}
