package analysis

import (
	"math"
	"strings"
	"testing"

	"github.com/san-kum/malthus/internal/malthus"
)

func TestLinspace(t *testing.T) {
	tests := []struct {
		lo, hi float64
		n      int
		want   []float64
	}{
		{0, 1, 5, []float64{0, 0.25, 0.5, 0.75, 1}},
		{2, 2, 1, []float64{2}},
		{0, 1, 0, []float64{0}},
	}

	for _, tt := range tests {
		got := Linspace(tt.lo, tt.hi, tt.n)
		if len(got) != len(tt.want) {
			t.Errorf("Linspace(%v, %v, %d) len = %d, want %d", tt.lo, tt.hi, tt.n, len(got), len(tt.want))
			continue
		}
		for i := range got {
			if math.Abs(got[i]-tt.want[i]) > 1e-12 {
				t.Errorf("Linspace(%v, %v, %d)[%d] = %v, want %v", tt.lo, tt.hi, tt.n, i, got[i], tt.want[i])
			}
		}
	}
}

func TestRegimeDiagram(t *testing.T) {
	p := malthus.DefaultParameters()
	p.Lambda = 0.05

	points, err := RegimeDiagram(p, "g", 0, 0.05, 6, malthus.DefaultEquilibriumConfig())
	if err != nil {
		t.Fatalf("diagram failed: %v", err)
	}
	if len(points) != 6 {
		t.Fatalf("expected 6 points, got %d", len(points))
	}

	if points[0].Regime != malthus.Converged {
		t.Errorf("expected stagnation at g=0, got %v", points[0].Regime)
	}
	last := points[len(points)-1]
	if last.Regime != malthus.DivergentGrowth || last.Undecided {
		t.Errorf("expected takeoff at g=0.05, got %+v", last)
	}
}

func TestRegimeDiagramUnknownParam(t *testing.T) {
	_, err := RegimeDiagram(malthus.DefaultParameters(), "tech", 0, 1, 3, malthus.DefaultEquilibriumConfig())
	if err == nil {
		t.Error("expected error for unknown parameter")
	}
}

func TestCriticalValueMatchesTheory(t *testing.T) {
	tests := []struct {
		name          string
		lambda, alpha float64
	}{
		{"reference", 0.5, 0.7},
		{"low alpha", 0.2, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := malthus.DefaultParameters()
			p.Lambda, p.Alpha = tt.lambda, tt.alpha

			got, err := CriticalValue(p, "g", 0, 0.5, 1e-4, malthus.DefaultEquilibriumConfig())
			if err != nil {
				t.Fatalf("critical value failed: %v", err)
			}
			want := TheoreticalTakeoff(p)
			if math.Abs(got-want) > 1e-3 {
				t.Errorf("critical g = %.5f, want %.5f", got, want)
			}
		})
	}
}

func TestCriticalValueNoBoundary(t *testing.T) {
	_, err := CriticalValue(malthus.DefaultParameters(), "g", 0, 0.01, 1e-4, malthus.DefaultEquilibriumConfig())
	if err == nil {
		t.Error("expected error when both ends stagnate")
	}

	_, err = CriticalValue(malthus.DefaultParameters(), "g", 0.2, 0.1, 1e-4, malthus.DefaultEquilibriumConfig())
	if err == nil {
		t.Error("expected error for inverted interval")
	}
}

func TestRegimesToASCII(t *testing.T) {
	points := []RegimePoint{
		{Param: 0, Regime: malthus.Converged, Income: 1},
		{Param: 0.1, Regime: malthus.DivergentGrowth, Income: 10},
		{Param: 0.2, Regime: malthus.DivergentGrowth, Income: 5, Undecided: true},
	}

	out := RegimesToASCII(points, "g", 20)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "converged") || !strings.Contains(lines[0], "==") {
		t.Errorf("unexpected stagnation row %q", lines[0])
	}
	if !strings.Contains(lines[1], strings.Repeat("#", 20)) {
		t.Errorf("expected full bar for peak income, got %q", lines[1])
	}
	if !strings.Contains(lines[2], "undecided") {
		t.Errorf("expected undecided row, got %q", lines[2])
	}

	if RegimesToASCII(nil, "g", 20) != "" {
		t.Error("expected empty output for no points")
	}
}
