package malthus

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestDefaultParametersValid(t *testing.T) {
	if err := DefaultParameters().Validate(); err != nil {
		t.Errorf("default parameters invalid: %v", err)
	}
}

func TestParametersValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Parameters)
	}{
		{"alpha zero", func(p *Parameters) { p.Alpha = 0 }},
		{"alpha one", func(p *Parameters) { p.Alpha = 1 }},
		{"land zero", func(p *Parameters) { p.Land = 0 }},
		{"n0 negative", func(p *Parameters) { p.N0 = -5 }},
		{"a0 zero", func(p *Parameters) { p.A0 = 0 }},
		{"subsistence zero", func(p *Parameters) { p.Subsistence = 0 }},
		{"lambda negative", func(p *Parameters) { p.Lambda = -0.1 }},
		{"g below -1", func(p *Parameters) { p.G = -1 }},
		{"max growth negative", func(p *Parameters) { p.MaxGrowth = -0.1 }},
		{"lambda NaN", func(p *Parameters) { p.Lambda = math.NaN() }},
		{"g Inf", func(p *Parameters) { p.G = math.Inf(1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParameters()
			tt.mutate(&p)
			if err := p.Validate(); !errors.Is(err, ErrInvalidParameter) {
				t.Errorf("expected ErrInvalidParameter, got %v", err)
			}
		})
	}
}

func TestParametersWith(t *testing.T) {
	base := DefaultParameters()

	tests := []struct {
		name  string
		value float64
		get   func(Parameters) float64
	}{
		{"lambda", 0.9, func(p Parameters) float64 { return p.Lambda }},
		{"g", 0.03, func(p Parameters) float64 { return p.G }},
		{"alpha", 0.4, func(p Parameters) float64 { return p.Alpha }},
		{"L", 250, func(p Parameters) float64 { return p.Land }},
		{"N0", 10, func(p Parameters) float64 { return p.N0 }},
		{"a0", 2, func(p Parameters) float64 { return p.A0 }},
		{"ystar", 1.5, func(p Parameters) float64 { return p.Subsistence }},
		{"max_growth", 0.02, func(p Parameters) float64 { return p.MaxGrowth }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := base.With(tt.name, tt.value)
			if err != nil {
				t.Fatalf("With(%q) failed: %v", tt.name, err)
			}
			if got := tt.get(p); got != tt.value {
				t.Errorf("expected %v, got %v", tt.value, got)
			}
			if base != DefaultParameters() {
				t.Error("With mutated the receiver")
			}
		})
	}
}

func TestParametersUnknownName(t *testing.T) {
	_, err := DefaultParameters().With("lamda", 1)
	if !errors.Is(err, ErrUnknownParameter) {
		t.Fatalf("expected ErrUnknownParameter, got %v", err)
	}
	if !strings.Contains(err.Error(), `did you mean "lambda"`) {
		t.Errorf("expected suggestion in %q", err.Error())
	}

	_, err = DefaultParameters().Get("population_density")
	if !errors.Is(err, ErrUnknownParameter) {
		t.Fatalf("expected ErrUnknownParameter, got %v", err)
	}
	if strings.Contains(err.Error(), "did you mean") {
		t.Errorf("unexpected suggestion in %q", err.Error())
	}
}

func TestParametersParams(t *testing.T) {
	params := DefaultParameters().Params()
	if len(params) != len(ParamNames()) {
		t.Errorf("expected %d params, got %d", len(ParamNames()), len(params))
	}
	if params["alpha"] != 0.7 {
		t.Errorf("expected alpha 0.7, got %f", params["alpha"])
	}
}

func TestGrowthCeiling(t *testing.T) {
	p := DefaultParameters()
	if p.GrowthCeiling() != p.Lambda {
		t.Errorf("expected ceiling to default to lambda, got %f", p.GrowthCeiling())
	}
	p.MaxGrowth = 0.02
	if p.GrowthCeiling() != 0.02 {
		t.Errorf("expected explicit ceiling, got %f", p.GrowthCeiling())
	}
}
