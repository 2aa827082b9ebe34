package malthus

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// DefaultSubsistence is the income at which population growth is zero.
const DefaultSubsistence = 1.0

// Parameters is the structural description of one economy. It is a value
// type: With returns a modified copy and nothing mutates a record in place.
type Parameters struct {
	Lambda      float64 `json:"lambda"`
	G           float64 `json:"g"`
	Alpha       float64 `json:"alpha"`
	Land        float64 `json:"land"`
	N0          float64 `json:"n0"`
	A0          float64 `json:"a0"`
	Subsistence float64 `json:"subsistence"`
	// MaxGrowth caps proportional population growth per period.
	// Zero means the cap equals Lambda.
	MaxGrowth float64 `json:"max_growth"`
}

func DefaultParameters() Parameters {
	return Parameters{
		Lambda:      0.5,
		G:           0.0,
		Alpha:       0.7,
		Land:        100,
		N0:          50,
		A0:          1,
		Subsistence: DefaultSubsistence,
	}
}

func (p Parameters) Validate() error {
	for _, name := range paramNames {
		if v := paramFields[name].get(p); math.IsNaN(v) || math.IsInf(v, 0) {
			return invalidf("%s must be finite, got %v", name, v)
		}
	}
	if p.Alpha <= 0 || p.Alpha >= 1 {
		return invalidf("alpha must be in (0,1), got %v", p.Alpha)
	}
	if p.Land <= 0 {
		return invalidf("land must be positive, got %v", p.Land)
	}
	if p.N0 <= 0 {
		return invalidf("n0 must be positive, got %v", p.N0)
	}
	if p.A0 <= 0 {
		return invalidf("a0 must be positive, got %v", p.A0)
	}
	if p.Subsistence <= 0 {
		return invalidf("subsistence must be positive, got %v", p.Subsistence)
	}
	if p.Lambda < 0 {
		return invalidf("lambda must be non-negative, got %v", p.Lambda)
	}
	if p.G <= -1 {
		return invalidf("g must exceed -1, got %v", p.G)
	}
	if p.MaxGrowth < 0 {
		return invalidf("max_growth must be non-negative, got %v", p.MaxGrowth)
	}
	return nil
}

// GrowthCeiling is the effective cap on proportional population growth.
func (p Parameters) GrowthCeiling() float64 {
	if p.MaxGrowth > 0 {
		return p.MaxGrowth
	}
	return p.Lambda
}

// Initial is the default starting state {t=0, N0, A0}.
func (p Parameters) Initial() State {
	return State{T: 0, Population: p.N0, Technology: p.A0}
}

type paramField struct {
	get func(Parameters) float64
	set func(*Parameters, float64)
}

var paramFields = map[string]paramField{
	"lambda":      {func(p Parameters) float64 { return p.Lambda }, func(p *Parameters, v float64) { p.Lambda = v }},
	"g":           {func(p Parameters) float64 { return p.G }, func(p *Parameters, v float64) { p.G = v }},
	"alpha":       {func(p Parameters) float64 { return p.Alpha }, func(p *Parameters, v float64) { p.Alpha = v }},
	"land":        {func(p Parameters) float64 { return p.Land }, func(p *Parameters, v float64) { p.Land = v }},
	"n0":          {func(p Parameters) float64 { return p.N0 }, func(p *Parameters, v float64) { p.N0 = v }},
	"a0":          {func(p Parameters) float64 { return p.A0 }, func(p *Parameters, v float64) { p.A0 = v }},
	"subsistence": {func(p Parameters) float64 { return p.Subsistence }, func(p *Parameters, v float64) { p.Subsistence = v }},
	"max_growth":  {func(p Parameters) float64 { return p.MaxGrowth }, func(p *Parameters, v float64) { p.MaxGrowth = v }},
}

var paramAliases = map[string]string{
	"l":     "land",
	"ystar": "subsistence",
	"y*":    "subsistence",
	"λ":     "lambda",
	"α":     "alpha",
}

var paramNames = func() []string {
	names := make([]string, 0, len(paramFields))
	for name := range paramFields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}()

// ParamNames lists the canonical parameter names accepted by With.
func ParamNames() []string {
	out := make([]string, len(paramNames))
	copy(out, paramNames)
	return out
}

func resolveParam(name string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := paramAliases[key]; ok {
		key = alias
	}
	if _, ok := paramFields[key]; ok {
		return key, nil
	}
	if s := suggestParam(key); s != "" {
		return "", fmt.Errorf("%w: %q (did you mean %q?)", ErrUnknownParameter, name, s)
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownParameter, name)
}

func suggestParam(key string) string {
	best, bestDist := "", 3
	for _, name := range paramNames {
		if d := levenshtein.ComputeDistance(key, name); d < bestDist {
			best, bestDist = name, d
		}
	}
	return best
}

// Get returns the named parameter value.
func (p Parameters) Get(name string) (float64, error) {
	key, err := resolveParam(name)
	if err != nil {
		return 0, err
	}
	return paramFields[key].get(p), nil
}

// With returns a copy of p with the named parameter set to value. The copy
// is not validated; callers run Validate or let the model operations do it.
func (p Parameters) With(name string, value float64) (Parameters, error) {
	key, err := resolveParam(name)
	if err != nil {
		return p, err
	}
	paramFields[key].set(&p, value)
	return p, nil
}

// Params returns every parameter keyed by canonical name.
func (p Parameters) Params() map[string]float64 {
	out := make(map[string]float64, len(paramFields))
	for name, f := range paramFields {
		out[name] = f.get(p)
	}
	return out
}
