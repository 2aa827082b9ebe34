package scenario

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/malthus/internal/analysis"
	"github.com/san-kum/malthus/internal/config"
	"github.com/san-kum/malthus/internal/malthus"
	"github.com/san-kum/malthus/internal/metrics"
	"github.com/san-kum/malthus/internal/storage"
)

// Scenario is a scripted batch of model runs.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Steps       []Step `yaml:"steps"`
}

// Step is one run. Kind is simulate, equilibrium, sweep or regimes. Its
// base configuration is a preset or a run config file, never both.
type Step struct {
	Name    string             `yaml:"name"`
	Kind    string             `yaml:"kind"`
	Preset  string             `yaml:"preset"`
	Config  string             `yaml:"config"`
	Params  map[string]float64 `yaml:"params"`
	Horizon int                `yaml:"horizon"`
	Sweep   *SweepStep         `yaml:"sweep"`
	Save    bool               `yaml:"save"`
}

// SweepStep lists explicit values or a [Min, Max] grid of Steps points.
type SweepStep struct {
	Param   string    `yaml:"param"`
	Values  []float64 `yaml:"values"`
	Min     float64   `yaml:"min"`
	Max     float64   `yaml:"max"`
	Steps   int       `yaml:"steps"`
	Probe   string    `yaml:"probe"`
	Workers int       `yaml:"workers"`
}

// StepResult holds whichever result the step kind produced.
type StepResult struct {
	Name       string
	Kind       string
	RunID      string
	Trajectory *malthus.Trajectory
	Metrics    map[string]float64
	Outcome    *malthus.Outcome
	Sweep      *malthus.SweepResult
	Regimes    []analysis.RegimePoint
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if len(sc.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", sc.Name)
	}
	return &sc, nil
}

// Runner executes scenarios. Store may be nil, in which case Save is ignored.
type Runner struct {
	Store *storage.Store
	Log   zerolog.Logger
}

// Run executes every step in order and stops at the first failure,
// returning the results gathered so far.
func (r *Runner) Run(ctx context.Context, sc *Scenario) ([]StepResult, error) {
	results := make([]StepResult, 0, len(sc.Steps))

	for i, step := range sc.Steps {
		select {
		case <-ctx.Done():
			return results, ctx.Err()
		default:
		}

		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step-%d", i+1)
		}
		log := r.Log.With().Str("scenario", sc.Name).Str("step", name).Str("kind", step.Kind).Logger()
		log.Info().Msgf("running step %d/%d", i+1, len(sc.Steps))

		res, err := r.runStep(name, step, log)
		if err != nil {
			log.Error().Err(err).Msg("step failed")
			return results, fmt.Errorf("step %d (%s): %w", i+1, name, err)
		}
		results = append(results, res)
	}

	return results, nil
}

func (r *Runner) runStep(name string, step Step, log zerolog.Logger) (StepResult, error) {
	cfg, err := stepConfig(step)
	if err != nil {
		return StepResult{}, err
	}
	p := cfg.Parameters()
	res := StepResult{Name: name, Kind: step.Kind}

	switch step.Kind {
	case "simulate":
		tr, err := malthus.Simulate(p.Initial(), p, cfg.Horizon)
		if err != nil {
			return res, err
		}
		vals, err := metrics.Collect(tr, metrics.For(p)...)
		if err != nil {
			return res, err
		}
		res.Trajectory, res.Metrics = &tr, vals
		ev := log.Debug()
		for k, v := range vals {
			ev = ev.Float64(k, v)
		}
		ev.Msg("trajectory metrics")
		if r.save(step) {
			res.RunID, err = r.Store.SaveTrajectory(name, tr, vals)
		}
		return res, err

	case "equilibrium":
		out, err := malthus.Equilibrium(p, cfg.EquilibriumConfig())
		if err != nil {
			return res, err
		}
		res.Outcome = &out
		log.Info().Str("regime", out.Regime.String()).Float64("income", out.Income).Int("iterations", out.Iterations).Msg("equilibrium")
		if r.save(step) {
			res.RunID, err = r.Store.SaveOutcome(name, p, out)
		}
		return res, err

	case "sweep":
		if step.Sweep == nil {
			return res, fmt.Errorf("sweep step needs a sweep block")
		}
		probe, err := cfg.Probe(step.Sweep.Probe)
		if err != nil {
			return res, err
		}
		sw, err := malthus.SweepParallel(step.Sweep.Param, sweepValues(step.Sweep), p, probe, max(step.Sweep.Workers, 1))
		if err != nil {
			return res, err
		}
		res.Sweep = &sw
		log.Info().Str("param", sw.Param).Int("points", sw.Len()).Msg("sweep")
		if r.save(step) {
			res.RunID, err = r.Store.SaveSweep(name, p, sw)
		}
		return res, err

	case "regimes":
		if step.Sweep == nil {
			return res, fmt.Errorf("regimes step needs a sweep block")
		}
		pts, err := analysis.RegimeDiagram(p, step.Sweep.Param, step.Sweep.Min, step.Sweep.Max, step.Sweep.Steps, cfg.EquilibriumConfig())
		if err != nil {
			return res, err
		}
		res.Regimes = pts
		return res, nil

	default:
		return res, fmt.Errorf("unknown step kind %q", step.Kind)
	}
}

func (r *Runner) save(step Step) bool {
	return step.Save && r.Store != nil
}

func stepConfig(step Step) (*config.Config, error) {
	cfg := config.DefaultConfig()
	switch {
	case step.Preset != "" && step.Config != "":
		return nil, fmt.Errorf("step sets both preset %q and config %q", step.Preset, step.Config)
	case step.Preset != "":
		if cfg = config.GetPreset(step.Preset); cfg == nil {
			return nil, fmt.Errorf("unknown preset %q", step.Preset)
		}
	case step.Config != "":
		var err error
		if cfg, err = config.Load(step.Config); err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}

	p := cfg.Parameters()
	names := make([]string, 0, len(step.Params))
	for k := range step.Params {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		var err error
		if p, err = p.With(k, step.Params[k]); err != nil {
			return nil, err
		}
	}
	cfg.Params = config.FromParameters(p)

	if step.Horizon > 0 {
		cfg.Horizon = step.Horizon
	}
	return cfg, cfg.Validate()
}

func sweepValues(s *SweepStep) []float64 {
	if len(s.Values) > 0 {
		return s.Values
	}
	return analysis.Linspace(s.Min, s.Max, s.Steps)
}
