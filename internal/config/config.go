package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/malthus/internal/malthus"
)

const (
	DefaultHorizon       = 200
	DefaultTolerance     = 1e-9
	DefaultMaxIterations = 10000
	DefaultIncomeCeiling = 1e6
	DefaultGrowthStreak  = 100
	DefaultMinGrowthRate = 1e-3

	// EnvPrefix prefixes environment overrides, e.g. MALTHUS_PARAMS_LAMBDA.
	EnvPrefix = "MALTHUS"
)

type Config struct {
	Name        string            `yaml:"name" mapstructure:"name"`
	Params      ParamsConfig      `yaml:"params" mapstructure:"params"`
	Horizon     int               `yaml:"horizon" mapstructure:"horizon"`
	Equilibrium EquilibriumConfig `yaml:"equilibrium" mapstructure:"equilibrium"`
	Workers     int               `yaml:"workers" mapstructure:"workers"`
}

type ParamsConfig struct {
	Lambda      float64 `yaml:"lambda" mapstructure:"lambda"`
	G           float64 `yaml:"g" mapstructure:"g"`
	Alpha       float64 `yaml:"alpha" mapstructure:"alpha"`
	Land        float64 `yaml:"land" mapstructure:"land"`
	N0          float64 `yaml:"n0" mapstructure:"n0"`
	A0          float64 `yaml:"a0" mapstructure:"a0"`
	Subsistence float64 `yaml:"subsistence" mapstructure:"subsistence"`
	MaxGrowth   float64 `yaml:"max_growth" mapstructure:"max_growth"`
}

type EquilibriumConfig struct {
	Tolerance     float64 `yaml:"tolerance" mapstructure:"tolerance"`
	MaxIterations int     `yaml:"max_iterations" mapstructure:"max_iterations"`
	IncomeCeiling float64 `yaml:"income_ceiling" mapstructure:"income_ceiling"`
	GrowthStreak  int     `yaml:"growth_streak" mapstructure:"growth_streak"`
	MinGrowthRate float64 `yaml:"min_growth_rate" mapstructure:"min_growth_rate"`
}

func DefaultConfig() *Config {
	p := malthus.DefaultParameters()
	return &Config{
		Name:    "default",
		Params:  FromParameters(p),
		Horizon: DefaultHorizon,
		Equilibrium: EquilibriumConfig{
			Tolerance:     DefaultTolerance,
			MaxIterations: DefaultMaxIterations,
			IncomeCeiling: DefaultIncomeCeiling,
			GrowthStreak:  DefaultGrowthStreak,
			MinGrowthRate: DefaultMinGrowthRate,
		},
		Workers: 1,
	}
}

func FromParameters(p malthus.Parameters) ParamsConfig {
	return ParamsConfig{
		Lambda:      p.Lambda,
		G:           p.G,
		Alpha:       p.Alpha,
		Land:        p.Land,
		N0:          p.N0,
		A0:          p.A0,
		Subsistence: p.Subsistence,
		MaxGrowth:   p.MaxGrowth,
	}
}

// Load reads a YAML config on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadLayered resolves defaults, then the YAML file at path (if any), then
// MALTHUS_* environment variables.
func LoadLayered(path string) (*Config, error) {
	return Layer(DefaultConfig(), path)
}

// Layer is LoadLayered starting from base instead of the defaults.
func Layer(base *Config, path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, base)

	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("name", cfg.Name)
	v.SetDefault("horizon", cfg.Horizon)
	v.SetDefault("workers", cfg.Workers)

	v.SetDefault("params.lambda", cfg.Params.Lambda)
	v.SetDefault("params.g", cfg.Params.G)
	v.SetDefault("params.alpha", cfg.Params.Alpha)
	v.SetDefault("params.land", cfg.Params.Land)
	v.SetDefault("params.n0", cfg.Params.N0)
	v.SetDefault("params.a0", cfg.Params.A0)
	v.SetDefault("params.subsistence", cfg.Params.Subsistence)
	v.SetDefault("params.max_growth", cfg.Params.MaxGrowth)

	v.SetDefault("equilibrium.tolerance", cfg.Equilibrium.Tolerance)
	v.SetDefault("equilibrium.max_iterations", cfg.Equilibrium.MaxIterations)
	v.SetDefault("equilibrium.income_ceiling", cfg.Equilibrium.IncomeCeiling)
	v.SetDefault("equilibrium.growth_streak", cfg.Equilibrium.GrowthStreak)
	v.SetDefault("equilibrium.min_growth_rate", cfg.Equilibrium.MinGrowthRate)
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Parameters() malthus.Parameters {
	return malthus.Parameters{
		Lambda:      c.Params.Lambda,
		G:           c.Params.G,
		Alpha:       c.Params.Alpha,
		Land:        c.Params.Land,
		N0:          c.Params.N0,
		A0:          c.Params.A0,
		Subsistence: c.Params.Subsistence,
		MaxGrowth:   c.Params.MaxGrowth,
	}
}

func (c *Config) EquilibriumConfig() malthus.EquilibriumConfig {
	return malthus.EquilibriumConfig{
		Tolerance:     c.Equilibrium.Tolerance,
		MaxIterations: c.Equilibrium.MaxIterations,
		Divergence: malthus.DivergenceConfig{
			IncomeCeiling: c.Equilibrium.IncomeCeiling,
			GrowthStreak:  c.Equilibrium.GrowthStreak,
			MinGrowthRate: c.Equilibrium.MinGrowthRate,
		},
	}
}

// Probe returns the sweep probe for kind: "simulate" (the default) runs
// Horizon periods, "equilibrium" solves with the equilibrium settings.
func (c *Config) Probe(kind string) (malthus.Probe, error) {
	switch kind {
	case "", "simulate":
		return malthus.SimulateFor(c.Horizon), nil
	case "equilibrium":
		return malthus.SolveEquilibrium(c.EquilibriumConfig()), nil
	default:
		return nil, fmt.Errorf("unknown probe %q (want simulate or equilibrium)", kind)
	}
}

func (c *Config) Validate() error {
	if err := c.Parameters().Validate(); err != nil {
		return err
	}
	if c.Horizon < 0 {
		return fmt.Errorf("%w: horizon must be non-negative, got %d", malthus.ErrInvalidParameter, c.Horizon)
	}
	return nil
}
