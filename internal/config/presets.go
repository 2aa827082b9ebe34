package config

import "sort"

func preset(name string, params ParamsConfig, horizon int) *Config {
	cfg := DefaultConfig()
	cfg.Name = name
	cfg.Params = params
	cfg.Horizon = horizon
	return cfg
}

var Presets = map[string]*Config{
	"stagnation": preset("stagnation", ParamsConfig{
		Lambda: 0.5, G: 0.0, Alpha: 0.7, Land: 100, N0: 50, A0: 1, Subsistence: 1,
	}, 200),
	"slow-adjust": preset("slow-adjust", ParamsConfig{
		Lambda: 0.1, G: 0.005, Alpha: 0.7, Land: 100, N0: 50, A0: 1, Subsistence: 1,
	}, 600),
	"crowded": preset("crowded", ParamsConfig{
		Lambda: 0.5, G: 0.0, Alpha: 0.6, Land: 100, N0: 250, A0: 1, Subsistence: 1,
	}, 200),
	"takeoff": preset("takeoff", ParamsConfig{
		Lambda: 0.05, G: 0.05, Alpha: 0.7, Land: 100, N0: 50, A0: 1, Subsistence: 1,
	}, 300),
	"fertility-cap": preset("fertility-cap", ParamsConfig{
		Lambda: 0.5, G: 0.02, Alpha: 0.7, Land: 100, N0: 50, A0: 1, Subsistence: 1, MaxGrowth: 0.03,
	}, 400),
}

func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
