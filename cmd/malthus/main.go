package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/san-kum/malthus/internal/config"
	"github.com/san-kum/malthus/internal/malthus"
)

var (
	dataDir    string
	configFile string
	presetName string
	verbose    bool

	horizon   int
	tolerance float64
	maxIter   int
	workers   int

	// Sweep and regime grid
	sweepValues []float64
	gridMin     float64
	gridMax     float64
	gridSteps   int
	probeKind   string

	// Regimes
	critical bool
	critTol  float64
	width    int

	plot   bool
	noSave bool

	// Grid search
	gridSpecs  []string
	metricName string
	minimize   bool

	// SVG export
	svgFields []string
	svgOut    string
	svgWidth  int
	svgHeight int

	// Live view
	theme        string
	stepsPerTick int

	// paramValues holds one flag target per model parameter, keyed by
	// canonical parameter name.
	paramValues map[string]*float64

	log zerolog.Logger
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	paramValues = make(map[string]*float64)

	rootCmd := &cobra.Command{
		Use:          "malthus",
		Short:        "malthusian growth model lab",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log = config.NewLogger(cmd.ErrOrStderr(), verbose)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".malthus", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&presetName, "preset", "", "start from a named preset")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "simulate a trajectory",
		Args:  cobra.NoArgs,
		RunE:  runSimulate,
	}
	addParamFlags(simulateCmd.Flags())
	simulateCmd.Flags().IntVar(&horizon, "horizon", config.DefaultHorizon, "number of periods")
	simulateCmd.Flags().BoolVar(&plot, "plot", false, "plot income and population")
	simulateCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	equilibriumCmd := &cobra.Command{
		Use:   "equilibrium",
		Short: "iterate to a steady state or sustained growth",
		Args:  cobra.NoArgs,
		RunE:  runEquilibrium,
	}
	addParamFlags(equilibriumCmd.Flags())
	addEquilibriumFlags(equilibriumCmd.Flags())
	equilibriumCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	sweepCmd := &cobra.Command{
		Use:   "sweep [param]",
		Short: "run the model over values of one parameter",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}
	addParamFlags(sweepCmd.Flags())
	addEquilibriumFlags(sweepCmd.Flags())
	addGridFlags(sweepCmd.Flags())
	sweepCmd.Flags().Float64SliceVar(&sweepValues, "values", nil, "explicit values (overrides --min/--max/--steps)")
	sweepCmd.Flags().StringVar(&probeKind, "probe", "simulate", "simulate or equilibrium")
	sweepCmd.Flags().IntVar(&horizon, "horizon", config.DefaultHorizon, "periods per simulation")
	sweepCmd.Flags().IntVar(&workers, "workers", 1, "parallel workers")
	sweepCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	regimesCmd := &cobra.Command{
		Use:   "regimes [param]",
		Short: "regime diagram over a parameter range",
		Args:  cobra.ExactArgs(1),
		RunE:  runRegimes,
	}
	addParamFlags(regimesCmd.Flags())
	addEquilibriumFlags(regimesCmd.Flags())
	addGridFlags(regimesCmd.Flags())
	regimesCmd.Flags().BoolVar(&critical, "critical", false, "bisect for the regime boundary")
	regimesCmd.Flags().Float64Var(&critTol, "tol", 1e-4, "bisection tolerance")
	regimesCmd.Flags().IntVar(&width, "width", 40, "bar width")

	searchCmd := &cobra.Command{
		Use:   "search",
		Short: "grid search for the parameters that best score on a metric",
		Args:  cobra.NoArgs,
		RunE:  runSearch,
	}
	addParamFlags(searchCmd.Flags())
	searchCmd.Flags().StringArrayVar(&gridSpecs, "grid", nil, "name=v1,v2,... (repeatable)")
	searchCmd.Flags().StringVar(&metricName, "metric", "income_growth", "metric to score")
	searchCmd.Flags().BoolVar(&minimize, "minimize", false, "keep the lowest score instead of the highest")
	searchCmd.Flags().IntVar(&horizon, "horizon", config.DefaultHorizon, "periods per simulation")
	_ = searchCmd.MarkFlagRequired("grid")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export a run as an SVG line chart",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringSliceVar(&svgFields, "field", []string{"income"}, "series to draw (income, population, technology)")
	exportSVGCmd.Flags().StringVarP(&svgOut, "out", "o", "", "output file (default stdout)")
	exportSVGCmd.Flags().IntVar(&svgWidth, "width", 800, "chart width")
	exportSVGCmd.Flags().IntVar(&svgHeight, "height", 400, "chart height")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	initConfigCmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "write the resolved configuration to a yaml file",
		Args:  cobra.ExactArgs(1),
		RunE:  initConfig,
	}
	addParamFlags(initConfigCmd.Flags())
	initConfigCmd.Flags().IntVar(&horizon, "horizon", config.DefaultHorizon, "number of periods")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted batch of steps",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	scenarioCmd.Flags().BoolVar(&noSave, "no-save", false, "ignore save directives")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run the model with live visualization",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addParamFlags(liveCmd.Flags())
	liveCmd.Flags().StringVar(&theme, "theme", "harvest", "color theme")
	liveCmd.Flags().IntVar(&stepsPerTick, "speed", 1, "periods per frame")

	rootCmd.AddCommand(simulateCmd, equilibriumCmd, sweepCmd, regimesCmd, searchCmd, listCmd, plotCmd,
		exportJSONCmd, exportCSVCmd, exportSVGCmd, presetsCmd, initConfigCmd, scenarioCmd, liveCmd)

	return rootCmd
}

func flagName(param string) string {
	return strings.ReplaceAll(param, "_", "-")
}

func addParamFlags(fs *pflag.FlagSet) {
	defaults := malthus.DefaultParameters()
	for _, name := range malthus.ParamNames() {
		v, ok := paramValues[name]
		if !ok {
			v = new(float64)
			paramValues[name] = v
		}
		def, _ := defaults.Get(name)
		fs.Float64Var(v, flagName(name), def, "model parameter "+name)
	}
}

func addEquilibriumFlags(fs *pflag.FlagSet) {
	fs.Float64Var(&tolerance, "tolerance", config.DefaultTolerance, "convergence tolerance on income")
	fs.IntVar(&maxIter, "max-iter", config.DefaultMaxIterations, "iteration limit")
}

func addGridFlags(fs *pflag.FlagSet) {
	fs.Float64Var(&gridMin, "min", 0, "range start")
	fs.Float64Var(&gridMax, "max", 0.2, "range end")
	fs.IntVar(&gridSteps, "steps", 21, "number of grid points")
}

// resolveConfig layers preset (or defaults), config file, MALTHUS_*
// environment variables and finally the flags the user actually set.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	var (
		cfg *config.Config
		err error
	)
	if presetName == "" {
		cfg, err = config.LoadLayered(configFile)
	} else {
		base := config.GetPreset(presetName)
		if base == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", presetName, config.ListPresets())
		}
		cfg, err = config.Layer(base, configFile)
	}
	if err != nil {
		return nil, err
	}

	p := cfg.Parameters()
	for name, v := range paramValues {
		if !changed[flagName(name)] {
			continue
		}
		if p, err = p.With(name, *v); err != nil {
			return nil, err
		}
	}
	cfg.Params = config.FromParameters(p)

	if changed["horizon"] {
		cfg.Horizon = horizon
	}
	if changed["tolerance"] {
		cfg.Equilibrium.Tolerance = tolerance
	}
	if changed["max-iter"] {
		cfg.Equilibrium.MaxIterations = maxIter
	}
	if changed["workers"] {
		cfg.Workers = workers
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log.Debug().
		Str("name", cfg.Name).
		Interface("params", cfg.Parameters().Params()).
		Int("horizon", cfg.Horizon).
		Int("workers", cfg.Workers).
		Msg("configuration")
	return cfg, nil
}
