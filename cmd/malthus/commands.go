package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/malthus/internal/analysis"
	"github.com/san-kum/malthus/internal/config"
	"github.com/san-kum/malthus/internal/export"
	"github.com/san-kum/malthus/internal/malthus"
	"github.com/san-kum/malthus/internal/metrics"
	"github.com/san-kum/malthus/internal/optim"
	"github.com/san-kum/malthus/internal/scenario"
	"github.com/san-kum/malthus/internal/storage"
	"github.com/san-kum/malthus/internal/viz"
)

func openStore() (*storage.Store, error) {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return nil, err
	}
	return st, nil
}

func runSimulate(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	p := cfg.Parameters()

	log.Info().Str("name", cfg.Name).Int("horizon", cfg.Horizon).Msg("simulating")
	start := time.Now()

	tr, err := malthus.Simulate(p.Initial(), p, cfg.Horizon)
	if err != nil {
		return err
	}
	rows, err := storage.Rows(tr)
	if err != nil {
		return err
	}
	vals, err := metrics.Collect(tr, metrics.For(p)...)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	out := cmd.OutOrStdout()
	final := rows[len(rows)-1]
	fmt.Fprintf(out, "completed %d periods in %v\n", cfg.Horizon, elapsed)
	fmt.Fprintf(out, "final: t=%d population=%.6g technology=%.6g income=%.6g\n",
		final.T, final.Population, final.Technology, final.Income)
	printMetrics(out, vals)

	if plot {
		plotRows(out, rows)
	}

	if noSave {
		return nil
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	runID, err := st.SaveTrajectory(cfg.Name, tr, vals)
	if err != nil {
		return err
	}
	log.Debug().Str("run", runID).Msg("saved")
	fmt.Fprintf(out, "run id: %s\n", runID)
	return nil
}

func printMetrics(w io.Writer, vals map[string]float64) {
	names := make([]string, 0, len(vals))
	for name := range vals {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(w, "\nmetrics:")
	for _, name := range names {
		fmt.Fprintf(w, "  %s: %.6f\n", name, vals[name])
	}
}

func plotRows(w io.Writer, rows []storage.Row) {
	incomes := make([]float64, len(rows))
	pops := make([]float64, len(rows))
	for i, r := range rows {
		incomes[i] = r.Income
		pops[i] = r.Population
	}
	if len(rows) < 2 {
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, asciigraph.Plot(incomes,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("income per capita"),
	))
	fmt.Fprintln(w)
	fmt.Fprintln(w, asciigraph.Plot(pops,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("population"),
	))
	fmt.Fprintln(w)
}

func runEquilibrium(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	p := cfg.Parameters()

	res, err := malthus.Equilibrium(p, cfg.EquilibriumConfig())
	var cerr *malthus.ConvergenceError
	if errors.As(err, &cerr) {
		log.Warn().
			Int("iterations", cerr.Iterations).
			Float64("income", cerr.Income).
			Bool("overflow", cerr.Overflow).
			Str("last", cerr.Last.String()).
			Msg("no convergence")
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "regime: %s\n", res.Regime)
	fmt.Fprintf(out, "iterations: %d\n", res.Iterations)
	fmt.Fprintf(out, "income: %.9g\n", res.Income)
	fmt.Fprintf(out, "state: %s\n", res.State)
	if res.Regime == malthus.DivergentGrowth {
		fmt.Fprintf(out, "takeoff threshold g: %.6g\n", analysis.TheoreticalTakeoff(p))
	}

	if noSave {
		return nil
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	runID, err := st.SaveOutcome(cfg.Name, p, res)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "run id: %s\n", runID)
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	name := args[0]

	probe, err := cfg.Probe(probeKind)
	if err != nil {
		return err
	}
	values := sweepValues
	if len(values) == 0 {
		values = analysis.Linspace(gridMin, gridMax, gridSteps)
	}

	log.Info().Str("param", name).Int("points", len(values)).Str("probe", probe.Kind()).Int("workers", cfg.Workers).Msg("sweeping")

	var res malthus.SweepResult
	if cfg.Workers > 1 {
		res, err = malthus.SweepParallel(name, values, cfg.Parameters(), probe, cfg.Workers)
	} else {
		res, err = malthus.Sweep(name, values, cfg.Parameters(), probe)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.ToUpper(res.Param)+"\tREGIME\tT\tPOPULATION\tTECHNOLOGY\tINCOME")
	for _, pt := range res.Points {
		var final malthus.State
		var income float64
		regime := "-"
		switch {
		case pt.Outcome != nil:
			final, regime, income = pt.Outcome.State, pt.Outcome.Regime.String(), pt.Outcome.Income
		case pt.Trajectory != nil:
			if final, err = pt.Trajectory.Final(); err != nil {
				return err
			}
			if income, err = final.Income(pt.Params); err != nil {
				return err
			}
		}
		fmt.Fprintf(w, "%g\t%s\t%d\t%.6g\t%.6g\t%.6g\n",
			pt.Value, regime, final.T, final.Population, final.Technology, income)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if noSave {
		return nil
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	runID, err := st.SaveSweep(cfg.Name, cfg.Parameters(), res)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "run id: %s\n", runID)
	return nil
}

func runRegimes(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	name := args[0]
	p := cfg.Parameters()
	eq := cfg.EquilibriumConfig()

	points, err := analysis.RegimeDiagram(p, name, gridMin, gridMax, gridSteps, eq)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "regimes over %s in [%g, %g]\n\n", name, gridMin, gridMax)
	fmt.Fprint(out, analysis.RegimesToASCII(points, name, width))

	if !critical {
		return nil
	}
	v, err := analysis.CriticalValue(p, name, gridMin, gridMax, critTol, eq)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\ncritical %s: %.6g\n", name, v)
	if strings.EqualFold(name, "g") {
		fmt.Fprintf(out, "theoretical: %.6g\n", analysis.TheoreticalTakeoff(p))
	}
	return nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	names, ranges, err := parseGrid(gridSpecs)
	if err != nil {
		return err
	}
	g, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}

	log.Info().Strs("params", names).Int("points", g.Size()).Str("metric", metricName).Msg("searching")
	res, err := g.Search(cmd.Context(), cfg.Parameters(), optim.MetricObjective(cfg.Horizon, metricName), !minimize)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "evaluated %d points (%d skipped)\n", res.Evaluated, res.Skipped)
	fmt.Fprintf(out, "best %s: %.6g\n", metricName, res.Score)
	for _, name := range names {
		fmt.Fprintf(out, "  %s = %g\n", name, res.Point[name])
	}
	return nil
}

// parseGrid reads "name=v1,v2,..." args in order.
func parseGrid(args []string) ([]string, [][]float64, error) {
	names := make([]string, 0, len(args))
	ranges := make([][]float64, 0, len(args))
	for _, arg := range args {
		name, list, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			return nil, nil, fmt.Errorf("bad grid %q: want name=v1,v2,...", arg)
		}
		vals, err := parseRecord(strings.Split(list, ",")...)
		if err != nil {
			return nil, nil, fmt.Errorf("bad grid %q: %w", arg, err)
		}
		names = append(names, strings.TrimSpace(name))
		ranges = append(ranges, vals)
	}
	return names, ranges, nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tNAME\tTIME\tSUMMARY")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			run.ID,
			run.Kind,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			summarize(run),
		)
	}
	return w.Flush()
}

func summarize(run storage.RunMetadata) string {
	switch run.Kind {
	case "simulate":
		return fmt.Sprintf("horizon=%d", run.Horizon)
	case "equilibrium":
		return fmt.Sprintf("%s y=%.4g after %d", run.Regime, run.Income, run.Iterations)
	case "sweep":
		return fmt.Sprintf("%s over %d values (%s)", run.SweepParam, len(run.Values), run.SweepProbe)
	}
	return ""
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run: %s\n", meta.ID)
	fmt.Fprintf(out, "name: %s\n", meta.Name)

	switch meta.Kind {
	case "simulate":
		rows, err := st.LoadStates(runID)
		if err != nil {
			return err
		}
		if len(rows) < 2 {
			return fmt.Errorf("no data to plot")
		}
		fmt.Fprintf(out, "samples: %d\n", len(rows))
		plotRows(out, rows)
	case "sweep":
		records, err := st.LoadSweep(runID)
		if err != nil {
			return err
		}
		incomes := make([]float64, 0, len(records))
		for _, rec := range records[min(1, len(records)):] {
			vals, err := parseRecord(rec[5])
			if err != nil {
				return err
			}
			incomes = append(incomes, vals[0])
		}
		if len(incomes) < 2 {
			return fmt.Errorf("no data to plot")
		}
		fmt.Fprintf(out, "samples: %d\n\n", len(incomes))
		fmt.Fprintln(out, asciigraph.Plot(incomes,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("final income by %s", meta.SweepParam)),
		))
	default:
		return fmt.Errorf("run %s (%s) has no series to plot", runID, meta.Kind)
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	return storage.New(dataDir).ExportJSON(cmd.OutOrStdout(), args[0])
}

func exportCSV(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	w := csv.NewWriter(cmd.OutOrStdout())
	switch meta.Kind {
	case "simulate":
		rows, err := st.LoadStates(runID)
		if err != nil {
			return err
		}
		if err := w.Write([]string{"t", "population", "technology", "income"}); err != nil {
			return err
		}
		for _, r := range rows {
			record := []string{
				strconv.Itoa(r.T),
				strconv.FormatFloat(r.Population, 'g', -1, 64),
				strconv.FormatFloat(r.Technology, 'g', -1, 64),
				strconv.FormatFloat(r.Income, 'g', -1, 64),
			}
			if err := w.Write(record); err != nil {
				return err
			}
		}
	case "sweep":
		records, err := st.LoadSweep(runID)
		if err != nil {
			return err
		}
		if err := w.WriteAll(records); err != nil {
			return err
		}
	default:
		records := [][]string{
			{"regime", "income", "iterations"},
			{meta.Regime, strconv.FormatFloat(meta.Income, 'g', -1, 64), strconv.Itoa(meta.Iterations)},
		}
		if err := w.WriteAll(records); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func exportSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	var series []export.Series
	switch meta.Kind {
	case "simulate":
		rows, err := st.LoadStates(runID)
		if err != nil {
			return err
		}
		for _, field := range svgFields {
			s, err := export.FromRows(rows, field)
			if err != nil {
				return err
			}
			series = append(series, s)
		}
	case "sweep":
		records, err := st.LoadSweep(runID)
		if err != nil {
			return err
		}
		s := export.Series{Name: "income by " + meta.SweepParam}
		for _, rec := range records[min(1, len(records)):] {
			vals, err := parseRecord(rec[0], rec[5])
			if err != nil {
				return err
			}
			s.Points = append(s.Points, export.Point{X: vals[0], Y: vals[1]})
		}
		series = append(series, s)
	default:
		return fmt.Errorf("run %s (%s) has no series to export", runID, meta.Kind)
	}

	if svgOut == "" {
		return export.WriteSVG(cmd.OutOrStdout(), series, svgWidth, svgHeight)
	}
	f, err := os.Create(svgOut)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := export.WriteSVG(f, series, svgWidth, svgHeight); err != nil {
		return err
	}
	log.Info().Str("path", svgOut).Msg("svg written")
	return nil
}

func parseRecord(fields ...string) ([]float64, error) {
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tLAMBDA\tG\tALPHA\tN0\tMAX_GROWTH\tHORIZON\tREGIME")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		regime := "undecided"
		if res, err := malthus.Equilibrium(cfg.Parameters(), cfg.EquilibriumConfig()); err == nil {
			regime = res.Regime.String()
		}
		fmt.Fprintf(w, "%s\t%g\t%g\t%g\t%g\t%g\t%d\t%s\n",
			name, cfg.Params.Lambda, cfg.Params.G, cfg.Params.Alpha, cfg.Params.N0,
			cfg.Params.MaxGrowth, cfg.Horizon, regime)
	}
	return w.Flush()
}

func initConfig(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if err := config.Save(args[0], cfg); err != nil {
		return err
	}
	log.Info().Str("path", args[0]).Str("name", cfg.Name).Msg("config written")
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := scenario.Load(args[0])
	if err != nil {
		return fmt.Errorf("load scenario: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	runner := scenario.Runner{Log: log}
	if !noSave {
		if runner.Store, err = openStore(); err != nil {
			return err
		}
	}

	results, err := runner.Run(ctx, sc)

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tKIND\tRESULT\tRUN")
	for _, res := range results {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", res.Name, res.Kind, describeStep(res), res.RunID)
	}
	if ferr := w.Flush(); ferr != nil && err == nil {
		err = ferr
	}
	return err
}

func describeStep(res scenario.StepResult) string {
	switch {
	case res.Outcome != nil:
		return fmt.Sprintf("%s y=%.4g", res.Outcome.Regime, res.Outcome.Income)
	case res.Sweep != nil:
		return fmt.Sprintf("%d points over %s", res.Sweep.Len(), res.Sweep.Param)
	case res.Regimes != nil:
		return fmt.Sprintf("%d regime points", len(res.Regimes))
	case res.Trajectory != nil:
		return fmt.Sprintf("%d states", res.Trajectory.Len())
	}
	return "-"
}

func runLive(cmd *cobra.Command, args []string) error {
	if !slices.Contains(viz.ThemeNames(), theme) {
		return fmt.Errorf("unknown theme: %s (available: %v)", theme, viz.ThemeNames())
	}
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	m, err := viz.NewLiveModel(cfg.Name, cfg.Parameters(), viz.GetTheme(theme))
	if err != nil {
		return err
	}

	p := tea.NewProgram(m.WithStepsPerTick(stepsPerTick), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
