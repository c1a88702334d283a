package main

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/san-kum/virtdrone/internal/analysis"
	"github.com/san-kum/virtdrone/internal/automation"
	"github.com/san-kum/virtdrone/internal/config"
	"github.com/san-kum/virtdrone/internal/experiment"
	"github.com/san-kum/virtdrone/internal/optim"
	"github.com/san-kum/virtdrone/internal/sim"
	"github.com/san-kum/virtdrone/internal/storage"
	"github.com/san-kum/virtdrone/internal/tui"
)

const (
	defaultTickSteps = 10
	defaultTickDt    = 0.01
)

// runTicks is the bare `virtdrone [steps] [dt]` mode: start, run, stop and
// print every tick.
func runTicks(cmd *cobra.Command, args []string, logger *slog.Logger) error {
	n, tickDt := defaultTickSteps, defaultTickDt
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v < 0 {
			return errUsage
		}
		n = v
	}
	if len(args) > 1 {
		v, err := strconv.ParseFloat(args[1], 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return errUsage
		}
		tickDt = v
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	exp, err := experiment.New(cfg, logger)
	if err != nil {
		return err
	}
	d, err := exp.Build(cfg.Simulation.Seed)
	if err != nil {
		return err
	}
	d.AddObserver(sim.ObserverFunc(func(t sim.Telemetry) {
		fmt.Fprintln(os.Stdout, formatTick(t))
	}))

	s := sim.NewSimulation(d)
	s.Start()
	s.RunForSteps(n, tickDt)
	s.Stop()
	return d.Err()
}

func formatTick(t sim.Telemetry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "t=%.3fs alt=%.3fm battery=%.2f%%", t.Time, t.AltitudeM, t.SoCPercent)
	for _, m := range t.Motors {
		fmt.Fprintf(&b, " %s[T=%.2fC I=%.2fA RPM=%.0f]", m.Name, m.TemperatureC, m.CurrentA, m.SpeedRPM)
	}
	return b.String()
}

func runSimulation(cmd *cobra.Command, logger *slog.Logger) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	exp, err := experiment.New(cfg, logger)
	if err != nil {
		return err
	}

	var observers []sim.Observer
	if watch {
		live := tui.NewLiveRenderer(os.Stdout, presetName(), frameRate)
		live.Start()
		defer live.Stop()
		observers = append(observers, live)
	}

	logger.Info("running simulation", "preset", presetName(), "steps", cfg.Simulation.Steps, "dt", cfg.Simulation.Dt)
	start := time.Now()

	result, err := exp.Run(cmd.Context(), observers...)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	meta := runMetadata(cfg)
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(meta, result)
	if err != nil {
		return err
	}

	if sqlitePath != "" {
		db := storage.NewSqliteStore(sqlitePath)
		defer db.Close()
		id, err := db.SaveRun(cmd.Context(), meta, result)
		if err != nil {
			return fmt.Errorf("saving run to %s: %w", sqlitePath, err)
		}
		logger.Debug("run stored in sqlite", "path", sqlitePath, "id", id)
	}

	final := result.Final()
	fmt.Printf("completed in %v\n", elapsed.Round(time.Millisecond))
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %s (%.1fs simulated)\n", humanize.Comma(int64(result.StepsTaken)), final.Time)
	fmt.Printf("final: alt=%.2fm target=%.2fm soc=%.1f%% v=%.2fV\n", final.AltitudeM, final.TargetM, final.SoCPercent, final.BatteryV)
	printMetrics(result.Metrics)
	return nil
}

func presetName() string {
	if preset == "" {
		return "custom"
	}
	return preset
}

func runMetadata(cfg *config.Config) storage.RunMetadata {
	return storage.RunMetadata{
		Preset:     presetName(),
		Seed:       cfg.Simulation.Seed,
		Dt:         cfg.Simulation.Dt,
		Steps:      cfg.Simulation.Steps,
		Integrator: cfg.Simulation.Integrator,
		Controller: cfg.Simulation.Controller,
		SpeedLaw:   cfg.Simulation.SpeedLaw,
		TargetM:    cfg.Controller.TargetAltitude,
	}
}

func printMetrics(metrics map[string]float64) {
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("\nmetrics:")
	for _, name := range names {
		val := metrics[name]
		if name == "energy_wh" {
			fmt.Printf("  %s: %.6f (%s)\n", name, val, humanize.SIWithDigits(val*3600, 2, "J"))
			continue
		}
		fmt.Printf("  %s: %.6f\n", name, val)
	}
}

func runBatch(cmd *cobra.Command, args []string, logger *slog.Logger) error {
	n, err := strconv.Atoi(args[0])
	if err != nil || n <= 0 {
		return fmt.Errorf("batch size must be a positive integer, got %q", args[0])
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	exp, err := experiment.New(cfg, logger)
	if err != nil {
		return err
	}

	start := time.Now()
	results, err := exp.RunBatch(cmd.Context(), n)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tFINAL_ALT\tSOC\tTRACK_RMS\tSETTLED\tENERGY\tERRORS")
	var sumRMS float64
	for i, r := range results {
		final := r.Final()
		sumRMS += r.Metrics["tracking_rms_m"]
		fmt.Fprintf(w, "%d\t%.3fm\t%.1f%%\t%.3fm\t%.2f\t%s\t%d\n",
			cfg.Simulation.Seed+int64(i),
			final.AltitudeM,
			final.SoCPercent,
			r.Metrics["tracking_rms_m"],
			r.Metrics["settled_fraction"],
			humanize.SIWithDigits(r.Metrics["energy_wh"]*3600, 2, "J"),
			len(r.Errors),
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\n%s runs in %v, mean tracking rms %.3fm\n",
		humanize.Comma(int64(len(results))), time.Since(start).Round(time.Millisecond), sumRMS/float64(len(results)))
	return nil
}

// parseGrid turns "name=v1,v2" specs into names and value ranges.
func parseGrid(specs []string) ([]string, [][]float64, error) {
	names := make([]string, 0, len(specs))
	ranges := make([][]float64, 0, len(specs))
	for _, entry := range specs {
		name, list, ok := strings.Cut(entry, "=")
		if !ok || name == "" || list == "" {
			return nil, nil, fmt.Errorf("grid %q: want name=v1,v2,...", entry)
		}
		var vals []float64
		for _, field := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("grid %q: %w", entry, err)
			}
			vals = append(vals, v)
		}
		names = append(names, name)
		ranges = append(ranges, vals)
	}
	return names, ranges, nil
}

func runTune(cmd *cobra.Command, logger *slog.Logger) error {
	if len(gridSpecs) == 0 {
		return fmt.Errorf("at least one --grid is required (params: %s)", strings.Join(config.ControllerParams(), ", "))
	}
	names, ranges, err := parseGrid(gridSpecs)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	gs := optim.NewGridSearch(names, ranges)
	best, val, err := gs.Search(cmd.Context(), optim.ControllerBuilder(cfg, logger), metric)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.ToUpper(strings.Join(names, "\t"))+"\t"+strings.ToUpper(metric))
	for _, e := range gs.Evaluations() {
		for _, name := range names {
			fmt.Fprintf(w, "%g\t", e.Params[name])
		}
		if e.Err != nil {
			fmt.Fprintf(w, "error: %v\n", e.Err)
			continue
		}
		fmt.Fprintf(w, "%.6f\n", e.Value)
	}
	if flushErr := w.Flush(); flushErr != nil {
		return flushErr
	}
	if err != nil {
		return err
	}

	fmt.Printf("\nbest %s=%.6f with", metric, val)
	for _, name := range names {
		fmt.Printf(" %s=%g", name, best[name])
	}
	fmt.Println()
	return nil
}

func runSweep(cmd *cobra.Command, args []string, logger *slog.Logger) error {
	param := args[0]
	lo, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("min: %w", err)
	}
	hi, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return fmt.Errorf("max: %w", err)
	}
	n, err := strconv.Atoi(args[3])
	if err != nil {
		return fmt.Errorf("steps: %w", err)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	build := optim.ControllerBuilder(cfg, logger)

	points, err := analysis.Sweep(cmd.Context(), lo, hi, n, func(ctx context.Context, v float64) (*sim.Result, error) {
		exp, err := build(map[string]float64{param: v})
		if err != nil {
			return nil, err
		}
		return exp.Run(ctx)
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\tFINAL_ALT\n", strings.ToUpper(param), strings.ToUpper(metric))
	for _, p := range points {
		if p.Err != nil {
			fmt.Fprintf(w, "%g\terror: %v\t\n", p.Param, p.Err)
			continue
		}
		fmt.Fprintf(w, "%g\t%.6f\t%.3fm\n", p.Param, p.Metrics[metric], p.Final.AltitudeM)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if plot := analysis.SweepToASCII(points, metric, 60, 12); plot != "" {
		fmt.Printf("\n%s vs %s\n%s\n", metric, param, plot)
	}
	return nil
}

func runScenario(cmd *cobra.Command, args []string, logger *slog.Logger) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	results, err := automation.RunScenario(cmd.Context(), scenario, cfg, logger)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FLIGHT\tSTEPS\tFINAL_ALT\tTARGET\tSOC\tTRACK_RMS\tSAVED")
	for i, fr := range results {
		name := fr.Spec.Name
		if name == "" {
			name = fmt.Sprintf("#%d", i+1)
		}

		saved := "-"
		if fr.Spec.SaveAs != "" {
			if err := st.Init(); err != nil {
				return err
			}
			meta := runMetadata(fr.Config)
			meta.Preset = fr.Spec.SaveAs
			if saved, err = st.Save(meta, fr.Result); err != nil {
				return err
			}
		}

		final := fr.Result.Final()
		fmt.Fprintf(w, "%s\t%s\t%.3fm\t%.1fm\t%.1f%%\t%.3fm\t%s\n",
			name,
			humanize.Comma(int64(fr.Result.StepsTaken)),
			final.AltitudeM,
			fr.Config.Controller.TargetAltitude,
			final.SoCPercent,
			fr.Result.Metrics["tracking_rms_m"],
			saved,
		)
	}
	return w.Flush()
}

func runMonteCarlo(cmd *cobra.Command, args []string, logger *slog.Logger) error {
	n, err := strconv.Atoi(args[0])
	if err != nil || n <= 0 {
		return fmt.Errorf("trials must be a positive integer, got %q", args[0])
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	mc := automation.MonteCarloConfig{
		Trials:       n,
		Seed:         cfg.Simulation.Seed,
		SoCSpread:    socSpread,
		TargetSpread: targetSpread,
		BandM:        cfg.Simulation.SettleBandM,
	}
	results, err := automation.RunMonteCarlo(cmd.Context(), mc, cfg, logger)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TRIAL\tSOC0\tTARGET\tFINAL_ALT\tFINAL_SOC\tSTABLE")
	for _, r := range results {
		stable := "yes"
		if r.Err != nil {
			stable = "fault: " + r.Err.Error()
		} else if !r.Stable {
			stable = "no"
		}
		fmt.Fprintf(w, "%d\t%.1f%%\t%.2fm\t%.3fm\t%.1f%%\t%s\n",
			r.Trial, r.InitialSoC, r.TargetM, r.FinalAltM, r.FinalSoC, stable)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	stable, unstable := automation.MonteCarloStats(results)
	fmt.Printf("\n%d stable, %d unstable (band %.2fm)\n", stable, unstable, mc.BandM)
	return nil
}
