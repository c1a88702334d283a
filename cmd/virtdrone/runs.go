package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/virtdrone/internal/analysis"
	"github.com/san-kum/virtdrone/internal/config"
	"github.com/san-kum/virtdrone/internal/sim"
	"github.com/san-kum/virtdrone/internal/storage"
)

// loadRun reads a saved run from the sqlite database when --sqlite is set,
// otherwise from the data directory.
func loadRun(ctx context.Context, runID string) (*storage.RunMetadata, []sim.Telemetry, error) {
	if sqlitePath == "" {
		st := storage.New(dataDir)
		meta, err := st.Load(runID)
		if err != nil {
			return nil, nil, err
		}
		samples, err := st.LoadTelemetry(runID)
		if err != nil {
			return nil, nil, err
		}
		return meta, samples, nil
	}

	id, err := strconv.ParseInt(runID, 10, 64)
	if err != nil {
		return nil, nil, fmt.Errorf("sqlite run id %q: %w", runID, err)
	}
	db := storage.NewSqliteStore(sqlitePath)
	defer db.Close()

	runs, err := db.Runs(ctx)
	if err != nil {
		return nil, nil, err
	}
	var meta *storage.RunMetadata
	for i := range runs {
		if runs[i].ID == runID {
			meta = &runs[i]
			break
		}
	}
	if meta == nil {
		return nil, nil, fmt.Errorf("run %s not found in %s", runID, sqlitePath)
	}
	samples, err := db.Telemetry(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return meta, samples, nil
}

func loadResult(ctx context.Context, runID string) (*storage.RunMetadata, *sim.Result, error) {
	meta, samples, err := loadRun(ctx, runID)
	if err != nil {
		return nil, nil, err
	}
	return meta, &sim.Result{
		Telemetry:  samples,
		Metrics:    meta.Metrics,
		StepsTaken: len(samples),
	}, nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	var (
		runs []storage.RunMetadata
		err  error
	)
	if sqlitePath != "" {
		db := storage.NewSqliteStore(sqlitePath)
		defer db.Close()
		runs, err = db.Runs(cmd.Context())
	} else {
		runs, err = storage.New(dataDir).List()
	}
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRESET\tTIME\tSTEPS\tDT\tINTEG\tCTRL\tTARGET\tTRACK_RMS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.4fs\t%s\t%s\t%.1fm\t%.3fm\n",
			run.ID,
			run.Preset,
			humanize.Time(run.Timestamp),
			humanize.Comma(int64(run.Steps)),
			run.Dt,
			run.Integrator,
			run.Controller,
			run.TargetM,
			run.Metrics["tracking_rms_m"],
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadRun(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("preset: %s\n", meta.Preset)
	fmt.Printf("samples: %s\n\n", humanize.Comma(int64(len(samples))))

	for _, name := range series {
		s, ok := storage.SeriesByName[name]
		if !ok {
			return fmt.Errorf("unknown series %q", name)
		}
		data := make([]float64, len(samples))
		for i, t := range samples {
			data[i] = s.Value(t)
		}

		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(s.Label),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func writeOutput(write func(f *os.File) error) error {
	if output == "" {
		return write(os.Stdout)
	}
	f, err := os.Create(output)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, samples, err := loadRun(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return writeOutput(func(f *os.File) error {
		return storage.WriteTelemetryCSV(f, samples)
	})
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, result, err := loadResult(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return writeOutput(func(f *os.File) error {
		return storage.WriteJSON(f, *meta, result)
	})
}

func exportPNG(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadRun(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	chosen := make([]storage.Series, 0, len(series))
	for _, name := range series {
		s, ok := storage.SeriesByName[name]
		if !ok {
			return fmt.Errorf("unknown series %q", name)
		}
		chosen = append(chosen, s)
	}

	path := output
	if path == "" {
		path = meta.ID + ".png"
	}
	title := fmt.Sprintf("%s (%s, %s)", meta.ID, meta.Preset, meta.Controller)
	if err := storage.ExportPNG(path, title, samples, chosen...); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func formatSeconds(v float64) string {
	if v < 0 {
		return "never"
	}
	return fmt.Sprintf("%.2fs", v)
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadRun(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if len(samples) < 2 {
		return fmt.Errorf("run %s: need at least two samples to analyze", meta.ID)
	}

	step := analysis.AnalyzeStep(samples, config.DefaultSettleBand)
	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("step: %.2fm -> %.2fm\n", step.StartM, step.TargetM)
	fmt.Printf("  rise time:          %s\n", formatSeconds(step.RiseTime))
	fmt.Printf("  overshoot:          %.1f%%\n", step.OvershootPercent)
	fmt.Printf("  settling time:      %s\n", formatSeconds(step.SettlingTime))
	fmt.Printf("  steady-state error: %.3fm\n", step.SteadyStateError)
	fmt.Printf("  convergence rate:   %.3f/s\n", analysis.ConvergenceRate(samples, 1e-3))

	crossings := analysis.TargetCrossings(samples)
	fmt.Printf("  target crossings:   %d\n", len(crossings))

	freqs, power := analysis.ErrorSpectrum(samples)
	if len(power) > 1 {
		// drop DC
		fmt.Println()
		fmt.Println(asciigraph.Plot(power[1:],
			asciigraph.Height(8),
			asciigraph.Width(80),
			asciigraph.Caption("tracking error power spectrum"),
		))
		if f := analysis.DominantFrequency(freqs, power); f > 0 {
			fmt.Printf("dominant oscillation: %.3f Hz (period %.2fs)\n", f, 1/f)
		}
	}

	if phase {
		portrait := analysis.GeneratePhasePortrait(samples)
		fmt.Printf("\n%s vs %s\n", portrait.YLabel, portrait.XLabel)
		fmt.Println(analysis.PhasePortraitToASCII(portrait, 80, 24))
	}

	return nil
}
