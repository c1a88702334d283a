package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/san-kum/virtdrone/internal/config"
	"github.com/san-kum/virtdrone/internal/tui"
)

var (
	dataDir    string
	sqlitePath string
	configFile string
	preset     string
	logLevel   string

	dt         float64
	steps      int
	seed       int64
	target     float64
	integrator string
	controller string
	speedLaw   string
	initialSoC float64
	gpsNoise   bool

	watch     bool
	frameRate int
	output    string
	series    []string
	phase     bool
	metric    string
	gridSpecs []string

	socSpread    float64
	targetSpread float64
)

var errUsage = errors.New("usage")

var levelVar slog.LevelVar

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: &levelVar}))
}

func main() {
	logger := newLogger()

	rootCmd := &cobra.Command{
		Use:           "virtdrone [steps] [dt_seconds]",
		Short:         "multirotor power and propulsion simulator",
		Long:          "Fly a simulated quadrocopter for [steps] ticks of [dt_seconds] (defaults 10 and 0.01) and print per-tick telemetry.",
		Args:          cobra.MaximumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTicks(cmd, args, logger)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", ".virtdrone", "data directory")
	pf.StringVar(&sqlitePath, "sqlite", "", "also keep runs in this sqlite database")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "use preset configuration")
	pf.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation and save it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulation(cmd, logger)
		},
	}
	addSimFlags(runCmd)
	runCmd.Flags().BoolVar(&watch, "watch", false, "draw the flight while it runs")
	runCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate for --watch")

	batchCmd := &cobra.Command{
		Use:   "batch [n]",
		Short: "fly n drones in parallel with consecutive seeds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, args, logger)
		},
	}
	addSimFlags(batchCmd)

	tuneCmd := &cobra.Command{
		Use:     "tune",
		Short:   "grid search controller gains",
		Example: "  virtdrone tune --grid alt_p=0.25,0.5,1 --grid inner_p=20000,30000 --metric tracking_rms_m",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTune(cmd, logger)
		},
	}
	addSimFlags(tuneCmd)
	tuneCmd.Flags().StringArrayVar(&gridSpecs, "grid", nil, "param=v1,v2,... (repeatable)")
	tuneCmd.Flags().StringVar(&metric, "metric", "tracking_rms_m", "metric to minimise")

	sweepCmd := &cobra.Command{
		Use:   "sweep [param] [min] [max] [steps]",
		Short: "vary one controller gain and report a metric",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSweep(cmd, args, logger)
		},
	}
	addSimFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&metric, "metric", "tracking_rms_m", "metric to report")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "fly every flight in a yaml scenario",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenario(cmd, args, logger)
		},
	}
	addSimFlags(scenarioCmd)

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo [trials]",
		Short: "fly perturbed copies of one config and count how many settle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMonteCarlo(cmd, args, logger)
		},
	}
	addSimFlags(monteCarloCmd)
	monteCarloCmd.Flags().Float64Var(&socSpread, "soc-spread", 10, "initial charge perturbation in percent")
	monteCarloCmd.Flags().Float64Var(&targetSpread, "target-spread", 2, "target altitude perturbation in meters")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run telemetry in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringSliceVar(&series, "series", []string{"altitude", "soc", "rpm_ref"}, "series to plot")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run telemetry to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	exportPNGCmd := &cobra.Command{
		Use:   "export-png [run_id]",
		Short: "render run telemetry to a PNG chart",
		Args:  cobra.ExactArgs(1),
		RunE:  exportPNG,
	}
	exportPNGCmd.Flags().StringVarP(&output, "output", "o", "", "output file, .png .svg or .pdf (default <run_id>.png)")
	exportPNGCmd.Flags().StringSliceVar(&series, "series", []string{"altitude", "target"}, "series to draw")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "step response and oscillation analysis",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().BoolVar(&phase, "phase", false, "also draw the altitude/velocity phase portrait")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "interactive terminal flight",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return tui.RunInteractive()
		},
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, p := range config.ListPresets() {
				fmt.Printf("  %-12s %s\n", p, config.PresetDescription(p))
			}
			return nil
		},
	}

	initCmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "write the effective config to a yaml file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := config.Save(args[0], cfg); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", args[0])
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, batchCmd, tuneCmd, sweepCmd, scenarioCmd, monteCarloCmd, listCmd, plotCmd,
		exportCSVCmd, exportJSONCmd, exportPNGCmd, analyzeCmd, liveCmd, presetsCmd, initCmd)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, rootCmd.UsageString())
		} else {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		cancel()
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Float64Var(&dt, "dt", config.DefaultDt, "timestep in seconds")
	f.IntVar(&steps, "steps", config.DefaultSteps, "number of ticks")
	f.Int64Var(&seed, "seed", 0, "random seed for noise sources")
	f.Float64Var(&target, "target", config.DefaultTargetAltitude, "target altitude in meters")
	f.StringVar(&integrator, "integrator", "symplectic", "integrator")
	f.StringVar(&controller, "controller", "altitude", "controller")
	f.StringVar(&speedLaw, "speed-law", "direct", "motor speed law (direct, esc)")
	f.Float64Var(&initialSoC, "soc", 100, "initial battery state of charge in percent")
	f.BoolVar(&gpsNoise, "gps-noise", false, "add GPS noise to altitude feedback")
}

// loadConfig resolves defaults, then preset, then config file, then any
// flag the user actually set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Simulation.Dt = dt
	}
	if flags.Changed("steps") {
		cfg.Simulation.Steps = steps
	}
	if flags.Changed("seed") {
		cfg.Simulation.Seed = seed
	}
	if flags.Changed("target") {
		cfg.Controller.TargetAltitude = target
	}
	if flags.Changed("integrator") {
		cfg.Simulation.Integrator = integrator
	}
	if flags.Changed("controller") {
		cfg.Simulation.Controller = controller
	}
	if flags.Changed("speed-law") {
		cfg.Simulation.SpeedLaw = speedLaw
	}
	if flags.Changed("soc") {
		cfg.Drone.Battery.InitialSoCPercent = initialSoC
	}
	if flags.Changed("gps-noise") {
		cfg.Drone.GPS.Noise = gpsNoise
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = logLevel
	}

	level, err := cfg.LogLevel()
	if err != nil {
		return nil, err
	}
	levelVar.Set(level)
	return cfg, nil
}
