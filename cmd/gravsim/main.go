package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	verbose bool
	logger  = zap.NewNop()

	preset         string
	dt             float64
	steps          int
	gravity        float64
	closeEncounter float64
	workers        int

	plot        bool
	metricsAddr string
	traceSpans  bool
	saveRun     bool
	recordEvery int
	runsDir     string
	outputPath  string
	svgSize     int

	frameRate     int
	stepsPerFrame int

	compareDts []float64
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "gravsim",
		Short:         "fixed-step n-body gravity simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "live" {
				return nil
			}
			config := zap.NewProductionConfig()
			if verbose {
				config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			l, err := config.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			logger = l
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&runsDir, "runs-dir", "runs", "directory for saved runs")

	runCmd := &cobra.Command{
		Use:   "run [scenario.yaml]",
		Short: "run a scenario headless and print a summary",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addScenarioFlags(runCmd)
	runCmd.Flags().BoolVar(&plot, "plot", false, "plot total energy over the run")
	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address during the run")
	runCmd.Flags().BoolVar(&traceSpans, "trace", false, "export trace spans to stderr")
	runCmd.Flags().BoolVar(&saveRun, "save", false, "save metadata and trajectory under --runs-dir")
	runCmd.Flags().IntVar(&recordEvery, "record-every", 100, "steps between saved trajectory samples")

	liveCmd := &cobra.Command{
		Use:   "live [scenario.yaml]",
		Short: "run a scenario with live terminal visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addScenarioFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")
	liveCmd.Flags().IntVar(&stepsPerFrame, "steps-per-frame", 10, "simulation steps per frame")

	compareCmd := &cobra.Command{
		Use:   "compare [scenario.yaml]",
		Short: "run a scenario at several timesteps over the same span and compare drift",
		Args:  cobra.MaximumNArgs(1),
		RunE:  compareTimesteps,
	}
	addScenarioFlags(compareCmd)
	compareCmd.Flags().Float64SliceVar(&compareDts, "dts", nil, "timesteps to compare (default: dt, dt/2, dt/4)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in scenarios",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write a preset scenario to a yaml file",
		Args:  cobra.ExactArgs(1),
		RunE:  initScenario,
	}
	initCmd.Flags().StringVar(&preset, "preset", "triple", "preset to write")

	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "list saved runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	exportCmd := &cobra.Command{
		Use:   "export <run-id>",
		Short: "draw a saved run's orbits as svg",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default <run-id>.svg)")
	exportCmd.Flags().IntVar(&svgSize, "size", 800, "image width and height in pixels")

	rootCmd.AddCommand(runCmd, liveCmd, compareCmd, presetsCmd, initCmd, runsCmd, exportCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addScenarioFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&preset, "preset", "", "built-in scenario (see 'gravsim presets')")
	cmd.Flags().Float64Var(&dt, "dt", 0, "timestep, in the scenario's time unit")
	cmd.Flags().IntVar(&steps, "steps", 0, "number of steps; 0 runs until interrupted")
	cmd.Flags().Float64Var(&gravity, "g", 0, "gravitational constant")
	cmd.Flags().Float64Var(&closeEncounter, "close-encounter", 0, "warn when two bodies come closer than this, in the scenario's length unit")
	cmd.Flags().IntVar(&workers, "workers", 1, "goroutines for the force computation; 0 uses all cores")
}
