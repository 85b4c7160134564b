package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/physics"
	"github.com/san-kum/gravsim/internal/sim"
)

// loadScenario reads the scenario file in args, or the --preset, and applies
// any flags the user set on top of it.
func loadScenario(cmd *cobra.Command, args []string) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case len(args) == 1:
		c, err := config.Load(args[0])
		if err != nil {
			return nil, fmt.Errorf("failed to load scenario: %w", err)
		}
		cfg = c
	case preset != "":
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	default:
		cfg = config.DefaultConfig()
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("g") {
		cfg.G = gravity
	}
	if flags.Changed("close-encounter") {
		cfg.CloseEncounter = closeEncounter
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newSimulator builds a fresh system for cfg and wraps it in a simulator.
func newSimulator(cfg *config.Config, opts ...sim.Option) (*sim.Simulator, error) {
	sys, ff, err := cfg.Build(physics.WithWorkers(workers))
	if err != nil {
		return nil, err
	}
	return sim.New(sys, ff, opts...)
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tBODIES\tDIM\tDT\tSTEPS\tUNITS")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		units := "-"
		if !cfg.Units.IsZero() {
			units = fmt.Sprintf("%s/%s/%s", cfg.Units.Length, cfg.Units.Mass, cfg.Units.Time)
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%g\t%d\t%s\n",
			name, len(cfg.Bodies), len(cfg.Bodies[0].Position), cfg.Dt, cfg.Steps, units)
	}
	return w.Flush()
}

func initScenario(cmd *cobra.Command, args []string) error {
	cfg := config.GetPreset(preset)
	if cfg == nil {
		return fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
	}
	if _, err := os.Stat(args[0]); err == nil {
		return fmt.Errorf("%s already exists", args[0])
	}
	if err := config.Save(args[0], cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s scenario to %s\n", preset, args[0])
	return nil
}
