package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/gravsim/internal/sim"
)

// compareTimesteps runs one simulator per timestep, each covering the span
// the scenario covers at its own dt.
func compareTimesteps(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}
	if cfg.Steps == 0 {
		return errors.New("compare needs a bounded run; set --steps")
	}

	dts := compareDts
	if len(dts) == 0 {
		dts = []float64{cfg.Dt, cfg.Dt / 2, cfg.Dt / 4}
	}
	span := cfg.Dt * float64(cfg.Steps)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ens := sim.NewEnsemble()
	sims := make([]*sim.Simulator, len(dts))
	for i, d := range dts {
		member := *cfg
		member.Dt = d
		member.Steps = int(math.Round(span / d))

		s, err := newSimulator(&member, sim.WithLogger(logger))
		if err != nil {
			return err
		}
		addRunMetrics(s)
		if err := ens.Add(s, member.RunConfig()); err != nil {
			return fmt.Errorf("dt=%g: %w", d, err)
		}
		sims[i] = s
	}

	fmt.Printf("comparing %d timesteps for %s over %g time units\n\n", len(dts), cfg.Name, span)
	start := time.Now()
	results, runErr := ens.Run(ctx)
	elapsed := time.Since(start)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DT\tSTEPS\tMEAN_ENERGY\tENERGY_DRIFT\tMAX_ENERGY_DRIFT\tMOMENTUM_DRIFT")
	for i, res := range results {
		if res == nil {
			fmt.Fprintf(w, "%g\t-\t-\t-\t-\t-\n", dts[i])
			continue
		}
		fmt.Fprintf(w, "%g\t%d\t%.6g\t%.3e\t%.3e\t%.3e\n",
			dts[i], res.StepsTaken, res.Metrics["energy"], res.EnergyDrift,
			res.Metrics["energy_drift"], res.Metrics["momentum_drift"])
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\ncompleted in %v\n", elapsed.Round(time.Millisecond))

	if errors.Is(runErr, context.Canceled) {
		return nil
	}
	return runErr
}
