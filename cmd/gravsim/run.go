package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/metrics"
	"github.com/san-kum/gravsim/internal/observability"
	"github.com/san-kum/gravsim/internal/physics"
	"github.com/san-kum/gravsim/internal/sim"
	"github.com/san-kum/gravsim/internal/store"
)

const plotWidth = 80

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tcfg := observability.DefaultTracingConfig()
	tcfg.Enabled = traceSpans
	tcfg.Writer = os.Stderr
	shutdown, err := observability.InitTracing(ctx, tcfg, logger)
	if err != nil {
		return err
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdown, logger)

	s, err := newSimulator(cfg, sim.WithLogger(logger))
	if err != nil {
		return err
	}
	sys, g := s.System(), s.ForceField().G()

	addRunMetrics(s)

	var energies []float64
	if plot {
		stride := max(1, cfg.Steps/plotWidth)
		if cfg.Steps == 0 {
			stride = 100
		}
		energies = append(energies, sys.Energy(g))
		s.AddObserver(sim.ObserverFunc(func(step int, t float64, sys *physics.System) {
			if step%stride == 0 {
				energies = append(energies, sys.Energy(g))
			}
		}))
	}

	var rec *store.Recorder
	if saveRun {
		rec = store.NewRecorder(max(1, recordEvery))
		rec.Capture(0, 0, sys)
		s.AddObserver(rec)
	}

	if metricsAddr != "" {
		stopServer, err := serveMetrics(s, g)
		if err != nil {
			return err
		}
		defer stopServer()
	}

	run := cfg.RunConfig()
	fmt.Printf("running %s: %d bodies, dt=%g, steps=%d\n", cfg.Name, sys.Len(), run.Dt, run.Steps)
	start := time.Now()

	res, err := s.Run(ctx, run)
	elapsed := time.Since(start)
	if errors.Is(err, context.Canceled) {
		fmt.Println("interrupted")
		err = nil
	}
	if res != nil {
		if perr := printSummary(cfg, s, res, elapsed); perr != nil {
			return perr
		}
	}
	if rec != nil && res != nil {
		if serr := saveResult(cfg, s, res, rec); serr != nil {
			return serr
		}
	}
	if len(energies) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(energies,
			asciigraph.Height(10),
			asciigraph.Width(plotWidth),
			asciigraph.Caption("total energy (J)"),
		))
	}
	return err
}

// addRunMetrics registers the diagnostics reported in run and compare summaries.
func addRunMetrics(s *sim.Simulator) {
	g := s.ForceField().G()
	s.AddMetric(metrics.NewEnergy(g))
	s.AddMetric(metrics.NewEnergyDrift(g))
	s.AddMetric(metrics.NewMomentumDrift())
	if s.System().Len() >= 2 {
		s.AddMetric(metrics.NewSeparationRange(0, 1))
	}
}

func serveMetrics(s *sim.Simulator, g float64) (func(), error) {
	reg := prometheus.NewRegistry()
	collector, err := observability.NewCollector(reg, g)
	if err != nil {
		return nil, err
	}
	s.AddObserver(collector)

	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())
	srv := &http.Server{Addr: metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()
	logger.Info("serving metrics", zap.String("addr", metricsAddr))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}

func saveResult(cfg *config.Config, s *sim.Simulator, res *sim.Result, rec *store.Recorder) error {
	st := store.New(runsDir)
	if err := st.Init(); err != nil {
		return err
	}
	run := cfg.RunConfig()
	meta := store.RunMetadata{
		ID:              res.RunID,
		Scenario:        cfg.Name,
		Bodies:          s.System().Len(),
		Dim:             s.System().Dim(),
		G:               s.ForceField().G(),
		Dt:              run.Dt,
		Steps:           res.StepsTaken,
		Time:            res.Time,
		EnergyDrift:     res.EnergyDrift,
		CloseEncounters: res.CloseEncounters,
		Metrics:         res.Metrics,
	}
	for _, b := range s.System().Bodies() {
		meta.Colors = append(meta.Colors, b.Color())
	}
	if err := st.Save(meta, rec); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	fmt.Printf("\nsaved %d samples to %s\n", rec.Len(), filepath.Join(runsDir, res.RunID))
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := store.New(runsDir).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Printf("no runs in %s\n", runsDir)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tWHEN\tBODIES\tSTEPS\tTIME\tENERGY_DRIFT")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%.4g\t%.3e\n",
			r.ID, r.Scenario, r.Timestamp.Format(time.DateTime), r.Bodies, r.Steps, r.Time, r.EnergyDrift)
	}
	return w.Flush()
}

func printSummary(cfg *config.Config, s *sim.Simulator, res *sim.Result, elapsed time.Duration) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "run id:\t%s\n", res.RunID)
	fmt.Fprintf(w, "steps:\t%d\n", res.StepsTaken)
	fmt.Fprintf(w, "simulated time:\t%.6g\n", res.Time)
	fmt.Fprintf(w, "wall time:\t%v\n", elapsed.Round(time.Millisecond))
	fmt.Fprintf(w, "energy drift:\t%.3e\n", res.EnergyDrift)
	if res.CloseEncounters > 0 {
		fmt.Fprintf(w, "close encounters:\t%d\n", res.CloseEncounters)
	}

	names := make([]string, 0, len(res.Metrics))
	for name := range res.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "%s:\t%.6g\n", name, res.Metrics[name])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println()
	w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BODY\tNAME\tMASS\t|r|\t|v|\t|F|")
	for i, b := range s.System().Bodies() {
		name := ""
		if i < len(cfg.Bodies) {
			name = cfg.Bodies[i].Name
		}
		fmt.Fprintf(w, "%d\t%s\t%.4g\t%.4g\t%.4g\t%.4g\n",
			i, name, b.Mass(), b.Position().Norm(), b.Velocity().Norm(), nonNaN(b.LastForce().Norm()))
	}
	return w.Flush()
}

func nonNaN(x float64) float64 {
	if math.IsNaN(x) {
		return 0
	}
	return x
}
