package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/san-kum/gravsim/internal/viz"
)

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}

	s, err := newSimulator(cfg)
	if err != nil {
		return err
	}

	opts := viz.DefaultOptions()
	opts.Title = cfg.Name
	opts.FPS = frameRate
	opts.StepsPerFrame = stepsPerFrame

	p := tea.NewProgram(viz.NewModel(s, cfg.RunConfig().Dt, opts), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return err
	}
	if m, ok := final.(viz.Model); ok && m.Err() != nil {
		return fmt.Errorf("simulation stopped after %d steps: %w", s.Steps(), m.Err())
	}
	fmt.Printf("%d steps, t=%.6g s\n", s.Steps(), s.Time())
	return nil
}
