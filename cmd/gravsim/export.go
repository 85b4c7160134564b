package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/san-kum/gravsim/internal/export"
	"github.com/san-kum/gravsim/internal/store"
)

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := store.New(runsDir)

	meta, err := st.Load(runID)
	if err != nil {
		return fmt.Errorf("failed to load run: %w", err)
	}
	samples, err := st.LoadTrajectory(runID)
	if err != nil {
		return fmt.Errorf("failed to load trajectory: %w", err)
	}

	path := outputPath
	if path == "" {
		path = runID + ".svg"
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := export.OrbitsSVG(f, samples, meta.Colors, svgSize, svgSize); err != nil {
		return err
	}
	fmt.Printf("wrote %d samples of %s to %s\n", len(samples), meta.Scenario, path)
	return nil
}
