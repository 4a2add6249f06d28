package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nebulacode/curvematch/archive"
)

// inspectCmd prints a snapshot archive summary without touching the database.
var inspectCmd = &cobra.Command{
	Use:   "inspect <archive>",
	Short: "Print a snapshot archive summary",
	Long: `Decode a snapshot archive, verify its checksums, and print the dataset
fingerprint, table shapes, per-training selections and classification
counts.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func runInspect(_ *cobra.Command, args []string) error {
	snap, err := archive.NewReader().ReadFile(args[0])
	if err != nil {
		return err
	}

	ds := snap.Dataset
	fmt.Printf("fingerprint: %016x\n", ds.Fingerprint())
	fmt.Printf("grid points: %d (x in [%g, %g])\n",
		len(ds.Grid), ds.Grid[0], ds.Grid[len(ds.Grid)-1])
	fmt.Printf("series: %d training, %d candidates\n",
		len(ds.Training), len(ds.Candidates))

	fmt.Println("selections:")
	for _, sel := range snap.Selections {
		fmt.Printf("  training y%d -> ideal y%-2d  sse=%-12.6g threshold=%.6g\n",
			sel.TrainingLabel, sel.CandidateLabel, sel.SSE, sel.Threshold)
	}

	assigned := 0
	for _, res := range snap.Results {
		if res.Assigned {
			assigned++
		}
	}
	fmt.Printf("test points: %d total, %d assigned, %d unassigned\n",
		len(snap.Results), assigned, len(snap.Results)-assigned)

	return nil
}
