package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nebulacode/curvematch/pipeline"
)

// runCmd executes the full matching pipeline from the CSV inputs.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full matching pipeline from CSV inputs",
	Long: `Load the training, ideal and test tables, select the best candidate per
training series, classify every test point, and persist the results to
SQLite. Optionally writes a snapshot archive and an HTML report.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&trainPath, "train", "train.csv", "Training table CSV (x, y1..y4)")
	runCmd.Flags().StringVar(&idealPath, "ideal", "ideal.csv", "Candidate table CSV (x, y1..y50)")
	runCmd.Flags().StringVar(&testPath, "test", "test.csv", "Test point CSV (x, y)")
	runCmd.Flags().StringVar(&delimiter, "delimiter", ";", "CSV field delimiter")
	runCmd.Flags().StringVar(&dbPath, "db", "curvematch.db", "SQLite database path")
	runCmd.Flags().StringVar(&archivePath, "archive", "", "Snapshot archive output path (empty disables)")
	runCmd.Flags().StringVar(&compression, "compression", "zstd", "Archive compression: none, zstd, s2, lz4")
	runCmd.Flags().StringVar(&reportPath, "report", "", "HTML report output path (empty disables)")
	runCmd.Flags().StringVar(&reportTitle, "title", "", "HTML report title")
	runCmd.Flags().IntVar(&workers, "workers", 0, "Mapper worker count (0 = one per CPU)")
}

func runRun(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := pipeline.NewLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	p, err := pipeline.New(cfg, logger)
	if err != nil {
		return err
	}

	summary, err := p.Run(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("dataset fingerprint: %016x\n", summary.Fingerprint)
	for _, sel := range summary.Selections {
		fmt.Printf("training y%d -> ideal y%-2d  sse=%-12.6g threshold=%.6g\n",
			sel.TrainingLabel, sel.CandidateLabel, sel.SSE, sel.Threshold)
	}
	fmt.Printf("test points: %d assigned, %d unassigned, %d rejected\n",
		summary.Assigned, summary.Unassigned, summary.Rejected)

	return nil
}
