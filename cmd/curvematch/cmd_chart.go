package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nebulacode/curvematch/chart"
	"github.com/nebulacode/curvematch/store"
)

// chartCmd renders the HTML report from a previously persisted run.
var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Render the HTML report from an existing results database",
	Long: `Load the dataset, selections and classified test points from a SQLite
database written by a previous run and render the HTML report. Nothing is
recomputed; the charts reflect exactly what was persisted.`,
	RunE: runChart,
}

func init() {
	chartCmd.Flags().StringVar(&dbPath, "db", "curvematch.db", "SQLite database path")
	chartCmd.Flags().StringVar(&reportPath, "report", "report.html", "HTML report output path")
	chartCmd.Flags().StringVar(&reportTitle, "title", "", "HTML report title")
}

func runChart(cmd *cobra.Command, _ []string) error {
	st, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()

	dataset, err := st.LoadDataset(ctx)
	if err != nil {
		return err
	}

	selections, err := st.LoadSelections(ctx)
	if err != nil {
		return err
	}
	if len(selections) == 0 {
		return fmt.Errorf("no selections in %s; run the pipeline first", dbPath)
	}

	results, err := st.LoadResults(ctx)
	if err != nil {
		return err
	}

	var opts []chart.RendererOption
	if reportTitle != "" {
		opts = append(opts, chart.WithPageTitle(reportTitle))
	}

	renderer, err := chart.NewRenderer(opts...)
	if err != nil {
		return err
	}

	if err := renderer.RenderFile(reportPath, dataset, selections, results); err != nil {
		return err
	}

	fmt.Printf("report written to %s (%d selections, %d points)\n",
		reportPath, len(selections), len(results))

	return nil
}
