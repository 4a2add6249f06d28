// Command curvematch matches training curves against a candidate pool and
// classifies test points against the winning curves.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nebulacode/curvematch/internal/config"
)

var (
	configPath string

	trainPath   string
	idealPath   string
	testPath    string
	delimiter   string
	dbPath      string
	archivePath string
	compression string
	reportPath  string
	reportTitle string
	workers     int
	logLevel    string
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "curvematch",
	Short: "Least-squares curve matching and test point classification",
	Long: `curvematch selects, for each training series, the candidate curve with
the minimal sum of squared errors, then classifies test points against the
selected curves using a max-deviation threshold scaled by sqrt(2).

Results are persisted to SQLite and can optionally be archived as a compact
snapshot file and rendered as an HTML report.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(chartCmd)
	rootCmd.AddCommand(inspectCmd)
}

// loadConfig resolves the effective configuration: defaults, then the
// config file if given, then any flags the user set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)

	if configPath != "" {
		cfg, err = config.Load(configPath)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = config.Default()
	}

	setIfChanged := func(name string, apply func()) {
		if cmd.Flags().Changed(name) || cmd.Root().PersistentFlags().Changed(name) {
			apply()
		}
	}

	setIfChanged("train", func() { cfg.Input.TrainPath = trainPath })
	setIfChanged("ideal", func() { cfg.Input.IdealPath = idealPath })
	setIfChanged("test", func() { cfg.Input.TestPath = testPath })
	setIfChanged("delimiter", func() { cfg.Input.Delimiter = delimiter })
	setIfChanged("db", func() { cfg.Database.Path = dbPath })
	setIfChanged("archive", func() { cfg.Archive.Path = archivePath })
	setIfChanged("compression", func() { cfg.Archive.Compression = compression })
	setIfChanged("report", func() { cfg.Report.Path = reportPath })
	setIfChanged("title", func() { cfg.Report.Title = reportTitle })
	setIfChanged("workers", func() { cfg.Workers = workers })
	setIfChanged("log-level", func() { cfg.LogLevel = logLevel })

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
