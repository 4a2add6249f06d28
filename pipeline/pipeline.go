// Package pipeline wires the full matching run: ingest the CSV tables,
// select the best candidate per training series, classify every test
// point, then persist, archive and render the results.
//
// Cancellation discards partial results; every persisted artifact is
// written only after the matching stages completed, so there is nothing
// to roll back.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/nebulacode/curvematch/archive"
	"github.com/nebulacode/curvematch/chart"
	"github.com/nebulacode/curvematch/errs"
	"github.com/nebulacode/curvematch/ingest"
	"github.com/nebulacode/curvematch/internal/config"
	"github.com/nebulacode/curvematch/match"
	"github.com/nebulacode/curvematch/series"
	"github.com/nebulacode/curvematch/store"
)

// Summary reports what a run produced.
type Summary struct {
	// Fingerprint identifies the input dataset.
	Fingerprint uint64
	// Selections holds the winning candidate per training series.
	Selections []match.Selection
	// Assigned counts test points admitted by some selection.
	Assigned int
	// Unassigned counts test points no selection admitted.
	Unassigned int
	// Rejected counts test points skipped because their x-value is not
	// on the candidate grid.
	Rejected int
}

// Pipeline runs the matching workflow described by a Config.
type Pipeline struct {
	cfg    *config.Config
	logger *zap.Logger
}

// New creates a pipeline. A nil logger disables logging.
func New(cfg *config.Config, logger *zap.Logger) (*Pipeline, error) {
	if cfg == nil {
		return nil, fmt.Errorf("pipeline: nil config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Pipeline{cfg: cfg, logger: logger}, nil
}

// Run executes the full workflow and returns its summary.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	delimiter, err := p.cfg.DelimiterRune()
	if err != nil {
		return nil, err
	}

	loader, err := ingest.NewLoader(ingest.WithDelimiter(delimiter))
	if err != nil {
		return nil, err
	}

	p.logger.Info("loading input tables",
		zap.String("train", p.cfg.Input.TrainPath),
		zap.String("ideal", p.cfg.Input.IdealPath),
		zap.String("test", p.cfg.Input.TestPath))

	dataset, err := loader.LoadDataset(p.cfg.Input.TrainPath, p.cfg.Input.IdealPath)
	if err != nil {
		return nil, err
	}

	points, err := loader.LoadTestPoints(p.cfg.Input.TestPath)
	if err != nil {
		return nil, err
	}

	fingerprint := dataset.Fingerprint()
	p.logger.Info("dataset loaded",
		zap.Int("grid_points", len(dataset.Grid)),
		zap.Int("test_points", len(points)),
		zap.String("fingerprint", fmt.Sprintf("%016x", fingerprint)))

	selector, err := match.NewSelector(dataset)
	if err != nil {
		return nil, err
	}

	selections, err := selector.Select(ctx)
	if err != nil {
		return nil, err
	}

	for _, sel := range selections {
		p.logger.Info("candidate selected",
			zap.Int("training", sel.TrainingLabel),
			zap.Int("candidate", sel.CandidateLabel),
			zap.Float64("sse", sel.SSE),
			zap.Float64("threshold", sel.Threshold))
	}

	var mapperOpts []match.MapperOption
	if p.cfg.Workers > 0 {
		mapperOpts = append(mapperOpts, match.WithWorkers(p.cfg.Workers))
	}

	mapper, err := match.NewMapper(dataset, selections, mapperOpts...)
	if err != nil {
		return nil, err
	}

	results, err := mapper.MapAll(ctx, points)
	if err != nil && !errors.Is(err, errs.ErrUnknownX) {
		return nil, err
	}
	if err != nil {
		p.logger.Warn("some test points are off the candidate grid", zap.Error(err))
	}

	// Off-grid points are fatal to themselves only; they are counted as
	// rejected and excluded from persistence.
	summary := &Summary{Fingerprint: fingerprint, Selections: selections}
	kept := make([]match.MappingResult, 0, len(results))
	for _, res := range results {
		if _, ok := dataset.GridIndex(res.Point.X); !ok {
			summary.Rejected++
			continue
		}
		if res.Assigned {
			summary.Assigned++
		} else {
			summary.Unassigned++
		}
		kept = append(kept, res)
	}
	results = kept

	p.logger.Info("classification finished",
		zap.Int("assigned", summary.Assigned),
		zap.Int("unassigned", summary.Unassigned),
		zap.Int("rejected", summary.Rejected))

	if err := p.persist(ctx, dataset, selections, results, summary); err != nil {
		return nil, err
	}

	if err := p.archiveRun(dataset, selections, results); err != nil {
		return nil, err
	}

	if err := p.renderReport(dataset, selections, results); err != nil {
		return nil, err
	}

	return summary, nil
}

func (p *Pipeline) persist(ctx context.Context, dataset *series.Dataset, selections []match.Selection, results []match.MappingResult, summary *Summary) error {
	st, err := store.Open(p.cfg.Database.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.SaveDataset(ctx, dataset); err != nil {
		return err
	}
	if err := st.SaveSelections(ctx, selections); err != nil {
		return err
	}
	if err := st.SaveResults(ctx, results); err != nil {
		return err
	}
	if err := st.SaveRunInfo(ctx, summary.Fingerprint, summary.Assigned, summary.Unassigned); err != nil {
		return err
	}

	p.logger.Info("results persisted", zap.String("database", p.cfg.Database.Path))

	return nil
}

func (p *Pipeline) archiveRun(dataset *series.Dataset, selections []match.Selection, results []match.MappingResult) error {
	if p.cfg.Archive.Path == "" {
		return nil
	}

	compression, err := p.cfg.CompressionType()
	if err != nil {
		return err
	}

	w, err := archive.NewWriter(archive.WithCompression(compression))
	if err != nil {
		return err
	}

	snap := &archive.Snapshot{Dataset: dataset, Selections: selections, Results: results}
	if err := w.WriteFile(p.cfg.Archive.Path, snap); err != nil {
		return err
	}

	p.logger.Info("snapshot archived",
		zap.String("path", p.cfg.Archive.Path),
		zap.String("compression", compression.String()))

	return nil
}

func (p *Pipeline) renderReport(dataset *series.Dataset, selections []match.Selection, results []match.MappingResult) error {
	if p.cfg.Report.Path == "" {
		return nil
	}

	var opts []chart.RendererOption
	if p.cfg.Report.Title != "" {
		opts = append(opts, chart.WithPageTitle(p.cfg.Report.Title))
	}

	renderer, err := chart.NewRenderer(opts...)
	if err != nil {
		return err
	}

	if err := renderer.RenderFile(p.cfg.Report.Path, dataset, selections, results); err != nil {
		return err
	}

	p.logger.Info("report rendered", zap.String("path", p.cfg.Report.Path))

	return nil
}
