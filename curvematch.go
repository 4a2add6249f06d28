// Package curvematch implements two-stage least-squares curve matching.
//
// Stage one scans a pool of fifty candidate ("ideal") series and selects,
// for each of four training series, the candidate minimizing the sum of
// squared errors over a shared x-grid. Stage two classifies unlabeled test
// points against the selected curves: a point is assigned to the selection
// whose curve it deviates from the least, provided that deviation does not
// exceed the selection's threshold of max|training - candidate| × √2.
//
// # Basic Usage
//
// Matching in-memory data:
//
//	import "github.com/nebulacode/curvematch"
//
//	outcome, err := curvematch.Match(ctx, dataset, points)
//	if err != nil {
//	    return err
//	}
//	for _, sel := range outcome.Selections {
//	    fmt.Println(sel)
//	}
//
// Matching straight from CSV files:
//
//	outcome, err := curvematch.MatchFiles(ctx, "train.csv", "ideal.csv", "test.csv")
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the matching
// core. For fine-grained control (custom delimiters, worker counts,
// persistence, archiving, charts), use the ingest, match, store, archive
// and chart packages directly, or the pipeline package for the full
// orchestrated workflow.
package curvematch

import (
	"context"
	"errors"

	"github.com/nebulacode/curvematch/errs"
	"github.com/nebulacode/curvematch/ingest"
	"github.com/nebulacode/curvematch/match"
	"github.com/nebulacode/curvematch/series"
)

// Outcome bundles both matching stages for the one-shot helpers.
type Outcome struct {
	// Dataset is the validated input data.
	Dataset *series.Dataset
	// Selections holds the winning candidate per training series.
	Selections []match.Selection
	// Results holds one entry per test point, in input order. Points
	// whose x is off the candidate grid appear as unassigned entries.
	Results []match.MappingResult
}

// Match runs both stages over in-memory data.
//
// Off-grid test points do not fail the run; their result slots are
// unassigned and the points are simply skipped, matching the per-point
// failure semantics of MapAll.
func Match(ctx context.Context, dataset *series.Dataset, points []series.TestPoint) (*Outcome, error) {
	if dataset == nil {
		return nil, errs.ErrInvalidData
	}
	if err := dataset.Validate(); err != nil {
		return nil, err
	}

	selector, err := match.NewSelector(dataset)
	if err != nil {
		return nil, err
	}

	selections, err := selector.Select(ctx)
	if err != nil {
		return nil, err
	}

	mapper, err := match.NewMapper(dataset, selections)
	if err != nil {
		return nil, err
	}

	results, err := mapper.MapAll(ctx, points)
	if err != nil && !errors.Is(err, errs.ErrUnknownX) {
		return nil, err
	}

	return &Outcome{
		Dataset:    dataset,
		Selections: selections,
		Results:    results,
	}, nil
}

// MatchFiles loads the three CSV tables with the default delimiter and
// runs both stages.
func MatchFiles(ctx context.Context, trainPath, idealPath, testPath string) (*Outcome, error) {
	loader, err := ingest.NewLoader()
	if err != nil {
		return nil, err
	}

	dataset, err := loader.LoadDataset(trainPath, idealPath)
	if err != nil {
		return nil, err
	}

	points, err := loader.LoadTestPoints(testPath)
	if err != nil {
		return nil, err
	}

	return Match(ctx, dataset, points)
}
