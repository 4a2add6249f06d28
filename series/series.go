// Package series defines the in-memory data model shared by the curvematch
// pipeline: labeled numeric series sampled on one strictly increasing x-grid,
// and the unlabeled test points classified against them.
//
// All types are plain value holders. They are built once by the ingest
// package, validated, and then treated as read-only snapshots by the
// matching core, so no locking is required anywhere downstream.
package series

import (
	"fmt"
	"math"
	"sort"

	"github.com/nebulacode/curvematch/errs"
	"github.com/nebulacode/curvematch/internal/hash"
)

// Table shape constants, fixed by the input contract: four training series
// and a pool of fifty candidate ("ideal") series.
const (
	TrainingCount  = 4
	CandidateCount = 50
)

// Series is one labeled y-column sampled on a shared x-grid.
//
// The grid itself lives on the owning Dataset; a Series only carries its
// 1-based label within its table (1..4 for training, 1..50 for candidates)
// and the y-values aligned index-for-index with the grid.
type Series struct {
	// Label is the 1-based column label within the originating table.
	Label int
	// Y holds the y-values, one per grid point.
	Y []float64
}

// TestPoint is a single unlabeled (x, y) observation to be classified.
//
// Its x-value must be present on the candidate grid exactly; the core never
// interpolates.
type TestPoint struct {
	X float64
	Y float64
}

// Dataset bundles the training and candidate tables sharing one x-grid.
//
// A Dataset is immutable once validated. The matching core borrows it for
// the duration of a run and never mutates it.
type Dataset struct {
	// Grid is the shared x-grid, strictly increasing, no duplicates.
	Grid []float64
	// Training holds exactly TrainingCount series, labels 1..4 in order.
	Training []Series
	// Candidates holds exactly CandidateCount series, labels 1..50 in order.
	Candidates []Series
}

// ValidateGrid checks that xs forms a valid x-grid: non-empty and strictly
// increasing. A strictly increasing grid has no duplicates by construction.
func ValidateGrid(xs []float64) error {
	if len(xs) == 0 {
		return fmt.Errorf("%w: empty x-grid", errs.ErrInvalidSeries)
	}
	for i := 1; i < len(xs); i++ {
		if xs[i] <= xs[i-1] {
			return fmt.Errorf("%w: x-grid not strictly increasing at index %d (%g after %g)",
				errs.ErrInvalidSeries, i, xs[i], xs[i-1])
		}
	}
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return fmt.Errorf("%w: non-finite x value %g", errs.ErrInvalidSeries, x)
		}
	}

	return nil
}

// Validate checks the Dataset against the input contract: a valid shared
// grid, exact table shapes, sequential labels, and every y-column aligned
// with the grid.
func (d *Dataset) Validate() error {
	if err := ValidateGrid(d.Grid); err != nil {
		return err
	}
	if len(d.Training) != TrainingCount {
		return fmt.Errorf("%w: expected %d training series, got %d",
			errs.ErrInvalidData, TrainingCount, len(d.Training))
	}
	if len(d.Candidates) != CandidateCount {
		return fmt.Errorf("%w: expected %d candidate series, got %d",
			errs.ErrInvalidData, CandidateCount, len(d.Candidates))
	}
	if err := validateColumns(d.Training, len(d.Grid), "training"); err != nil {
		return err
	}

	return validateColumns(d.Candidates, len(d.Grid), "candidate")
}

func validateColumns(cols []Series, gridLen int, table string) error {
	for i, s := range cols {
		if s.Label != i+1 {
			return fmt.Errorf("%w: %s series at position %d has label %d",
				errs.ErrInvalidData, table, i, s.Label)
		}
		if len(s.Y) != gridLen {
			return fmt.Errorf("%w: %s series y%d has %d values for %d grid points",
				errs.ErrDimensionMismatch, table, s.Label, len(s.Y), gridLen)
		}
	}

	return nil
}

// GridIndex returns the grid position of x, or ok=false when x is not on
// the grid. Lookup is an exact binary search; no interpolation or epsilon
// comparison is performed.
func (d *Dataset) GridIndex(x float64) (int, bool) {
	i := sort.SearchFloat64s(d.Grid, x)
	if i < len(d.Grid) && d.Grid[i] == x {
		return i, true
	}

	return 0, false
}

// CandidateY returns candidate label's y-value at x.
//
// Returns ErrUnknownX when x is absent from the grid, which is fatal to the
// single point being mapped but not to the run.
func (d *Dataset) CandidateY(label int, x float64) (float64, error) {
	if label < 1 || label > len(d.Candidates) {
		return 0, fmt.Errorf("%w: candidate label %d out of range 1..%d",
			errs.ErrInvalidData, label, len(d.Candidates))
	}
	i, ok := d.GridIndex(x)
	if !ok {
		return 0, fmt.Errorf("%w: x=%g", errs.ErrUnknownX, x)
	}

	return d.Candidates[label-1].Y[i], nil
}

// Fingerprint computes a 64-bit xxHash over the grid and every column in
// table order. Two datasets with identical numeric content produce the same
// fingerprint, which the store and archive layers use to identify a run's
// input snapshot.
func (d *Dataset) Fingerprint() uint64 {
	columns := make([][]float64, 0, 1+len(d.Training)+len(d.Candidates))
	columns = append(columns, d.Grid)
	for _, s := range d.Training {
		columns = append(columns, s.Y)
	}
	for _, s := range d.Candidates {
		columns = append(columns, s.Y)
	}

	return hash.Columns(columns...)
}
