package match

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/nebulacode/curvematch/errs"
	"github.com/nebulacode/curvematch/internal/options"
	"github.com/nebulacode/curvematch/series"
)

// MappingResult is the terminal outcome for one test point: either an
// assignment to a selected candidate with its deviation, or unassigned when
// no selection's threshold admits the point.
//
// A MappingResult is never mutated after creation.
type MappingResult struct {
	// Point is the originating test observation.
	Point series.TestPoint
	// CandidateLabel is the assigned candidate label; 0 when unassigned.
	CandidateLabel int
	// Deviation is |point.y - candidate_y| for the assigned candidate.
	// Only meaningful when Assigned is true.
	Deviation float64
	// Assigned reports whether any selection admitted the point.
	Assigned bool
}

// String returns a compact human-readable summary of the result.
func (r MappingResult) String() string {
	if !r.Assigned {
		return fmt.Sprintf("MappingResult{(%g, %g) unassigned}", r.Point.X, r.Point.Y)
	}

	return fmt.Sprintf("MappingResult{(%g, %g) -> ideal y%d, delta: %.6g}",
		r.Point.X, r.Point.Y, r.CandidateLabel, r.Deviation)
}

// Mapper classifies test points against a fixed selection set.
//
// Mapping is stateless per point: the outcome for a point depends only on
// the point, the selections, and the candidate grid, never on the order in
// which points are processed.
type Mapper struct {
	dataset    *series.Dataset
	selections []Selection
	workers    int
}

// MapperOption configures a Mapper.
type MapperOption = options.Option[*Mapper]

// WithWorkers caps the number of concurrent per-point classifications in
// MapAll. Values below 1 are rejected. Defaults to runtime.NumCPU().
func WithWorkers(n int) MapperOption {
	return options.New(func(m *Mapper) error {
		if n < 1 {
			return fmt.Errorf("workers must be >= 1, got %d", n)
		}
		m.workers = n

		return nil
	})
}

// NewMapper creates a Mapper over the dataset and the selection set produced
// by Selector.Select. Both are borrowed read-only.
func NewMapper(dataset *series.Dataset, selections []Selection, opts ...MapperOption) (*Mapper, error) {
	m := &Mapper{
		dataset:    dataset,
		selections: selections,
		workers:    runtime.NumCPU(),
	}
	if err := options.Apply(m, opts...); err != nil {
		return nil, err
	}

	return m, nil
}

// Map classifies a single test point.
//
// The point qualifies for a selection when its absolute deviation from the
// selected candidate at the same x stays within that selection's threshold.
// Among qualifying selections the smallest deviation wins; replacement
// requires strict improvement, so ties keep the earlier (lower training
// label) selection.
//
// Returns:
//   - MappingResult: The assignment, or an unassigned result when no
//     selection qualifies (a normal outcome, not an error)
//   - error: ErrUnknownX when the point's x is absent from the candidate
//     grid; fatal to this point only
func (m *Mapper) Map(point series.TestPoint) (MappingResult, error) {
	result := MappingResult{Point: point}

	for _, sel := range m.selections {
		candY, err := m.dataset.CandidateY(sel.CandidateLabel, point.X)
		if err != nil {
			return MappingResult{}, fmt.Errorf("test point (%g, %g): %w", point.X, point.Y, err)
		}

		deviation := point.Y - candY
		if deviation < 0 {
			deviation = -deviation
		}
		if deviation > sel.Threshold {
			continue
		}
		if !result.Assigned || deviation < result.Deviation {
			result.CandidateLabel = sel.CandidateLabel
			result.Deviation = deviation
			result.Assigned = true
		}
	}

	return result, nil
}

// MapAll classifies every test point, fanning the points out over a bounded
// worker pool. Results preserve the input point order.
//
// A point whose x is absent from the grid fails alone: its slot is an
// unassigned zero-deviation result, other points continue, and the
// accumulated ErrUnknownX errors are joined into the returned error. The
// returned results are valid even when the error is non-nil; callers decide
// whether partial mapping is acceptable.
//
// Parameters:
//   - ctx: Cancellation context; cancelling discards partial results
//   - points: Test observations to classify
//
// Returns:
//   - []MappingResult: One result per input point, in input order
//   - error: Joined ErrUnknownX errors for failed points, or the context
//     error on cancellation
func (m *Mapper) MapAll(ctx context.Context, points []series.TestPoint) ([]MappingResult, error) {
	results := make([]MappingResult, len(points))

	var (
		mu        sync.Mutex
		pointErrs []error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.workers)

	for i, point := range points {
		i, point := i, point
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			res, err := m.Map(point)
			if err != nil {
				if !errors.Is(err, errs.ErrUnknownX) {
					return err
				}
				mu.Lock()
				pointErrs = append(pointErrs, err)
				mu.Unlock()
				res = MappingResult{Point: point}
			}
			results[i] = res

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, errors.Join(pointErrs...)
}
