package match

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/nebulacode/curvematch/errs"
	"github.com/nebulacode/curvematch/internal/options"
	"github.com/nebulacode/curvematch/series"
)

// Selection maps one training series to its best-matching candidate,
// together with the SSE score that justified the choice and the derived
// admissibility threshold used by the mapping stage.
//
// The chosen candidate is the global SSE minimizer among all candidates for
// that training series, ties broken by the lowest candidate label.
type Selection struct {
	// TrainingLabel is the originating training series label (1..4).
	TrainingLabel int
	// CandidateLabel is the selected candidate series label (1..50).
	CandidateLabel int
	// SSE is the winning sum of squared errors.
	SSE float64
	// Threshold is max|train - candidate| × √2 for the winning pair.
	Threshold float64
}

// String returns a compact human-readable summary of the selection.
func (s Selection) String() string {
	return fmt.Sprintf("Selection{y%d -> ideal y%d, SSE: %.6g, threshold: %.6g}",
		s.TrainingLabel, s.CandidateLabel, s.SSE, s.Threshold)
}

// Selector scores every candidate against every training series and picks
// the per-training SSE minimizer.
//
// The four per-training scans are independent and read-only, so they run
// concurrently by default; WithSequentialScan forces a serial scan. Either
// mode produces identical selections.
type Selector struct {
	dataset    *series.Dataset
	sequential bool
}

// SelectorOption configures a Selector.
type SelectorOption = options.Option[*Selector]

// WithSequentialScan disables the concurrent per-training scans.
//
// Useful for profiling and for callers that are already saturating the CPU.
func WithSequentialScan() SelectorOption {
	return options.NoError(func(s *Selector) {
		s.sequential = true
	})
}

// NewSelector creates a Selector over the given dataset.
//
// The dataset is borrowed read-only; it must already satisfy the input
// contract (use Dataset.Validate after ingestion).
func NewSelector(dataset *series.Dataset, opts ...SelectorOption) (*Selector, error) {
	s := &Selector{dataset: dataset}
	if err := options.Apply(s, opts...); err != nil {
		return nil, err
	}

	return s, nil
}

// Select runs the full selection stage: one Selection per training series,
// independent of each other and of the scan order.
//
// Parameters:
//   - ctx: Cancellation context; cancelling discards partial results
//
// Returns:
//   - []Selection: Exactly one Selection per training series, in training
//     label order
//   - error: ErrNoCandidates for an empty pool, ErrDimensionMismatch when a
//     candidate's y-column is not aligned with the training grid
func (s *Selector) Select(ctx context.Context) ([]Selection, error) {
	if len(s.dataset.Candidates) == 0 {
		return nil, errs.ErrNoCandidates
	}

	selections := make([]Selection, len(s.dataset.Training))

	if s.sequential {
		for i, train := range s.dataset.Training {
			sel, err := s.scanOne(train)
			if err != nil {
				return nil, err
			}
			selections[i] = sel
		}

		return selections, nil
	}

	g, _ := errgroup.WithContext(ctx)
	for i, train := range s.dataset.Training {
		i, train := i, train
		g.Go(func() error {
			sel, err := s.scanOne(train)
			if err != nil {
				return err
			}
			// Each goroutine writes its own slot; no shared mutable state.
			selections[i] = sel

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return selections, nil
}

// scanOne scans all candidates in label order for a single training series.
// Replacement requires a strictly lower SSE, so ties keep the earlier
// (lower-labeled) candidate.
func (s *Selector) scanOne(train series.Series) (Selection, error) {
	best := Selection{TrainingLabel: train.Label}
	haveBest := false

	for _, cand := range s.dataset.Candidates {
		sse, err := SSE(train.Y, cand.Y)
		if err != nil {
			return Selection{}, fmt.Errorf("training y%d vs candidate y%d: %w",
				train.Label, cand.Label, err)
		}
		if !haveBest || sse < best.SSE {
			best.CandidateLabel = cand.Label
			best.SSE = sse
			haveBest = true
		}
	}

	threshold, err := Threshold(train.Y, s.dataset.Candidates[best.CandidateLabel-1].Y)
	if err != nil {
		return Selection{}, err
	}
	best.Threshold = threshold

	return best, nil
}
