package match

import (
	"fmt"
	"math"

	"github.com/nebulacode/curvematch/errs"
)

// SSE computes the sum of squared errors between two equal-length y-columns
// aligned on a shared x-grid.
//
// Accumulation is left-to-right in IEEE double precision so the result is
// bit-for-bit reproducible for a given input.
//
// Parameters:
//   - a: First y-column
//   - b: Second y-column, same length as a
//
// Returns:
//   - float64: Σ(aᵢ - bᵢ)², always >= 0
//   - error: ErrDimensionMismatch when the lengths differ
func SSE(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d values", errs.ErrDimensionMismatch, len(a), len(b))
	}

	sum := 0.0
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}

	return sum, nil
}

// MaxAbsDeviation returns the largest absolute pointwise difference between
// two equal-length y-columns.
//
// Returns ErrDimensionMismatch when the lengths differ.
func MaxAbsDeviation(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d values", errs.ErrDimensionMismatch, len(a), len(b))
	}

	maxDiff := 0.0
	for i := range a {
		diff := math.Abs(a[i] - b[i])
		if diff > maxDiff {
			maxDiff = diff
		}
	}

	return maxDiff, nil
}

// Threshold derives the admissibility threshold for a (training, candidate)
// pair: max|trainᵢ - candidateᵢ| × √2.
//
// The √2 factor is fixed, not tunable. The result is 0 only when the two
// columns are pointwise identical, in which case only exact matches
// qualify during mapping.
//
// Parameters:
//   - train: Training y-column
//   - candidate: Selected candidate y-column, same length
//
// Returns:
//   - float64: The threshold, always >= 0
//   - error: ErrDimensionMismatch when the lengths differ
func Threshold(train, candidate []float64) (float64, error) {
	maxDiff, err := MaxAbsDeviation(train, candidate)
	if err != nil {
		return 0, err
	}

	return maxDiff * math.Sqrt2, nil
}
