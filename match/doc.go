// Package match implements the two-stage curve-matching core: least-squares
// selection of a best-fitting candidate series for each training series, and
// threshold-based classification of unlabeled test points against the
// selected candidates.
//
// # Selection
//
// For every training series, Selector scans all fifty candidates in label
// order and keeps the one with the minimum sum of squared errors (SSE).
// Replacement requires strict improvement, so SSE ties resolve to the lower
// candidate label. Each winner carries an admissibility threshold derived
// from the maximum absolute pointwise deviation times √2.
//
// # Mapping
//
// Mapper classifies each test point against the fixed selection set: a point
// qualifies for a selection when its deviation from the selected candidate
// at the same x stays within the threshold, and the smallest qualifying
// deviation wins (ties resolve to the lower training label, mirroring the
// selection tie-break). A point no selection admits is unassigned, which is
// a normal outcome rather than an error.
//
// Both stages are pure functions of their inputs: no hidden state, no
// retries, deterministic results regardless of the concurrency level.
//
// # Basic Usage
//
//	selector, err := match.NewSelector(dataset)
//	if err != nil {
//	    return err
//	}
//	selections, err := selector.Select(ctx)
//	if err != nil {
//	    return err
//	}
//	mapper, err := match.NewMapper(dataset, selections)
//	if err != nil {
//	    return err
//	}
//	results, err := mapper.MapAll(ctx, points)
package match
