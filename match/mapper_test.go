package match

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nebulacode/curvematch/errs"
	"github.com/nebulacode/curvematch/series"
)

func TestMapWithinThreshold(t *testing.T) {
	// Selection for training y1 is candidate 1 with threshold 0.5; point
	// (1, 1.3) deviates by 0.3 and must be assigned.
	ds := testDataset(t, [][]float64{{0, 1, 2}}, [][]float64{{0, 1, 2}})
	selections := []Selection{{TrainingLabel: 1, CandidateLabel: 1, Threshold: 0.5}}

	m, err := NewMapper(ds, selections)
	require.NoError(t, err)

	res, err := m.Map(series.TestPoint{X: 1, Y: 1.3})
	require.NoError(t, err)
	assert.True(t, res.Assigned)
	assert.Equal(t, 1, res.CandidateLabel)
	assert.InDelta(t, 0.3, res.Deviation, 1e-12)
}

func TestMapBeyondThresholdUnassigned(t *testing.T) {
	// Same selection; point (1, 5.0) deviates by 4.0 > 0.5 and stays
	// unassigned, which is a valid result rather than an error.
	ds := testDataset(t, [][]float64{{0, 1, 2}}, [][]float64{{0, 1, 2}})
	selections := []Selection{{TrainingLabel: 1, CandidateLabel: 1, Threshold: 0.5}}

	m, err := NewMapper(ds, selections)
	require.NoError(t, err)

	res, err := m.Map(series.TestPoint{X: 1, Y: 5.0})
	require.NoError(t, err)
	assert.False(t, res.Assigned)
	assert.Zero(t, res.CandidateLabel)
}

func TestMapTieKeepsLowerTrainingLabel(t *testing.T) {
	// Candidates 1 and 2 sit symmetrically around the point, deviation 0.2
	// each, both within threshold. The selection originating from the lower
	// training label must win the tie.
	ds := testDataset(t,
		[][]float64{{0, 0, 0}, {0, 0, 0}},
		[][]float64{{1, 1.2, 1}, {1, 0.8, 1}},
	)
	selections := []Selection{
		{TrainingLabel: 1, CandidateLabel: 1, Threshold: 1.0},
		{TrainingLabel: 2, CandidateLabel: 2, Threshold: 1.0},
	}

	m, err := NewMapper(ds, selections)
	require.NoError(t, err)

	res, err := m.Map(series.TestPoint{X: 1, Y: 1.0})
	require.NoError(t, err)
	require.True(t, res.Assigned)
	assert.Equal(t, 1, res.CandidateLabel)
	assert.InDelta(t, 0.2, res.Deviation, 1e-12)
}

func TestMapSmallestDeviationWins(t *testing.T) {
	ds := testDataset(t,
		[][]float64{{0, 0, 0}, {0, 0, 0}},
		[][]float64{{0, 2, 0}, {0, 1.1, 0}},
	)
	selections := []Selection{
		{TrainingLabel: 1, CandidateLabel: 1, Threshold: 5},
		{TrainingLabel: 2, CandidateLabel: 2, Threshold: 5},
	}

	m, err := NewMapper(ds, selections)
	require.NoError(t, err)

	res, err := m.Map(series.TestPoint{X: 1, Y: 1.0})
	require.NoError(t, err)
	require.True(t, res.Assigned)
	assert.Equal(t, 2, res.CandidateLabel, "closer candidate wins despite later scan position")
}

func TestMapUnknownX(t *testing.T) {
	ds := testDataset(t, [][]float64{{0, 1, 2}}, [][]float64{{0, 1, 2}})
	selections := []Selection{{TrainingLabel: 1, CandidateLabel: 1, Threshold: 1}}

	m, err := NewMapper(ds, selections)
	require.NoError(t, err)

	_, err = m.Map(series.TestPoint{X: 0.5, Y: 1})
	require.ErrorIs(t, err, errs.ErrUnknownX)
}

func TestMapDeterministic(t *testing.T) {
	ds := testDataset(t, [][]float64{{0, 1, 2}}, [][]float64{{0, 1, 2}})
	selections := []Selection{{TrainingLabel: 1, CandidateLabel: 1, Threshold: 0.5}}

	m, err := NewMapper(ds, selections)
	require.NoError(t, err)

	point := series.TestPoint{X: 2, Y: 2.1}
	first, err := m.Map(point)
	require.NoError(t, err)
	for it0 := 0; it0 < 10; it0++ {
		again, err := m.Map(point)
		require.NoError(t, err)
		require.Equal(t, first, again, "mapping must be stateless per point")
	}
}

func TestMapThresholdExclusionMonotonic(t *testing.T) {
	// Once a point's deviation crosses the threshold it stays excluded for
	// every larger deviation.
	ds := testDataset(t, [][]float64{{0, 0, 0}}, [][]float64{{0, 0, 0}})
	selections := []Selection{{TrainingLabel: 1, CandidateLabel: 1, Threshold: 1.0}}

	m, err := NewMapper(ds, selections)
	require.NoError(t, err)

	excluded := false
	for dev := 0.0; dev <= 3.0; dev += 0.125 {
		res, err := m.Map(series.TestPoint{X: 1, Y: dev})
		require.NoError(t, err)
		if excluded {
			require.False(t, res.Assigned, "deviation %g re-qualified after exclusion", dev)
		}
		if !res.Assigned {
			excluded = true
		}
	}
	assert.True(t, excluded, "sweep should eventually exceed the threshold")
}

func TestMapAll(t *testing.T) {
	ds := testDataset(t, [][]float64{{0, 1, 2}}, [][]float64{{0, 1, 2}})
	selections := []Selection{{TrainingLabel: 1, CandidateLabel: 1, Threshold: 0.5}}

	m, err := NewMapper(ds, selections, WithWorkers(2))
	require.NoError(t, err)

	points := []series.TestPoint{
		{X: 0, Y: 0.1},
		{X: 1, Y: 9.0},
		{X: 2, Y: 1.9},
	}
	results, err := m.MapAll(context.Background(), points)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, points[0], results[0].Point)
	assert.True(t, results[0].Assigned)
	assert.False(t, results[1].Assigned)
	assert.True(t, results[2].Assigned)
}

func TestMapAllUnknownXContinues(t *testing.T) {
	ds := testDataset(t, [][]float64{{0, 1, 2}}, [][]float64{{0, 1, 2}})
	selections := []Selection{{TrainingLabel: 1, CandidateLabel: 1, Threshold: 0.5}}

	m, err := NewMapper(ds, selections)
	require.NoError(t, err)

	points := []series.TestPoint{
		{X: 0, Y: 0.1},
		{X: 7.77, Y: 1}, // off-grid, fails alone
		{X: 2, Y: 2.2},
	}
	results, err := m.MapAll(context.Background(), points)
	require.ErrorIs(t, err, errs.ErrUnknownX)
	require.Len(t, results, 3)

	assert.True(t, results[0].Assigned, "good points before the failure still map")
	assert.False(t, results[1].Assigned)
	assert.True(t, results[2].Assigned, "good points after the failure still map")
}

func TestMapperRejectsBadWorkerCount(t *testing.T) {
	ds := testDataset(t, [][]float64{{0, 1, 2}}, [][]float64{{0, 1, 2}})

	_, err := NewMapper(ds, nil, WithWorkers(0))
	require.Error(t, err)
}

func BenchmarkMapAll(b *testing.B) {
	grid := make([]float64, 400)
	for i := range grid {
		grid[i] = float64(i)
	}
	y := make([]float64, 400)
	for i := range y {
		y[i] = float64(i) * 0.5
	}

	ds := &series.Dataset{
		Grid:       grid,
		Candidates: []series.Series{{Label: 1, Y: y}},
	}
	selections := []Selection{{TrainingLabel: 1, CandidateLabel: 1, Threshold: 10}}

	m, err := NewMapper(ds, selections)
	if err != nil {
		b.Fatal(err)
	}

	points := make([]series.TestPoint, 100)
	for i := range points {
		points[i] = series.TestPoint{X: float64(i), Y: float64(i) * 0.5}
	}
	ctx := context.Background()

	b.ResetTimer()
	for bi := 0; bi < b.N; bi++ {
		if _, err := m.MapAll(ctx, points); err != nil {
			b.Fatal(err)
		}
	}
}
