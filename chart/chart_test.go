package chart

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nebulacode/curvematch/match"
	"github.com/nebulacode/curvematch/series"
)

func testDataset() *series.Dataset {
	gridLen := 20
	grid := make([]float64, gridLen)
	for i := 0; i < gridLen; i++ {
		grid[i] = float64(i)
	}

	mkSeries := func(count int) []series.Series {
		out := make([]series.Series, count)
		for i := 0; i < count; i++ {
			y := make([]float64, gridLen)
			for j := 0; j < gridLen; j++ {
				y[j] = float64(i+1) * float64(j)
			}
			out[i] = series.Series{Label: i + 1, Y: y}
		}
		return out
	}

	return &series.Dataset{
		Grid:       grid,
		Training:   mkSeries(series.TrainingCount),
		Candidates: mkSeries(series.CandidateCount),
	}
}

func testSelections() []match.Selection {
	return []match.Selection{
		{TrainingLabel: 1, CandidateLabel: 3, SSE: 1.5, Threshold: 0.7},
		{TrainingLabel: 2, CandidateLabel: 17, SSE: 0.25, Threshold: 0.2},
		{TrainingLabel: 3, CandidateLabel: 3, SSE: 4, Threshold: 2},
		{TrainingLabel: 4, CandidateLabel: 50, SSE: 10, Threshold: 5},
	}
}

func testResults() []match.MappingResult {
	return []match.MappingResult{
		{Point: series.TestPoint{X: 1, Y: 3.1}, CandidateLabel: 3, Deviation: 0.1, Assigned: true},
		{Point: series.TestPoint{X: 2, Y: 34.2}, CandidateLabel: 17, Deviation: 0.2, Assigned: true},
		{Point: series.TestPoint{X: 5, Y: 1000}, Assigned: false},
	}
}

func TestRenderReport(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, testDataset(), testSelections(), testResults()))

	html := buf.String()
	assert.Contains(t, html, "curvematch report")
	assert.Contains(t, html, "training y1 vs ideal y3")
	assert.Contains(t, html, "training y4 vs ideal y50")
	assert.Contains(t, html, "test point classification")
	assert.Contains(t, html, "unassigned")
	assert.Contains(t, html, "echarts")
}

func TestRenderWithCustomTitle(t *testing.T) {
	r, err := NewRenderer(WithPageTitle("run 42"))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, testDataset(), testSelections(), nil))
	assert.Contains(t, buf.String(), "run 42")
}

func TestRenderRejectsNilDataset(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.Error(t, r.Render(&buf, nil, nil, nil))
}

func TestRenderRejectsOutOfRangeSelection(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	var buf bytes.Buffer
	err = r.Render(&buf, testDataset(), []match.Selection{{TrainingLabel: 9, CandidateLabel: 1}}, nil)
	require.Error(t, err)

	err = r.Render(&buf, testDataset(), []match.Selection{{TrainingLabel: 1, CandidateLabel: 99}}, nil)
	require.Error(t, err)
}

func TestRenderFile(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "report.html")
	require.NoError(t, r.RenderFile(path, testDataset(), testSelections(), testResults()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "test point classification")
}
