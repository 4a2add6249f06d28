// Package ingest reads the three curvematch input tables from CSV and
// validates them against the input contract before the core ever sees them:
// required columns present, no empty cells, parseable floats, and one
// strictly increasing x-grid shared by the training and candidate tables.
//
// The expected layouts are semicolon delimited with a header row:
//
//	train.csv: x;y1;y2;y3;y4
//	ideal.csv: x;y1;...;y50
//	test.csv:  x;y
//
// Column matching is case-insensitive and order-independent; the delimiter
// is configurable through WithDelimiter.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/nebulacode/curvematch/errs"
	"github.com/nebulacode/curvematch/internal/options"
	"github.com/nebulacode/curvematch/series"
)

// DefaultDelimiter is the field separator used by the standard input
// files.
const DefaultDelimiter = ';'

// Loader reads and validates curvematch CSV tables.
type Loader struct {
	delimiter rune
}

// LoaderOption configures a Loader.
type LoaderOption = options.Option[*Loader]

// WithDelimiter overrides the CSV field delimiter (default ';').
func WithDelimiter(d rune) LoaderOption {
	return options.New(func(l *Loader) error {
		if d == 0 || d == '\n' || d == '\r' {
			return fmt.Errorf("invalid delimiter %q", d)
		}
		l.delimiter = d

		return nil
	})
}

// NewLoader creates a Loader with the given options.
func NewLoader(opts ...LoaderOption) (*Loader, error) {
	l := &Loader{delimiter: DefaultDelimiter}
	if err := options.Apply(l, opts...); err != nil {
		return nil, err
	}

	return l, nil
}

// LoadDataset reads the training and candidate tables from trainPath and
// idealPath and returns a validated Dataset.
//
// The two tables must share one identical, strictly increasing x-grid;
// a mismatch fails with ErrGridMismatch so the core can assume aligned
// input.
func (l *Loader) LoadDataset(trainPath, idealPath string) (*series.Dataset, error) {
	trainGrid, training, err := l.loadSeriesFile(trainPath, series.TrainingCount)
	if err != nil {
		return nil, err
	}
	idealGrid, candidates, err := l.loadSeriesFile(idealPath, series.CandidateCount)
	if err != nil {
		return nil, err
	}

	if err := sameGrid(trainGrid, idealGrid); err != nil {
		return nil, fmt.Errorf("%s vs %s: %w", trainPath, idealPath, err)
	}

	ds := &series.Dataset{
		Grid:       trainGrid,
		Training:   training,
		Candidates: candidates,
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}

	return ds, nil
}

// LoadTestPoints reads the test observations from path.
//
// Test point x-values are not checked against any grid here; an off-grid
// point surfaces later as that single point's mapping failure.
func (l *Loader) LoadTestPoints(path string) ([]series.TestPoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open test data: %w", err)
	}
	defer f.Close()

	points, err := l.ParseTestPoints(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return points, nil
}

// ParseTraining parses a training table (x;y1..y4) from r.
func (l *Loader) ParseTraining(r io.Reader) (grid []float64, cols []series.Series, err error) {
	return l.parseSeriesTable(r, series.TrainingCount)
}

// ParseCandidates parses a candidate table (x;y1..y50) from r.
func (l *Loader) ParseCandidates(r io.Reader) (grid []float64, cols []series.Series, err error) {
	return l.parseSeriesTable(r, series.CandidateCount)
}

// ParseTestPoints parses a test point table (x;y) from r.
func (l *Loader) ParseTestPoints(r io.Reader) ([]series.TestPoint, error) {
	rows, idx, err := l.readTable(r, []string{"x", "y"})
	if err != nil {
		return nil, err
	}

	points := make([]series.TestPoint, 0, len(rows))
	for i, row := range rows {
		x, err := parseCell(row[idx[0]], i, "x")
		if err != nil {
			return nil, err
		}
		y, err := parseCell(row[idx[1]], i, "y")
		if err != nil {
			return nil, err
		}
		points = append(points, series.TestPoint{X: x, Y: y})
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: no test points", errs.ErrInvalidData)
	}

	return points, nil
}

func (l *Loader) loadSeriesFile(path string, count int) ([]float64, []series.Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open series table: %w", err)
	}
	defer f.Close()

	grid, cols, err := l.parseSeriesTable(f, count)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}

	return grid, cols, nil
}

// parseSeriesTable parses a table with columns x, y1..yN into a grid and N
// labeled series.
func (l *Loader) parseSeriesTable(r io.Reader, count int) ([]float64, []series.Series, error) {
	want := make([]string, 0, count+1)
	want = append(want, "x")
	for i := 1; i <= count; i++ {
		want = append(want, "y"+strconv.Itoa(i))
	}

	rows, idx, err := l.readTable(r, want)
	if err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("%w: no data rows", errs.ErrInvalidData)
	}

	grid := make([]float64, len(rows))
	cols := make([]series.Series, count)
	for i := range cols {
		cols[i] = series.Series{Label: i + 1, Y: make([]float64, len(rows))}
	}

	for i, row := range rows {
		x, err := parseCell(row[idx[0]], i, "x")
		if err != nil {
			return nil, nil, err
		}
		grid[i] = x
		for c := 0; c < count; c++ {
			v, err := parseCell(row[idx[c+1]], i, want[c+1])
			if err != nil {
				return nil, nil, err
			}
			cols[c].Y[i] = v
		}
	}

	if err := series.ValidateGrid(grid); err != nil {
		return nil, nil, err
	}

	return grid, cols, nil
}

// readTable reads all CSV records and resolves the wanted columns against
// the header, case-insensitively. Returned idx maps each wanted column to
// its position in every row.
func (l *Loader) readTable(r io.Reader, want []string) (rows [][]string, idx []int, err error) {
	cr := csv.NewReader(r)
	cr.Comma = l.delimiter
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", errs.ErrInvalidData, err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("%w: empty table", errs.ErrInvalidData)
	}

	header := records[0]
	byName := make(map[string]int, len(header))
	for i, name := range header {
		byName[strings.ToLower(strings.TrimSpace(name))] = i
	}

	idx = make([]int, len(want))
	for i, name := range want {
		pos, ok := byName[name]
		if !ok {
			return nil, nil, fmt.Errorf("%w: %q (header: %v)", errs.ErrMissingColumn, name, header)
		}
		idx[i] = pos
	}

	return records[1:], idx, nil
}

// parseCell parses one float cell, rejecting empty values and NaN/Inf.
func parseCell(cell string, row int, col string) (float64, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return 0, fmt.Errorf("%w: empty %s cell at data row %d", errs.ErrInvalidData, col, row+1)
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s at data row %d: %v", errs.ErrInvalidData, col, row+1, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: non-finite %s value at data row %d", errs.ErrInvalidData, col, row+1)
	}

	return v, nil
}

// sameGrid checks two grids for exact pointwise equality.
func sameGrid(a, b []float64) error {
	if len(a) != len(b) {
		return fmt.Errorf("%w: %d vs %d grid points", errs.ErrGridMismatch, len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			return fmt.Errorf("%w: x[%d] is %g vs %g", errs.ErrGridMismatch, i, a[i], b[i])
		}
	}

	return nil
}
