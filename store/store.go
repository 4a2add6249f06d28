// Package store persists curvematch runs to SQLite: the ingested training
// and candidate tables, the four selections, and the per-point mapping
// results. The schema mirrors the CSV input layout, extended with a
// selections table and a single-row run summary so the chart layer can
// render without re-deriving anything.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/nebulacode/curvematch/errs"
	"github.com/nebulacode/curvematch/match"
	"github.com/nebulacode/curvematch/series"
)

// Store wraps a SQLite database holding one curvematch run.
//
// Saving any table replaces its previous content; the store models the
// latest run, not a history.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the SQLite database at path and ensures the schema
// exists. The parent directory is created when missing.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) initSchema() error {
	var b strings.Builder

	b.WriteString(`
	CREATE TABLE IF NOT EXISTS training_data (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		x REAL NOT NULL`)
	for i := 1; i <= series.TrainingCount; i++ {
		fmt.Fprintf(&b, ",\n\t\ty%d REAL NOT NULL", i)
	}
	b.WriteString("\n\t);\n")

	b.WriteString(`
	CREATE TABLE IF NOT EXISTS ideal_functions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		x REAL NOT NULL`)
	for i := 1; i <= series.CandidateCount; i++ {
		fmt.Fprintf(&b, ",\n\t\ty%d REAL NOT NULL", i)
	}
	b.WriteString("\n\t);\n")

	b.WriteString(`
	CREATE TABLE IF NOT EXISTS selections (
		train_label INTEGER PRIMARY KEY,
		ideal_label INTEGER NOT NULL,
		sse REAL NOT NULL,
		threshold REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS test_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		x REAL NOT NULL,
		y REAL NOT NULL,
		delta_y REAL,
		ideal_func_no INTEGER
	);
	CREATE INDEX IF NOT EXISTS idx_test_results_ideal ON test_results(ideal_func_no);

	CREATE TABLE IF NOT EXISTS run_info (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		fingerprint TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		assigned INTEGER NOT NULL,
		unassigned INTEGER NOT NULL
	);
	`)

	_, err := s.db.Exec(b.String())

	return err
}

// SaveDataset replaces the training_data and ideal_functions tables with the
// given dataset, row per grid point, inside one transaction.
func (s *Store) SaveDataset(ctx context.Context, ds *series.Dataset) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := saveSeriesTable(ctx, tx, "training_data", ds.Grid, ds.Training); err != nil {
			return err
		}

		return saveSeriesTable(ctx, tx, "ideal_functions", ds.Grid, ds.Candidates)
	})
}

// SaveSelections replaces the selections table.
func (s *Store) SaveSelections(ctx context.Context, selections []match.Selection) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM selections`); err != nil {
			return err
		}
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO selections (train_label, ideal_label, sse, threshold) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, sel := range selections {
			if _, err := stmt.ExecContext(ctx,
				sel.TrainingLabel, sel.CandidateLabel, sel.SSE, sel.Threshold); err != nil {
				return err
			}
		}

		return nil
	})
}

// SaveResults replaces the test_results table. Unassigned points are stored
// with NULL delta_y and NULL ideal_func_no rather than being dropped.
func (s *Store) SaveResults(ctx context.Context, results []match.MappingResult) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM test_results`); err != nil {
			return err
		}
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO test_results (x, y, delta_y, ideal_func_no) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, res := range results {
			var (
				delta sql.NullFloat64
				label sql.NullInt64
			)
			if res.Assigned {
				delta = sql.NullFloat64{Float64: res.Deviation, Valid: true}
				label = sql.NullInt64{Int64: int64(res.CandidateLabel), Valid: true}
			}
			if _, err := stmt.ExecContext(ctx, res.Point.X, res.Point.Y, delta, label); err != nil {
				return err
			}
		}

		return nil
	})
}

// SaveRunInfo replaces the single run_info row.
func (s *Store) SaveRunInfo(ctx context.Context, fingerprint uint64, assigned, unassigned int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO run_info (id, fingerprint, created_at, assigned, unassigned)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			fingerprint = excluded.fingerprint,
			created_at = excluded.created_at,
			assigned = excluded.assigned,
			unassigned = excluded.unassigned`,
		fmt.Sprintf("%016x", fingerprint), time.Now().UTC(), assigned, unassigned)

	return err
}

// LoadDataset reads the training_data and ideal_functions tables back into a
// validated Dataset.
func (s *Store) LoadDataset(ctx context.Context) (*series.Dataset, error) {
	grid, training, err := s.loadSeriesTable(ctx, "training_data", series.TrainingCount)
	if err != nil {
		return nil, err
	}
	idealGrid, candidates, err := s.loadSeriesTable(ctx, "ideal_functions", series.CandidateCount)
	if err != nil {
		return nil, err
	}
	if len(grid) != len(idealGrid) {
		return nil, fmt.Errorf("%w: %d training rows vs %d ideal rows",
			errs.ErrGridMismatch, len(grid), len(idealGrid))
	}

	ds := &series.Dataset{Grid: grid, Training: training, Candidates: candidates}
	if err := ds.Validate(); err != nil {
		return nil, err
	}

	return ds, nil
}

// LoadSelections reads the selections table in training label order.
func (s *Store) LoadSelections(ctx context.Context) ([]match.Selection, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT train_label, ideal_label, sse, threshold FROM selections ORDER BY train_label`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var selections []match.Selection
	for rows.Next() {
		var sel match.Selection
		if err := rows.Scan(&sel.TrainingLabel, &sel.CandidateLabel, &sel.SSE, &sel.Threshold); err != nil {
			return nil, err
		}
		selections = append(selections, sel)
	}

	return selections, rows.Err()
}

// LoadResults reads the test_results table in insertion order.
func (s *Store) LoadResults(ctx context.Context) ([]match.MappingResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT x, y, delta_y, ideal_func_no FROM test_results ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []match.MappingResult
	for rows.Next() {
		var (
			res   match.MappingResult
			delta sql.NullFloat64
			label sql.NullInt64
		)
		if err := rows.Scan(&res.Point.X, &res.Point.Y, &delta, &label); err != nil {
			return nil, err
		}
		if label.Valid {
			res.Assigned = true
			res.CandidateLabel = int(label.Int64)
			res.Deviation = delta.Float64
		}
		results = append(results, res)
	}

	return results, rows.Err()
}

func (s *Store) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

// saveSeriesTable replaces a wide table (x, y1..yN) with one row per grid
// point. The insert statement is built once for the table's column count.
func saveSeriesTable(ctx context.Context, tx *sql.Tx, table string, grid []float64, cols []series.Series) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
		return err
	}

	names := make([]string, 0, len(cols)+1)
	names = append(names, "x")
	for i := range cols {
		names = append(names, "y"+strconv.Itoa(i+1))
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(names)), ", ")

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		`INSERT INTO %s (%s) VALUES (%s)`, table, strings.Join(names, ", "), placeholders))
	if err != nil {
		return err
	}
	defer stmt.Close()

	args := make([]any, len(names))
	for row, x := range grid {
		args[0] = x
		for c := range cols {
			args[c+1] = cols[c].Y[row]
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return err
		}
	}

	return nil
}

// loadSeriesTable reads a wide table (x, y1..yN) back into a grid and N
// labeled series, ordered by x.
func (s *Store) loadSeriesTable(ctx context.Context, table string, count int) ([]float64, []series.Series, error) {
	names := make([]string, 0, count+1)
	names = append(names, "x")
	for i := 1; i <= count; i++ {
		names = append(names, "y"+strconv.Itoa(i))
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT %s FROM %s ORDER BY x`, strings.Join(names, ", "), table))
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var grid []float64
	cols := make([]series.Series, count)
	for i := range cols {
		cols[i] = series.Series{Label: i + 1}
	}

	dest := make([]any, count+1)
	for rows.Next() {
		values := make([]float64, count+1)
		for i := range dest {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, nil, err
		}
		grid = append(grid, values[0])
		for c := 0; c < count; c++ {
			cols[c].Y = append(cols[c].Y, values[c+1])
		}
	}

	return grid, cols, rows.Err()
}
