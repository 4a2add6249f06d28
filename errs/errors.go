// Package errs defines the sentinel errors shared across curvematch packages.
//
// All errors are wrapped with fmt.Errorf("%w: ...") at the call site to add
// context, so callers can branch on the condition with errors.Is while still
// getting a descriptive message.
package errs

import "errors"

// Core matching errors.
var (
	// ErrDimensionMismatch indicates two series being compared have different
	// lengths or misaligned x-grids. Fatal to the current comparison.
	ErrDimensionMismatch = errors.New("series dimension mismatch")

	// ErrNoCandidates indicates an empty candidate pool; the minimum SSE is
	// undefined, so selection aborts entirely.
	ErrNoCandidates = errors.New("no candidate series available")

	// ErrUnknownX indicates a test point's x-value is absent from the shared
	// candidate grid. Fatal to that point's mapping only.
	ErrUnknownX = errors.New("x value not on candidate grid")
)

// Ingestion errors.
var (
	// ErrInvalidData indicates a CSV cell or row that cannot be parsed into
	// the expected tabular shape.
	ErrInvalidData = errors.New("invalid input data")

	// ErrMissingColumn indicates a required CSV column is absent.
	ErrMissingColumn = errors.New("missing required column")

	// ErrGridMismatch indicates training and candidate tables do not share
	// one strictly increasing x-grid.
	ErrGridMismatch = errors.New("x-grid mismatch between tables")

	// ErrInvalidSeries indicates a series violates the data model invariants
	// (x not strictly increasing, duplicate x, or no points).
	ErrInvalidSeries = errors.New("invalid series")
)

// Archive errors.
var (
	// ErrInvalidMagic indicates the snapshot file does not start with the
	// curvematch archive magic bytes.
	ErrInvalidMagic = errors.New("invalid archive magic")

	// ErrInvalidVersion indicates an unsupported archive format version.
	ErrInvalidVersion = errors.New("unsupported archive version")

	// ErrInvalidCompression indicates an unknown compression type flag.
	ErrInvalidCompression = errors.New("invalid compression type")

	// ErrChecksumMismatch indicates the dataset fingerprint stored in the
	// archive header does not match the decoded payload.
	ErrChecksumMismatch = errors.New("archive fingerprint mismatch")

	// ErrCorruptedArchive indicates a truncated or structurally damaged
	// snapshot payload.
	ErrCorruptedArchive = errors.New("corrupted archive payload")
)
