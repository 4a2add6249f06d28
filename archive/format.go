package archive

import (
	"github.com/nebulacode/curvematch/match"
	"github.com/nebulacode/curvematch/series"
)

const (
	// MagicNumber identifies a snapshot file ("CVMS" in ASCII).
	MagicNumber uint32 = 0x43564d53

	// Version1 is the current snapshot format version.
	Version1 uint8 = 1

	// headerSize is the fixed byte length of the snapshot header.
	headerSize = 28

	// maxPayloadSize bounds the payload length accepted from a header.
	// Real snapshots encode to well under a megabyte; the cap keeps a
	// corrupted length field from forcing a multi-gigabyte allocation
	// before the checksum is ever verified.
	maxPayloadSize = 128 * 1024 * 1024
)

// Header field offsets within the fixed-size snapshot header.
const (
	offMagic       = 0
	offVersion     = 4
	offCompression = 5
	offReserved    = 6
	offFingerprint = 8
	offChecksum    = 16
	offPayloadLen  = 24
)

// Snapshot bundles the full output of a matching run for serialization.
type Snapshot struct {
	// Dataset holds the grid, training and candidate series.
	Dataset *series.Dataset
	// Selections holds one entry per training series.
	Selections []match.Selection
	// Results holds every classified test point, assigned or not.
	Results []match.MappingResult
}
