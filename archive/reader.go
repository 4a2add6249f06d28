package archive

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/cespare/xxhash/v2"

	"github.com/nebulacode/curvematch/compress"
	"github.com/nebulacode/curvematch/endian"
	"github.com/nebulacode/curvematch/errs"
	"github.com/nebulacode/curvematch/match"
	"github.com/nebulacode/curvematch/series"
)

// Reader deserializes snapshots written by Writer.
//
// A Reader is stateless and safe for concurrent use.
type Reader struct {
	engine endian.EndianEngine
}

// NewReader creates a snapshot reader.
func NewReader() *Reader {
	return &Reader{engine: endian.GetLittleEndianEngine()}
}

// Read decodes a snapshot from src.
//
// It verifies the magic number, format version, payload checksum and the
// dataset fingerprint before returning, so a successfully read snapshot
// is both intact and internally consistent.
func (r *Reader) Read(src io.Reader) (*Snapshot, error) {
	header := make([]byte, headerSize)
	if _, err := io.ReadFull(src, header); err != nil {
		return nil, fmt.Errorf("%w: short header: %w", errs.ErrCorruptedArchive, err)
	}

	if magic := r.engine.Uint32(header[offMagic:]); magic != MagicNumber {
		return nil, fmt.Errorf("%w: 0x%08x", errs.ErrInvalidMagic, magic)
	}

	if version := header[offVersion]; version != Version1 {
		return nil, fmt.Errorf("%w: %d", errs.ErrInvalidVersion, version)
	}

	compression := compress.Type(header[offCompression])
	codec, err := compress.GetCodec(compression)
	if err != nil {
		return nil, fmt.Errorf("%w: 0x%02x", errs.ErrInvalidCompression, uint8(compression))
	}

	payloadLen := r.engine.Uint32(header[offPayloadLen:])
	if payloadLen > maxPayloadSize {
		return nil, fmt.Errorf("%w: payload length %d exceeds %d",
			errs.ErrCorruptedArchive, payloadLen, maxPayloadSize)
	}
	payload := make([]byte, payloadLen)
	if _, err := io.ReadFull(src, payload); err != nil {
		return nil, fmt.Errorf("%w: short payload: %w", errs.ErrCorruptedArchive, err)
	}

	if sum := xxhash.Sum64(payload); sum != r.engine.Uint64(header[offChecksum:]) {
		return nil, fmt.Errorf("%w: payload checksum", errs.ErrChecksumMismatch)
	}

	raw, err := codec.Decompress(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: decompress: %w", errs.ErrCorruptedArchive, err)
	}

	snap, err := r.decodePayload(raw)
	if err != nil {
		return nil, err
	}

	if fp := snap.Dataset.Fingerprint(); fp != r.engine.Uint64(header[offFingerprint:]) {
		return nil, fmt.Errorf("%w: dataset fingerprint", errs.ErrChecksumMismatch)
	}

	return snap, nil
}

// ReadFile decodes a snapshot from the file at path.
func (r *Reader) ReadFile(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	return r.Read(f)
}

// cursor tracks a decode position with bounds checking.
type cursor struct {
	engine endian.EndianEngine
	data   []byte
	pos    int
}

func (c *cursor) need(n int) error {
	if c.pos+n > len(c.data) {
		return fmt.Errorf("%w: truncated at offset %d", errs.ErrCorruptedArchive, c.pos)
	}

	return nil
}

func (c *cursor) uint16() (uint16, error) {
	if err := c.need(2); err != nil {
		return 0, err
	}
	v := c.engine.Uint16(c.data[c.pos:])
	c.pos += 2

	return v, nil
}

func (c *cursor) uint32() (uint32, error) {
	if err := c.need(4); err != nil {
		return 0, err
	}
	v := c.engine.Uint32(c.data[c.pos:])
	c.pos += 4

	return v, nil
}

func (c *cursor) float64() (float64, error) {
	if err := c.need(8); err != nil {
		return 0, err
	}
	v := math.Float64frombits(c.engine.Uint64(c.data[c.pos:]))
	c.pos += 8

	return v, nil
}

func (c *cursor) byte() (byte, error) {
	if err := c.need(1); err != nil {
		return 0, err
	}
	v := c.data[c.pos]
	c.pos++

	return v, nil
}

func (c *cursor) floats(n int) ([]float64, error) {
	if err := c.need(n * 8); err != nil {
		return nil, err
	}

	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = math.Float64frombits(c.engine.Uint64(c.data[c.pos+i*8:]))
	}
	c.pos += n * 8

	return out, nil
}

func (r *Reader) decodePayload(raw []byte) (*Snapshot, error) {
	c := &cursor{engine: r.engine, data: raw}

	gridLen, err := c.uint32()
	if err != nil {
		return nil, err
	}

	grid, err := c.floats(int(gridLen))
	if err != nil {
		return nil, err
	}

	training, err := r.decodeSeriesBlock(c, int(gridLen))
	if err != nil {
		return nil, err
	}

	candidates, err := r.decodeSeriesBlock(c, int(gridLen))
	if err != nil {
		return nil, err
	}

	selCount, err := c.uint16()
	if err != nil {
		return nil, err
	}

	selections := make([]match.Selection, 0, selCount)
	for j := 0; j < int(selCount); j++ {
		var sel match.Selection
		trainLabel, err := c.uint16()
		if err != nil {
			return nil, err
		}
		candLabel, err := c.uint16()
		if err != nil {
			return nil, err
		}
		if sel.SSE, err = c.float64(); err != nil {
			return nil, err
		}
		if sel.Threshold, err = c.float64(); err != nil {
			return nil, err
		}
		sel.TrainingLabel = int(trainLabel)
		sel.CandidateLabel = int(candLabel)
		selections = append(selections, sel)
	}

	resCount, err := c.uint32()
	if err != nil {
		return nil, err
	}

	results := make([]match.MappingResult, 0, resCount)
	for j := 0; j < int(resCount); j++ {
		var res match.MappingResult
		if res.Point.X, err = c.float64(); err != nil {
			return nil, err
		}
		if res.Point.Y, err = c.float64(); err != nil {
			return nil, err
		}
		if res.Deviation, err = c.float64(); err != nil {
			return nil, err
		}
		candLabel, err := c.uint16()
		if err != nil {
			return nil, err
		}
		assigned, err := c.byte()
		if err != nil {
			return nil, err
		}
		res.CandidateLabel = int(candLabel)
		res.Assigned = assigned != 0
		results = append(results, res)
	}

	if c.pos != len(raw) {
		return nil, fmt.Errorf("%w: %d trailing bytes", errs.ErrCorruptedArchive, len(raw)-c.pos)
	}

	snap := &Snapshot{
		Dataset: &series.Dataset{
			Grid:       grid,
			Training:   training,
			Candidates: candidates,
		},
		Selections: selections,
		Results:    results,
	}

	if err := snap.Dataset.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrCorruptedArchive, err)
	}

	return snap, nil
}

func (r *Reader) decodeSeriesBlock(c *cursor, gridLen int) ([]series.Series, error) {
	count, err := c.uint16()
	if err != nil {
		return nil, err
	}

	block := make([]series.Series, 0, count)
	for j := 0; j < int(count); j++ {
		label, err := c.uint16()
		if err != nil {
			return nil, err
		}

		y, err := c.floats(gridLen)
		if err != nil {
			return nil, err
		}

		block = append(block, series.Series{Label: int(label), Y: y})
	}

	return block, nil
}
