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
	"github.com/nebulacode/curvematch/internal/options"
	"github.com/nebulacode/curvematch/internal/pool"
	"github.com/nebulacode/curvematch/series"
)

// Writer serializes snapshots.
//
// A Writer is stateless between calls and safe for concurrent use.
//
// Example:
//
//	w, err := archive.NewWriter(archive.WithCompression(compress.TypeLZ4))
//	if err != nil {
//		return err
//	}
//	if err := w.WriteFile("run.cvms", snap); err != nil {
//		return err
//	}
type Writer struct {
	engine      endian.EndianEngine
	compression compress.Type
}

// WriterOption configures a Writer.
type WriterOption = options.Option[*Writer]

// WithCompression sets the payload codec. The default is zstd.
func WithCompression(t compress.Type) WriterOption {
	return options.New(func(w *Writer) error {
		if _, err := compress.GetCodec(t); err != nil {
			return fmt.Errorf("%w: %s", errs.ErrInvalidCompression, t)
		}
		w.compression = t

		return nil
	})
}

// NewWriter creates a snapshot writer.
func NewWriter(opts ...WriterOption) (*Writer, error) {
	w := &Writer{
		engine:      endian.GetLittleEndianEngine(),
		compression: compress.TypeZstd,
	}

	if err := options.Apply(w, opts...); err != nil {
		return nil, err
	}

	return w, nil
}

// Write serializes snap to dst.
//
// The dataset is validated first, so a snapshot on disk is always
// structurally sound.
func (w *Writer) Write(dst io.Writer, snap *Snapshot) error {
	if snap == nil || snap.Dataset == nil {
		return fmt.Errorf("%w: nil snapshot", errs.ErrInvalidSeries)
	}

	if err := snap.Dataset.Validate(); err != nil {
		return err
	}

	raw := pool.GetArchiveBuffer()
	defer pool.PutArchiveBuffer(raw)

	w.encodePayload(raw, snap)

	codec, err := compress.GetCodec(w.compression)
	if err != nil {
		return err
	}

	payload, err := codec.Compress(raw.Bytes())
	if err != nil {
		return fmt.Errorf("compress payload: %w", err)
	}

	header := make([]byte, headerSize)
	w.engine.PutUint32(header[offMagic:], MagicNumber)
	header[offVersion] = Version1
	header[offCompression] = uint8(w.compression)
	w.engine.PutUint64(header[offFingerprint:], snap.Dataset.Fingerprint())
	w.engine.PutUint64(header[offChecksum:], xxhash.Sum64(payload))
	w.engine.PutUint32(header[offPayloadLen:], uint32(len(payload)))

	if _, err := dst.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if _, err := dst.Write(payload); err != nil {
		return fmt.Errorf("write payload: %w", err)
	}

	return nil
}

// WriteFile serializes snap to a file at path, creating or truncating it.
func (w *Writer) WriteFile(path string, snap *Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}

	if err := w.Write(f, snap); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

func (w *Writer) encodePayload(buf *pool.ByteBuffer, snap *Snapshot) {
	ds := snap.Dataset

	buf.B = w.engine.AppendUint32(buf.B, uint32(len(ds.Grid)))
	for _, v := range ds.Grid {
		buf.B = w.engine.AppendUint64(buf.B, math.Float64bits(v))
	}

	w.encodeSeriesBlock(buf, ds.Training)
	w.encodeSeriesBlock(buf, ds.Candidates)

	buf.B = w.engine.AppendUint16(buf.B, uint16(len(snap.Selections)))
	for _, sel := range snap.Selections {
		buf.B = w.engine.AppendUint16(buf.B, uint16(sel.TrainingLabel))
		buf.B = w.engine.AppendUint16(buf.B, uint16(sel.CandidateLabel))
		buf.B = w.engine.AppendUint64(buf.B, math.Float64bits(sel.SSE))
		buf.B = w.engine.AppendUint64(buf.B, math.Float64bits(sel.Threshold))
	}

	buf.B = w.engine.AppendUint32(buf.B, uint32(len(snap.Results)))
	for _, res := range snap.Results {
		buf.B = w.engine.AppendUint64(buf.B, math.Float64bits(res.Point.X))
		buf.B = w.engine.AppendUint64(buf.B, math.Float64bits(res.Point.Y))
		buf.B = w.engine.AppendUint64(buf.B, math.Float64bits(res.Deviation))
		buf.B = w.engine.AppendUint16(buf.B, uint16(res.CandidateLabel))
		if res.Assigned {
			buf.B = append(buf.B, 1)
		} else {
			buf.B = append(buf.B, 0)
		}
	}
}

func (w *Writer) encodeSeriesBlock(buf *pool.ByteBuffer, block []series.Series) {
	buf.B = w.engine.AppendUint16(buf.B, uint16(len(block)))
	for _, s := range block {
		buf.B = w.engine.AppendUint16(buf.B, uint16(s.Label))
		for _, v := range s.Y {
			buf.B = w.engine.AppendUint64(buf.B, math.Float64bits(v))
		}
	}
}
