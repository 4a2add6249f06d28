package compress

import "github.com/klauspost/compress/s2"

// S2Codec compresses archive sections with S2, the Snappy-compatible
// format tuned for speed over ratio. The float64 column payloads a
// snapshot carries still shrink noticeably because their exponent and
// length-prefix bytes repeat, but zstd remains the default where ratio
// matters; reach for S2 when a run is archived and unpacked on the same
// machine and encode latency dominates.
type S2Codec struct{}

var _ Codec = (*S2Codec)(nil)

// NewS2Codec creates a new S2 codec.
func NewS2Codec() S2Codec {
	return S2Codec{}
}

// Compress encodes the section payload as one S2 block. Empty sections
// stay empty; the block carries its own uncompressed size, so no extra
// framing is added.
func (S2Codec) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return s2.Encode(nil, data), nil
}

// Decompress restores a section payload from one S2 block, validating
// the block framing and rejecting corrupted input.
func (S2Codec) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return s2.Decode(nil, data)
}
