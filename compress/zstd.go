package compress

// ZstdCodec compresses archive sections with zstandard.
//
// Two implementations back this codec: a cgo build uses the libzstd
// bindings, while pure Go builds fall back to the klauspost encoder.
// Both produce interoperable frames, so archives written by one build
// are readable by the other.
type ZstdCodec struct{}

var _ Codec = (*ZstdCodec)(nil)

// NewZstdCodec creates a new zstd codec.
func NewZstdCodec() ZstdCodec {
	return ZstdCodec{}
}
