package compress

// NoOpCodec bypasses compression entirely.
//
// Used for debugging snapshot payloads and for baseline size/time
// measurements. Both directions return the input slice as-is without
// copying, so callers must not modify the input afterwards.
type NoOpCodec struct{}

var _ Codec = (*NoOpCodec)(nil)

// NewNoOpCodec creates a pass-through codec.
func NewNoOpCodec() NoOpCodec {
	return NoOpCodec{}
}

// Compress returns data unchanged.
func (NoOpCodec) Compress(data []byte) ([]byte, error) {
	return data, nil
}

// Decompress returns data unchanged.
func (NoOpCodec) Decompress(data []byte) ([]byte, error) {
	return data, nil
}
