package compress

import (
	"fmt"
	"strings"
)

// Type identifies the compression algorithm applied to an archive section.
// The value is stored in the snapshot header, so existing constants must
// never be renumbered.
type Type uint8

const (
	TypeNone Type = 0x1 // TypeNone stores sections uncompressed.
	TypeZstd Type = 0x2 // TypeZstd uses Zstandard.
	TypeS2   Type = 0x3 // TypeS2 uses S2 (Snappy-compatible).
	TypeLZ4  Type = 0x4 // TypeLZ4 uses LZ4 block compression.
)

func (t Type) String() string {
	switch t {
	case TypeNone:
		return "none"
	case TypeZstd:
		return "zstd"
	case TypeS2:
		return "s2"
	case TypeLZ4:
		return "lz4"
	default:
		return "unknown"
	}
}

// ParseType resolves a config string ("none", "zstd", "s2", "lz4") to a
// compression type, case-insensitively. The empty string means none.
func ParseType(name string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "none", "":
		return TypeNone, nil
	case "zstd":
		return TypeZstd, nil
	case "s2":
		return TypeS2, nil
	case "lz4":
		return TypeLZ4, nil
	default:
		return 0, fmt.Errorf("unknown compression type %q", name)
	}
}

// Compressor compresses one archive section payload.
type Compressor interface {
	// Compress compresses data and returns a newly allocated result; the
	// input slice is never modified. Internal buffers may be pooled.
	Compress(data []byte) ([]byte, error)
}

// Decompressor restores one archive section payload.
type Decompressor interface {
	// Decompress reverses Compress. It validates the input format and
	// returns an error for corrupted data or an incompatible algorithm.
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both directions. All built-in codecs are stateless values
// safe for concurrent use.
type Codec interface {
	Compressor
	Decompressor
}

var builtinCodecs = map[Type]Codec{
	TypeNone: NewNoOpCodec(),
	TypeZstd: NewZstdCodec(),
	TypeS2:   NewS2Codec(),
	TypeLZ4:  NewLZ4Codec(),
}

// GetCodec returns the built-in Codec for the given type.
func GetCodec(t Type) (Codec, error) {
	if codec, ok := builtinCodecs[t]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("unsupported compression type: %s", t)
}
