package compress

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sectionPayload builds a byte slice resembling an archive section:
// little-endian float64 columns with mild run structure so the codecs
// have something to compress.
func sectionPayload(n int) []byte {
	buf := make([]byte, 0, n*8)
	for i := 0; i < n; i++ {
		v := float64(i%100) * 0.5
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(v))
	}

	return buf
}

func TestParseType(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Type
		wantErr bool
	}{
		{name: "none", input: "none", want: TypeNone},
		{name: "empty means none", input: "", want: TypeNone},
		{name: "zstd", input: "zstd", want: TypeZstd},
		{name: "s2", input: "s2", want: TypeS2},
		{name: "lz4", input: "lz4", want: TypeLZ4},
		{name: "case insensitive", input: "ZSTD", want: TypeZstd},
		{name: "trims whitespace", input: "  lz4  ", want: TypeLZ4},
		{name: "unknown", input: "brotli", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseType(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTypeString(t *testing.T) {
	assert.Equal(t, "none", TypeNone.String())
	assert.Equal(t, "zstd", TypeZstd.String())
	assert.Equal(t, "s2", TypeS2.String())
	assert.Equal(t, "lz4", TypeLZ4.String())
	assert.Equal(t, "unknown", Type(0xff).String())
}

func TestGetCodec(t *testing.T) {
	for _, typ := range []Type{TypeNone, TypeZstd, TypeS2, TypeLZ4} {
		codec, err := GetCodec(typ)
		require.NoError(t, err)
		require.NotNil(t, codec)
	}

	_, err := GetCodec(Type(0xff))
	require.Error(t, err)
}

func TestCodecRoundTrip(t *testing.T) {
	payloads := map[string][]byte{
		"empty":     nil,
		"single":    {0x42},
		"section":   sectionPayload(400),
		"repeated":  bytes.Repeat([]byte("curve"), 1000),
		"high-entropy": func() []byte {
			buf := make([]byte, 0, 256*8)
			for i := 0; i < 256; i++ {
				v := math.Sqrt(float64(i)*1.7) * 1e6
				buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(v))
			}
			return buf
		}(),
	}

	for _, typ := range []Type{TypeNone, TypeZstd, TypeS2, TypeLZ4} {
		t.Run(typ.String(), func(t *testing.T) {
			codec, err := GetCodec(typ)
			require.NoError(t, err)

			for name, payload := range payloads {
				t.Run(name, func(t *testing.T) {
					compressed, err := codec.Compress(payload)
					require.NoError(t, err)

					restored, err := codec.Decompress(compressed)
					require.NoError(t, err)

					if len(payload) == 0 {
						assert.Empty(t, restored)
						return
					}
					assert.Equal(t, payload, restored)
				})
			}
		})
	}
}

func TestCodecCompressesStructuredData(t *testing.T) {
	payload := sectionPayload(4000)

	for _, typ := range []Type{TypeZstd, TypeS2, TypeLZ4} {
		t.Run(typ.String(), func(t *testing.T) {
			codec, err := GetCodec(typ)
			require.NoError(t, err)

			compressed, err := codec.Compress(payload)
			require.NoError(t, err)
			assert.Less(t, len(compressed), len(payload))
		})
	}
}

func TestLZ4DecompressCorrupted(t *testing.T) {
	codec := NewLZ4Codec()

	_, err := codec.Decompress([]byte{0xff, 0xff, 0xff, 0xff, 0xff})
	require.Error(t, err)
}

func TestZstdDecompressCorrupted(t *testing.T) {
	codec := NewZstdCodec()

	_, err := codec.Decompress([]byte{0x01, 0x02, 0x03, 0x04})
	require.Error(t, err)
}

func BenchmarkCodecCompress(b *testing.B) {
	payload := sectionPayload(4000)

	for _, typ := range []Type{TypeZstd, TypeS2, TypeLZ4} {
		codec, err := GetCodec(typ)
		if err != nil {
			b.Fatal(err)
		}

		b.Run(typ.String(), func(b *testing.B) {
			b.SetBytes(int64(len(payload)))
			for bi := 0; bi < b.N; bi++ {
				if _, err := codec.Compress(payload); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
