package hash

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

// Columns computes a single xxHash64 over float64 columns in order.
//
// Each value is fed to the digest as its IEEE 754 little-endian bit pattern,
// with a length prefix per column so that column boundaries contribute to
// the hash. The result is deterministic across runs and platforms.
func Columns(cols ...[]float64) uint64 {
	d := xxhash.New()

	var buf [8]byte
	for _, col := range cols {
		binary.LittleEndian.PutUint64(buf[:], uint64(len(col)))
		_, _ = d.Write(buf[:])
		for _, v := range col {
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
			_, _ = d.Write(buf[:])
		}
	}

	return d.Sum64()
}
