// Package compress provides the section codecs used by curvematch archive
// snapshots.
//
// Archive sections are small columnar payloads (the x-grid, y-columns,
// selections, mapping results), typically a few KB to a few hundred KB of
// little-endian float64 bits. Four algorithms are supported:
//
//   - None: pass-through, for debugging and baseline measurements
//   - Zstd: best ratio, the default for snapshot files
//   - S2: fastest, for short-lived intermediate snapshots
//   - LZ4: balanced block compression
//
// The Zstd codec has two implementations selected at build time: the cgo
// build binds valyala/gozstd (libzstd), the pure-Go build uses
// klauspost/compress/zstd. Both produce interchangeable streams.
//
// All codecs are stateless values, safe for concurrent use; encoder and
// decoder instances are pooled internally where the underlying library
// benefits from reuse.
package compress
