// Package archive implements the snapshot file format for matching runs.
//
// A snapshot captures everything a run produced in a single compact file:
// the shared x-grid, the training and candidate series, the per-training
// selections and every classified test point. Snapshots are meant for
// shipping a finished run between machines or archiving it next to the
// SQLite database, which stays the queryable source of truth.
//
// # File Layout
//
// A snapshot is a fixed 28-byte header followed by one compressed payload:
//
//	magic(4) version(1) compression(1) reserved(2)
//	fingerprint(8) checksum(8) payloadLen(4)
//	payload(payloadLen)
//
// All integers and floats are little-endian. The fingerprint is the
// xxHash64 digest of the dataset columns and must match a recomputed
// digest after decoding; the checksum is the xxHash64 digest of the
// compressed payload bytes and detects transport corruption before any
// decompression is attempted.
//
// # Compression
//
// The payload is compressed as a single block with one of the codecs from
// the compress package (zstd by default). The compression byte in the
// header records which codec was used, so readers need no out-of-band
// configuration.
package archive
