// Package codec holds the encodings loaders read.
//
// Structured data (materials) goes through a Codec: JSON from the standard
// library or GoJSON backed by goccy/go-json.
//
// Large binary assets can be shipped in a packed container: a 24-byte header
// (magic, version, compression, sizes, xxhash64 checksum) followed by the
// payload compressed with lz4 or zstd. Files named *.lz4 or *.zst are expected
// to be packed:
//
//	packed, _ := codec.Pack(raw, codec.CompressionZstd)
//	raw, err := codec.UnpackNamed("terrain.png.zst", packed)
package codec
