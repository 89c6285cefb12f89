package store

import "fmt"

// Compressor compresses a serialized snapshot payload.
type Compressor interface {
	// Compress compresses the input data and returns the compressed result.
	// The returned slice is newly allocated unless the codec is a no-op.
	Compress(data []byte) ([]byte, error)
}

// Decompressor restores a compressed snapshot payload.
type Decompressor interface {
	// Decompress decompresses data previously produced by the matching
	// Compressor. It returns an error for corrupted or mismatched input.
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both directions. All codecs in this package are stateless
// values safe for concurrent use.
type Codec interface {
	Compressor
	Decompressor
}

// Compression identifies a payload compression algorithm. The numeric
// values are stored in registry rows and must not be renumbered.
type Compression uint8

const (
	// CompressionNone stores payloads uncompressed.
	CompressionNone Compression = 0x1
	// CompressionZstd uses Zstandard, the best ratio for JSON payloads.
	CompressionZstd Compression = 0x2
	// CompressionS2 uses S2, the fastest option.
	CompressionS2 Compression = 0x3
	// CompressionLZ4 uses LZ4 block compression.
	CompressionLZ4 Compression = 0x4
)

// String returns the compression algorithm name.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// NewCodec returns the codec implementing the given compression algorithm.
func NewCodec(c Compression) (Codec, error) {
	switch c {
	case CompressionNone:
		return NewNoOpCodec(), nil
	case CompressionZstd:
		return NewZstdCodec(), nil
	case CompressionS2:
		return NewS2Codec(), nil
	case CompressionLZ4:
		return NewLZ4Codec(), nil
	default:
		return nil, fmt.Errorf("unknown compression type %d", c)
	}
}
