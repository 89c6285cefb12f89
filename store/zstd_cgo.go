//go:build nobuild

package store

import (
	"github.com/valyala/gozstd"
)

// Compress compresses the payload with the cgo Zstandard binding.
func (c ZstdCodec) Compress(data []byte) ([]byte, error) {
	return gozstd.CompressLevel(nil, data, 3), nil
}

// Decompress restores a payload compressed by the cgo Zstandard binding.
func (c ZstdCodec) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return gozstd.Decompress(nil, data)
}
