package store

// ZstdCodec provides Zstandard compression for snapshot payloads.
//
// Zstd gives the best ratio on the JSON snapshots this package produces
// (coefficient tables and covariance matrices compress well) at a cost
// that is irrelevant at tutorial data sizes. Two builds exist: a pure-Go
// implementation (default) and a cgo binding kept behind the nobuild tag.
type ZstdCodec struct{}

var _ Codec = (*ZstdCodec)(nil)

// NewZstdCodec creates a new Zstd codec.
func NewZstdCodec() ZstdCodec {
	return ZstdCodec{}
}
