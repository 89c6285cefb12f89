// Package hash provides xxHash64-based identity for datasets and columns.
package hash

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

// ID computes the xxHash64 of the given string.
func ID(data string) uint64 {
	return xxhash.Sum64String(data)
}

// Digest is a streaming xxHash64 accumulator used to fingerprint
// heterogeneous table contents (names, level sets, float columns).
// The zero value is not usable; create one with NewDigest.
type Digest struct {
	h *xxhash.Digest
}

// NewDigest creates a new streaming digest.
func NewDigest() *Digest {
	return &Digest{h: xxhash.New()}
}

// WriteString appends a length-prefixed string to the digest.
// The length prefix keeps ("ab","c") and ("a","bc") distinct.
func (d *Digest) WriteString(s string) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(len(s)))
	_, _ = d.h.Write(buf[:])
	_, _ = d.h.WriteString(s)
}

// WriteFloat64 appends the IEEE-754 bits of v to the digest.
func (d *Digest) WriteFloat64(v float64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
	_, _ = d.h.Write(buf[:])
}

// WriteUint64 appends v to the digest in little-endian order.
func (d *Digest) WriteUint64(v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, _ = d.h.Write(buf[:])
}

// Sum64 returns the current hash value.
func (d *Digest) Sum64() uint64 {
	return d.h.Sum64()
}
