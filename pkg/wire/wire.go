// Package wire implements the fixed-width, big-endian byte encoding that
// every record on the gossip channels uses. Unlike variable-length
// formats, nothing here is self-describing beyond the explicit counts
// carried in the transaction/block headers (spec §6).
package wire

import (
	"encoding/binary"
	"fmt"

	"github.com/riftchain/utxonet/pkg/types"
)

// PutUint32 writes v big-endian into the first 4 bytes of b.
func PutUint32(b []byte, v uint32) {
	binary.BigEndian.PutUint32(b, v)
}

// Uint32 reads a big-endian uint32 from the first 4 bytes of b.
func Uint32(b []byte) uint32 {
	return binary.BigEndian.Uint32(b)
}

// PutUint64 writes v big-endian into the first 8 bytes of b.
func PutUint64(b []byte, v uint64) {
	binary.BigEndian.PutUint64(b, v)
}

// Uint64 reads a big-endian uint64 from the first 8 bytes of b.
func Uint64(b []byte) uint64 {
	return binary.BigEndian.Uint64(b)
}

// PutHash writes h into the first 32 bytes of b.
func PutHash(b []byte, h types.Hash) {
	copy(b[:32], h[:])
}

// Hash reads a 32-byte hash from the first 32 bytes of b.
func Hash(b []byte) types.Hash {
	var h types.Hash
	copy(h[:], b[:32])
	return h
}

// Require returns an error if data is shorter than n bytes.
func Require(data []byte, n int, what string) error {
	if len(data) < n {
		return fmt.Errorf("%s: need %d bytes, got %d", what, n, len(data))
	}
	return nil
}
